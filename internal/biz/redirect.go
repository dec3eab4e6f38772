package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-linkstats/internal/conf"
	"go-linkstats/internal/event"
	"go-linkstats/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// RedirectRequest is everything the redirect path needs from the HTTP request.
type RedirectRequest struct {
	Key       string
	UserAgent string
	ClientIP  string
}

// Redirector resolves a key, records the visit and returns the origin URL.
type Redirector struct {
	repo          LinkRepo
	classifier    VisitClassifier
	geo           GeoResolver
	events        EventPublisher
	geoTimeout    time.Duration
	recordTimeout time.Duration
	now           func() time.Time
	log           *log.Helper
}

func NewRedirector(
	repo LinkRepo,
	classifier VisitClassifier,
	geo GeoResolver,
	events EventPublisher,
	geoConf *conf.Geo,
	redirectConf *conf.Redirect,
	logger log.Logger,
) *Redirector {
	r := &Redirector{
		repo:          repo,
		classifier:    classifier,
		geo:           geo,
		events:        events,
		geoTimeout:    time.Second,
		recordTimeout: 5 * time.Second,
		now:           time.Now,
		log:           log.NewHelper(logger),
	}
	if geoConf != nil && geoConf.Timeout.Duration > 0 {
		r.geoTimeout = geoConf.Timeout.Duration
	}
	if redirectConf != nil && redirectConf.RecordTimeout.Duration > 0 {
		r.recordTimeout = redirectConf.RecordTimeout.Duration
	}
	return r
}

// Handle runs validate, resolve, classify and geo-resolve, record and
// increment, then returns the origin URL. Nothing is returned for redirection
// unless the visit was stored.
func (r *Redirector) Handle(ctx context.Context, req RedirectRequest) (string, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		metrics.Redirects.WithLabelValues("bad_request").Inc()
		return "", ErrKeyRequired
	}

	link, err := r.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			metrics.Redirects.WithLabelValues("not_found").Inc()
			return "", ErrLinkNotFound
		}
		metrics.Redirects.WithLabelValues("error").Inc()
		return "", ErrInternal("error while redirecting", fmt.Errorf("find link %s: %w", key, err))
	}

	client := r.classifier.Classify(req.UserAgent)
	visit := Visit{
		Record: VisitRecord{
			OS:        client.OS,
			Browser:   client.Browser,
			Device:    client.Device,
			Timestamp: r.now().UTC(),
		},
		Geo: r.resolveGeo(ctx, req.ClientIP),
	}

	// The visit is stored even if the client has gone away.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.recordTimeout)
	defer cancel()

	clicks, err := r.repo.RecordVisit(recordCtx, link.ID, link.Key, visit)
	if err != nil {
		metrics.Redirects.WithLabelValues("error").Inc()
		if errors.Is(err, ErrLinkNotFound) {
			// deleted between resolve and record
			return "", ErrLinkNotFound
		}
		return "", ErrInternal("error while redirecting", fmt.Errorf("record visit for %s: %w", link.Key, err))
	}

	metrics.Redirects.WithLabelValues("found").Inc()
	publish(recordCtx, r.events, r.log, event.NewLinkVisited(link.ID, link.Key, clicks, visit.Record.Device, visit.Geo.Country))
	if milestone := event.CheckMilestone(clicks-1, clicks); milestone > 0 {
		publish(recordCtx, r.events, r.log, event.NewClickMilestoneReached(link.Key, milestone, clicks))
	}

	return link.OriginURL, nil
}

func (r *Redirector) resolveGeo(ctx context.Context, ip string) GeoRecord {
	if ip == "" {
		return UnknownGeo()
	}

	geoCtx, cancel := context.WithTimeout(ctx, r.geoTimeout)
	defer cancel()

	geo, err := r.geo.Resolve(geoCtx, ip)
	if err != nil {
		metrics.GeoFailures.Inc()
		r.log.WithContext(ctx).Warnf("geo lookup for %s failed: %v", ip, err)
		return UnknownGeo()
	}
	return geo.OrUnknown()
}
