package biz

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go-linkstats/internal/event"
	"go-linkstats/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/go-kratos/kratos/v2/log"
)

// Link maps a short key to its origin URL.
type Link struct {
	ID          int64
	Key         string
	OriginURL   string
	OwnerID     string
	Title       string
	Description string
	Image       string
	Icon        string
	ClickCount  int64
	CreatedAt   time.Time
}

// LinkRepo is the persistence contract for links and their visit logs.
type LinkRepo interface {
	// Create stores l together with an empty visit log. A key already in use
	// yields ErrKeyTaken and nothing is stored.
	Create(ctx context.Context, l *Link) (*Link, error)
	FindByKey(ctx context.Context, key string) (*Link, error)
	ExistsKey(ctx context.Context, key string) (bool, error)
	// ListByOwner returns the owner's links, oldest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Link, error)
	// RecordVisit appends v to the link's visit log, creating the log if it is
	// missing, and increments the click count in the same transaction. It
	// returns the new click count.
	RecordVisit(ctx context.Context, linkID int64, key string, v Visit) (int64, error)
	// FindWithVisitLog returns the owned link and its visit log. The log is
	// empty, not nil, when none was stored.
	FindWithVisitLog(ctx context.Context, ownerID, key string) (*Link, *VisitLog, error)
	// Delete removes the owned link and its visit log together and returns
	// the removed link.
	Delete(ctx context.Context, ownerID string, id int64) (*Link, error)
}

const maxOriginURLLength = 2048

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CreateLinkInput is a link-creation request from an identified owner.
type CreateLinkInput struct {
	OwnerID   string `json:"-"`
	OriginURL string `json:"originUrl"`
	Key       string `json:"key"`
}

func (in CreateLinkInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OriginURL,
			validation.Required.Error("url is required"),
			validation.Length(1, maxOriginURLLength),
			is.URL.Error("must be a valid URL"),
			validation.By(absoluteHTTPURL),
		),
		validation.Field(&in.Key,
			validation.Length(3, 32),
			validation.Match(keyPattern).Error("must contain only letters, digits, '-' or '_'"),
			validation.By(notReserved),
		),
	)
}

func absoluteHTTPURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.ParseRequestURI(s)
	if err != nil || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https")
	}
	return nil
}

func notReserved(value interface{}) error {
	s, _ := value.(string)
	if IsReservedKey(s) {
		return errors.New("is reserved")
	}
	return nil
}

// LinkUsecase implements link creation, listing and deletion.
type LinkUsecase struct {
	repo     LinkRepo
	keygen   *KeyGenerator
	metadata MetadataFetcher
	events   EventPublisher
	now      func() time.Time
	log      *log.Helper
}

func NewLinkUsecase(repo LinkRepo, keygen *KeyGenerator, metadata MetadataFetcher, events EventPublisher, logger log.Logger) *LinkUsecase {
	return &LinkUsecase{
		repo:     repo,
		keygen:   keygen,
		metadata: metadata,
		events:   events,
		now:      time.Now,
		log:      log.NewHelper(logger),
	}
}

// Create stores a new link for in.OwnerID. A supplied key must be free;
// otherwise a key is generated, retrying when the store reports that a
// concurrent creation claimed it first.
func (uc *LinkUsecase) Create(ctx context.Context, in CreateLinkInput) (*Link, error) {
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.OriginURL = strings.TrimSpace(in.OriginURL)
	in.Key = strings.TrimSpace(in.Key)

	if in.OwnerID == "" {
		return nil, ErrUnauthorized
	}
	if in.OriginURL == "" {
		return nil, ErrOriginURLRequired
	}
	if err := in.Validate(); err != nil {
		return nil, ValidationError(err)
	}

	meta := uc.fetchMetadata(ctx, in.OriginURL)
	link := &Link{
		OriginURL:   in.OriginURL,
		OwnerID:     in.OwnerID,
		Title:       meta.Title,
		Description: meta.Description,
		Image:       meta.Image,
		Icon:        meta.Icon,
		CreatedAt:   uc.now().UTC(),
	}

	var (
		created *Link
		err     error
	)
	generated := in.Key == ""
	if generated {
		created, err = uc.createWithGeneratedKey(ctx, link)
	} else {
		created, err = uc.createWithKey(ctx, link, in.Key)
	}
	if err != nil {
		return nil, err
	}

	keySource := "custom"
	if generated {
		keySource = "generated"
	}
	metrics.LinksCreated.WithLabelValues(keySource).Inc()
	publish(ctx, uc.events, uc.log, event.NewLinkCreated(created.ID, created.Key, created.OwnerID, created.OriginURL, generated))
	return created, nil
}

func (uc *LinkUsecase) createWithKey(ctx context.Context, link *Link, key string) (*Link, error) {
	exists, err := uc.repo.ExistsKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check key %s: %w", key, err)
	}
	if exists {
		return nil, ErrKeyTaken
	}

	link.Key = key
	created, err := uc.repo.Create(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return created, nil
}

func (uc *LinkUsecase) createWithGeneratedKey(ctx context.Context, link *Link) (*Link, error) {
	for attempt := 1; attempt <= uc.keygen.MaxAttempts(); attempt++ {
		key, err := uc.keygen.Generate(ctx)
		if err != nil {
			return nil, err
		}

		candidate := *link
		candidate.Key = key
		created, err := uc.repo.Create(ctx, &candidate)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrKeyTaken) {
			return nil, fmt.Errorf("create link: %w", err)
		}

		metrics.KeyCollisions.Inc()
		uc.log.WithContext(ctx).Warnf("key %s claimed concurrently, retrying (%d/%d)", key, attempt, uc.keygen.MaxAttempts())
	}

	metrics.KeyExhaustions.Inc()
	return nil, ErrKeyExhausted
}

func (uc *LinkUsecase) fetchMetadata(ctx context.Context, pageURL string) PageMetadata {
	meta, err := uc.metadata.Fetch(ctx, pageURL)
	if err != nil {
		metrics.MetadataFailures.Inc()
		uc.log.WithContext(ctx).Warnf("fetch metadata for %s: %v", pageURL, err)
		return PageMetadata{}
	}
	return meta
}

// List returns every link owned by ownerID.
func (uc *LinkUsecase) List(ctx context.Context, ownerID string) ([]*Link, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	links, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	if links == nil {
		links = []*Link{}
	}
	return links, nil
}

// Delete removes the owner's link with the given id and its visit log.
func (uc *LinkUsecase) Delete(ctx context.Context, ownerID string, id int64) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrUnauthorized
	}
	if id <= 0 {
		return ErrLinkIDRequired
	}

	deleted, err := uc.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete link %d: %w", id, err)
	}

	publish(ctx, uc.events, uc.log, event.NewLinkDeleted(deleted.ID, deleted.Key, ownerID))
	return nil
}
