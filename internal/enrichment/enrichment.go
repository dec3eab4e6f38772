package enrichment

import (
	"fmt"
	"net/http"

	"go-linkstats/internal/biz"
	"go-linkstats/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is enrichment providers.
var ProviderSet = wire.NewSet(
	NewClassifier,
	wire.Bind(new(biz.VisitClassifier), new(*Classifier)),
	NewGeoResolver,
	NewMetadataFetcher,
)

const (
	GeoProviderNone    = "none"
	GeoProviderHTTP    = "http"
	GeoProviderMaxMind = "maxmind"
)

// NewGeoResolver builds the resolver named by c.Provider. The cleanup closes
// the MaxMind reader when one was opened.
func NewGeoResolver(c *conf.Geo, logger log.Logger) (biz.GeoResolver, func(), error) {
	helper := log.NewHelper(logger)
	noCleanup := func() {}

	provider := GeoProviderNone
	if c != nil && c.Provider != "" {
		provider = c.Provider
	}

	switch provider {
	case GeoProviderNone:
		helper.Info("geo lookup disabled, visits are recorded with unknown location")
		return NoopGeoResolver{}, noCleanup, nil
	case GeoProviderHTTP:
		if c.Endpoint == "" {
			return nil, nil, fmt.Errorf("geo provider %q needs an endpoint", provider)
		}
		return NewHTTPGeoResolver(&http.Client{}, c.Endpoint, c.APIKey), noCleanup, nil
	case GeoProviderMaxMind:
		r, err := NewMaxMindResolver(c.MaxMindDB)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {
			if err := r.Close(); err != nil {
				helper.Errorf("failed to close geoip database: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported geo provider %q", provider)
	}
}

// NewMetadataFetcher returns the HTML fetcher, or a no-op one when disabled.
func NewMetadataFetcher(c *conf.Metadata, logger log.Logger) biz.MetadataFetcher {
	if c == nil || !c.Enabled {
		log.NewHelper(logger).Info("link metadata fetching disabled")
		return biz.NoopMetadataFetcher{}
	}
	return NewHTMLMetadataFetcher(&http.Client{Timeout: c.Timeout.Duration}, c.MaxBodyBytes)
}
