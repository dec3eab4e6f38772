package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linkstats"

var (
	Redirects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redirects_total",
		Help:      "Redirect requests by result.",
	}, []string{"result"})
	LinksCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "links_created_total",
		Help:      "Links created, by key source.",
	}, []string{"key_source"})
	KeyCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "key_collisions_total",
		Help:      "Generated keys rejected because they were already taken.",
	})
	KeyExhaustions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "key_generation_exhausted_total",
		Help:      "Key generations that ran out of attempts.",
	})
	GeoFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geo_lookup_failures_total",
		Help:      "Geo lookups that failed or timed out.",
	})
	MetadataFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metadata_fetch_failures_total",
		Help:      "Page metadata fetches that failed.",
	})
	CacheHit = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hit_total",
		Help:      "Cache hits.",
	}, []string{"kind"})
	CacheMiss = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_miss_total",
		Help:      "Cache misses.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		Redirects,
		LinksCreated,
		KeyCollisions,
		KeyExhaustions,
		GeoFailures,
		MetadataFailures,
		CacheHit,
		CacheMiss,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
