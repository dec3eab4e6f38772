package service

import (
	"net/http"

	"go-linkstats/internal/conf"
	"go-linkstats/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kratos/kratos/v2/log"
)

// NewRouter creates the chi router with all middleware and routes. rl may be nil.
func NewRouter(c *conf.Server, svc *LinkService, rl *RateLimiter, logger log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", svc.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rl.Middleware)
		r.Use(Identity(c.IdentityHeader))

		r.Route("/links", func(r chi.Router) {
			r.Post("/", svc.CreateLink)
			r.Get("/", svc.ListLinks)
			r.Get("/{key}/stats", svc.GetStats)
			r.Delete("/", svc.DeleteLink)
			r.Delete("/{id}", svc.DeleteLink)
		})

		r.Get("/", svc.Redirect)
		r.Get("/{key}", svc.Redirect)
	})

	return r
}
