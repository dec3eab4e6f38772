package server

import (
	nethttp "net/http"

	"go-linkstats/internal/conf"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server serving the chi router under every path.
func NewHTTPServer(c *conf.Server, router nethttp.Handler) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.HTTP.Network != "" {
		opts = append(opts, http.Network(c.HTTP.Network))
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, http.Address(c.HTTP.Addr))
	}
	if c.HTTP.Timeout.Duration > 0 {
		opts = append(opts, http.Timeout(c.HTTP.Timeout.Duration))
	}
	srv := http.NewServer(opts...)
	srv.HandlePrefix("/", router)

	return srv
}
