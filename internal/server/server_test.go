package server

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"go-linkstats/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewHTTPServer_ServesRouter(t *testing.T) {
	// Arrange
	router := nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusTeapot)
		_, _ = w.Write([]byte(r.URL.Path))
	})
	srv := NewHTTPServer(&conf.Server{HTTP: &conf.Server_HTTP{}}, router)

	// Act
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(nethttp.MethodGet, "/abc1234", nil))

	// Assert
	assert.Equal(t, nethttp.StatusTeapot, rr.Code)
	assert.Equal(t, "/abc1234", rr.Body.String())
}

func TestNewGRPCServer(t *testing.T) {
	srv := NewGRPCServer(&conf.Server{GRPC: &conf.Server_GRPC{Addr: "127.0.0.1:0"}}, log.NewStdLogger(io.Discard))

	require.NotNil(t, srv)
}

func TestUnaryLoggingInterceptor_PassesThrough(t *testing.T) {
	// Arrange
	interceptor := UnaryLoggingInterceptor(log.NewStdLogger(io.Discard))
	info := &ggrpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	wantErr := status.Error(codes.Unavailable, "draining")

	// Act
	resp, err := interceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "resp", wantErr
	})

	// Assert
	assert.Equal(t, "resp", resp)
	assert.True(t, errors.Is(err, wantErr))
}
