package server

import (
	"context"
	"time"

	"go-linkstats/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// NewGRPCServer new a gRPC server. It carries no API of its own; kratos
// registers grpc.health.v1 and reflection on it.
func NewGRPCServer(c *conf.Server, logger log.Logger) *grpc.Server {
	var opts = []grpc.ServerOption{
		grpc.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		grpc.UnaryInterceptor(UnaryLoggingInterceptor(logger)),
	}
	if c.GRPC.Network != "" {
		opts = append(opts, grpc.Network(c.GRPC.Network))
	}
	if c.GRPC.Addr != "" {
		opts = append(opts, grpc.Address(c.GRPC.Addr))
	}
	if c.GRPC.Timeout.Duration > 0 {
		opts = append(opts, grpc.Timeout(c.GRPC.Timeout.Duration))
	}
	return grpc.NewServer(opts...)
}

// UnaryLoggingInterceptor logs every unary call, including the health checks
// that bypass kratos middleware.
func UnaryLoggingInterceptor(logger log.Logger) ggrpc.UnaryServerInterceptor {
	helper := log.NewHelper(logger)
	return func(ctx context.Context, req interface{}, info *ggrpc.UnaryServerInfo, handler ggrpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		helper.WithContext(ctx).Debugw(
			"msg", "grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start).String(),
		)
		return resp, err
	}
}
