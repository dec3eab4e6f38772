//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"go-linkstats/internal/biz"
	"go-linkstats/internal/conf"
	"go-linkstats/internal/data"
	"go-linkstats/internal/enrichment"
	"go-linkstats/internal/infra/eventbus"
	"go-linkstats/internal/server"
	"go-linkstats/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.KeyGen, *conf.Geo, *conf.Metadata, *conf.Redirect, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		data.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		enrichment.ProviderSet,
		eventbus.ProviderSet,
		wire.Bind(new(biz.EventPublisher), new(*eventbus.EventBus)),
		newApp,
	))
}
