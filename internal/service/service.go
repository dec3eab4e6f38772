package service

import (
	"strings"

	"go-linkstats/internal/biz"
	"go-linkstats/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewLinkService, NewRateLimiterFromConfig, NewRouter)

// LinkService adapts the link, redirect and stats usecases to HTTP.
type LinkService struct {
	links      *biz.LinkUsecase
	redirector *biz.Redirector
	stats      *biz.StatsUsecase
	baseURL    string
	log        *log.Helper
}

func NewLinkService(
	c *conf.Server,
	links *biz.LinkUsecase,
	redirector *biz.Redirector,
	stats *biz.StatsUsecase,
	logger log.Logger,
) *LinkService {
	return &LinkService{
		links:      links,
		redirector: redirector,
		stats:      stats,
		baseURL:    strings.TrimRight(c.BaseURL, "/"),
		log:        log.NewHelper(logger),
	}
}

func (s *LinkService) shortURL(key string) string {
	return s.baseURL + "/" + key
}
