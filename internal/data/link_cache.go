package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-linkstats/internal/biz"
	"go-linkstats/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const linkCachePrefix = "link:"

// LinkCache caches links by key. Get returns nil, nil on a miss, and cache
// failures are logged and treated as misses.
type LinkCache interface {
	Get(ctx context.Context, key string) (*biz.Link, error)
	Set(ctx context.Context, l *biz.Link) error
	Invalidate(ctx context.Context, key string) error
}

var (
	_ LinkCache = (*RedisLinkCache)(nil)
	_ LinkCache = (*noopLinkCache)(nil)
)

type RedisLinkCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *log.Helper
}

// NewLinkCache returns a redis cache, or a no-op cache when Data has no redis.
func NewLinkCache(d *Data, logger log.Logger) LinkCache {
	return NewRedisLinkCache(d.rdb, d.cacheTTL, logger)
}

func NewRedisLinkCache(rdb *redis.Client, ttl time.Duration, logger log.Logger) LinkCache {
	if rdb == nil {
		return &noopLinkCache{}
	}
	return &RedisLinkCache{
		rdb: rdb,
		ttl: ttl,
		log: log.NewHelper(logger),
	}
}

type cachedLink struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	OriginURL   string    `json:"origin_url"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *RedisLinkCache) Get(ctx context.Context, key string) (*biz.Link, error) {
	data, err := c.rdb.Get(ctx, linkCachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithContext(ctx).Warnf("failed to get link %s from cache: %v", key, err)
		}
		metrics.CacheMiss.WithLabelValues("link").Inc()
		return nil, nil
	}

	var cached cachedLink
	if err := json.Unmarshal(data, &cached); err != nil {
		c.log.WithContext(ctx).Warnf("failed to unmarshal cached link %s: %v", key, err)
		metrics.CacheMiss.WithLabelValues("link").Inc()
		return nil, nil
	}

	metrics.CacheHit.WithLabelValues("link").Inc()
	return &biz.Link{
		ID:          cached.ID,
		Key:         cached.Key,
		OriginURL:   cached.OriginURL,
		OwnerID:     cached.OwnerID,
		Title:       cached.Title,
		Description: cached.Description,
		Image:       cached.Image,
		Icon:        cached.Icon,
		ClickCount:  cached.ClickCount,
		CreatedAt:   cached.CreatedAt,
	}, nil
}

func (c *RedisLinkCache) Set(ctx context.Context, l *biz.Link) error {
	data, err := json.Marshal(cachedLink{
		ID:          l.ID,
		Key:         l.Key,
		OriginURL:   l.OriginURL,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Icon:        l.Icon,
		ClickCount:  l.ClickCount,
		CreatedAt:   l.CreatedAt,
	})
	if err != nil {
		c.log.WithContext(ctx).Warnf("failed to marshal link %s for cache: %v", l.Key, err)
		return nil
	}

	if err := c.rdb.Set(ctx, linkCachePrefix+l.Key, data, c.ttl).Err(); err != nil {
		c.log.WithContext(ctx).Warnf("failed to cache link %s: %v", l.Key, err)
	}
	return nil
}

func (c *RedisLinkCache) Invalidate(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, linkCachePrefix+key).Err(); err != nil {
		c.log.WithContext(ctx).Warnf("failed to invalidate link %s: %v", key, err)
		return err
	}
	return nil
}

type noopLinkCache struct{}

func (noopLinkCache) Get(context.Context, string) (*biz.Link, error) { return nil, nil }
func (noopLinkCache) Set(context.Context, *biz.Link) error           { return nil }
func (noopLinkCache) Invalidate(context.Context, string) error       { return nil }
