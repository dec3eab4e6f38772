package data

import (
	"context"

	"go-linkstats/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

var _ biz.LinkRepo = (*CachedLinkRepo)(nil)

// CachedLinkRepo serves FindByKey from a LinkCache in front of another repo.
// Cached links keep the click count they had when cached; counts and visit
// logs are always read from the underlying repo.
type CachedLinkRepo struct {
	repo  biz.LinkRepo
	cache LinkCache
	log   *log.Helper
}

// NewLinkRepo picks the store for the configured driver and puts the cache
// in front of it.
func NewLinkRepo(d *Data, cache LinkCache, logger log.Logger) biz.LinkRepo {
	var repo biz.LinkRepo
	if d.db == nil {
		repo = NewMemoryLinkRepo()
	} else {
		repo = newSQLLinkRepo(d, logger)
	}
	return NewCachedLinkRepo(repo, cache, logger)
}

func NewCachedLinkRepo(repo biz.LinkRepo, cache LinkCache, logger log.Logger) *CachedLinkRepo {
	return &CachedLinkRepo{
		repo:  repo,
		cache: cache,
		log:   log.NewHelper(logger),
	}
}

func (r *CachedLinkRepo) Create(ctx context.Context, l *biz.Link) (*biz.Link, error) {
	created, err := r.repo.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, created)
	return created, nil
}

func (r *CachedLinkRepo) FindByKey(ctx context.Context, key string) (*biz.Link, error) {
	if cached, err := r.cache.Get(ctx, key); err == nil && cached != nil {
		return cached, nil
	}

	l, err := r.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, l)
	return l, nil
}

// ExistsKey bypasses the cache so key checks see the store.
func (r *CachedLinkRepo) ExistsKey(ctx context.Context, key string) (bool, error) {
	return r.repo.ExistsKey(ctx, key)
}

func (r *CachedLinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]*biz.Link, error) {
	return r.repo.ListByOwner(ctx, ownerID)
}

func (r *CachedLinkRepo) RecordVisit(ctx context.Context, linkID int64, key string, v biz.Visit) (int64, error) {
	return r.repo.RecordVisit(ctx, linkID, key, v)
}

func (r *CachedLinkRepo) FindWithVisitLog(ctx context.Context, ownerID, key string) (*biz.Link, *biz.VisitLog, error) {
	return r.repo.FindWithVisitLog(ctx, ownerID, key)
}

// Delete invalidates the cached key after the store delete commits.
func (r *CachedLinkRepo) Delete(ctx context.Context, ownerID string, id int64) (*biz.Link, error) {
	deleted, err := r.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Invalidate(ctx, deleted.Key); err != nil {
		r.log.WithContext(ctx).Errorf("link %s deleted but still cached until expiry: %v", deleted.Key, err)
	}
	return deleted, nil
}
