package data

import (
	"context"
	"sort"
	"sync"

	"go-linkstats/internal/biz"
)

var _ biz.LinkRepo = (*MemoryLinkRepo)(nil)

// MemoryLinkRepo is a LinkRepo held in process memory. A single mutex makes
// every operation atomic, including create and record.
type MemoryLinkRepo struct {
	mu        sync.RWMutex
	nextID    int64
	nextLogID int64
	links     map[int64]*biz.Link
	byKey     map[string]int64
	logs      map[int64]*biz.VisitLog // by link id
}

func NewMemoryLinkRepo() *MemoryLinkRepo {
	return &MemoryLinkRepo{
		links: make(map[int64]*biz.Link),
		byKey: make(map[string]int64),
		logs:  make(map[int64]*biz.VisitLog),
	}
}

func (r *MemoryLinkRepo) Create(_ context.Context, l *biz.Link) (*biz.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byKey[l.Key]; taken {
		return nil, biz.ErrKeyTaken
	}

	r.nextID++
	r.nextLogID++
	stored := *l
	stored.ID = r.nextID
	stored.ClickCount = 0
	r.links[stored.ID] = &stored
	r.byKey[stored.Key] = stored.ID
	r.logs[stored.ID] = &biz.VisitLog{ID: r.nextLogID, LinkID: stored.ID, Key: stored.Key}

	out := stored
	return &out, nil
}

func (r *MemoryLinkRepo) FindByKey(_ context.Context, key string) (*biz.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, biz.ErrLinkNotFound
	}
	out := *r.links[id]
	return &out, nil
}

func (r *MemoryLinkRepo) ExistsKey(_ context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byKey[key]
	return ok, nil
}

func (r *MemoryLinkRepo) ListByOwner(_ context.Context, ownerID string) ([]*biz.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]*biz.Link, 0)
	for _, l := range r.links {
		if l.OwnerID == ownerID {
			out := *l
			links = append(links, &out)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.Before(links[j].CreatedAt)
		}
		return links[i].ID < links[j].ID
	})
	return links, nil
}

func (r *MemoryLinkRepo) RecordVisit(_ context.Context, linkID int64, key string, v biz.Visit) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.links[linkID]
	if !ok {
		return 0, biz.ErrLinkNotFound
	}

	visitLog, ok := r.logs[linkID]
	if !ok {
		r.nextLogID++
		visitLog = &biz.VisitLog{ID: r.nextLogID, LinkID: linkID, Key: key}
		r.logs[linkID] = visitLog
	}
	visitLog.Append(v)
	l.ClickCount++
	return l.ClickCount, nil
}

func (r *MemoryLinkRepo) FindWithVisitLog(_ context.Context, ownerID, key string) (*biz.Link, *biz.VisitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok || r.links[id].OwnerID != ownerID {
		return nil, nil, biz.ErrLinkNotFound
	}

	link := *r.links[id]
	visitLog := &biz.VisitLog{LinkID: link.ID, Key: link.Key}
	if stored, ok := r.logs[id]; ok {
		visitLog.ID = stored.ID
		visitLog.Visits = append([]biz.VisitRecord{}, stored.Visits...)
		visitLog.Geo = append([]biz.GeoRecord{}, stored.Geo...)
	} else {
		visitLog.Visits = []biz.VisitRecord{}
		visitLog.Geo = []biz.GeoRecord{}
	}
	return &link, visitLog, nil
}

func (r *MemoryLinkRepo) Delete(_ context.Context, ownerID string, id int64) (*biz.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.links[id]
	if !ok || l.OwnerID != ownerID {
		return nil, biz.ErrLinkNotFound
	}

	delete(r.links, id)
	delete(r.byKey, l.Key)
	delete(r.logs, id)

	out := *l
	return &out, nil
}

// VisitLogCount reports how many visit logs are stored.
func (r *MemoryLinkRepo) VisitLogCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs)
}
