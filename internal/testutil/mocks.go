package testutil

import (
	"context"

	"go-linkstats/internal/biz"
	"go-linkstats/internal/event"

	"github.com/stretchr/testify/mock"
)

var (
	_ biz.GeoResolver     = (*MockGeoResolver)(nil)
	_ biz.MetadataFetcher = (*MockMetadataFetcher)(nil)
	_ biz.EventPublisher  = (*MockEventPublisher)(nil)
	_ biz.VisitClassifier = (*MockClassifier)(nil)
	_ biz.LinkRepo        = (*MockLinkRepo)(nil)
)

// MockGeoResolver is a testify mock for biz.GeoResolver.
type MockGeoResolver struct {
	mock.Mock
}

func (m *MockGeoResolver) Resolve(ctx context.Context, ip string) (biz.GeoRecord, error) {
	args := m.Called(ctx, ip)
	return args.Get(0).(biz.GeoRecord), args.Error(1)
}

// MockMetadataFetcher is a testify mock for biz.MetadataFetcher.
type MockMetadataFetcher struct {
	mock.Mock
}

func (m *MockMetadataFetcher) Fetch(ctx context.Context, pageURL string) (biz.PageMetadata, error) {
	args := m.Called(ctx, pageURL)
	return args.Get(0).(biz.PageMetadata), args.Error(1)
}

// MockEventPublisher is a testify mock for biz.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, e event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// Published returns the names of every event passed to Publish, in call order.
func (m *MockEventPublisher) Published() []string {
	var names []string
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}
		names = append(names, call.Arguments.Get(1).(event.Event).EventName())
	}
	return names
}

// MockClassifier is a testify mock for biz.VisitClassifier.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(userAgent string) biz.ClientInfo {
	args := m.Called(userAgent)
	return args.Get(0).(biz.ClientInfo)
}

// MockLinkRepo is a testify mock for biz.LinkRepo.
type MockLinkRepo struct {
	mock.Mock
}

func (m *MockLinkRepo) Create(ctx context.Context, l *biz.Link) (*biz.Link, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biz.Link), args.Error(1)
}

func (m *MockLinkRepo) FindByKey(ctx context.Context, key string) (*biz.Link, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biz.Link), args.Error(1)
}

func (m *MockLinkRepo) ExistsKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockLinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]*biz.Link, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*biz.Link), args.Error(1)
}

func (m *MockLinkRepo) RecordVisit(ctx context.Context, linkID int64, key string, v biz.Visit) (int64, error) {
	args := m.Called(ctx, linkID, key, v)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLinkRepo) FindWithVisitLog(ctx context.Context, ownerID, key string) (*biz.Link, *biz.VisitLog, error) {
	args := m.Called(ctx, ownerID, key)
	var (
		l  *biz.Link
		vl *biz.VisitLog
	)
	if v := args.Get(0); v != nil {
		l = v.(*biz.Link)
	}
	if v := args.Get(1); v != nil {
		vl = v.(*biz.VisitLog)
	}
	return l, vl, args.Error(2)
}

func (m *MockLinkRepo) Delete(ctx context.Context, ownerID string, id int64) (*biz.Link, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biz.Link), args.Error(1)
}
