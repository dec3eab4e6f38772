package biz_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-linkstats/internal/biz"
	"go-linkstats/internal/conf"
	"go-linkstats/internal/data"
	"go-linkstats/internal/event"
	"go-linkstats/internal/testutil"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LinkUsecaseSuite struct {
	suite.Suite
	ctx      context.Context
	repo     *data.MemoryLinkRepo
	metadata *testutil.MockMetadataFetcher
	events   *testutil.MockEventPublisher
	uc       *biz.LinkUsecase
}

func (s *LinkUsecaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = data.NewMemoryLinkRepo()
	s.metadata = new(testutil.MockMetadataFetcher)
	s.events = new(testutil.MockEventPublisher)
	s.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	keygen := biz.NewKeyGenerator(&conf.KeyGen{}, s.repo, testLogger)
	s.uc = biz.NewLinkUsecase(s.repo, keygen, s.metadata, s.events, testLogger)
}

func TestLinkUsecaseSuite(t *testing.T) {
	suite.Run(t, new(LinkUsecaseSuite))
}

func (s *LinkUsecaseSuite) TestCreate_GeneratedKeyThenDuplicateCustomKey() {
	// Arrange
	s.metadata.On("Fetch", mock.Anything, "https://example.com").Return(biz.PageMetadata{Title: "Example Domain"}, nil)

	// Act
	first, err := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})
	s.Require().NoError(err)
	_, dupErr := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "bob", OriginURL: "https://example.com", Key: first.Key})

	// Assert
	s.Regexp(`^[0-9A-Za-z]{7}$`, first.Key)
	s.Equal("Example Domain", first.Title)
	s.Equal(int64(0), first.ClickCount)
	s.ErrorIs(dupErr, biz.ErrKeyTaken)
	s.Equal(400, int(kerrors.FromError(dupErr).Code))
}

func (s *LinkUsecaseSuite) TestCreate_CustomKey() {
	s.metadata.On("Fetch", mock.Anything, mock.Anything).Return(biz.PageMetadata{}, nil)

	link, err := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: " https://example.com/a ", Key: " my-key_1 "})

	s.Require().NoError(err)
	s.Equal("my-key_1", link.Key)
	s.Equal("https://example.com/a", link.OriginURL)
	s.Equal("alice", link.OwnerID)
}

func (s *LinkUsecaseSuite) TestCreate_VisitLogStartsEmpty() {
	s.metadata.On("Fetch", mock.Anything, mock.Anything).Return(biz.PageMetadata{}, nil)

	link, err := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})
	s.Require().NoError(err)

	_, visitLog, err := s.repo.FindWithVisitLog(s.ctx, "alice", link.Key)
	s.Require().NoError(err)
	s.Zero(visitLog.Len())
	s.Equal(1, s.repo.VisitLogCount())
}

func (s *LinkUsecaseSuite) TestCreate_MetadataFailureIsAbsorbed() {
	s.metadata.On("Fetch", mock.Anything, mock.Anything).Return(biz.PageMetadata{}, errors.New("dial tcp: no such host"))

	link, err := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://unreachable.example"})

	s.Require().NoError(err)
	s.Empty(link.Title)
}

func (s *LinkUsecaseSuite) TestCreate_PublishesLinkCreated() {
	s.metadata.On("Fetch", mock.Anything, mock.Anything).Return(biz.PageMetadata{}, nil)

	_, err := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})

	s.Require().NoError(err)
	s.Equal([]string{event.NameLinkCreated}, s.events.Published())
}

func (s *LinkUsecaseSuite) TestCreate_InvalidInput() {
	tests := []struct {
		name   string
		in     biz.CreateLinkInput
		want   error
		reason string
	}{
		{name: "no owner", in: biz.CreateLinkInput{OriginURL: "https://example.com"}, want: biz.ErrUnauthorized},
		{name: "no url", in: biz.CreateLinkInput{OwnerID: "alice"}, want: biz.ErrOriginURLRequired},
		{name: "not a url", in: biz.CreateLinkInput{OwnerID: "alice", OriginURL: "not a url"}, reason: biz.ReasonValidationFailed},
		{name: "mailto", in: biz.CreateLinkInput{OwnerID: "alice", OriginURL: "mailto:a@example.com"}, reason: biz.ReasonValidationFailed},
		{name: "short key", in: biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com", Key: "ab"}, reason: biz.ReasonValidationFailed},
		{name: "reserved key", in: biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com", Key: "healthz"}, reason: biz.ReasonValidationFailed},
		{name: "slash in key", in: biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com", Key: "a/b/c"}, reason: biz.ReasonValidationFailed},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.uc.Create(s.ctx, tt.in)

			s.Require().Error(err)
			if tt.want != nil {
				s.ErrorIs(err, tt.want)
			}
			if tt.reason != "" {
				s.Equal(tt.reason, kerrors.Reason(err))
			}
		})
	}
	s.metadata.AssertNotCalled(s.T(), "Fetch", mock.Anything, mock.Anything)
	s.Empty(s.events.Published())
}

func (s *LinkUsecaseSuite) TestCreate_ConcurrentGeneratedKeysAreDistinct() {
	// Arrange
	const creators = 50
	s.metadata.On("Fetch", mock.Anything, mock.Anything).Return(biz.PageMetadata{}, nil)

	// Act
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		keys = make(map[string]struct{})
	)
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			link, err := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})
			if !assert.NoError(s.T(), err) {
				return
			}
			mu.Lock()
			keys[link.Key] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Assert
	s.Len(keys, creators)
	links, err := s.uc.List(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(links, creators)
}

func (s *LinkUsecaseSuite) TestList_EmptyForNewOwner() {
	links, err := s.uc.List(s.ctx, "nobody")

	s.Require().NoError(err)
	s.NotNil(links)
	s.Empty(links)
}

func (s *LinkUsecaseSuite) TestDelete() {
	// Arrange
	s.metadata.On("Fetch", mock.Anything, mock.Anything).Return(biz.PageMetadata{}, nil)
	link, err := s.uc.Create(s.ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})
	s.Require().NoError(err)

	// Act
	err = s.uc.Delete(s.ctx, "alice", link.ID)

	// Assert
	s.Require().NoError(err)
	_, err = s.repo.FindByKey(s.ctx, link.Key)
	s.ErrorIs(err, biz.ErrLinkNotFound)
	s.Equal([]string{event.NameLinkCreated, event.NameLinkDeleted}, s.events.Published())
}

func (s *LinkUsecaseSuite) TestDelete_Failures() {
	s.ErrorIs(s.uc.Delete(s.ctx, "", 1), biz.ErrUnauthorized)
	s.ErrorIs(s.uc.Delete(s.ctx, "alice", 0), biz.ErrLinkIDRequired)
	s.ErrorIs(s.uc.Delete(s.ctx, "alice", 42), biz.ErrLinkNotFound)
}

func TestLinkUsecase_RetriesWhenCreateLosesRace(t *testing.T) {
	// Arrange
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *biz.Link) bool { return l.Key == "raced01" })).
		Return(nil, biz.ErrKeyTaken)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *biz.Link) bool { return l.Key == "winner2" })).
		Return(&biz.Link{ID: 7, Key: "winner2", OwnerID: "alice"}, nil)

	keygen := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)
	keygen.SetKeySource(sequence("raced01", "winner2"))
	uc := biz.NewLinkUsecase(repo, keygen, biz.NoopMetadataFetcher{}, biz.NoopPublisher{}, testLogger)

	// Act
	link, err := uc.Create(context.Background(), biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "winner2", link.Key)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestLinkUsecase_ExhaustsWhenEveryCreateLosesRace(t *testing.T) {
	// Arrange
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, biz.ErrKeyTaken)

	keygen := biz.NewKeyGenerator(&conf.KeyGen{MaxAttempts: 3}, repo, testLogger)
	uc := biz.NewLinkUsecase(repo, keygen, biz.NoopMetadataFetcher{}, biz.NoopPublisher{}, testLogger)

	// Act
	_, err := uc.Create(context.Background(), biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})

	// Assert
	assert.ErrorIs(t, err, biz.ErrKeyExhausted)
	assert.Equal(t, 500, int(kerrors.FromError(err).Code))
	repo.AssertNumberOfCalls(t, "Create", 3)
}

func TestLinkUsecase_PublishFailureDoesNotFailCreate(t *testing.T) {
	// Arrange
	repo := data.NewMemoryLinkRepo()
	events := new(testutil.MockEventPublisher)
	events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus closed"))
	keygen := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)
	uc := biz.NewLinkUsecase(repo, keygen, biz.NoopMetadataFetcher{}, events, testLogger)

	// Act
	_, err := uc.Create(context.Background(), biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})

	// Assert
	require.NoError(t, err)
	events.AssertNumberOfCalls(t, "Publish", 1)
}
