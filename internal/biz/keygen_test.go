package biz_test

import (
	"context"
	"testing"

	"go-linkstats/internal/biz"
	"go-linkstats/internal/conf"
	"go-linkstats/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKeyGenerator_Generate(t *testing.T) {
	// Arrange
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, mock.Anything).Return(false, nil)
	g := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)

	// Act
	key, err := g.Generate(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9A-Za-z]{7}$`, key)
	repo.AssertNumberOfCalls(t, "ExistsKey", 1)
}

func TestKeyGenerator_RetriesTakenKeys(t *testing.T) {
	// Arrange
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, "taken01").Return(true, nil)
	repo.On("ExistsKey", mock.Anything, "taken02").Return(true, nil)
	repo.On("ExistsKey", mock.Anything, "free003").Return(false, nil)
	g := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)
	g.SetKeySource(sequence("taken01", "taken02", "free003"))

	// Act
	key, err := g.Generate(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "free003", key)
	repo.AssertNumberOfCalls(t, "ExistsKey", 3)
}

func TestKeyGenerator_ExhaustsAfterMaxAttempts(t *testing.T) {
	// Arrange
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, mock.Anything).Return(true, nil)
	g := biz.NewKeyGenerator(&conf.KeyGen{MaxAttempts: 4}, repo, testLogger)

	// Act
	_, err := g.Generate(context.Background())

	// Assert
	assert.ErrorIs(t, err, biz.ErrKeyExhausted)
	repo.AssertNumberOfCalls(t, "ExistsKey", 4)
}

func TestKeyGenerator_SkipsReservedKeys(t *testing.T) {
	// Arrange
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, "abc1234").Return(false, nil)
	g := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)
	g.SetKeySource(sequence("links", "healthz", "abc1234"))

	// Act
	key, err := g.Generate(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "abc1234", key)
	repo.AssertNotCalled(t, "ExistsKey", mock.Anything, "links")
	repo.AssertNotCalled(t, "ExistsKey", mock.Anything, "healthz")
}

func TestKeyGenerator_StoreError(t *testing.T) {
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, mock.Anything).Return(false, assert.AnError)
	g := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)

	_, err := g.Generate(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
}

func TestKeyGenerator_StopsOnCancelledContext(t *testing.T) {
	// Arrange
	repo := new(testutil.MockLinkRepo)
	g := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := g.Generate(ctx)

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	repo.AssertNotCalled(t, "ExistsKey", mock.Anything, mock.Anything)
}

func TestKeyGenerator_CustomLengthAndAlphabet(t *testing.T) {
	repo := new(testutil.MockLinkRepo)
	repo.On("ExistsKey", mock.Anything, mock.Anything).Return(false, nil)
	g := biz.NewKeyGenerator(&conf.KeyGen{Alphabet: "xyz", Length: 12}, repo, testLogger)

	key, err := g.Generate(context.Background())

	require.NoError(t, err)
	assert.Regexp(t, `^[xyz]{12}$`, key)
}

func TestIsReservedKey(t *testing.T) {
	assert.True(t, biz.IsReservedKey("links"))
	assert.True(t, biz.IsReservedKey("metrics"))
	assert.False(t, biz.IsReservedKey("abc1234"))
}
