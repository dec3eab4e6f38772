package biz_test

import (
	"context"
	"testing"
	"time"

	"go-linkstats/internal/biz"
	"go-linkstats/internal/conf"
	"go-linkstats/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(device, browser, os, country string) biz.Visit {
	return biz.Visit{
		Record: biz.VisitRecord{OS: os, Browser: browser, Device: device, Timestamp: time.Now().UTC()},
		Geo:    biz.GeoRecord{Country: country, City: biz.Unknown, Flag: biz.Unknown},
	}
}

func TestSummarize(t *testing.T) {
	// Arrange
	visitLog := &biz.VisitLog{}
	visitLog.Append(record(biz.DeviceMobile, "Safari", "iOS", "Germany"))
	visitLog.Append(record(biz.DeviceMobile, "Chrome", "Android", "Germany"))
	visitLog.Append(record(biz.DeviceDesktop, "Chrome", "Windows", "Brazil"))

	// Act
	summary := biz.Summarize(visitLog)

	// Assert
	assert.Equal(t, 3, summary.TotalVisits)
	assert.Equal(t, []biz.Breakdown{
		{Value: biz.DeviceMobile, Count: 2, Percentage: 66.67},
		{Value: biz.DeviceDesktop, Count: 1, Percentage: 33.33},
	}, summary.Devices)
	assert.Equal(t, []biz.Breakdown{
		{Value: "Chrome", Count: 2, Percentage: 66.67},
		{Value: "Safari", Count: 1, Percentage: 33.33},
	}, summary.Browsers)
	assert.Equal(t, []biz.Breakdown{
		{Value: "Android", Count: 1, Percentage: 33.33},
		{Value: "Windows", Count: 1, Percentage: 33.33},
		{Value: "iOS", Count: 1, Percentage: 33.33},
	}, summary.OperatingSystems)
	assert.Equal(t, "Germany", summary.Countries[0].Value)
}

func TestSummarize_EmptyLog(t *testing.T) {
	summary := biz.Summarize(&biz.VisitLog{})

	assert.Zero(t, summary.TotalVisits)
	assert.Empty(t, summary.Devices)
	assert.Empty(t, summary.Countries)
}

func TestStatsUsecase_GetStats(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := data.NewMemoryLinkRepo()
	link, err := repo.Create(ctx, &biz.Link{Key: "stats01", OriginURL: "https://example.com", OwnerID: "alice"})
	require.NoError(t, err)
	_, err = repo.RecordVisit(ctx, link.ID, link.Key, record(biz.DeviceTablet, "Safari", "iOS", "Japan"))
	require.NoError(t, err)
	uc := biz.NewStatsUsecase(repo, testLogger)

	// Act
	stats, err := uc.GetStats(ctx, "alice", "stats01")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Link.ClickCount)
	assert.Equal(t, 1, stats.VisitLog.Len())
	assert.Equal(t, "Japan", stats.VisitLog.Geo[0].Country)
	assert.Equal(t, 1, stats.Summary.TotalVisits)
}

func TestStatsUsecase_GetStats_Failures(t *testing.T) {
	ctx := context.Background()
	repo := data.NewMemoryLinkRepo()
	_, err := repo.Create(ctx, &biz.Link{Key: "private", OriginURL: "https://example.com", OwnerID: "alice"})
	require.NoError(t, err)
	uc := biz.NewStatsUsecase(repo, testLogger)

	_, err = uc.GetStats(ctx, "", "private")
	assert.ErrorIs(t, err, biz.ErrUnauthorized)

	_, err = uc.GetStats(ctx, "alice", "")
	assert.ErrorIs(t, err, biz.ErrKeyRequired)

	_, err = uc.GetStats(ctx, "mallory", "private")
	assert.ErrorIs(t, err, biz.ErrLinkNotFound)
}

func TestStatsUsecase_NotFoundAfterDelete(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := data.NewMemoryLinkRepo()
	keygen := biz.NewKeyGenerator(&conf.KeyGen{}, repo, testLogger)
	links := biz.NewLinkUsecase(repo, keygen, biz.NoopMetadataFetcher{}, biz.NoopPublisher{}, testLogger)
	stats := biz.NewStatsUsecase(repo, testLogger)

	link, err := links.Create(ctx, biz.CreateLinkInput{OwnerID: "alice", OriginURL: "https://example.com"})
	require.NoError(t, err)
	_, err = repo.RecordVisit(ctx, link.ID, link.Key, record(biz.DeviceDesktop, "Firefox", "Linux", "Italy"))
	require.NoError(t, err)

	// Act
	require.NoError(t, links.Delete(ctx, "alice", link.ID))

	// Assert
	_, err = stats.GetStats(ctx, "alice", link.Key)
	assert.ErrorIs(t, err, biz.ErrLinkNotFound)
	assert.Zero(t, repo.VisitLogCount())
}
