package biz

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

// Breakdown is the share of visits with one value of a dimension.
type Breakdown struct {
	Value      string
	Count      int
	Percentage float64
}

// StatsSummary aggregates a visit log by dimension.
type StatsSummary struct {
	TotalVisits      int
	Devices          []Breakdown
	Browsers         []Breakdown
	OperatingSystems []Breakdown
	Countries        []Breakdown
}

// LinkStats is a link with its full visit history.
type LinkStats struct {
	Link     *Link
	VisitLog *VisitLog
	Summary  StatsSummary
}

// StatsUsecase reports on links owned by the caller.
type StatsUsecase struct {
	repo LinkRepo
	log  *log.Helper
}

func NewStatsUsecase(repo LinkRepo, logger log.Logger) *StatsUsecase {
	return &StatsUsecase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// GetStats joins the owner's link with its visit log. Links owned by someone
// else are reported as not found.
func (uc *StatsUsecase) GetStats(ctx context.Context, ownerID, key string) (*LinkStats, error) {
	ownerID = strings.TrimSpace(ownerID)
	key = strings.TrimSpace(key)
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	if key == "" {
		return nil, ErrKeyRequired
	}

	link, visitLog, err := uc.repo.FindWithVisitLog(ctx, ownerID, key)
	if err != nil {
		return nil, fmt.Errorf("get stats for %s: %w", key, err)
	}
	if visitLog == nil {
		visitLog = &VisitLog{LinkID: link.ID, Key: link.Key}
	}

	return &LinkStats{
		Link:     link,
		VisitLog: visitLog,
		Summary:  Summarize(visitLog),
	}, nil
}

// Summarize counts visits per device, browser, OS and country.
func Summarize(l *VisitLog) StatsSummary {
	total := l.Len()
	return StatsSummary{
		TotalVisits:      total,
		Devices:          breakdown(lo.Map(l.Visits, func(v VisitRecord, _ int) string { return v.Device }), total),
		Browsers:         breakdown(lo.Map(l.Visits, func(v VisitRecord, _ int) string { return v.Browser }), total),
		OperatingSystems: breakdown(lo.Map(l.Visits, func(v VisitRecord, _ int) string { return v.OS }), total),
		Countries:        breakdown(lo.Map(l.Geo, func(g GeoRecord, _ int) string { return g.Country }), total),
	}
}

func breakdown(values []string, total int) []Breakdown {
	counts := lo.CountValues(values)
	out := lo.MapToSlice(counts, func(value string, count int) Breakdown {
		return Breakdown{
			Value:      value,
			Count:      count,
			Percentage: percentage(count, total),
		}
	})
	slices.SortFunc(out, func(a, b Breakdown) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Value, b.Value)
	})
	return out
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*10000/float64(total)) / 100
}
