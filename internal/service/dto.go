package service

import (
	"time"

	"go-linkstats/internal/biz"

	"github.com/samber/lo"
)

// LinkResponse is a link as returned by the API.
type LinkResponse struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	ShortURL    string    `json:"shortUrl"`
	OriginURL   string    `json:"originUrl"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Icon        string    `json:"icon"`
	ClickCount  int64     `json:"clickCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ListLinksResponse struct {
	Links []LinkResponse `json:"links"`
}

type VisitResponse struct {
	OS        string    `json:"os"`
	Browser   string    `json:"browser"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

type GeoResponse struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Flag    string `json:"flag"`
}

type VisitLogResponse struct {
	LinkID int64           `json:"linkId"`
	Key    string          `json:"key"`
	Visits []VisitResponse `json:"visits"`
	Geo    []GeoResponse   `json:"geo"`
}

type BreakdownResponse struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SummaryResponse struct {
	TotalVisits      int                 `json:"totalVisits"`
	Devices          []BreakdownResponse `json:"devices"`
	Browsers         []BreakdownResponse `json:"browsers"`
	OperatingSystems []BreakdownResponse `json:"operatingSystems"`
	Countries        []BreakdownResponse `json:"countries"`
}

// StatsResponse flattens the link fields next to its visit log and summary.
type StatsResponse struct {
	LinkResponse
	VisitLog VisitLogResponse `json:"visitLog"`
	Summary  SummaryResponse  `json:"summary"`
}

type GetStatsResponse struct {
	Stats StatsResponse `json:"stats"`
}

type DeleteLinkResponse struct {
	ID int64 `json:"id"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (s *LinkService) toLinkResponse(l *biz.Link) LinkResponse {
	return LinkResponse{
		ID:          l.ID,
		Key:         l.Key,
		ShortURL:    s.shortURL(l.Key),
		OriginURL:   l.OriginURL,
		Owner:       l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Icon:        l.Icon,
		ClickCount:  l.ClickCount,
		CreatedAt:   l.CreatedAt,
	}
}

func (s *LinkService) toStatsResponse(st *biz.LinkStats) StatsResponse {
	return StatsResponse{
		LinkResponse: s.toLinkResponse(st.Link),
		VisitLog: VisitLogResponse{
			LinkID: st.VisitLog.LinkID,
			Key:    st.VisitLog.Key,
			Visits: lo.Map(st.VisitLog.Visits, func(v biz.VisitRecord, _ int) VisitResponse {
				return VisitResponse{OS: v.OS, Browser: v.Browser, Device: v.Device, Timestamp: v.Timestamp}
			}),
			Geo: lo.Map(st.VisitLog.Geo, func(g biz.GeoRecord, _ int) GeoResponse {
				return GeoResponse{Country: g.Country, City: g.City, Flag: g.Flag}
			}),
		},
		Summary: SummaryResponse{
			TotalVisits:      st.Summary.TotalVisits,
			Devices:          toBreakdowns(st.Summary.Devices),
			Browsers:         toBreakdowns(st.Summary.Browsers),
			OperatingSystems: toBreakdowns(st.Summary.OperatingSystems),
			Countries:        toBreakdowns(st.Summary.Countries),
		},
	}
}

func toBreakdowns(in []biz.Breakdown) []BreakdownResponse {
	return lo.Map(in, func(b biz.Breakdown, _ int) BreakdownResponse {
		return BreakdownResponse{Value: b.Value, Count: b.Count, Percentage: b.Percentage}
	})
}
