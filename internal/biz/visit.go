package biz

import (
	"context"
	"time"
)

// Unknown replaces any classification or geo field that could not be determined.
const Unknown = "unknown"

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// ClientInfo is the classification of one user agent.
type ClientInfo struct {
	OS      string
	Browser string
	Device  string
}

// VisitRecord is one visit's classification and time.
type VisitRecord struct {
	OS        string
	Browser   string
	Device    string
	Timestamp time.Time
}

// GeoRecord is one visit's coarse location.
type GeoRecord struct {
	Country string
	City    string
	Flag    string
}

// UnknownGeo is the record stored when the location could not be resolved.
func UnknownGeo() GeoRecord {
	return GeoRecord{Country: Unknown, City: Unknown, Flag: Unknown}
}

// OrUnknown replaces every empty field with Unknown.
func (g GeoRecord) OrUnknown() GeoRecord {
	if g.Country == "" {
		g.Country = Unknown
	}
	if g.City == "" {
		g.City = Unknown
	}
	if g.Flag == "" {
		g.Flag = Unknown
	}
	return g
}

// Visit pairs a VisitRecord with the GeoRecord of the same request.
// Stores append both halves in one operation.
type Visit struct {
	Record VisitRecord
	Geo    GeoRecord
}

// VisitLog is the per-link history. Visits[i] and Geo[i] describe the same visit.
type VisitLog struct {
	ID     int64
	LinkID int64
	Key    string
	Visits []VisitRecord
	Geo    []GeoRecord
}

// Append adds v to both sequences.
func (l *VisitLog) Append(v Visit) {
	l.Visits = append(l.Visits, v.Record)
	l.Geo = append(l.Geo, v.Geo)
}

// Len is the number of recorded visits.
func (l *VisitLog) Len() int {
	return len(l.Visits)
}

// VisitClassifier must be pure: the same user agent always yields the same ClientInfo.
type VisitClassifier interface {
	Classify(userAgent string) ClientInfo
}

// GeoResolver looks up the location of a client IP. Implementations may return
// partial records; callers fill the gaps with Unknown.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) (GeoRecord, error)
}
