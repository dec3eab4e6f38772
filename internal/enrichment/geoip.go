package enrichment

import (
	"context"
	"fmt"
	"net"

	"go-linkstats/internal/biz"

	geoip2 "github.com/oschwald/geoip2-golang"
)

var _ biz.GeoResolver = (*MaxMindResolver)(nil)

// MaxMindResolver resolves IP addresses with a local GeoLite2/GeoIP2 City database.
type MaxMindResolver struct {
	db *geoip2.Reader
}

// NewMaxMindResolver returns an error if the database file cannot be opened or is corrupt.
func NewMaxMindResolver(dbPath string) (*MaxMindResolver, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", dbPath, err)
	}
	return &MaxMindResolver{db: db}, nil
}

func (g *MaxMindResolver) Close() error {
	return g.db.Close()
}

// Resolve returns english names and the ISO country code as the flag.
// Private or unknown addresses yield empty fields.
func (g *MaxMindResolver) Resolve(ctx context.Context, ipStr string) (biz.GeoRecord, error) {
	if err := ctx.Err(); err != nil {
		return biz.GeoRecord{}, err
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return biz.GeoRecord{}, fmt.Errorf("invalid ip address %q", ipStr)
	}

	record, err := g.db.City(ip)
	if err != nil {
		return biz.GeoRecord{}, err
	}

	return biz.GeoRecord{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
		Flag:    record.Country.IsoCode,
	}, nil
}
