package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go-linkstats/internal/biz"
)

var _ biz.GeoResolver = (*HTTPGeoResolver)(nil)

// HTTPGeoResolver calls an abstractapi-compatible ip geolocation endpoint.
type HTTPGeoResolver struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

func NewHTTPGeoResolver(client *http.Client, endpoint, apiKey string) *HTTPGeoResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGeoResolver{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

type geoAPIResponse struct {
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Flag        struct {
		Emoji string `json:"emoji"`
	} `json:"flag"`
}

// Resolve is bounded by ctx; the caller sets the deadline.
func (r *HTTPGeoResolver) Resolve(ctx context.Context, ip string) (biz.GeoRecord, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return biz.GeoRecord{}, fmt.Errorf("parse geo endpoint: %w", err)
	}
	q := u.Query()
	q.Set("api_key", r.apiKey)
	q.Set("ip_address", ip)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return biz.GeoRecord{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return biz.GeoRecord{}, fmt.Errorf("geo lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return biz.GeoRecord{}, fmt.Errorf("geo lookup: unexpected status %d", resp.StatusCode)
	}

	var body geoAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil {
		return biz.GeoRecord{}, fmt.Errorf("decode geo response: %w", err)
	}

	flag := body.Flag.Emoji
	if flag == "" {
		flag = body.CountryCode
	}
	return biz.GeoRecord{
		Country: body.Country,
		City:    body.City,
		Flag:    flag,
	}, nil
}

var _ biz.GeoResolver = NoopGeoResolver{}

// NoopGeoResolver resolves every address to the unknown sentinels.
type NoopGeoResolver struct{}

func (NoopGeoResolver) Resolve(context.Context, string) (biz.GeoRecord, error) {
	return biz.UnknownGeo(), nil
}
