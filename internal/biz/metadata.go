package biz

import "context"

// PageMetadata is the display information scraped from an origin page.
type PageMetadata struct {
	Title       string
	Description string
	Image       string
	Icon        string
}

type MetadataFetcher interface {
	Fetch(ctx context.Context, pageURL string) (PageMetadata, error)
}

// NoopMetadataFetcher never fetches anything.
type NoopMetadataFetcher struct{}

func (NoopMetadataFetcher) Fetch(context.Context, string) (PageMetadata, error) {
	return PageMetadata{}, nil
}
