package enrichment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go-linkstats/internal/biz"

	"golang.org/x/net/html"
)

var _ biz.MetadataFetcher = (*HTMLMetadataFetcher)(nil)

// HTMLMetadataFetcher scrapes Open Graph and plain HTML tags from a page.
type HTMLMetadataFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewHTMLMetadataFetcher(client *http.Client, maxBytes int64) *HTMLMetadataFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &HTMLMetadataFetcher{
		client:   client,
		maxBytes: maxBytes,
	}
}

func (f *HTMLMetadataFetcher) Fetch(ctx context.Context, pageURL string) (biz.PageMetadata, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return biz.PageMetadata{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return biz.PageMetadata{}, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return biz.PageMetadata{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return biz.PageMetadata{}, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return biz.PageMetadata{}, fmt.Errorf("parse page: %w", err)
	}

	return extractMetadata(doc, base), nil
}

type pageTags struct {
	ogTitle       string
	title         string
	ogDescription string
	description   string
	ogImage       string
	icon          string
}

func extractMetadata(doc *html.Node, base *url.URL) biz.PageMetadata {
	var tags pageTags
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if tags.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					tags.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				tags.meta(n)
			case "link":
				tags.link(n)
			case "body":
				// metadata lives in head
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return biz.PageMetadata{
		Title:       firstNonEmpty(tags.ogTitle, tags.title),
		Description: firstNonEmpty(tags.ogDescription, tags.description),
		Image:       resolveRef(base, tags.ogImage),
		Icon:        resolveRef(base, tags.icon),
	}
}

func (t *pageTags) meta(n *html.Node) {
	name := strings.ToLower(attr(n, "property"))
	if name == "" {
		name = strings.ToLower(attr(n, "name"))
	}
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}

	switch name {
	case "og:title":
		setOnce(&t.ogTitle, content)
	case "og:description":
		setOnce(&t.ogDescription, content)
	case "description":
		setOnce(&t.description, content)
	case "og:image":
		setOnce(&t.ogImage, content)
	}
}

func (t *pageTags) link(n *html.Node) {
	rel := strings.ToLower(attr(n, "rel"))
	if rel == "icon" || rel == "shortcut icon" {
		setOnce(&t.icon, strings.TrimSpace(attr(n, "href")))
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveRef(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
