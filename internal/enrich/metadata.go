package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

const (
	// maxBodyBytes bounds how much of the page is read for metadata
	maxBodyBytes = 512 * 1024

	// DefaultFetchTimeout is the per-request HTTP timeout
	DefaultFetchTimeout = 8 * time.Second
)

// Fetcher retrieves Open Graph metadata from a link's target page,
// falling back to the document title.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a metadata fetcher. A zero timeout uses the default.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the target page and extracts its metadata
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (domain.Metadata, error) {
	var meta domain.Metadata

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return meta, fmt.Errorf("failed to build metadata request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return meta, fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return meta, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, targetURL)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return meta, fmt.Errorf("unsupported content type %q for %s", ct, targetURL)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return meta, fmt.Errorf("failed to parse %s: %w", targetURL, err)
	}

	meta = extract(doc)
	meta.SummaryStatus = domain.SummarySkipped
	return meta, nil
}

// extract walks the document collecting og: properties and the title tag
func extract(doc *html.Node) domain.Metadata {
	var meta domain.Metadata
	var docTitle string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				property, content := metaAttrs(n)
				switch property {
				case "og:title":
					meta.Title = content
				case "og:description":
					meta.Description = content
				case "og:image":
					meta.ImageURL = content
				}
			case "title":
				if n.FirstChild != nil && docTitle == "" {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			case "body":
				// Metadata lives in the head
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = docTitle
	}
	return meta
}

func metaAttrs(n *html.Node) (property, content string) {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property", "name":
			property = attr.Val
		case "content":
			content = attr.Val
		}
	}
	return property, content
}
