package search

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Fetcher downloads a page and extracts its readable text.
type Fetcher struct {
	httpClient *http.Client
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	HTTPClient *http.Client
}

// NewFetcher creates a page fetcher.
func NewFetcher(optFns ...func(o *FetcherOptions)) *Fetcher {
	opts := FetcherOptions{HTTPClient: &http.Client{Timeout: 20 * time.Second}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Fetcher{httpClient: opts.HTTPClient}
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// skipped elements contribute chrome, not content.
var skippedElements = map[string]bool{
	"script": true, "style": true, "nav": true,
	"header": true, "footer": true, "noscript": true,
}

// FetchText downloads url and returns its visible text, whitespace collapsed
// and clamped to maxChars (itself clamped to 500..10000).
func (f *Fetcher) FetchText(ctx context.Context, pageURL string, maxChars int) (string, error) {
	if maxChars < 500 {
		maxChars = 500
	}
	if maxChars > 10000 {
		maxChars = 10000
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; agentcore/1.0)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	text := extractText(doc)
	text = strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}

func extractText(n *html.Node) string {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(extractText(child))
		sb.WriteString(" ")
	}
	return sb.String()
}
