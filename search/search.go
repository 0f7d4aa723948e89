// Package search provides web search clients and page text fetching for the
// assistant tools and the enrichment pipeline.
package search

import "context"

// Result is one search hit.
type Result struct {
	Title   string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs one query. Implementations return at most max results;
// max is clamped to 1..10 before reaching the backend.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Result, error)
}

// ClampMax normalizes a caller supplied result count.
func ClampMax(max int) int {
	if max < 1 {
		return 5
	}
	if max > 10 {
		return 10
	}
	return max
}
