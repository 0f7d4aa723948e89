package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/logging"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// BraveClient queries the Brave Web Search API. A client without an API key
// fails every query, so a fallback searcher wired next to it serves keyless
// deployments.
type BraveClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     logging.Logger
}

// BraveOptions configures a BraveClient.
type BraveOptions struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     logging.Logger
}

// NewBraveClient creates a Brave search client.
func NewBraveClient(apiKey string, optFns ...func(o *BraveOptions)) *BraveClient {
	opts := BraveOptions{
		Endpoint:   braveEndpoint,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &BraveClient{
		apiKey:     apiKey,
		endpoint:   opts.Endpoint,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs one query. An unset API key is an error, not an empty success,
// so the fallback chain gets its turn.
func (c *BraveClient) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if c.apiKey == "" {
		c.logger.Warn("brave search key not configured", "query", query)
		return nil, fault.New(fault.ProviderUnavailable, "brave search key not configured")
	}
	max = ClampMax(max)

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(max))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("brave search: status %d: %s", resp.StatusCode, string(body))
	}

	var decoded braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("brave search: decoding response: %w", err)
	}

	results := make([]Result, 0, len(decoded.Web.Results))
	for _, r := range decoded.Web.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Description})
		if len(results) >= max {
			break
		}
	}
	return results, nil
}
