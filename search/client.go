package search

import (
	"context"
	"time"

	"github.com/nementium/agentcore/gateway"
	"github.com/nementium/agentcore/logging"
)

// Client combines a primary and a secondary Searcher under the shared
// fallback policy: primary once, then secondary once, never a same-backend
// retry.
type Client struct {
	primary   Searcher
	secondary Searcher
	legBudget time.Duration
	logger    logging.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Secondary Searcher
	// LegBudget bounds each backend attempt. Zero defers to the caller's
	// context.
	LegBudget time.Duration
	Logger    logging.Logger
}

// NewClient creates a fallback search client.
func NewClient(primary Searcher, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		primary:   primary,
		secondary: opts.Secondary,
		legBudget: opts.LegBudget,
		logger:    opts.Logger,
	}
}

// Search runs the query through the fallback chain.
func (c *Client) Search(ctx context.Context, query string, max int) ([]Result, error) {
	primary := func(ctx context.Context) ([]Result, error) {
		return c.primary.Search(ctx, query, max)
	}
	var secondary func(ctx context.Context) ([]Result, error)
	if c.secondary != nil {
		secondary = func(ctx context.Context) ([]Result, error) {
			return c.secondary.Search(ctx, query, max)
		}
	}
	return gateway.Fallback(ctx, "web search", c.legBudget, primary, secondary, c.logger)
}
