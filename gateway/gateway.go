// Package gateway fronts the model providers with a primary/secondary
// fallback policy and a per-call time budget. Callers never talk to a
// concrete provider directly.
package gateway

import (
	"context"
	"time"

	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/model"
)

// Options configures a Gateway.
type Options struct {
	// Secondary is tried once when the primary fails or times out. Optional.
	Secondary model.Provider
	// CallTimeout bounds each provider leg. Zero means the caller's context
	// is the only bound.
	CallTimeout time.Duration
	Logger      logging.Logger
}

// Gateway routes completion requests to the primary provider and falls back
// to the secondary on failure.
type Gateway struct {
	primary   model.Provider
	secondary model.Provider
	timeout   time.Duration
	logger    logging.Logger
}

// New creates a Gateway around the primary provider.
func New(primary model.Provider, optFns ...func(o *Options)) *Gateway {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{
		primary:   primary,
		secondary: opts.Secondary,
		timeout:   opts.CallTimeout,
		logger:    opts.Logger,
	}
}

// Complete generates one assistant turn, trying the secondary provider once
// when the primary fails. Both legs failing yields a ProviderUnavailable
// fault.
func (g *Gateway) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	primary := func(ctx context.Context) (*model.Response, error) {
		start := time.Now()
		resp, err := g.primary.Complete(ctx, req)
		g.logCall(g.primary, time.Since(start), err)
		return resp, err
	}

	var secondary func(ctx context.Context) (*model.Response, error)
	if g.secondary != nil {
		secondary = func(ctx context.Context) (*model.Response, error) {
			start := time.Now()
			resp, err := g.secondary.Complete(ctx, req)
			g.logCall(g.secondary, time.Since(start), err)
			return resp, err
		}
	}

	return Fallback(ctx, "model completion", g.timeout, primary, secondary, g.logger)
}

func (g *Gateway) logCall(p model.Provider, dur time.Duration, err error) {
	info := p.Info()
	args := []any{"provider", info.Provider, "model", info.Name, "duration_ms", dur.Milliseconds()}
	if err != nil {
		g.logger.Warn("model call failed", append(args, "error", err.Error())...)
		return
	}
	g.logger.Debug("model call completed", args...)
}
