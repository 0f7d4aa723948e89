// Package budget implements the nested timeout budgets shared by the
// conversation loop and the enrichment pipeline. Budgets nest through
// context deadlines, so a child can never outlive its parent and an expiring
// inner budget aborts only its own subtree.
package budget

import (
	"context"
	"time"

	"github.com/nementium/agentcore/fault"
)

// Tree holds the configured budget durations. The zero value disables every
// bound.
type Tree struct {
	// Total bounds one whole pipeline run.
	Total time.Duration
	// Prospecting bounds the search fan-out as a group.
	Prospecting time.Duration
	// Search bounds each individual search query.
	Search time.Duration
	// Extraction bounds the structured-extraction model call.
	Extraction time.Duration
	// Generation bounds the email-generation model call.
	Generation time.Duration
}

// Child derives a context bounded by d. Non-positive d returns the parent
// with a no-op cancel so call sites can defer unconditionally.
func Child(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// Run executes fn under a child budget and converts a blown deadline into a
// Timeout fault named after what. Errors from fn pass through untouched
// unless the child deadline is what stopped it.
func Run(ctx context.Context, d time.Duration, what string, fn func(ctx context.Context) error) error {
	child, cancel := Child(ctx, d)
	defer cancel()

	err := fn(child)
	if err == nil {
		return nil
	}
	if child.Err() != nil && ctx.Err() == nil {
		return fault.FromContext(child.Err(), what)
	}
	return fault.FromContext(err, what)
}

// Detached returns a context that keeps the parent's values but ignores its
// cancellation. Terminal status writes use it so the record of a timeout is
// not itself killed by the timeout.
func Detached(ctx context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), grace)
}
