package gateway

import (
	"context"
	"time"

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/logging"
)

// Fallback runs primary and, on any error including a blown deadline, runs
// secondary exactly once. The same leg is never retried. When both legs fail
// the returned error is a ProviderUnavailable fault wrapping the secondary
// failure.
//
// Each leg runs under its own child deadline of legBudget (when positive) so
// a hung primary cannot consume the whole caller budget.
func Fallback[T any](
	ctx context.Context,
	what string,
	legBudget time.Duration,
	primary func(ctx context.Context) (T, error),
	secondary func(ctx context.Context) (T, error),
	logger logging.Logger,
) (T, error) {
	out, err := runLeg(ctx, what, legBudget, primary)
	if err == nil {
		return out, nil
	}
	if logger != nil {
		logger.Warn("primary failed, trying fallback", "what", what, "error", err.Error())
	}

	if secondary == nil {
		var zero T
		return zero, fault.Wrap(err, fault.ProviderUnavailable, "%s: primary failed and no fallback is configured", what)
	}

	out, err = runLeg(ctx, what, legBudget, secondary)
	if err == nil {
		return out, nil
	}
	var zero T
	return zero, fault.Wrap(err, fault.ProviderUnavailable, "%s: all providers failed", what)
}

func runLeg[T any](ctx context.Context, what string, legBudget time.Duration, leg func(ctx context.Context) (T, error)) (T, error) {
	legCtx := ctx
	if legBudget > 0 {
		var cancel context.CancelFunc
		legCtx, cancel = context.WithTimeout(ctx, legBudget)
		defer cancel()
	}
	out, err := leg(legCtx)
	if err != nil {
		var zero T
		return zero, fault.FromContext(err, what)
	}
	return out, nil
}
