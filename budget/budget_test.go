package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nementium/agentcore/fault"
)

func TestRunPassesThroughSuccess(t *testing.T) {
	err := Run(context.Background(), 50*time.Millisecond, "fast op", func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestRunConvertsDeadlineToTimeoutFault(t *testing.T) {
	err := Run(context.Background(), 10*time.Millisecond, "slow op", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.Timeout))
	assert.Contains(t, err.Error(), "slow op")
}

func TestRunPreservesDomainErrors(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(), 50*time.Millisecond, "op", func(ctx context.Context) error {
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, fault.Is(err, fault.Timeout))
}

func TestChildNestsUnderParentDeadline(t *testing.T) {
	parent, cancel := Child(context.Background(), 20*time.Millisecond)
	defer cancel()
	child, childCancel := Child(parent, time.Hour)
	defer childCancel()

	deadline, ok := child.Deadline()
	require.True(t, ok)
	assert.LessOrEqual(t, time.Until(deadline), 20*time.Millisecond)
}

func TestChildZeroDisablesBound(t *testing.T) {
	ctx, cancel := Child(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestDetachedSurvivesParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	detached, dCancel := Detached(parent, time.Second)
	defer dCancel()

	cancel()
	assert.NoError(t, detached.Err())
}
