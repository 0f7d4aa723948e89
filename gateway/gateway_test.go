package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/model"
)

func TestCompleteUsesPrimary(t *testing.T) {
	primary := model.NewMockProvider("primary").AddTextResponse("hola")
	secondary := model.NewMockProvider("secondary")

	g := New(primary, func(o *Options) { o.Secondary = secondary })
	resp, err := g.Complete(context.Background(), model.Request{})
	require.NoError(t, err)

	assert.Equal(t, "hola", resp.Content)
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 0, secondary.CallCount())
}

func TestCompleteFallsBackOnPrimaryError(t *testing.T) {
	primary := model.NewMockProvider("primary").AddError(errors.New("rate limited"))
	secondary := model.NewMockProvider("secondary").AddTextResponse("desde el secundario")

	g := New(primary, func(o *Options) { o.Secondary = secondary })
	resp, err := g.Complete(context.Background(), model.Request{})
	require.NoError(t, err)

	assert.Equal(t, "desde el secundario", resp.Content)
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 1, secondary.CallCount())
}

func TestCompleteFallsBackOnPrimaryTimeout(t *testing.T) {
	primary := model.NewMockProvider("primary")
	primary.Delay = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	secondary := model.NewMockProvider("secondary").AddTextResponse("rescatado")

	g := New(primary, func(o *Options) {
		o.Secondary = secondary
		o.CallTimeout = 20 * time.Millisecond
	})

	resp, err := g.Complete(context.Background(), model.Request{})
	require.NoError(t, err)

	assert.Equal(t, "rescatado", resp.Content)
	assert.Equal(t, 1, secondary.CallCount())
}

func TestCompleteBothFail(t *testing.T) {
	primary := model.NewMockProvider("primary").AddError(errors.New("down"))
	secondary := model.NewMockProvider("secondary").AddError(errors.New("also down"))

	g := New(primary, func(o *Options) { o.Secondary = secondary })
	_, err := g.Complete(context.Background(), model.Request{})
	require.Error(t, err)

	assert.True(t, fault.Is(err, fault.ProviderUnavailable))
	assert.Equal(t, 1, primary.CallCount(), "primary must not be retried")
	assert.Equal(t, 1, secondary.CallCount(), "secondary must be tried exactly once")
}

func TestCompleteNoSecondary(t *testing.T) {
	primary := model.NewMockProvider("primary").AddError(errors.New("down"))

	g := New(primary)
	_, err := g.Complete(context.Background(), model.Request{})
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.ProviderUnavailable))
}

func TestFallbackMapsDeadlineToTimeoutFault(t *testing.T) {
	_, err := Fallback(context.Background(), "search", 10*time.Millisecond,
		func(ctx context.Context) ([]string, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		nil,
		logging.NoOpLogger{},
	)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.ProviderUnavailable))
	assert.True(t, fault.Is(err, fault.Timeout))
}
