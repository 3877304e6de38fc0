package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type countingProvider struct {
	calls atomic.Int32
}

func (c *countingProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	c.calls.Add(1)
	return "ok", nil
}

func (c *countingProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return c.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts...)
}

func TestRateLimited_DisabledReturnsNext(t *testing.T) {
	next := &countingProvider{}
	assert.Same(t, LLMProvider(next), RateLimited(next, 0, 0))
}

func TestRateLimited_ForwardsWithinBurst(t *testing.T) {
	next := &countingProvider{}
	limited := RateLimited(next, rate.Limit(1), 2)

	for i := 0; i < 2; i++ {
		out, err := limited.Generate(context.Background(), "ping")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestRateLimited_ContextDeadlineWhileWaiting(t *testing.T) {
	next := &countingProvider{}
	limited := RateLimited(next, rate.Limit(0.01), 1)

	_, err := limited.Generate(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Generate(ctx, "second")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.False(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(1), next.calls.Load(), "blocked call must not reach the provider")
}

func TestSplitSystem(t *testing.T) {
	system, turns := SplitSystem([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "q"},
		{Role: RoleSystem, Content: "b"},
	})
	assert.Equal(t, "a\n\nb", system)
	require.Len(t, turns, 1)
	assert.Equal(t, "q", turns[0].Content)
}
