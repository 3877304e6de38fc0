package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedProvider paces calls with a token bucket shared by every request
// using the wrapped provider.
type rateLimitedProvider struct {
	next    LLMProvider
	limiter *rate.Limiter
}

var _ LLMProvider = (*rateLimitedProvider)(nil)

// RateLimited wraps next so calls wait for a token. A non-positive limit
// returns next unchanged.
func RateLimited(next LLMProvider, limit rate.Limit, burst int) LLMProvider {
	if limit <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (r *rateLimitedProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Chat(ctx, history, opts...)
}

func (r *rateLimitedProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Generate(ctx, prompt, opts...)
}
