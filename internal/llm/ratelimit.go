package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token bucket sized below the
// upstream rate limit, so bounded pipeline fan-out cannot trip provider-side
// throttling.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit caps the provider at rpm requests per minute with a small
// burst allowance.
func WithRateLimit(p Provider, rpm int) Provider {
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// Name returns the wrapped provider's name.
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

// Available delegates to the wrapped provider without consuming a token.
func (p *RateLimitedProvider) Available(ctx context.Context) bool {
	return p.inner.Available(ctx)
}

// Complete waits for rate-limit clearance, then delegates. Cancellation
// while waiting surfaces as the context error.
func (p *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", p.inner.Name(), timeoutErr(ctx, err))
	}
	return p.inner.Complete(ctx, req)
}
