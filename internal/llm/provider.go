// Package llm wraps the external completion providers behind one interface.
// Every round-trip carries an explicit timeout; every response is treated as
// untrusted input and validated by the calling stage.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout marks a round-trip that hit its deadline. The health registry
// records it as a failed sample and the stage runner retries once on an
// alternate provider.
var ErrTimeout = errors.New("llm: request timed out")

// Provider is a single LLM completion backend.
type Provider interface {
	// Name returns the provider name used for routing and health tracking.
	Name() string

	// Complete performs one completion round-trip. The LLM call is the only
	// side effect.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Available checks whether the provider is configured and reachable.
	Available(ctx context.Context) bool
}

// CompletionRequest is one completion call.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	AsJSON      bool // request a JSON object response where supported
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// CompletionResponse is the raw completion result. Text may be invalid JSON
// even when AsJSON was requested; callers validate at the boundary.
type CompletionResponse struct {
	Text       string
	Raw        string // provider-reported model or request id, for diagnostics
	Model      string
	TokensUsed int
}

func applyTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// timeoutErr maps a context error onto ErrTimeout so callers can classify
// without knowing the transport.
func timeoutErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return ErrTimeout
	}
	return err
}
