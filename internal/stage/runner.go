package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicmesh/claimforge/internal/cache"
	"github.com/civicmesh/claimforge/internal/health"
	"github.com/civicmesh/claimforge/internal/llm"
	"github.com/civicmesh/claimforge/internal/router"
)

// Runner is the shared round-trip helper behind every executor: it routes
// the call, records health samples, enforces the timeout, consults the
// response cache, and retries once on an alternate provider when the first
// attempt times out or returns output that fails validation.
type Runner struct {
	Router    *router.Router
	Providers map[string]llm.Provider
	Health    *health.Registry
	Cache     cache.Cache // optional
	CacheTTL  time.Duration
	Timeout   time.Duration
	Retries   int // additional attempts after the first; small and fixed
	Logger    *slog.Logger
}

// Call describes one stage round-trip.
type Call struct {
	Task     router.Task
	Stage    Stage
	CacheKey string // empty disables caching for this call
	System   string
	Prompt   string
}

// Do executes the call. decode receives the raw response text, must parse
// and validate it, and may be invoked once per attempt. On success the
// validated raw text is cached under CacheKey.
func (r *Runner) Do(ctx context.Context, call Call, decode func(raw string) error) error {
	if r.Cache != nil && call.CacheKey != "" {
		if cached, ok := r.Cache.Get(call.CacheKey); ok {
			if err := decode(string(cached)); err == nil {
				return nil
			}
			// A cached payload that no longer decodes is stale schema; drop it.
			_ = r.Cache.Delete(call.CacheKey)
		}
	}

	attempts := r.Retries + 1
	var exclude []string
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := r.Router.Choose(call.Task, exclude...)
		if err != nil {
			if lastErr != nil {
				// Retry wanted an alternate, none exists: the original
				// failure stands.
				return lastErr
			}
			return fmt.Errorf("stage %s: %w", call.Stage, err)
		}

		provider, ok := r.Providers[choice.Provider]
		if !ok {
			// Allow-listed but not constructed (e.g. missing key); skip it.
			exclude = append(exclude, choice.Provider)
			lastErr = fmt.Errorf("stage %s: provider %s not configured", call.Stage, choice.Provider)
			continue
		}

		r.Health.BeforeCall(choice.Provider)
		start := time.Now()
		resp, callErr := provider.Complete(ctx, llm.CompletionRequest{
			Model:   choice.Model,
			System:  call.System,
			Prompt:  call.Prompt,
			AsJSON:  true,
			Timeout: r.Timeout,
		})
		latency := time.Since(start)

		if callErr != nil {
			// Timed-out and failed calls both count as failed samples.
			r.Health.AfterCall(choice.Provider, latency, false, false)
			exclude = append(exclude, choice.Provider)
			if errors.Is(callErr, llm.ErrTimeout) {
				lastErr = fmt.Errorf("stage %s: %s: %w", call.Stage, choice.Provider, llm.ErrTimeout)
			} else {
				lastErr = fmt.Errorf("stage %s: %s: %w", call.Stage, choice.Provider, callErr)
			}
			r.logWarn("stage_call_failed", call, choice.Provider, lastErr)
			continue
		}

		if err := decode(resp.Text); err != nil {
			// The provider answered but the payload fails the contract:
			// one sample with jsonValid=false, then try an alternate.
			r.Health.AfterCall(choice.Provider, latency, true, false)
			exclude = append(exclude, choice.Provider)
			lastErr = newExecutorError(call.Stage, resp.Text, err)
			r.logWarn("stage_output_invalid", call, choice.Provider, err)
			continue
		}

		r.Health.AfterCall(choice.Provider, latency, true, true)
		if r.Cache != nil && call.CacheKey != "" {
			_ = r.Cache.Set(call.CacheKey, []byte(resp.Text), r.CacheTTL)
		}
		return nil
	}

	return lastErr
}

func (r *Runner) logWarn(msg string, call Call, provider string, err error) {
	if r.Logger == nil {
		return
	}
	r.Logger.Warn(msg,
		slog.String("stage", string(call.Stage)),
		slog.String("provider", provider),
		slog.String("error", err.Error()))
}
