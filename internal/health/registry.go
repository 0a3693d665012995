// Package health tracks rolling per-provider call statistics and derives a
// [0,1] health score used for routing. The registry is the only long-lived
// mutable state in the pipeline and is shared across concurrent runs, so
// every update goes through the mutex.
package health

import (
	"sync"
	"time"

	"github.com/civicmesh/claimforge/internal/model"
)

// Weights of the three score components.
const (
	successWeight = 0.5
	jsonWeight    = 0.3
	latencyWeight = 0.2
)

// ewmaAlpha controls decay: with 0.2, roughly a dozen good samples pull a
// fully failed provider back above 0.9, so transient failure never turns
// into a permanent blacklist.
const ewmaAlpha = 0.2

// refLatencyMs is the latency at which the latency component drops to 0.5.
// Sensitivity diminishes at high latency.
const refLatencyMs = 2000.0

type stats struct {
	success   float64 // EWMA of success (0/1)
	jsonValid float64 // EWMA of JSON validity (0/1)
	latencyMs float64 // EWMA of observed latency
	samples   int
	inflight  int
}

// Registry keeps one rolling aggregate per provider. Inject one instance
// per process; tests substitute a fresh registry for isolation.
type Registry struct {
	mu        sync.Mutex
	providers map[string]*stats
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*stats)}
}

// BeforeCall records that a round-trip to the provider is starting.
func (r *Registry) BeforeCall(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(provider).inflight++
}

// AfterCall folds one completed round-trip into the rolling aggregate.
// Timed-out and cancelled calls are recorded as failures by the caller.
func (r *Registry) AfterCall(provider string, latency time.Duration, success, jsonValid bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(provider)
	if s.inflight > 0 {
		s.inflight--
	}

	latencyMs := float64(latency.Milliseconds())
	if s.samples == 0 {
		// Seed the EWMAs with the first observation instead of decaying
		// from an arbitrary starting point.
		s.success = boolTo01(success)
		s.jsonValid = boolTo01(jsonValid)
		s.latencyMs = latencyMs
	} else {
		s.success = ewma(s.success, boolTo01(success))
		s.jsonValid = ewma(s.jsonValid, boolTo01(jsonValid))
		// A fast failure must not improve perceived latency: failures only
		// ever push the latency aggregate up.
		if success || latencyMs > s.latencyMs {
			s.latencyMs = ewma(s.latencyMs, latencyMs)
		}
	}
	s.samples++
}

// Score returns the provider's current health in [0,1]. Providers without
// samples score 1.0 so new or reconfigured providers get a first chance.
func (r *Registry) Score(provider string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scoreLocked(provider)
}

// Snapshot returns the externally visible aggregate for every known
// provider.
func (r *Registry) Snapshot() model.HealthSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(model.HealthSnapshot, len(r.providers))
	for name, s := range r.providers {
		snap[name] = model.ProviderHealth{
			Score:       r.scoreLocked(name),
			SampleCount: s.samples,
		}
	}
	return snap
}

// SampleCount returns how many calls have been recorded for the provider.
func (r *Registry) SampleCount(provider string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.providers[provider]; ok {
		return s.samples
	}
	return 0
}

func (r *Registry) scoreLocked(provider string) float64 {
	s, ok := r.providers[provider]
	if !ok || s.samples == 0 {
		return 1.0
	}
	latencyFactor := refLatencyMs / (refLatencyMs + s.latencyMs)
	return successWeight*s.success + jsonWeight*s.jsonValid + latencyWeight*latencyFactor
}

func (r *Registry) get(provider string) *stats {
	s, ok := r.providers[provider]
	if !ok {
		s = &stats{}
		r.providers[provider] = s
	}
	return s
}

func ewma(old, sample float64) float64 {
	return (1-ewmaAlpha)*old + ewmaAlpha*sample
}

func boolTo01(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
