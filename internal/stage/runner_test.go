package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/civicmesh/claimforge/internal/cache"
	"github.com/civicmesh/claimforge/internal/health"
	"github.com/civicmesh/claimforge/internal/llm"
	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/router"
)

// scriptedProvider returns canned responses or errors per call.
type scriptedProvider struct {
	name      string
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Available(context.Context) bool { return true }

func (p *scriptedProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	text := ""
	if i < len(p.responses) {
		text = p.responses[i]
	}
	return &llm.CompletionResponse{Text: text}, nil
}

func twoProviderConfig() []model.ProviderConfig {
	caps := []string{"atomize", "refine", "evidence", "perspectives", "rate", "bulk"}
	return []model.ProviderConfig{
		{Name: "primary", Enabled: true, Priority: 1, Capabilities: caps, FastModel: "fast", StrongModel: "strong"},
		{Name: "secondary", Enabled: true, Priority: 2, Capabilities: caps, FastModel: "fast", StrongModel: "strong"},
	}
}

func newTestRunner(reg *health.Registry, providers map[string]llm.Provider, cfgs []model.ProviderConfig) *Runner {
	return &Runner{
		Router:    router.New(cfgs, reg),
		Providers: providers,
		Health:    reg,
		Timeout:   time.Second,
		Retries:   1,
	}
}

func decodeInto(target *string) func(string) error {
	return func(raw string) error {
		var payload struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return err
		}
		if payload.Value == "" {
			return fmt.Errorf("empty value")
		}
		*target = payload.Value
		return nil
	}
}

func TestRunner_SuccessFirstAttempt(t *testing.T) {
	reg := health.NewRegistry()
	primary := &scriptedProvider{name: "primary", responses: []string{`{"value":"ok"}`}}
	r := newTestRunner(reg, map[string]llm.Provider{"primary": primary, "secondary": &scriptedProvider{name: "secondary"}}, twoProviderConfig())

	var got string
	err := r.Do(context.Background(), Call{Task: router.TaskAtomize, Stage: StageExtract}, decodeInto(&got))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "ok" {
		t.Errorf("decoded %q, want ok", got)
	}
	if reg.SampleCount("primary") != 1 {
		t.Errorf("expected 1 health sample for primary, got %d", reg.SampleCount("primary"))
	}
}

func TestRunner_RetriesOnAlternateProviderAfterInvalidOutput(t *testing.T) {
	reg := health.NewRegistry()
	primary := &scriptedProvider{name: "primary", responses: []string{`not json at all`}}
	secondary := &scriptedProvider{name: "secondary", responses: []string{`{"value":"rescued"}`}}
	r := newTestRunner(reg, map[string]llm.Provider{"primary": primary, "secondary": secondary}, twoProviderConfig())

	var got string
	err := r.Do(context.Background(), Call{Task: router.TaskAtomize, Stage: StageExtract}, decodeInto(&got))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "rescued" {
		t.Errorf("decoded %q, want rescued from alternate provider", got)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls: primary %d secondary %d, want 1 each", primary.calls, secondary.calls)
	}
}

func TestRunner_TimeoutCountsAsFailedSample(t *testing.T) {
	reg := health.NewRegistry()
	primary := &scriptedProvider{name: "primary", errs: []error{llm.ErrTimeout}}
	secondary := &scriptedProvider{name: "secondary", responses: []string{`{"value":"ok"}`}}
	r := newTestRunner(reg, map[string]llm.Provider{"primary": primary, "secondary": secondary}, twoProviderConfig())

	var got string
	if err := r.Do(context.Background(), Call{Task: router.TaskAtomize, Stage: StageExtract}, decodeInto(&got)); err != nil {
		t.Fatalf("Do: %v", err)
	}

	snap := reg.Snapshot()
	if snap["primary"].Score >= snap["secondary"].Score {
		t.Errorf("timed-out provider should score below healthy one: %f vs %f",
			snap["primary"].Score, snap["secondary"].Score)
	}
}

func TestRunner_RetryBudgetIsBounded(t *testing.T) {
	reg := health.NewRegistry()
	primary := &scriptedProvider{name: "primary", responses: []string{`garbage`, `garbage`, `garbage`}}
	secondary := &scriptedProvider{name: "secondary", responses: []string{`garbage`, `garbage`, `garbage`}}
	r := newTestRunner(reg, map[string]llm.Provider{"primary": primary, "secondary": secondary}, twoProviderConfig())

	var got string
	err := r.Do(context.Background(), Call{Task: router.TaskAtomize, Stage: StageExtract}, decodeInto(&got))
	if err == nil {
		t.Fatal("expected failure when every attempt returns garbage")
	}

	var execErr *ExecutorError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutorError, got %T: %v", err, err)
	}
	if execErr.Stage != StageExtract {
		t.Errorf("ExecutorError.Stage = %s, want extract", execErr.Stage)
	}
	if execErr.Raw == "" {
		t.Error("ExecutorError should carry the raw payload")
	}
	if total := primary.calls + secondary.calls; total != 2 {
		t.Errorf("total calls = %d, want exactly 2 (one retry)", total)
	}
}

func TestRunner_NoProviderAvailable(t *testing.T) {
	reg := health.NewRegistry()
	r := newTestRunner(reg, map[string]llm.Provider{}, nil)

	var got string
	err := r.Do(context.Background(), Call{Task: router.TaskAtomize, Stage: StageExtract}, decodeInto(&got))
	if !errors.Is(err, router.ErrNoProviderAvailable) {
		t.Errorf("expected ErrNoProviderAvailable, got %v", err)
	}
}

func TestRunner_CacheSkipsProviderCall(t *testing.T) {
	reg := health.NewRegistry()
	primary := &scriptedProvider{name: "primary", responses: []string{`{"value":"fresh"}`}}
	r := newTestRunner(reg, map[string]llm.Provider{"primary": primary, "secondary": &scriptedProvider{name: "secondary"}}, twoProviderConfig())
	r.Cache = cache.NewMemory(time.Minute)

	call := Call{Task: router.TaskEvidence, Stage: StageEvidence, CacheKey: cache.StageKey("evidence", "claim:v1:x")}

	var got string
	if err := r.Do(context.Background(), call, decodeInto(&got)); err != nil {
		t.Fatalf("first Do: %v", err)
	}
	if err := r.Do(context.Background(), call, decodeInto(&got)); err != nil {
		t.Fatalf("second Do: %v", err)
	}
	if primary.calls != 1 {
		t.Errorf("second call should hit the cache, provider called %d times", primary.calls)
	}
}
