package router

import (
	"errors"
	"testing"
	"time"

	"github.com/civicmesh/claimforge/internal/health"
	"github.com/civicmesh/claimforge/internal/model"
)

func testProviders() []model.ProviderConfig {
	return []model.ProviderConfig{
		{
			Name:         "openai",
			Enabled:      true,
			Priority:     1,
			Capabilities: []string{"atomize", "refine", "evidence", "perspectives", "rate", "bulk"},
			FastModel:    "gpt-4o-mini",
			StrongModel:  "gpt-4o",
		},
		{
			Name:         "anthropic",
			Enabled:      true,
			Priority:     2,
			Capabilities: []string{"atomize", "perspectives", "rate"},
			FastModel:    "claude-3-5-haiku-20241022",
			StrongModel:  "claude-sonnet-4-20250514",
		},
		{
			Name:         "ollama",
			Enabled:      false,
			Priority:     3,
			Capabilities: []string{"atomize", "bulk"},
			FastModel:    "llama3.1:8b",
		},
	}
}

func TestChoose_RespectsAllowListAndCapability(t *testing.T) {
	r := New(testProviders(), health.NewRegistry())

	// Only openai declares "evidence"; anthropic must never be chosen for
	// it no matter the score distribution.
	choice, err := r.Choose(TaskEvidence)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if choice.Provider != "openai" {
		t.Errorf("Choose(evidence) = %s, want openai", choice.Provider)
	}

	// ollama is disabled: excluding openai from bulk leaves nothing.
	_, err = r.Choose(TaskBulk, "openai")
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Errorf("expected ErrNoProviderAvailable, got %v", err)
	}
}

func TestChoose_PrefersHealthierProvider(t *testing.T) {
	reg := health.NewRegistry()
	r := New(testProviders(), reg)

	// Degrade openai.
	for i := 0; i < 10; i++ {
		reg.AfterCall("openai", 5*time.Second, false, false)
	}
	reg.AfterCall("anthropic", 200*time.Millisecond, true, true)

	choice, err := r.Choose(TaskAtomize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if choice.Provider != "anthropic" {
		t.Errorf("Choose(atomize) = %s, want healthier anthropic", choice.Provider)
	}
}

func TestChoose_TieBrokenByPriority(t *testing.T) {
	// Fresh registry: both providers score 1.0, priority decides.
	r := New(testProviders(), health.NewRegistry())

	choice, err := r.Choose(TaskAtomize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if choice.Provider != "openai" {
		t.Errorf("tie should fall to priority 1 (openai), got %s", choice.Provider)
	}
}

func TestChoose_TaskTierMapping(t *testing.T) {
	r := New(testProviders(), health.NewRegistry())

	fast, err := r.Choose(TaskAtomize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fast.Model != "gpt-4o-mini" {
		t.Errorf("atomize should use the fast model, got %s", fast.Model)
	}

	strong, err := r.Choose(TaskPerspectives)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strong.Model != "gpt-4o" {
		t.Errorf("perspectives should use the strong model, got %s", strong.Model)
	}
}

func TestChoose_ExcludeEnablesRetryOnAlternate(t *testing.T) {
	r := New(testProviders(), health.NewRegistry())

	choice, err := r.Choose(TaskAtomize, "openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if choice.Provider != "anthropic" {
		t.Errorf("excluding openai should yield anthropic, got %s", choice.Provider)
	}
}
