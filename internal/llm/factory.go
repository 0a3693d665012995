package llm

import (
	"fmt"
	"strings"

	"github.com/civicmesh/claimforge/internal/model"
)

// NewProvider creates one provider from its allow-list entry and wraps it
// with the configured rate limit.
func NewProvider(cfg model.ProviderConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(cfg.Name) {
	case "openai":
		p, err = NewOpenAIProvider(cfg)
	case "anthropic", "claude":
		p, err = NewAnthropicProvider(cfg)
	case "ollama":
		p, err = NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", cfg.Name)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RPM > 0 {
		p = WithRateLimit(p, cfg.RPM)
	}
	return p, nil
}

// BuildAll constructs every enabled provider from the allow-list. A provider
// that fails to construct (e.g. missing API key) is skipped and reported;
// the pipeline can still run on the remaining ones.
func BuildAll(configs []model.ProviderConfig) (map[string]Provider, []error) {
	providers := make(map[string]Provider)
	var errs []error

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		p, err := NewProvider(cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", cfg.Name, err))
			continue
		}
		providers[cfg.Name] = p
	}
	return providers, errs
}
