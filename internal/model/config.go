package model

import "time"

// Config is the full runtime configuration. Values merge from defaults, the
// config file, CLAIMFORGE_* environment variables, and CLI flags.
type Config struct {
	Pipeline  PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Providers []ProviderConfig `yaml:"providers" mapstructure:"providers"`
	Cache     CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Store     StoreConfig      `yaml:"store" mapstructure:"store"`
}

// PipelineConfig tunes the orchestrator.
type PipelineConfig struct {
	MaxClaims        int           `yaml:"max_claims" mapstructure:"max_claims"`
	ClusterThreshold float64       `yaml:"cluster_threshold" mapstructure:"cluster_threshold"`
	EnrichWorkers    int           `yaml:"enrich_workers" mapstructure:"enrich_workers"`
	RetryBudget      int           `yaml:"retry_budget" mapstructure:"retry_budget"`
	StageTimeout     time.Duration `yaml:"stage_timeout" mapstructure:"stage_timeout"`
}

// ProviderConfig is one entry of the provider allow-list: which tasks the
// provider is cleared for, which model serves each tier, and how hard we
// may hit it.
type ProviderConfig struct {
	Name         string   `yaml:"name" mapstructure:"name"`
	Enabled      bool     `yaml:"enabled" mapstructure:"enabled"`
	Priority     int      `yaml:"priority" mapstructure:"priority"` // lower wins ties
	Capabilities []string `yaml:"capabilities" mapstructure:"capabilities"`
	FastModel    string   `yaml:"fast_model" mapstructure:"fast_model"`
	StrongModel  string   `yaml:"strong_model" mapstructure:"strong_model"`
	APIKey       string   `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL      string   `yaml:"base_url,omitempty" mapstructure:"base_url"`
	RPM          int      `yaml:"rpm" mapstructure:"rpm"` // requests/minute, 0 disables limiting
	MaxTokens    int      `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig tunes the stage-response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// StoreConfig selects the claim store location. Empty path disables
// persistence; results are still returned to the caller.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DefaultConfig returns conservative defaults: one retry, bounded fan-out,
// and every known provider task allowed for OpenAI only.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxClaims:        6,
			ClusterThreshold: 0.78,
			EnrichWorkers:    8,
			RetryBudget:      1,
			StageTimeout:     45 * time.Second,
		},
		Providers: []ProviderConfig{
			{
				Name:         "openai",
				Enabled:      true,
				Priority:     1,
				Capabilities: []string{"atomize", "refine", "evidence", "perspectives", "rate", "bulk"},
				FastModel:    "gpt-4o-mini",
				StrongModel:  "gpt-4o",
				RPM:          60,
				MaxTokens:    2000,
			},
			{
				Name:         "anthropic",
				Enabled:      false,
				Priority:     2,
				Capabilities: []string{"atomize", "refine", "evidence", "perspectives", "rate"},
				FastModel:    "claude-3-5-haiku-20241022",
				StrongModel:  "claude-sonnet-4-20250514",
				RPM:          50,
				MaxTokens:    2000,
			},
			{
				Name:         "ollama",
				Enabled:      false,
				Priority:     3,
				Capabilities: []string{"atomize", "refine", "bulk"},
				FastModel:    "llama3.1:8b",
				StrongModel:  "llama3.1:70b",
				RPM:          0,
				MaxTokens:    2000,
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     6 * time.Hour,
		},
		Store: StoreConfig{
			Path: "",
		},
	}
}
