package model

import "time"

// ProviderHealthSample is one observed LLM round-trip. The registry folds
// samples into a rolling aggregate and never keeps full history.
type ProviderHealthSample struct {
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int64     `json:"latency_ms"`
	Success   bool      `json:"success"`
	JSONValid bool      `json:"json_valid"`
}

// ProviderHealth is the externally visible aggregate for one provider.
type ProviderHealth struct {
	Score       float64 `json:"score"` // [0,1]
	SampleCount int     `json:"sample_count"`
}

// HealthSnapshot maps provider name to its current aggregate.
type HealthSnapshot map[string]ProviderHealth
