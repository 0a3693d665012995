package model

import "strings"

// MaxHypothesesPerClaim bounds how many evidence hypotheses a claim may carry.
const MaxHypothesesPerClaim = 4

// EvidenceSourceType classifies where supporting material should be searched.
type EvidenceSourceType string

const (
	SourceOfficial EvidenceSourceType = "official" // statistics offices, gazettes, ministries
	SourcePress    EvidenceSourceType = "press"    // reputable news coverage
	SourceResearch EvidenceSourceType = "research" // academic studies, think tanks
)

// Valid reports whether the source type is a known enum value.
func (t EvidenceSourceType) Valid() bool {
	switch t {
	case SourceOfficial, SourcePress, SourceResearch:
		return true
	}
	return false
}

// ParseEvidenceSourceType maps provider output onto the enum. The boolean is
// false when the value is unrecognized.
func ParseEvidenceSourceType(s string) (EvidenceSourceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "official", "government", "statistical":
		return SourceOfficial, true
	case "press", "news", "media":
		return SourcePress, true
	case "research", "academic", "study":
		return SourceResearch, true
	default:
		return "", false
	}
}

// EvidenceHypothesis is a falsifiable search formulation for a claim. It is
// advisory only: a query and an expected field name, never a fabricated
// statistic or a verified fact.
type EvidenceHypothesis struct {
	ClaimCanonicalID string             `json:"claim_canonical_id"`
	SourceType       EvidenceSourceType `json:"source_type"`
	SearchQuery      string             `json:"search_query"`
	ExpectedMetric   string             `json:"expected_metric"`
	Year             int                `json:"year,omitempty"`
}
