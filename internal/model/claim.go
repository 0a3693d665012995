package model

import "strings"

// JurisdictionLevel is the governmental tier responsible for acting on a claim.
type JurisdictionLevel string

const (
	JurisdictionEU       JurisdictionLevel = "EU"
	JurisdictionNational JurisdictionLevel = "national"
	JurisdictionRegional JurisdictionLevel = "regional"
	JurisdictionLocal    JurisdictionLevel = "local"
	JurisdictionUnclear  JurisdictionLevel = "unclear"
)

// Valid reports whether the level is one of the known enum values.
func (l JurisdictionLevel) Valid() bool {
	switch l {
	case JurisdictionEU, JurisdictionNational, JurisdictionRegional, JurisdictionLocal, JurisdictionUnclear:
		return true
	}
	return false
}

// ParseJurisdictionLevel maps free-form provider output onto the enum.
// Anything unrecognized collapses to "unclear" - the level is always an
// enum value, never free text.
func ParseJurisdictionLevel(s string) JurisdictionLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eu", "european", "european union":
		return JurisdictionEU
	case "national", "federal", "bund":
		return JurisdictionNational
	case "regional", "state", "land", "county":
		return JurisdictionRegional
	case "local", "municipal", "city", "district", "kommunal":
		return JurisdictionLocal
	default:
		return JurisdictionUnclear
	}
}

// NeedsInfoPrefix marks a slot the extractor could not fill from the source
// text. The slot must be resolved by a human, never invented.
const NeedsInfoPrefix = "needs-info:"

// RawSubmission is a single free-text civic submission. Caller-owned,
// never mutated by the pipeline.
type RawSubmission struct {
	Text       string `json:"text"`
	Locale     string `json:"locale,omitempty"`
	SourceHint string `json:"source_hint,omitempty"`
}

// Timeframe bounds the period a claim refers to.
type Timeframe struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// CandidateClaim is an atomic, single-sentence claim extracted from a
// submission. CanonicalID is assigned once from the normalized text and
// never changes afterwards.
type CandidateClaim struct {
	Text              string            `json:"text"`
	Topic             string            `json:"topic"`
	Timeframe         *Timeframe        `json:"timeframe,omitempty"`
	Location          string            `json:"location,omitempty"`
	JurisdictionLevel JurisdictionLevel `json:"jurisdiction_level"`
	JurisdictionBody  string            `json:"jurisdiction_body,omitempty"`
	AffectedGroups    []string          `json:"affected_groups,omitempty"`
	Metric            string            `json:"metric,omitempty"`
	Uncertainties     []string          `json:"uncertainties,omitempty"`
	CanonicalID       string            `json:"canonical_id"`
}

// NeedsInfoSlots returns the names of slots still carrying a needs-info
// marker, in a fixed order so callers get deterministic output.
func (c *CandidateClaim) NeedsInfoSlots() []string {
	var slots []string
	for _, s := range []struct {
		name  string
		value string
	}{
		{"text", c.Text},
		{"topic", c.Topic},
		{"location", c.Location},
		{"metric", c.Metric},
	} {
		if strings.HasPrefix(s.value, NeedsInfoPrefix) {
			slots = append(slots, s.name)
		}
	}
	for _, u := range c.Uncertainties {
		if strings.HasPrefix(u, NeedsInfoPrefix) {
			slots = append(slots, strings.TrimPrefix(u, NeedsInfoPrefix))
		}
	}
	return slots
}
