package model

// ScoredDimension is one quality dimension with its justification.
type ScoredDimension struct {
	Score         float64 `json:"score"` // always clamped to [0,1]
	Justification string  `json:"justification"`
}

// QualityScore rates a claim across five fixed dimensions.
type QualityScore struct {
	ClaimCanonicalID string          `json:"claim_canonical_id"`
	Precision        ScoredDimension `json:"precision"`
	Checkability     ScoredDimension `json:"checkability"`
	Relevance        ScoredDimension `json:"relevance"`
	Readability      ScoredDimension `json:"readability"`
	Balance          ScoredDimension `json:"balance"`
}

// QualityGateResult holds the five structural checks a claim must pass
// before downstream handoff. It is always derived from the produced
// artifacts, never hand-set, and recomputed after any mutation.
type QualityGateResult struct {
	JSONValid           bool `json:"json_valid"`
	AtomizationComplete bool `json:"atomization_complete"`
	ReadabilityOk       bool `json:"readability_ok"`
	JurisdictionPresent bool `json:"jurisdiction_present"`
	EvidencePresent     bool `json:"evidence_present"`
}

// Accepted reports whether all five gates hold.
func (g QualityGateResult) Accepted() bool {
	return g.JSONValid && g.AtomizationComplete && g.ReadabilityOk &&
		g.JurisdictionPresent && g.EvidencePresent
}

// FailingGates names the gates that did not hold, in a fixed order.
func (g QualityGateResult) FailingGates() []string {
	var failing []string
	if !g.JSONValid {
		failing = append(failing, "json_valid")
	}
	if !g.AtomizationComplete {
		failing = append(failing, "atomization_complete")
	}
	if !g.ReadabilityOk {
		failing = append(failing, "readability_ok")
	}
	if !g.JurisdictionPresent {
		failing = append(failing, "jurisdiction_present")
	}
	if !g.EvidencePresent {
		failing = append(failing, "evidence_present")
	}
	return failing
}
