// Package gate validates an assembled claim against the fixed quality
// contract. The result is pure over the produced artifacts: same inputs,
// same gates, no side effects.
package gate

import (
	"strings"

	"github.com/civicmesh/claimforge/internal/model"
)

// Readability band: a votable claim sentence should be short enough to
// parse in one reading but long enough to say something checkable.
const (
	minWords = 4
	maxWords = 35
)

// Validate recomputes all five gates from the artifacts. It must be called
// again after any mutation; gate results are never hand-set.
func Validate(claim model.CandidateClaim, evidence []model.EvidenceHypothesis, perspectives *model.PerspectiveSet, score *model.QualityScore) model.QualityGateResult {
	return model.QualityGateResult{
		JSONValid:           perspectives != nil && score != nil,
		AtomizationComplete: atomizationComplete(claim),
		ReadabilityOk:       readabilityOk(claim.Text),
		JurisdictionPresent: claim.JurisdictionLevel.Valid(),
		EvidencePresent:     len(evidence) > 0,
	}
}

// atomizationComplete holds when no slot carries a needs-info marker and
// the claim text is a single sentence.
func atomizationComplete(claim model.CandidateClaim) bool {
	if len(claim.NeedsInfoSlots()) > 0 {
		return false
	}
	return singleSentence(claim.Text)
}

// singleSentence counts terminators, ignoring a trailing one.
func singleSentence(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	trimmed := strings.TrimRight(text, ".!?")
	return !strings.ContainsAny(trimmed, ".!?")
}

// readabilityOk keeps the word count within the target band.
func readabilityOk(text string) bool {
	words := len(strings.Fields(text))
	return words >= minWords && words <= maxWords
}
