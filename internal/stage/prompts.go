package stage

import (
	"fmt"
	"strings"

	"github.com/civicmesh/claimforge/internal/model"
)

// Prompt builders. Every prompt pins the exact JSON shape the boundary
// schema expects and forbids invented facts; the adapters still validate
// everything, since providers do not reliably follow instructions.

const extractSystem = `You atomize civic submissions into fact-checkable claims.
Rules:
1. One claim per JSON entry, exactly one sentence each.
2. Never invent information. If a slot cannot be inferred from the text, set it to "needs-info:<slot>".
3. jurisdiction_level must be one of: EU, national, regional, local, unclear.
4. Answer with a single JSON object, nothing else.`

// ExtractPrompt asks for at most maxClaims atomic claims.
func ExtractPrompt(text, locale string, maxClaims int) string {
	return fmt.Sprintf(`Split the following civic submission into at most %d atomic claims.
Submission locale: %s

Return JSON:
{"claims":[{"text":"...","topic":"...","timeframe":{"from":"","to":""},"location":"","jurisdiction_level":"local","jurisdiction_body":"","affected_groups":[],"metric":"","uncertainties":[]}]}

Submission:
%s`, maxClaims, localeOrDefault(locale), text)
}

const refineSystem = `You normalize civic claims into clear, slot-complete prose.
Rules:
1. Keep exactly one claim per input claim, in order. Never merge or split claims.
2. Fill a slot only when the claim text itself supports it; otherwise keep the "needs-info:<slot>" marker.
3. jurisdiction_level must be one of: EU, national, regional, local, unclear.
4. Answer with a single JSON object, nothing else.`

// RefinePrompt sends the claim batch for slot-filling and prose cleanup.
func RefinePrompt(claims []model.CandidateClaim, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Normalize these %d claims (locale %s). Return the same JSON shape with the same number of claims in the same order:\n", len(claims), localeOrDefault(locale))
	b.WriteString(`{"claims":[{"text":"...","topic":"...","timeframe":{"from":"","to":""},"location":"","jurisdiction_level":"local","jurisdiction_body":"","affected_groups":[],"metric":"","uncertainties":[]}]}`)
	b.WriteString("\n\nClaims:\n")
	for i, c := range claims {
		fmt.Fprintf(&b, "%d. %s (topic: %s, jurisdiction: %s, metric: %s)\n",
			i+1, c.Text, c.Topic, c.JurisdictionLevel, c.Metric)
	}
	return b.String()
}

const evidenceSystem = `You design evidence searches for civic claims.
Rules:
1. Propose search formulations and the field name you expect to find - never a statistic, number, or "fact" itself.
2. source_type must be one of: official, press, research.
3. At most 4 hypotheses.
4. Answer with a single JSON object, nothing else.`

// EvidencePrompt asks for search hypotheses for one claim.
func EvidencePrompt(claim model.CandidateClaim) string {
	return fmt.Sprintf(`Propose up to %d evidence-search hypotheses for this claim.

Return JSON:
{"hypotheses":[{"source_type":"official","search_query":"...","expected_metric":"...","year":2024}]}

Claim: %s
Topic: %s
Jurisdiction: %s %s
Metric of interest: %s`,
		model.MaxHypothesesPerClaim, claim.Text, claim.Topic,
		claim.JurisdictionLevel, claim.JurisdictionBody, claim.Metric)
}

const perspectivesSystem = `You write balanced perspectives on civic claims.
Rules:
1. At most 3 pro and 3 con arguments, one sentence each, plus exactly one alternative framing.
2. Address the claim itself. No ad-hominem, no strawman versions of either side.
3. Answer with a single JSON object, nothing else.`

// PerspectivesPrompt asks for a balanced perspective set for one claim.
func PerspectivesPrompt(claim model.CandidateClaim) string {
	return fmt.Sprintf(`Write balanced perspectives for this claim.

Return JSON:
{"pro":["..."],"con":["..."],"alternative":"..."}

Claim: %s
Topic: %s
Affected groups: %s`,
		claim.Text, claim.Topic, strings.Join(claim.AffectedGroups, ", "))
}

const rateSystem = `You rate civic claims on five fixed dimensions, each in [0,1] with one short justification.
Dimensions: precision, checkability, relevance, readability, balance.
Answer with a single JSON object, nothing else.`

// RatePrompt asks for the five-dimension quality score of one claim.
func RatePrompt(claim model.CandidateClaim, evidence []model.EvidenceHypothesis, perspectives *model.PerspectiveSet) string {
	var b strings.Builder
	b.WriteString(`Rate this claim. Return JSON:
{"precision":{"score":0.0,"justification":"..."},"checkability":{"score":0.0,"justification":"..."},"relevance":{"score":0.0,"justification":"..."},"readability":{"score":0.0,"justification":"..."},"balance":{"score":0.0,"justification":"..."}}

`)
	fmt.Fprintf(&b, "Claim: %s\nTopic: %s\nJurisdiction: %s\n", claim.Text, claim.Topic, claim.JurisdictionLevel)
	fmt.Fprintf(&b, "Evidence hypotheses: %d\n", len(evidence))
	if perspectives != nil {
		fmt.Fprintf(&b, "Perspectives: %d pro / %d con\n", len(perspectives.Pro), len(perspectives.Con))
	}
	return b.String()
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return "de-DE"
	}
	return locale
}
