package model

// Bounds for a perspective set. Counts are structural limits enforced at the
// provider boundary, not soft targets.
const (
	MaxProArguments = 3
	MaxConArguments = 3
)

// PerspectiveSet holds balanced arguments around a claim: up to three pro,
// up to three con, and exactly one alternative framing.
type PerspectiveSet struct {
	ClaimCanonicalID string   `json:"claim_canonical_id"`
	Pro              []string `json:"pro"`
	Con              []string `json:"con"`
	Alternative      string   `json:"alternative"`
}
