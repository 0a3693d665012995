package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/router"
)

// QualityRater scores a claim across the five fixed dimensions.
type QualityRater struct {
	Runner *Runner
}

// Rate returns the validated quality score for the claim. No cache key:
// the rating depends on the enrichment artifacts, not only the claim.
func (r *QualityRater) Rate(ctx context.Context, claim model.CandidateClaim, evidence []model.EvidenceHypothesis, perspectives *model.PerspectiveSet) (*model.QualityScore, error) {
	var score *model.QualityScore
	err := r.Runner.Do(ctx, Call{
		Task:   router.TaskRate,
		Stage:  StageRate,
		System: rateSystem,
		Prompt: RatePrompt(claim, evidence, perspectives),
	}, func(raw string) error {
		var wire wireQuality
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			return fmt.Errorf("parse quality score: %w", err)
		}
		parsed, err := wire.toModel(claim.CanonicalID)
		if err != nil {
			return err
		}
		score = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return score, nil
}
