package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/router"
)

// Refiner slot-fills and prose-normalizes a claim batch. It never merges
// claims - clustering owns merging - so the output cardinality must match
// the input exactly.
type Refiner struct {
	Runner *Runner
}

// Refine returns the batch with slots filled where the text supports it.
// CanonicalIDs carry over unchanged: the dedup key is fixed at hashing time.
func (r *Refiner) Refine(ctx context.Context, claims []model.CandidateClaim, locale string) ([]model.CandidateClaim, error) {
	if len(claims) == 0 {
		return claims, nil
	}

	var refined []model.CandidateClaim
	err := r.Runner.Do(ctx, Call{
		Task:   router.TaskRefine,
		Stage:  StageRefine,
		System: refineSystem,
		Prompt: RefinePrompt(claims, locale),
	}, func(raw string) error {
		var batch wireClaimBatch
		if err := json.Unmarshal([]byte(raw), &batch); err != nil {
			return fmt.Errorf("parse refined claims: %w", err)
		}
		if len(batch.Claims) != len(claims) {
			return fmt.Errorf("refiner changed claim count: got %d, want %d", len(batch.Claims), len(claims))
		}

		refined = refined[:0]
		for i, w := range batch.Claims {
			c := w.toModel()
			if c.Text == "" {
				return fmt.Errorf("refined claim %d has empty text", i)
			}
			c.CanonicalID = claims[i].CanonicalID
			refined = append(refined, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refined, nil
}
