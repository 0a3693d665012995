package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civicmesh/claimforge/internal/cache"
	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/router"
)

// PerspectiveWriter produces a balanced, structurally bounded perspective
// set for a claim.
type PerspectiveWriter struct {
	Runner *Runner
}

// Write returns the validated perspective set for the claim.
func (p *PerspectiveWriter) Write(ctx context.Context, claim model.CandidateClaim) (*model.PerspectiveSet, error) {
	var set *model.PerspectiveSet
	err := p.Runner.Do(ctx, Call{
		Task:     router.TaskPerspectives,
		Stage:    StagePerspectives,
		CacheKey: cache.StageKey(string(StagePerspectives), claim.CanonicalID),
		System:   perspectivesSystem,
		Prompt:   PerspectivesPrompt(claim),
	}, func(raw string) error {
		var wire wirePerspectives
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			return fmt.Errorf("parse perspectives: %w", err)
		}
		parsed, err := wire.toModel(claim.CanonicalID)
		if err != nil {
			return err
		}
		set = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
