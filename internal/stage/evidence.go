package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civicmesh/claimforge/internal/cache"
	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/router"
)

// EvidenceProposer attaches falsifiable search hypotheses to a claim. It
// proposes where and how to look, never what will be found.
type EvidenceProposer struct {
	Runner *Runner
}

// Propose returns 1..4 validated hypotheses for the claim.
func (p *EvidenceProposer) Propose(ctx context.Context, claim model.CandidateClaim) ([]model.EvidenceHypothesis, error) {
	var hypotheses []model.EvidenceHypothesis
	err := p.Runner.Do(ctx, Call{
		Task:     router.TaskEvidence,
		Stage:    StageEvidence,
		CacheKey: cache.StageKey(string(StageEvidence), claim.CanonicalID),
		System:   evidenceSystem,
		Prompt:   EvidencePrompt(claim),
	}, func(raw string) error {
		var batch wireEvidenceBatch
		if err := json.Unmarshal([]byte(raw), &batch); err != nil {
			return fmt.Errorf("parse hypotheses: %w", err)
		}

		hypotheses = hypotheses[:0]
		for _, w := range batch.entries() {
			h, ok := w.toModel(claim.CanonicalID)
			if !ok {
				continue
			}
			hypotheses = append(hypotheses, h)
			if len(hypotheses) == model.MaxHypothesesPerClaim {
				break
			}
		}
		if len(hypotheses) == 0 {
			return fmt.Errorf("no usable hypotheses in response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hypotheses, nil
}
