package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/router"
)

// hardMaxClaims caps extraction regardless of the caller's maxClaims.
const hardMaxClaims = 8

// Extractor turns a free-text submission into candidate claim drafts.
type Extractor struct {
	Runner *Runner
}

// Extract returns at most min(maxClaims, 8) one-sentence candidate claims.
// CanonicalID is not assigned here; the hasher owns that.
func (e *Extractor) Extract(ctx context.Context, text, locale string, maxClaims int) ([]model.CandidateClaim, error) {
	if maxClaims <= 0 || maxClaims > hardMaxClaims {
		maxClaims = hardMaxClaims
	}

	var claims []model.CandidateClaim
	err := e.Runner.Do(ctx, Call{
		Task:   router.TaskAtomize,
		Stage:  StageExtract,
		System: extractSystem,
		Prompt: ExtractPrompt(text, locale, maxClaims),
	}, func(raw string) error {
		var batch wireClaimBatch
		if err := json.Unmarshal([]byte(raw), &batch); err != nil {
			return fmt.Errorf("parse claims: %w", err)
		}
		if len(batch.Claims) == 0 {
			return fmt.Errorf("no claims in response")
		}

		claims = claims[:0]
		for _, w := range batch.Claims {
			c := w.toModel()
			if c.Text == "" {
				continue
			}
			claims = append(claims, c)
			if len(claims) == maxClaims {
				break
			}
		}
		if len(claims) == 0 {
			return fmt.Errorf("all claims empty after validation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
