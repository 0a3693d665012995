// Package store persists gated claims and their artifacts. Claims upsert by
// canonical id; evidence, perspectives and scores are append-only.
package store

import (
	"context"

	"github.com/civicmesh/claimforge/internal/model"
)

// Store is the persistence boundary the pipeline hands accepted claims to.
// The pipeline itself is storage-agnostic; any implementation with these
// semantics works.
type Store interface {
	// UpsertClaim inserts or replaces the claim keyed by its canonical id.
	UpsertClaim(ctx context.Context, claim model.CandidateClaim) error

	// AppendEvidence appends hypotheses; existing rows are never rewritten.
	AppendEvidence(ctx context.Context, hypotheses []model.EvidenceHypothesis) error

	// AppendPerspectives appends one perspective set.
	AppendPerspectives(ctx context.Context, set model.PerspectiveSet) error

	// AppendScore appends one quality score.
	AppendScore(ctx context.Context, score model.QualityScore) error

	// GetClaim reads one claim by canonical id; ok is false when absent.
	GetClaim(ctx context.Context, canonicalID string) (model.CandidateClaim, bool, error)

	// ListClaims reads all stored claims for downstream consumers.
	ListClaims(ctx context.Context) ([]model.CandidateClaim, error)

	// Close releases the underlying resources.
	Close() error
}
