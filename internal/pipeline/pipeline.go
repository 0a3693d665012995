// Package pipeline orchestrates a submission through the fixed stage
// sequence: extract, fingerprint, cluster, refine, enrich, rate, gate.
// Only extraction failures abort a run; everything after that degrades
// per claim and surfaces in the result instead of failing the whole run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/civicmesh/claimforge/internal/canonical"
	"github.com/civicmesh/claimforge/internal/cluster"
	"github.com/civicmesh/claimforge/internal/gate"
	"github.com/civicmesh/claimforge/internal/health"
	"github.com/civicmesh/claimforge/internal/llm"
	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/router"
	"github.com/civicmesh/claimforge/internal/stage"
	"github.com/civicmesh/claimforge/internal/store"
	"github.com/civicmesh/claimforge/internal/util"
)

// minInputWords rejects submissions too short to carry a checkable claim.
const minInputWords = 3

// Pipeline wires the five stage executors into one run loop.
type Pipeline struct {
	Extractor    *stage.Extractor
	Refiner      *stage.Refiner
	Evidence     *stage.EvidenceProposer
	Perspectives *stage.PerspectiveWriter
	Rater        *stage.QualityRater

	Store  store.Store      // optional; nil disables persistence
	Events EventSink        // optional
	Health *health.Registry // shared with the runner; snapshotted into run stats
	Logger *slog.Logger

	Config model.PipelineConfig
}

// New builds a pipeline whose executors share one runner.
func New(runner *stage.Runner, cfg model.PipelineConfig) *Pipeline {
	return &Pipeline{
		Extractor:    &stage.Extractor{Runner: runner},
		Refiner:      &stage.Refiner{Runner: runner},
		Evidence:     &stage.EvidenceProposer{Runner: runner},
		Perspectives: &stage.PerspectiveWriter{Runner: runner},
		Rater:        &stage.QualityRater{Runner: runner},
		Health:       runner.Health,
		Config:       cfg,
	}
}

// enrichment collects the per-claim artifacts and failure reasons produced
// by the concurrent stages. Slices are indexed by claim; no locking needed
// because each goroutine only writes its own slot.
type enrichment struct {
	evidence     [][]model.EvidenceHypothesis
	perspectives []*model.PerspectiveSet
	scores       []*model.QualityScore
	failures     [][]string
}

// Run executes the full pipeline for one submission.
func (p *Pipeline) Run(ctx context.Context, sub model.RawSubmission) (*model.RunResult, error) {
	text := util.StripMarkup(sub.Text)
	if len(strings.Fields(text)) < minInputWords {
		return nil, &model.PipelineError{
			Code:  model.CodeBadInput,
			Stage: model.StateExtracting,
			Err:   errors.New("submission too short to contain a claim"),
		}
	}

	runID := uuid.NewString()
	var timings []model.StageTiming
	track := func(s model.RunState, start time.Time) {
		d := time.Since(start)
		timings = append(timings, model.StageTiming{Stage: s, Duration: d, DurationMs: d.Milliseconds()})
	}

	// Extract. The only run-fatal stage: without claim drafts there is
	// nothing to degrade to.
	p.stageStarted(runID, model.StateExtracting)
	start := time.Now()
	claims, err := p.Extractor.Extract(ctx, text, sub.Locale, p.Config.MaxClaims)
	track(model.StateExtracting, start)
	if err != nil {
		return nil, p.extractError(err)
	}
	p.stageCompleted(runID, model.StateExtracting)
	extracted := len(claims)

	claims = fingerprint(claims)

	// Cluster near-duplicates; only representatives continue.
	p.stageStarted(runID, model.StateClustering)
	start = time.Now()
	claims, clusters, err := dedupe(claims, p.Config.ClusterThreshold)
	track(model.StateClustering, start)
	if err != nil {
		return nil, &model.PipelineError{Code: model.CodeBadInput, Stage: model.StateClustering, Err: err}
	}
	p.stageCompleted(runID, model.StateClustering)

	// Refine. Failure keeps the unrefined batch; slot markers then decide
	// the claim's fate at the gate.
	p.stageStarted(runID, model.StateRefining)
	start = time.Now()
	if refined, err := p.Refiner.Refine(ctx, claims, sub.Locale); err != nil {
		p.logWarn("refine_failed", runID, err)
	} else {
		claims = refined
	}
	track(model.StateRefining, start)
	p.stageCompleted(runID, model.StateRefining)

	art := &enrichment{
		evidence:     make([][]model.EvidenceHypothesis, len(claims)),
		perspectives: make([]*model.PerspectiveSet, len(claims)),
		scores:       make([]*model.QualityScore, len(claims)),
		failures:     make([][]string, len(claims)),
	}

	// Enrich concurrently, bounded fan-out. A claim whose enrichment
	// fails keeps running; the gate turns the gap into a reason.
	p.stageStarted(runID, model.StateEnriching)
	start = time.Now()
	p.enrich(ctx, claims, art)
	track(model.StateEnriching, start)
	p.stageCompleted(runID, model.StateEnriching)

	p.stageStarted(runID, model.StateRating)
	start = time.Now()
	p.rate(ctx, claims, art)
	track(model.StateRating, start)
	p.stageCompleted(runID, model.StateRating)

	// Gate and assemble.
	p.stageStarted(runID, model.StateGating)
	start = time.Now()
	result := p.assemble(ctx, runID, claims, art)
	track(model.StateGating, start)
	p.stageCompleted(runID, model.StateGating)

	result.RunID = runID
	result.Stats.ExtractedClaims = extracted
	result.Stats.Clusters = clusters
	result.Stats.Timings = timings
	if p.Health != nil {
		result.Stats.ProviderHealth = p.Health.Snapshot()
	}
	return result, nil
}

// enrich fans out evidence and perspective generation per claim. Every
// goroutine returns nil: failures land in the claim's failure slot so one
// bad claim never cancels its siblings.
func (p *Pipeline) enrich(ctx context.Context, claims []model.CandidateClaim, art *enrichment) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())

	for i, claim := range claims {
		i, claim := i, claim
		g.Go(func() error {
			evidence, err := p.Evidence.Propose(ctx, claim)
			if err != nil {
				art.failures[i] = append(art.failures[i], fmt.Sprintf("evidence: %v", err))
			} else {
				art.evidence[i] = evidence
			}

			perspectives, err := p.Perspectives.Write(ctx, claim)
			if err != nil {
				art.failures[i] = append(art.failures[i], fmt.Sprintf("perspectives: %v", err))
			} else {
				art.perspectives[i] = perspectives
			}
			return nil
		})
	}
	_ = g.Wait()
}

// rate scores each claim against its artifacts, same isolation rules as
// enrich.
func (p *Pipeline) rate(ctx context.Context, claims []model.CandidateClaim, art *enrichment) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())

	for i, claim := range claims {
		i, claim := i, claim
		g.Go(func() error {
			score, err := p.Rater.Rate(ctx, claim, art.evidence[i], art.perspectives[i])
			if err != nil {
				art.failures[i] = append(art.failures[i], fmt.Sprintf("rate: %v", err))
				return nil
			}
			art.scores[i] = score
			return nil
		})
	}
	_ = g.Wait()
}

// assemble gates every claim, splits accepted from partial, and persists
// accepted claims when a store is configured.
func (p *Pipeline) assemble(ctx context.Context, runID string, claims []model.CandidateClaim, art *enrichment) *model.RunResult {
	result := &model.RunResult{State: model.StateDone}

	for i, claim := range claims {
		gates := gate.Validate(claim, art.evidence[i], art.perspectives[i], art.scores[i])

		if gates.Accepted() {
			accepted := model.AcceptedClaim{
				Claim:        claim,
				Evidence:     art.evidence[i],
				Perspectives: art.perspectives[i],
				Score:        art.scores[i],
				Gate:         gates,
			}
			result.Accepted = append(result.Accepted, accepted)
			p.persist(ctx, runID, accepted)
			p.emit(runID, model.EventClaimAccepted, model.StateGating, claim.CanonicalID)
			continue
		}

		reasons := gates.FailingGates()
		reasons = append(reasons, art.failures[i]...)
		result.Partial = append(result.Partial, model.PartialClaim{
			Claim:        claim,
			Evidence:     art.evidence[i],
			Perspectives: art.perspectives[i],
			Score:        art.scores[i],
			Gate:         gates,
			Reasons:      reasons,
		})
		p.emit(runID, model.EventClaimNeedsInfo, model.StateGating, claim.CanonicalID)
	}

	if len(result.Partial) > 0 {
		result.State = model.StatePartial
	}
	result.Stats.Accepted = len(result.Accepted)
	result.Stats.NeedsInfo = len(result.Partial)
	return result
}

// persist writes one accepted claim and its artifacts. Storage failures are
// logged, not fatal: the caller still receives the full result.
func (p *Pipeline) persist(ctx context.Context, runID string, accepted model.AcceptedClaim) {
	if p.Store == nil {
		return
	}
	if err := p.Store.UpsertClaim(ctx, accepted.Claim); err != nil {
		p.logWarn("store_claim_failed", runID, err)
		return
	}
	if err := p.Store.AppendEvidence(ctx, accepted.Evidence); err != nil {
		p.logWarn("store_evidence_failed", runID, err)
	}
	if accepted.Perspectives != nil {
		if err := p.Store.AppendPerspectives(ctx, *accepted.Perspectives); err != nil {
			p.logWarn("store_perspectives_failed", runID, err)
		}
	}
	if accepted.Score != nil {
		if err := p.Store.AppendScore(ctx, *accepted.Score); err != nil {
			p.logWarn("store_score_failed", runID, err)
		}
	}
}

// extractError maps an extraction failure to the structured run error.
func (p *Pipeline) extractError(err error) error {
	code := model.CodeStageFailed
	switch {
	case errors.Is(err, router.ErrNoProviderAvailable):
		code = model.CodeNoProvider
	case errors.Is(err, llm.ErrTimeout):
		code = model.CodeUpstreamTimeout
	}
	return &model.PipelineError{Code: code, Stage: model.StateExtracting, Err: err}
}

func (p *Pipeline) workers() int {
	if p.Config.EnrichWorkers > 0 {
		return p.Config.EnrichWorkers
	}
	return 1
}

func (p *Pipeline) logWarn(msg, runID string, err error) {
	if p.Logger == nil {
		return
	}
	p.Logger.Warn(msg, slog.String("run_id", runID), slog.String("error", err.Error()))
}

// fingerprint assigns canonical ids and drops exact duplicates, keeping the
// first occurrence.
func fingerprint(claims []model.CandidateClaim) []model.CandidateClaim {
	seen := make(map[string]bool, len(claims))
	out := claims[:0]
	for _, c := range claims {
		c.CanonicalID = canonical.IDFor(c.Text)
		if seen[c.CanonicalID] {
			continue
		}
		seen[c.CanonicalID] = true
		out = append(out, c)
	}
	return out
}

// dedupe clusters near-duplicates and keeps one representative per cluster.
func dedupe(claims []model.CandidateClaim, threshold float64) ([]model.CandidateClaim, int, error) {
	items := make([]cluster.Item, len(claims))
	for i, c := range claims {
		items[i] = cluster.Item{Original: c.Text, Normalized: canonical.Normalize(c.Text)}
	}

	clusters, err := cluster.Group(items, threshold)
	if err != nil {
		return nil, 0, err
	}

	kept := make([]model.CandidateClaim, 0, len(clusters))
	for _, c := range clusters {
		kept = append(kept, claims[c.Representative])
	}
	return kept, len(clusters), nil
}
