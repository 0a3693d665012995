// Package router chooses a provider and model for each pipeline task from
// the configured allow-list, the static task→tier mapping, and the current
// health scores.
package router

import (
	"errors"
	"sort"

	"github.com/civicmesh/claimforge/internal/health"
	"github.com/civicmesh/claimforge/internal/model"
)

// Task is one routable pipeline operation.
type Task string

const (
	TaskAtomize      Task = "atomize"
	TaskRefine       Task = "refine"
	TaskEvidence     Task = "evidence"
	TaskPerspectives Task = "perspectives"
	TaskRate         Task = "rate"
	TaskBulk         Task = "bulk"
)

// Tier selects the model class for a task. The mapping is static
// configuration, independent of health: cheap high-volume tasks run on the
// fast model, prose-quality tasks on the strong one.
type Tier int

const (
	TierFast Tier = iota
	TierStrong
)

var taskTiers = map[Task]Tier{
	TaskAtomize:      TierFast,
	TaskRefine:       TierFast,
	TaskEvidence:     TierFast,
	TaskBulk:         TierFast,
	TaskPerspectives: TierStrong,
	TaskRate:         TierStrong,
}

// ErrNoProviderAvailable means no allow-listed provider declares the
// required capability. Retryable later, not fatal immediately - except
// during extraction, where the orchestrator treats it as run-fatal.
var ErrNoProviderAvailable = errors.New("router: no provider available")

// Choice is one routing decision.
type Choice struct {
	Provider string
	Model    string
}

// Router filters the allow-list by capability and ranks eligible providers
// by health score.
type Router struct {
	providers []model.ProviderConfig
	registry  *health.Registry
}

// New creates a router over the given allow-list. The registry is injected
// so concurrent runs share one view of provider health.
func New(providers []model.ProviderConfig, registry *health.Registry) *Router {
	return &Router{providers: providers, registry: registry}
}

// Choose returns the best eligible (provider, model) for the task, skipping
// any provider named in exclude. Ranking: health score descending, then
// fixed priority order, then name for full determinism.
func (r *Router) Choose(task Task, exclude ...string) (Choice, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	type candidate struct {
		cfg   model.ProviderConfig
		score float64
	}
	var candidates []candidate

	for _, p := range r.providers {
		if !p.Enabled || excluded[p.Name] {
			continue
		}
		if !hasCapability(p, task) {
			continue
		}
		if modelForTier(p, taskTiers[task]) == "" {
			continue
		}
		candidates = append(candidates, candidate{cfg: p, score: r.registry.Score(p.Name)})
	}

	if len(candidates) == 0 {
		return Choice{}, ErrNoProviderAvailable
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].cfg.Priority != candidates[j].cfg.Priority {
			return candidates[i].cfg.Priority < candidates[j].cfg.Priority
		}
		return candidates[i].cfg.Name < candidates[j].cfg.Name
	})

	best := candidates[0].cfg
	return Choice{Provider: best.Name, Model: modelForTier(best, taskTiers[task])}, nil
}

func hasCapability(p model.ProviderConfig, task Task) bool {
	for _, c := range p.Capabilities {
		if Task(c) == task {
			return true
		}
	}
	return false
}

func modelForTier(p model.ProviderConfig, tier Tier) string {
	if tier == TierStrong && p.StrongModel != "" {
		return p.StrongModel
	}
	return p.FastModel
}
