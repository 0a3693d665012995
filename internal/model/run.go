package model

import (
	"fmt"
	"time"
)

// RunState is the orchestrator's per-run state machine position.
type RunState string

const (
	StateExtracting RunState = "extracting"
	StateClustering RunState = "clustering"
	StateRefining   RunState = "refining"
	StateEnriching  RunState = "enriching"
	StateRating     RunState = "rating"
	StateGating     RunState = "gating"
	StateDone       RunState = "done"
	StatePartial    RunState = "partial_done"
)

// EventType identifies a lifecycle event a transport may relay incrementally.
type EventType string

const (
	EventStageStarted   EventType = "stage-started"
	EventStageCompleted EventType = "stage-completed"
	EventClaimAccepted  EventType = "claim-accepted"
	EventClaimNeedsInfo EventType = "claim-needs-info"
)

// Event is one ordered lifecycle notification for a run.
type Event struct {
	Type        EventType `json:"type"`
	RunID       string    `json:"run_id"`
	Stage       RunState  `json:"stage,omitempty"`
	CanonicalID string    `json:"canonical_id,omitempty"`
	At          time.Time `json:"at"`
}

// AcceptedClaim is a fully gated claim together with its artifacts.
type AcceptedClaim struct {
	Claim        CandidateClaim       `json:"claim"`
	Evidence     []EvidenceHypothesis `json:"evidence"`
	Perspectives *PerspectiveSet      `json:"perspectives"`
	Score        *QualityScore        `json:"score"`
	Gate         QualityGateResult    `json:"gate"`
}

// PartialClaim is a claim that did not pass gating. It is returned to the
// caller with per-claim reasons, never silently dropped.
type PartialClaim struct {
	Claim        CandidateClaim       `json:"claim"`
	Evidence     []EvidenceHypothesis `json:"evidence,omitempty"`
	Perspectives *PerspectiveSet      `json:"perspectives,omitempty"`
	Score        *QualityScore        `json:"score,omitempty"`
	Gate         QualityGateResult    `json:"gate"`
	Reasons      []string             `json:"reasons"`
}

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage      RunState      `json:"stage"`
	Duration   time.Duration `json:"duration"`
	DurationMs int64         `json:"duration_ms"`
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	ExtractedClaims int            `json:"extracted_claims"`
	Clusters        int            `json:"clusters"`
	Accepted        int            `json:"accepted"`
	NeedsInfo       int            `json:"needs_info"`
	Timings         []StageTiming  `json:"timings,omitempty"`
	ProviderHealth  HealthSnapshot `json:"provider_health,omitempty"`
}

// RunResult is the complete outcome of one pipeline run.
type RunResult struct {
	RunID    string          `json:"run_id"`
	State    RunState        `json:"state"`
	Accepted []AcceptedClaim `json:"accepted"`
	Partial  []PartialClaim  `json:"partial"`
	Stats    RunStats        `json:"stats"`
}

// Machine-readable error codes the transport layer maps onward.
const (
	CodeNoProvider      = "no_provider_available"
	CodeUpstreamTimeout = "upstream_timeout"
	CodeBadInput        = "bad_input"
	CodeStageFailed     = "stage_failed"
)

// PipelineError is the single structured error returned for a fully failed
// run.
type PipelineError struct {
	Code  string   `json:"code"`
	Stage RunState `json:"stage,omitempty"`
	Err   error    `json:"-"`
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipeline %s (%s): %v", e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("pipeline %s (%s)", e.Stage, e.Code)
}

func (e *PipelineError) Unwrap() error { return e.Err }
