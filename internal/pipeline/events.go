package pipeline

import (
	"time"

	"github.com/civicmesh/claimforge/internal/model"
)

// EventSink receives ordered lifecycle events for a run. The pipeline calls
// it inline, so implementations must not block.
type EventSink func(model.Event)

func (p *Pipeline) emit(runID string, typ model.EventType, stage model.RunState, canonicalID string) {
	if p.Events == nil {
		return
	}
	p.Events(model.Event{
		Type:        typ,
		RunID:       runID,
		Stage:       stage,
		CanonicalID: canonicalID,
		At:          time.Now().UTC(),
	})
}

func (p *Pipeline) stageStarted(runID string, stage model.RunState) {
	p.emit(runID, model.EventStageStarted, stage, "")
}

func (p *Pipeline) stageCompleted(runID string, stage model.RunState) {
	p.emit(runID, model.EventStageCompleted, stage, "")
}
