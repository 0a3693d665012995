// Package stage implements the prompt-stage executors. Each executor wraps
// one LLM round-trip behind a fixed contract: build the prompt, route the
// call, validate the raw output against the canonical schema, and surface
// anything malformed as an ExecutorError instead of coercing it.
package stage

import "fmt"

// Stage names one executor for errors, caching and logging.
type Stage string

const (
	StageExtract      Stage = "extract"
	StageRefine       Stage = "refine"
	StageEvidence     Stage = "evidence"
	StagePerspectives Stage = "perspectives"
	StageRate         Stage = "rate"
)

// ExecutorError reports that provider output failed schema validation. Raw
// carries the offending payload (truncated) for diagnostics; it is never
// propagated into pipeline state.
type ExecutorError struct {
	Stage Stage
	Raw   string
	Err   error
}

const maxRawInError = 500

func (e *ExecutorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stage %s: invalid output: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %s: invalid output", e.Stage)
}

func (e *ExecutorError) Unwrap() error { return e.Err }

func newExecutorError(stage Stage, raw string, err error) *ExecutorError {
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError]
	}
	return &ExecutorError{Stage: stage, Raw: raw, Err: err}
}
