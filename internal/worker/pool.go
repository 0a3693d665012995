// Package worker runs the pipeline over many submissions with a fixed
// worker count. One bad submission never stops the batch; its error lands
// in the result slot.
package worker

import (
	"context"
	"sync"

	"github.com/civicmesh/claimforge/internal/model"
)

// Runner is the pipeline surface the pool needs.
type Runner interface {
	Run(ctx context.Context, sub model.RawSubmission) (*model.RunResult, error)
}

// Result pairs one submission with its run outcome.
type Result struct {
	Submission model.RawSubmission
	Run        *model.RunResult
	Err        error
}

// Pool processes submissions concurrently through one shared runner.
type Pool struct {
	runner  Runner
	workers int
}

// NewPool creates a pool with the given worker count.
func NewPool(runner Runner, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{runner: runner, workers: workers}
}

// Process runs every submission and returns results in input order.
func (p *Pool) Process(ctx context.Context, subs []model.RawSubmission) []Result {
	if len(subs) == 0 {
		return []Result{}
	}

	type job struct {
		index int
		sub   model.RawSubmission
	}

	jobs := make(chan job)
	results := make([]Result, len(subs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				run, err := p.runner.Run(ctx, j.sub)
				results[j.index] = Result{Submission: j.sub, Run: run, Err: err}
			}
		}()
	}

	for i, sub := range subs {
		select {
		case <-ctx.Done():
			// Mark everything not yet queued as cancelled.
			for j := i; j < len(subs); j++ {
				results[j] = Result{Submission: subs[j], Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return results
		case jobs <- job{index: i, sub: sub}:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
