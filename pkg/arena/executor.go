package arena

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Job is a single brain invocation for the current tick
type Job struct {
	Tank     string
	Brain    Brain
	Snapshot Snapshot

	// busy is held for the duration of the invocation, including any time
	// spent after the tick abandoned it
	busy *atomic.Bool
}

// Outcome is the result of a Job. Exactly one of Action and Err is
// meaningful; a nil Action with a nil Err means the brain chose to idle.
type Outcome struct {
	Tank    string
	Action  *Action
	Err     error
	Elapsed time.Duration
}

// Executor runs brains with a hard wall-clock deadline. Every job of a tick
// runs on its own goroutine under one shared deadline, so the callback phase
// never takes longer than the timeout regardless of how many tanks think.
type Executor struct {
	Timeout time.Duration
}

// NewExecutor creates an executor with the given per-tick deadline
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{Timeout: timeout}
}

type jobResult struct {
	idx int
	out Outcome
}

// Run invokes all jobs and returns their outcomes in job order. Jobs still
// running at the deadline are abandoned and reported as ErrThinkTimeout;
// their late results are discarded.
func (e *Executor) Run(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return outcomes
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	start := time.Now()
	results := make(chan jobResult, len(jobs))
	done := make([]bool, len(jobs))
	pending := 0

	for i, job := range jobs {
		outcomes[i].Tank = job.Tank
		if job.busy != nil && !job.busy.CompareAndSwap(false, true) {
			outcomes[i].Err = ErrThinkBusy
			done[i] = true
			continue
		}
		pending++
		go func(i int, job Job) {
			out := invoke(ctx, job)
			if job.busy != nil {
				job.busy.Store(false)
			}
			results <- jobResult{idx: i, out: out}
		}(i, job)
	}

	for pending > 0 {
		select {
		case r := <-results:
			outcomes[r.idx] = r.out
			done[r.idx] = true
			pending--
		case <-ctx.Done():
			// collect anything that landed in the same instant
			for drained := false; !drained; {
				select {
				case r := <-results:
					outcomes[r.idx] = r.out
					done[r.idx] = true
				default:
					drained = true
				}
			}
			elapsed := time.Since(start)
			for i := range outcomes {
				if !done[i] {
					outcomes[i].Err = ErrThinkTimeout
					outcomes[i].Elapsed = elapsed
				}
			}
			return outcomes
		}
	}
	return outcomes
}

// invoke calls the brain, converting panics and late returns into errors
func invoke(ctx context.Context, job Job) (out Outcome) {
	out.Tank = job.Tank
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Action = nil
			out.Err = fmt.Errorf("%w: panic: %v", ErrThinkRuntime, r)
		}
		out.Elapsed = time.Since(start)
	}()

	action, err := job.Brain.Think(ctx, job.Snapshot)
	if ctx.Err() != nil {
		out.Err = ErrThinkTimeout
		return out
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrThinkTimeout) {
			out.Err = ErrThinkTimeout
			return out
		}
		out.Err = fmt.Errorf("%w: %v", ErrThinkRuntime, err)
		return out
	}
	out.Action = action
	return out
}
