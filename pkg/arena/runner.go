package arena

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/picogrid/tank-arena/pkg/logger"
)

// Runner drives a match at a fixed tick rate
type Runner struct {
	match    *Match
	interval time.Duration
	log      logger.Logger

	mu       sync.Mutex
	onTick   []func(Status)
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRunner creates a runner ticking tickRate times per second
func NewRunner(m *Match, tickRate int) *Runner {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &Runner{
		match:    m,
		interval: time.Second / time.Duration(tickRate),
		log:      logger.WithPrefix("runner"),
		stopChan: make(chan struct{}),
	}
}

// OnTick registers a callback invoked with the status after every tick in
// which the match was running
func (r *Runner) OnTick(fn func(Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = append(r.onTick, fn)
}

// Run ticks until the context is cancelled or Stop is called
func (r *Runner) Run(ctx context.Context) error {
	return r.loop(ctx, false)
}

// RunMatch ticks until the match finishes, the context is cancelled or
// Stop is called
func (r *Runner) RunMatch(ctx context.Context) error {
	return r.loop(ctx, true)
}

// Stop ends a running loop
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

func (r *Runner) loop(ctx context.Context, untilFinished bool) error {
	r.log.Debugf("tick loop started, interval %s", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Debug("tick loop cancelled")
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-r.stopChan:
			r.log.Debug("tick loop stopped")
			return nil

		case <-ticker.C:
			if !r.match.Running() {
				if untilFinished && r.match.State() == StateFinished {
					return nil
				}
				continue
			}

			r.match.Tick(ctx)
			r.notify()
		}
	}
}

func (r *Runner) notify() {
	r.mu.Lock()
	callbacks := make([]func(Status), len(r.onTick))
	copy(callbacks, r.onTick)
	r.mu.Unlock()
	if len(callbacks) == 0 {
		return
	}

	status := r.match.Status()
	for _, fn := range callbacks {
		fn(status)
	}
}
