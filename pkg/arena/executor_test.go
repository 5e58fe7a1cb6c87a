package arena

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutorTimeoutIsolated(t *testing.T) {
	exec := NewExecutor(20 * time.Millisecond)
	slow := brainFunc(func(ctx context.Context, snap Snapshot) (*Action, error) {
		time.Sleep(300 * time.Millisecond)
		return &Action{Move: MoveForward}, nil
	})
	fast := brainFunc(func(ctx context.Context, snap Snapshot) (*Action, error) {
		return &Action{Shoot: true}, nil
	})

	start := time.Now()
	outcomes := exec.Run(context.Background(), []Job{
		{Tank: "Slow", Brain: slow},
		{Tank: "Fast", Brain: fast},
	})
	elapsed := time.Since(start)

	if elapsed > 200*time.Millisecond {
		t.Errorf("Expected run bounded by the deadline, took %s", elapsed)
	}
	if !errors.Is(outcomes[0].Err, ErrThinkTimeout) {
		t.Errorf("Expected slow brain to time out, got %v", outcomes[0].Err)
	}
	if outcomes[0].Action != nil {
		t.Error("Expected no action from a timed out brain")
	}
	if outcomes[1].Err != nil || outcomes[1].Action == nil || !outcomes[1].Action.Shoot {
		t.Errorf("Expected fast brain action, got %+v", outcomes[1])
	}
}

func TestExecutorSharedDeadline(t *testing.T) {
	exec := NewExecutor(30 * time.Millisecond)
	slow := brainFunc(func(ctx context.Context, snap Snapshot) (*Action, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = Job{Tank: "T", Brain: slow}
	}

	start := time.Now()
	outcomes := exec.Run(context.Background(), jobs)
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("Expected ten slow brains to share one deadline, took %s", elapsed)
	}
	for i, out := range outcomes {
		if !errors.Is(out.Err, ErrThinkTimeout) {
			t.Errorf("Job %d: expected timeout, got %v", i, out.Err)
		}
	}
}

func TestExecutorRecoversPanics(t *testing.T) {
	exec := NewExecutor(100 * time.Millisecond)
	outcomes := exec.Run(context.Background(), []Job{
		{Tank: "Boom", Brain: brainFunc(func(ctx context.Context, snap Snapshot) (*Action, error) {
			panic("kaboom")
		})},
		{Tank: "Err", Brain: brainFunc(func(ctx context.Context, snap Snapshot) (*Action, error) {
			return nil, errors.New("bad brain")
		})},
		{Tank: "Idle", Brain: brainFunc(func(ctx context.Context, snap Snapshot) (*Action, error) {
			return nil, nil
		})},
	})

	if !errors.Is(outcomes[0].Err, ErrThinkRuntime) || !strings.Contains(outcomes[0].Err.Error(), "kaboom") {
		t.Errorf("Expected recovered panic, got %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, ErrThinkRuntime) || !strings.Contains(outcomes[1].Err.Error(), "bad brain") {
		t.Errorf("Expected wrapped runtime error, got %v", outcomes[1].Err)
	}
	if outcomes[2].Err != nil || outcomes[2].Action != nil {
		t.Errorf("Expected idle outcome, got %+v", outcomes[2])
	}
}

func TestExecutorSkipsBusyBrain(t *testing.T) {
	exec := NewExecutor(10 * time.Millisecond)
	release := make(chan struct{})
	var calls atomic.Int32
	blocking := brainFunc(func(ctx context.Context, snap Snapshot) (*Action, error) {
		calls.Add(1)
		<-release
		return nil, nil
	})

	var busy atomic.Bool
	job := Job{Tank: "Stuck", Brain: blocking, busy: &busy}

	first := exec.Run(context.Background(), []Job{job})
	if !errors.Is(first[0].Err, ErrThinkTimeout) {
		t.Fatalf("Expected timeout, got %v", first[0].Err)
	}

	second := exec.Run(context.Background(), []Job{job})
	if !errors.Is(second[0].Err, ErrThinkBusy) {
		t.Errorf("Expected busy skip, got %v", second[0].Err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single invocation while busy, got %d", calls.Load())
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for busy.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if busy.Load() {
		t.Fatal("Expected busy flag released after the abandoned call returned")
	}

	third := exec.Run(context.Background(), []Job{job})
	if third[0].Err != nil {
		t.Errorf("Expected brain to run again, got %v", third[0].Err)
	}
}

func TestExecutorNoJobs(t *testing.T) {
	if got := NewExecutor(time.Millisecond).Run(context.Background(), nil); len(got) != 0 {
		t.Errorf("Expected no outcomes, got %d", len(got))
	}
}
