package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/brain"
)

func TestDeployRoster(t *testing.T) {
	m := arena.NewMatch(arena.DefaultRules(), arena.WithCompiler(brain.Compile), arena.WithSeed(1))

	if err := deployRoster(m, []string{"Rex=chaser", "sitter"}); err != nil {
		t.Fatalf("deployRoster: %v", err)
	}
	names := m.TankNames()
	if len(names) != 2 || names[0] != "Rex" || names[1] != "Alpha" {
		t.Errorf("names = %v, want [Rex Alpha]", names)
	}

	if err := deployRoster(m, []string{"Bad=nonexistent"}); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestRunFastFinishesMatch(t *testing.T) {
	clock := newSimClock(time.Unix(1000, 0))
	m := arena.NewMatch(arena.DefaultRules(),
		arena.WithCompiler(brain.Compile),
		arena.WithClock(clock.Now),
		arena.WithSeed(7),
		arena.WithSettings(arena.Settings{MaxRounds: 2, RoundTime: 2 * time.Second, ThinkTimeout: 100 * time.Millisecond}),
	)
	if err := deployRoster(m, []string{"A=sitter", "B=sitter"}); err != nil {
		t.Fatalf("deployRoster: %v", err)
	}
	if err := m.Start(arena.StartOptions{}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := runFast(ctx, m, clock, 100*time.Millisecond); err != nil {
		t.Fatalf("runFast: %v", err)
	}

	if m.State() != arena.StateFinished {
		t.Errorf("state = %v, want finished", m.State())
	}
	if got := clock.Now().Sub(time.Unix(1000, 0)); got < 4*time.Second {
		t.Errorf("simulated time = %v, want at least two rounds", got)
	}
}

func TestChangedOverrides(t *testing.T) {
	cmd := battleCmd
	if err := cmd.Flags().Set("max-rounds", "4"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("round-time", "45s"); err != nil {
		t.Fatal(err)
	}

	got := changedOverrides(cmd, matchFlagKeys)
	if got["max_rounds"] != 4 {
		t.Errorf("max_rounds = %v, want 4", got["max_rounds"])
	}
	if got["round_time"] != 45*time.Second {
		t.Errorf("round_time = %v, want 45s", got["round_time"])
	}
	if _, ok := got["think_timeout"]; ok {
		t.Error("unchanged flag think_timeout should not be overridden")
	}
}
