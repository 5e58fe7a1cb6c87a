package brain

import (
	"context"
	"testing"

	"github.com/picogrid/tank-arena/pkg/arena"
)

func snapshot(self arena.SelfState, others ...arena.TankView) arena.Snapshot {
	return arena.Snapshot{
		Self:        self,
		Others:      others,
		Bullets:     []arena.Bullet{},
		Obstacles:   []arena.Obstacle{},
		ArenaWidth:  800,
		ArenaHeight: 600,
	}
}

func me(x, y, angle float64) arena.SelfState {
	return arena.SelfState{X: x, Y: y, Angle: angle, Health: 100, Alive: true}
}

func think(t *testing.T, b arena.Brain, snap arena.Snapshot) *arena.Action {
	t.Helper()
	action, err := b.Think(context.Background(), snap)
	if err != nil {
		t.Fatalf("Think failed: %v", err)
	}
	return action
}

func TestChaser(t *testing.T) {
	tests := []struct {
		name   string
		target arena.TankView
		want   arena.Action
	}{
		{"aimed", arena.TankView{X: 200, Y: 100, Name: "B"}, arena.Action{Move: arena.MoveForward, Shoot: true}},
		{"target below", arena.TankView{X: 100, Y: 200, Name: "B"}, arena.Action{Rotate: 1}},
		{"target above", arena.TankView{X: 100, Y: 0, Name: "B"}, arena.Action{Rotate: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := think(t, Chaser(), snapshot(me(100, 100, 0), tt.target))
			if got == nil || *got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}

	got := think(t, Chaser(), snapshot(me(100, 100, 0)))
	if got == nil || got.Move != arena.MoveForward {
		t.Errorf("Expected forward with no enemies, got %+v", got)
	}
}

func TestChaserPicksClosest(t *testing.T) {
	far := arena.TankView{X: 100, Y: 500, Name: "Far"}
	near := arena.TankView{X: 150, Y: 100, Name: "Near"}

	got := think(t, Chaser(), snapshot(me(100, 100, 0), far, near))
	if got == nil || !got.Shoot {
		t.Errorf("Expected to fire at the near tank straight ahead, got %+v", got)
	}
}

func TestCoward(t *testing.T) {
	got := think(t, Coward(), snapshot(me(100, 100, 0), arena.TankView{X: 150, Y: 100}))
	if got == nil || got.Rotate == 0 || got.Move != arena.MoveNone {
		t.Errorf("Expected to turn away from a close enemy ahead, got %+v", got)
	}

	got = think(t, Coward(), snapshot(me(100, 100, 0), arena.TankView{X: 50, Y: 100}))
	if got == nil || got.Move != arena.MoveForward || got.Rotate != 0 {
		t.Errorf("Expected to flee forward from an enemy behind, got %+v", got)
	}

	got = think(t, Coward(), snapshot(me(100, 100, 0), arena.TankView{X: 700, Y: 500}))
	if got == nil || got.Move != arena.MoveForward {
		t.Errorf("Expected to wander when safe, got %+v", got)
	}
}

func TestAggressiveAlwaysShoots(t *testing.T) {
	for _, snap := range []arena.Snapshot{
		snapshot(me(100, 100, 0)),
		snapshot(me(100, 100, 0), arena.TankView{X: 100, Y: 300}),
		snapshot(me(100, 100, 0), arena.TankView{X: 300, Y: 100}),
	} {
		if got := think(t, Aggressive(), snap); got == nil || !got.Shoot {
			t.Errorf("Expected shoot, got %+v", got)
		}
	}
}

func TestSitter(t *testing.T) {
	if got := think(t, Sitter(), snapshot(me(100, 100, 0))); got != nil {
		t.Errorf("Expected no action, got %+v", *got)
	}
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		heading, dx, dy, want float64
	}{
		{0, 1, 0, 0},
		{0, 0, 1, 90},
		{0, 0, -1, -90},
		{350, 1, 0, 10},
		{10, 1, 0, -10},
		{0, -1, 0, 180},
	}

	for _, tt := range tests {
		if got := angleDiff(tt.heading, tt.dx, tt.dy); abs(got-tt.want) > 1e-9 {
			t.Errorf("angleDiff(%v, %v, %v) = %v, want %v", tt.heading, tt.dx, tt.dy, got, tt.want)
		}
	}
}
