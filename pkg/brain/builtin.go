package brain

import (
	"context"
	"math/rand"

	"github.com/picogrid/tank-arena/pkg/arena"
)

// fleeDistance is how close an enemy may get before the coward runs
const fleeDistance = 100

// Chaser turns toward the nearest enemy and advances firing once aimed
func Chaser() arena.Brain {
	return Func(func(_ context.Context, snap arena.Snapshot) (*arena.Action, error) {
		target, _, ok := closest(snap)
		if !ok {
			return &arena.Action{Move: arena.MoveForward}, nil
		}

		diff := angleDiff(snap.Self.Angle, target.X-snap.Self.X, target.Y-snap.Self.Y)
		if abs(diff) > aimTolerance {
			return &arena.Action{Rotate: turn(diff)}, nil
		}
		return &arena.Action{Move: arena.MoveForward, Shoot: true}, nil
	})
}

// Coward runs from any enemy inside fleeDistance and wanders otherwise
func Coward() arena.Brain {
	return Func(func(_ context.Context, snap arena.Snapshot) (*arena.Action, error) {
		if target, dist, ok := closest(snap); ok && dist < fleeDistance {
			diff := angleDiff(snap.Self.Angle, snap.Self.X-target.X, snap.Self.Y-target.Y)
			if abs(diff) > aimTolerance {
				return &arena.Action{Rotate: turn(diff)}, nil
			}
			return &arena.Action{Move: arena.MoveForward}, nil
		}
		return &arena.Action{Move: arena.MoveForward, Rotate: float64(rand.Intn(3) - 1)}, nil
	})
}

// Aggressive fires every tick while turning toward the nearest enemy
func Aggressive() arena.Brain {
	return Func(func(_ context.Context, snap arena.Snapshot) (*arena.Action, error) {
		action := &arena.Action{Shoot: true}
		if target, _, ok := closest(snap); ok {
			diff := angleDiff(snap.Self.Angle, target.X-snap.Self.X, target.Y-snap.Self.Y)
			if abs(diff) > aimTolerance {
				action.Rotate = turn(diff)
			} else {
				action.Move = arena.MoveForward
			}
		}
		return action, nil
	})
}

// Sitter never acts. Useful as a target.
func Sitter() arena.Brain {
	return Func(func(context.Context, arena.Snapshot) (*arena.Action, error) {
		return nil, nil
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func init() {
	DefaultRegistry.MustRegister("chaser", "Turns toward the nearest enemy and charges, firing once aimed", Chaser)
	DefaultRegistry.MustRegister("coward", "Runs from enemies closer than 100 units, wanders otherwise", Coward)
	DefaultRegistry.MustRegister("aggressive", "Fires every tick while turning toward the nearest enemy", Aggressive)
	DefaultRegistry.MustRegister("sitter", "Does nothing", Sitter)
}
