// Package brain provides the decision providers that drive tanks: built-in
// Go strategies and JavaScript scripts run in an embedded VM.
package brain

import (
	"context"
	"math"

	"github.com/picogrid/tank-arena/pkg/arena"
)

// Func adapts an ordinary function to arena.Brain
type Func func(ctx context.Context, snap arena.Snapshot) (*arena.Action, error)

// Think implements arena.Brain
func (f Func) Think(ctx context.Context, snap arena.Snapshot) (*arena.Action, error) {
	return f(ctx, snap)
}

// aimTolerance is how far off target, in degrees, a strategy still counts as
// aimed
const aimTolerance = 5

// closest returns the nearest other tank and its distance
func closest(snap arena.Snapshot) (arena.TankView, float64, bool) {
	var best arena.TankView
	bestDist := math.Inf(1)
	for _, o := range snap.Others {
		d := math.Hypot(o.X-snap.Self.X, o.Y-snap.Self.Y)
		if d < bestDist {
			best, bestDist = o, d
		}
	}
	return best, bestDist, len(snap.Others) > 0
}

// angleDiff is the signed turn from heading to the direction (dx, dy),
// in (-180, 180]
func angleDiff(heading, dx, dy float64) float64 {
	target := math.Atan2(dy, dx) * 180 / math.Pi
	diff := math.Mod(target-heading, 360)
	if diff < 0 {
		diff += 360
	}
	if diff > 180 {
		diff -= 360
	}
	return diff
}

func turn(diff float64) float64 {
	if diff > 0 {
		return 1
	}
	return -1
}
