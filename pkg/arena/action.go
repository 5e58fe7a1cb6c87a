package arena

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Movement commands
const (
	MoveNone     = ""
	MoveForward  = "forward"
	MoveBackward = "backward"
)

// Action is what a brain asks its tank to do this tick. The zero value is a
// no-op.
type Action struct {
	Move   string  `json:"move,omitempty"`
	Rotate float64 `json:"rotate,omitempty"` // only the sign is used
	Shoot  bool    `json:"shoot,omitempty"`
	Taunt  string  `json:"taunt,omitempty"`
}

// IsZero reports whether the action does nothing
func (a Action) IsZero() bool {
	return a.Move == MoveNone && a.Rotate == 0 && !a.Shoot && a.Taunt == ""
}

// Brain produces an action from a snapshot. A nil action means "do nothing".
// Implementations must not retain the snapshot and should honour ctx.
type Brain interface {
	Think(ctx context.Context, snap Snapshot) (*Action, error)
}

// Compiler turns user-supplied source into a Brain
type Compiler func(name, source string) (Brain, error)

// ParseAction converts a loosely typed action mapping. Unknown keys and
// values of the wrong kind are ignored.
func ParseAction(raw map[string]interface{}) *Action {
	if len(raw) == 0 {
		return nil
	}

	var a Action
	if v, ok := raw["move"].(string); ok {
		switch strings.ToLower(v) {
		case MoveForward:
			a.Move = MoveForward
		case MoveBackward:
			a.Move = MoveBackward
		}
	}
	if v, ok := toFloat(raw["rotate"]); ok && !math.IsNaN(v) {
		a.Rotate = v
	}
	switch v := raw["shoot"].(type) {
	case bool:
		a.Shoot = v
	default:
		if f, ok := toFloat(v); ok {
			a.Shoot = f != 0
		}
	}
	switch v := raw["taunt"].(type) {
	case nil:
	case string:
		a.Taunt = v
	default:
		a.Taunt = fmt.Sprint(v)
	}

	if a.IsZero() {
		return nil
	}
	return &a
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
