package arena

import "fmt"

// State is a position in the round lifecycle
type State int

const (
	StateIdle State = iota
	StateRunning
	StateRoundEnd
	StateFinished
)

var stateNames = map[State]string{
	StateIdle:     "idle",
	StateRunning:  "running",
	StateRoundEnd: "round_end",
	StateFinished: "finished",
}

// allowed lists the legal successors of each state. Reset to idle is always
// legal and handled separately.
var allowed = map[State][]State{
	StateIdle:     {StateRunning},
	StateRunning:  {StateRunning, StateRoundEnd},
	StateRoundEnd: {StateRunning, StateFinished},
	StateFinished: {StateRunning},
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CanTransition reports whether moving from s to next is legal
func (s State) CanTransition(next State) bool {
	if next == StateIdle {
		return true
	}
	for _, candidate := range allowed[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// transition moves the match to next. Callers hold the write lock.
func (m *Match) transition(next State) error {
	if !m.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, next)
	}
	m.log.Debugf("state %s -> %s", m.state, next)
	m.state = next
	return nil
}
