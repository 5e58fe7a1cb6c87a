package arena

import (
	"encoding/json"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Debug event types recorded on a tank
const (
	EventMove      = "move"
	EventRotate    = "rotate"
	EventShoot     = "shoot"
	EventDamage    = "damage"
	EventDestroyed = "destroyed"
)

// DebugEvent is one entry of a tank's debug log. It encodes flat, with the
// timestamp as fractional unix seconds under "ts".
type DebugEvent struct {
	Time  time.Time
	Event string
	Data  map[string]interface{}
}

// MarshalJSON implements json.Marshaler
func (e DebugEvent) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["ts"] = float64(e.Time.UnixNano()) / float64(time.Second)
	out["event"] = e.Event
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (e *DebugEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = DebugEvent{}
	if ts, ok := raw["ts"].(float64); ok {
		sec, frac := math.Modf(ts)
		e.Time = time.Unix(int64(sec), int64(frac*float64(time.Second)))
	}
	if ev, ok := raw["event"].(string); ok {
		e.Event = ev
	}
	delete(raw, "ts")
	delete(raw, "event")
	if len(raw) > 0 {
		e.Data = raw
	}
	return nil
}

// Tank is a combatant. All mutation happens on the match's tick goroutine
// or under the match lock.
type Tank struct {
	ID     uuid.UUID
	Name   string
	Color  string
	X      float64
	Y      float64
	Angle  float64
	Health int
	Alive  bool
	Score  int
	Kills  int

	brain    Brain
	rules    *Rules
	clock    func() time.Time
	lastShot time.Time
	cooldown time.Duration
	pending  []Bullet
	debug    *Ring[DebugEvent]
	thinking atomic.Bool
}

// NewTank creates a live tank at full health
func NewTank(name, color string, x, y, angle float64, rules *Rules) *Tank {
	return &Tank{
		ID:       uuid.New(),
		Name:     name,
		Color:    color,
		X:        x,
		Y:        y,
		Angle:    normalizeAngle(angle),
		Health:   rules.MaxHealth,
		Alive:    true,
		rules:    rules,
		clock:    time.Now,
		cooldown: rules.ShotCooldown,
		debug:    NewRing[DebugEvent](rules.TankLogLimit),
	}
}

// Brain returns the attached decision provider, nil when the tank has none
func (t *Tank) Brain() Brain { return t.brain }

func (t *Tank) addEvent(event string, data map[string]interface{}) {
	t.debug.Push(DebugEvent{Time: t.clock(), Event: event, Data: data})
}

// Move displaces the tank, clamping each axis to the arena independently
func (t *Tank) Move(dx, dy float64) {
	half := t.rules.HalfSize()
	t.X = clamp(t.X+dx, half, t.rules.Width-half)
	t.Y = clamp(t.Y+dy, half, t.rules.Height-half)
	t.addEvent(EventMove, map[string]interface{}{"new_x": t.X, "new_y": t.Y})
}

// Rotate turns the tank by delta degrees
func (t *Tank) Rotate(delta float64) {
	t.Angle = normalizeAngle(t.Angle + delta)
	t.addEvent(EventRotate, map[string]interface{}{"angle": t.Angle})
}

// Shoot queues a bullet from the muzzle if the cooldown has elapsed. A shot
// inside the cooldown window is silently dropped.
func (t *Tank) Shoot(now time.Time) bool {
	if !t.lastShot.IsZero() && now.Sub(t.lastShot) < t.cooldown {
		return false
	}

	rad := t.Angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	offset := t.rules.HalfSize() + t.rules.MuzzleMargin
	b := Bullet{
		X:     t.X + cos*offset,
		Y:     t.Y + sin*offset,
		DX:    cos * t.rules.BulletSpeed,
		DY:    sin * t.rules.BulletSpeed,
		Owner: t.Name,
	}

	t.pending = append(t.pending, b)
	t.lastShot = now
	t.addEvent(EventShoot, map[string]interface{}{"bullet": b})
	return true
}

// DrainBullets returns and clears the bullets fired since the last drain
func (t *Tank) DrainBullets() []Bullet {
	out := t.pending
	t.pending = nil
	return out
}

// TakeDamage applies damage; reaching zero health destroys the tank until
// the next round reset
func (t *Tank) TakeDamage(amount int) {
	t.Health -= amount
	t.addEvent(EventDamage, map[string]interface{}{"new_health": t.Health, "damage": amount})
	if t.Health <= 0 {
		t.Health = 0
		t.Alive = false
		t.addEvent(EventDestroyed, nil)
	}
}

// resetForMatch restores the tank and wipes match statistics
func (t *Tank) resetForMatch() {
	t.Health = t.rules.MaxHealth
	t.Alive = true
	t.Score = 0
	t.Kills = 0
	t.pending = nil
}

// resetForRound restores the tank at a new spot; statistics persist
func (t *Tank) resetForRound(x, y, angle float64) {
	t.X = x
	t.Y = y
	t.Angle = normalizeAngle(angle)
	t.Health = t.rules.MaxHealth
	t.Alive = true
	t.pending = nil
}

// State is the tank's view of itself handed to its brain
func (t *Tank) State() SelfState {
	bullets := make([]Bullet, len(t.pending))
	copy(bullets, t.pending)
	return SelfState{
		X:       t.X,
		Y:       t.Y,
		Angle:   t.Angle,
		Health:  t.Health,
		Alive:   t.Alive,
		Bullets: bullets,
	}
}

// View is what other brains may see of this tank
func (t *Tank) View() TankView {
	return TankView{X: t.X, Y: t.Y, Angle: t.Angle, Name: t.Name}
}

// TankStatus is the public status of a tank
type TankStatus struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Color  string       `json:"color"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Angle  float64      `json:"angle"`
	Health int          `json:"health"`
	Alive  bool         `json:"alive"`
	Score  int          `json:"score"`
	Kills  int          `json:"kills"`
	Brain  bool         `json:"has_brain"`
	Debug  []DebugEvent `json:"debug"`
}

// Status returns the public state with the newest tail debug events
func (t *Tank) Status(tail int) TankStatus {
	return TankStatus{
		ID:     t.ID.String(),
		Name:   t.Name,
		Color:  t.Color,
		X:      t.X,
		Y:      t.Y,
		Angle:  t.Angle,
		Health: t.Health,
		Alive:  t.Alive,
		Score:  t.Score,
		Kills:  t.Kills,
		Brain:  t.brain != nil,
		Debug:  t.debug.Tail(tail),
	}
}

// DebugEvents returns the full retained debug log, oldest first
func (t *Tank) DebugEvents() []DebugEvent {
	return t.debug.Items()
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
