package arena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/picogrid/tank-arena/pkg/logger"
)

// LogEntry is one line of the battle log. Seq counts up from 1 within a
// match and restarts on Reset.
type LogEntry struct {
	Seq     uint64
	Time    time.Time
	Message string
}

// MarshalJSON encodes the entry with the time as fractional unix seconds
func (e LogEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Seq     uint64  `json:"seq"`
		Time    float64 `json:"time"`
		Message string  `json:"message"`
	}{
		Seq:     e.Seq,
		Time:    float64(e.Time.UnixNano()) / float64(time.Second),
		Message: e.Message,
	})
}

// TankSpec describes a tank to register
type TankSpec struct {
	Name   string
	Color  string
	Source string // compiled with the match's Compiler when Brain is nil
	Brain  Brain
}

// Registration is the result of AddTank
type Registration struct {
	Name string
	ID   uuid.UUID
	// BrainErr is set when the source failed to compile. The tank is still
	// registered, without a brain.
	BrainErr error
}

// Status is a consistent copy of the match state
type Status struct {
	MatchID       string       `json:"match_id"`
	State         State        `json:"state"`
	Running       bool         `json:"game_running"`
	Round         int          `json:"round_number"`
	MaxRounds     int          `json:"max_rounds"`
	RoundTime     float64      `json:"round_time"`
	TimeRemaining float64      `json:"time_remaining"`
	ThinkTimeout  float64      `json:"think_timeout"`
	Tick          uint64       `json:"tick"`
	ArenaWidth    float64      `json:"arena_width"`
	ArenaHeight   float64      `json:"arena_height"`
	Tanks         []TankStatus `json:"tanks"`
	Bullets       []Bullet     `json:"bullets"`
	Obstacles     []Obstacle   `json:"obstacles"`
	Logs          []LogEntry   `json:"logs"`
}

// Match owns the world: tanks, bullets, the round lifecycle and the battle
// log. Tick and the admin operations take the write lock; readers get copies.
type Match struct {
	mu sync.RWMutex

	id         uuid.UUID
	rules      Rules
	defaults   Settings
	settings   Settings
	state      State
	round      int
	roundStart time.Time
	ticks      uint64

	tanks     []*Tank
	byName    map[string]*Tank
	bullets   []Bullet
	obstacles []Obstacle
	logs      *Ring[LogEntry]
	logSeq    uint64

	executor *Executor
	compiler Compiler
	clock    func() time.Time
	rng      *rand.Rand
	log      logger.Logger
}

// Option configures a Match
type Option func(*Match)

// WithSettings sets the match settings restored on every Reset
func WithSettings(s Settings) Option {
	return func(m *Match) {
		m.defaults = s
	}
}

// WithCompiler sets the compiler used for tank brain sources
func WithCompiler(c Compiler) Option {
	return func(m *Match) {
		m.compiler = c
	}
}

// WithClock replaces the wall clock, for tests
func WithClock(clock func() time.Time) Option {
	return func(m *Match) {
		m.clock = clock
	}
}

// WithSeed makes spawn points and collision nudges reproducible
func WithSeed(seed int64) Option {
	return func(m *Match) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the operational logger
func WithLogger(log logger.Logger) Option {
	return func(m *Match) {
		m.log = log
	}
}

// WithObstacles sets the static obstacles shown to brains
func WithObstacles(obstacles []Obstacle) Option {
	return func(m *Match) {
		m.obstacles = append([]Obstacle(nil), obstacles...)
	}
}

// NewMatch creates an idle match
func NewMatch(rules Rules, opts ...Option) *Match {
	m := &Match{
		id:       uuid.New(),
		rules:    rules,
		defaults: DefaultSettings(),
		byName:   make(map[string]*Tank),
		logs:     NewRing[LogEntry](rules.BattleLogLimit),
		clock:    time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      logger.WithPrefix("arena"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.settings = m.defaults
	m.executor = NewExecutor(m.settings.ThinkTimeout)
	return m
}

// logf appends to the battle log and mirrors the line to the logger
func (m *Match) logf(format string, args ...interface{}) {
	m.log.Info(m.pushLog(format, args...))
}

// warnf is logf for brain failures
func (m *Match) warnf(format string, args ...interface{}) {
	m.log.Warn(m.pushLog(format, args...))
}

func (m *Match) pushLog(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	m.logSeq++
	m.logs.Push(LogEntry{Seq: m.logSeq, Time: m.clock(), Message: msg})
	return msg
}

// Rules returns the arena rules
func (m *Match) Rules() Rules {
	return m.rules
}

// Settings returns the effective match settings
func (m *Match) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// State returns the current lifecycle state
func (m *Match) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Running reports whether ticks currently advance the world
func (m *Match) Running() bool {
	return m.State() == StateRunning
}

// AddTank registers a tank at a random position. A brain that fails to
// compile is reported on the registration; the tank joins without one.
func (m *Match) AddTank(spec TankSpec) (Registration, error) {
	brain := spec.Brain
	var brainErr error
	if brain == nil && spec.Source != "" {
		// compile outside the lock, hostile sources may take a while
		if m.compiler == nil {
			brainErr = errors.New("no brain compiler configured")
		} else {
			brain, brainErr = m.compiler(spec.Name, spec.Source)
			if brainErr != nil {
				brain = nil
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tanks) >= m.rules.MaxTanks {
		return Registration{}, fmt.Errorf("%w: %d tanks", ErrArenaFull, len(m.tanks))
	}

	name := m.uniqueName(spec.Name)
	color := spec.Color
	if color == "" {
		color = fmt.Sprintf("#%06x", m.rng.Intn(0x1000000))
	}
	x, y, angle := m.spawnPoint()

	tank := NewTank(name, color, x, y, angle, &m.rules)
	tank.clock = m.clock
	tank.brain = brain
	m.tanks = append(m.tanks, tank)
	m.byName[name] = tank

	if brainErr != nil {
		m.logf("Brain for %s failed to load: %v", name, brainErr)
	}
	m.logf("Tank %s deployed.", name)

	return Registration{Name: name, ID: tank.ID, BrainErr: brainErr}, nil
}

// spawnPoint draws a uniform position at least one tank size from each wall
func (m *Match) spawnPoint() (x, y, angle float64) {
	size := m.rules.TankSize
	x = size + m.rng.Float64()*(m.rules.Width-2*size)
	y = size + m.rng.Float64()*(m.rules.Height-2*size)
	angle = m.rng.Float64() * 360
	return x, y, angle
}

// Start begins a match from round one. Starting a running or finished
// match restarts it.
func (m *Match) Start(opts StartOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tanks) < 2 {
		return ErrStartRejected
	}

	settings := m.settings
	opts.apply(&settings)
	if err := m.transition(StateRunning); err != nil {
		return err
	}
	m.settings = settings
	m.executor.Timeout = settings.ThinkTimeout

	for _, t := range m.tanks {
		t.resetForMatch()
	}
	m.bullets = nil
	m.round = 1
	m.roundStart = m.clock()
	m.ticks = 0
	m.logf("Battle started!")
	return nil
}

// Reset discards all tanks, bullets and logs and returns to idle with the
// configured settings
func (m *Match) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.id = uuid.New()
	m.tanks = nil
	m.byName = make(map[string]*Tank)
	m.bullets = nil
	m.logs.Clear()
	m.logSeq = 0
	m.round = 0
	m.roundStart = time.Time{}
	m.ticks = 0
	m.settings = m.defaults
	m.executor.Timeout = m.settings.ThinkTimeout
	_ = m.transition(StateIdle)
	m.log.Debug("match reset")
}

// Tick advances the world by one step. It is a no-op unless the match is
// running. Bullets move first, then brains run against that world and
// their actions are applied in registration order before collisions and
// hits are resolved.
func (m *Match) Tick(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning {
		return
	}
	m.ticks++

	m.bullets = advanceBullets(m.bullets, m.rules)
	m.runBrains(ctx)
	m.resolveTankCollisions()
	m.checkHits()

	if m.aliveCount() <= 1 {
		m.logf("Only one tank remaining. Ending round early.")
		m.endRound()
		return
	}
	if m.clock().Sub(m.roundStart) > m.settings.RoundTime {
		m.endRound()
	}
}

func (m *Match) runBrains(ctx context.Context) {
	jobs := make([]Job, 0, len(m.tanks))
	for _, t := range m.tanks {
		if !t.Alive || t.brain == nil {
			continue
		}
		jobs = append(jobs, Job{
			Tank:     t.Name,
			Brain:    t.brain,
			Snapshot: m.snapshotFor(t),
			busy:     &t.thinking,
		})
	}

	outcomes := m.executor.Run(ctx, jobs)
	now := m.clock()
	for _, out := range outcomes {
		tank := m.byName[out.Tank]
		switch {
		case errors.Is(out.Err, ErrThinkTimeout):
			m.warnf("%s think timed out", out.Tank)
		case errors.Is(out.Err, ErrThinkBusy):
			m.log.Debugf("%s skipped, previous think still running", out.Tank)
		case out.Err != nil:
			m.warnf("%s %v", out.Tank, out.Err)
		case out.Action != nil:
			m.applyAction(tank, *out.Action, now)
		}
	}
}

func (m *Match) snapshotFor(self *Tank) Snapshot {
	others := make([]TankView, 0, len(m.tanks)-1)
	for _, t := range m.tanks {
		if t != self && t.Alive {
			others = append(others, t.View())
		}
	}
	return Snapshot{
		Self:        self.State(),
		Others:      others,
		Bullets:     append([]Bullet(nil), m.bullets...),
		Obstacles:   append([]Obstacle(nil), m.obstacles...),
		ArenaWidth:  m.rules.Width,
		ArenaHeight: m.rules.Height,
	}
}

// applyAction performs move, rotate, shoot and taunt in that order
func (m *Match) applyAction(t *Tank, a Action, now time.Time) {
	rad := t.Angle * math.Pi / 180
	dx := math.Cos(rad) * m.rules.TankSpeed
	dy := math.Sin(rad) * m.rules.TankSpeed
	switch a.Move {
	case MoveForward:
		t.Move(dx, dy)
	case MoveBackward:
		t.Move(-dx, -dy)
	}

	if s := sign(a.Rotate); s != 0 {
		t.Rotate(s * m.rules.RotationSpeed)
	}

	if a.Shoot {
		t.Shoot(now)
		m.bullets = append(m.bullets, t.DrainBullets()...)
	}

	if a.Taunt != "" {
		m.logf("%s shouts: %s", t.Name, a.Taunt)
	}
}

func (m *Match) aliveCount() int {
	n := 0
	for _, t := range m.tanks {
		if t.Alive {
			n++
		}
	}
	return n
}

// endRound closes the current round and either respawns for the next one
// or finishes the match
func (m *Match) endRound() {
	if err := m.transition(StateRoundEnd); err != nil {
		m.log.Errorf("ending round %d: %v", m.round, err)
		return
	}
	m.logf("Round %d completed.", m.round)

	if m.round >= m.settings.MaxRounds {
		if err := m.transition(StateFinished); err != nil {
			m.log.Errorf("finishing match: %v", err)
			return
		}
		m.logf("Battle finished!")
		return
	}

	m.round++
	for _, t := range m.tanks {
		x, y, angle := m.spawnPoint()
		t.resetForRound(x, y, angle)
	}
	m.bullets = nil
	m.roundStart = m.clock()
	if err := m.transition(StateRunning); err != nil {
		m.log.Errorf("starting round %d: %v", m.round, err)
	}
}

// Status returns a copy of the public state with tails of the logs
func (m *Match) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tail := m.rules.StatusTail
	tanks := make([]TankStatus, len(m.tanks))
	for i, t := range m.tanks {
		tanks[i] = t.Status(tail)
	}

	remaining := m.settings.RoundTime
	if !m.roundStart.IsZero() {
		remaining -= m.clock().Sub(m.roundStart)
		if remaining < 0 {
			remaining = 0
		}
	}

	return Status{
		MatchID:       m.id.String(),
		State:         m.state,
		Running:       m.state == StateRunning,
		Round:         m.round,
		MaxRounds:     m.settings.MaxRounds,
		RoundTime:     m.settings.RoundTime.Seconds(),
		TimeRemaining: remaining.Seconds(),
		ThinkTimeout:  m.settings.ThinkTimeout.Seconds(),
		Tick:          m.ticks,
		ArenaWidth:    m.rules.Width,
		ArenaHeight:   m.rules.Height,
		Tanks:         tanks,
		Bullets:       append([]Bullet{}, m.bullets...),
		Obstacles:     append([]Obstacle{}, m.obstacles...),
		Logs:          m.logs.Tail(tail),
	}
}

// Logs returns the full retained battle log, oldest first
func (m *Match) Logs() []LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logs.Items()
}

// DebugData returns every tank's full debug log keyed by name
func (m *Match) DebugData() map[string][]DebugEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]DebugEvent, len(m.tanks))
	for _, t := range m.tanks {
		out[t.Name] = t.DebugEvents()
	}
	return out
}

// TankDebug returns one tank's full debug log
func (m *Match) TankDebug(name string) ([]DebugEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTank, name)
	}
	return t.DebugEvents(), nil
}

// TankNames lists registered tanks in registration order
func (m *Match) TankNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.tanks))
	for i, t := range m.tanks {
		names[i] = t.Name
	}
	return names
}
