package arena

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/picogrid/tank-arena/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// brainFunc adapts a function to Brain
type brainFunc func(ctx context.Context, snap Snapshot) (*Action, error)

func (f brainFunc) Think(ctx context.Context, snap Snapshot) (*Action, error) {
	return f(ctx, snap)
}

func quietLogger() logger.Logger {
	return logger.NewWithConfig(logger.Config{Writer: io.Discard})
}

func newTestMatch(clock *fakeClock, opts ...Option) *Match {
	base := []Option{
		WithClock(clock.Now),
		WithSeed(1),
		WithLogger(quietLogger()),
	}
	return NewMatch(DefaultRules(), append(base, opts...)...)
}

// placeTank registers a tank at an exact position
func placeTank(m *Match, name string, x, y, angle float64, brain Brain) *Tank {
	t := NewTank(name, "#ffffff", x, y, angle, &m.rules)
	t.clock = m.clock
	t.brain = brain
	m.tanks = append(m.tanks, t)
	m.byName[name] = t
	return t
}

func logMessages(m *Match) []string {
	entries := m.Logs()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func countContaining(lines []string, substr string) int {
	n := 0
	for _, l := range lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}
