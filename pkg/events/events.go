// Package events mirrors match activity onto a NATS subject tree so other
// processes can follow a battle without polling the HTTP API.
package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/logger"
)

// Publisher is the subset of *nats.Conn the bridge needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Bridge publishes status snapshots and new battle log lines. Subjects are
// <prefix>.state and <prefix>.log.
type Bridge struct {
	pub    Publisher
	prefix string
	every  int
	log    logger.Logger

	mu      sync.Mutex
	ticks   int
	lastSeq uint64
	matchID string
}

// NewBridge publishes the state every n ticks (every tick when n < 1)
func NewBridge(pub Publisher, prefix string, every int) *Bridge {
	if every < 1 {
		every = 1
	}
	return &Bridge{
		pub:    pub,
		prefix: prefix,
		every:  every,
		log:    logger.WithPrefix("events"),
	}
}

// Connect dials the NATS server at url and returns a bridge on it together
// with a function that drains the connection
func Connect(url, prefix string, every int) (*Bridge, func(), error) {
	nc, err := nats.Connect(url,
		nats.Name("tank-arena"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnf("NATS disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Warnf("NATS drain failed: %v", err)
		}
	}
	return NewBridge(nc, prefix, every), closeFn, nil
}

// OnTick has the signature of arena.Runner.OnTick callbacks
func (b *Bridge) OnTick(status arena.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if status.MatchID != b.matchID {
		b.matchID = status.MatchID
		b.lastSeq = 0
		b.ticks = 0
	}

	for _, entry := range status.Logs {
		if entry.Seq <= b.lastSeq {
			continue
		}
		b.lastSeq = entry.Seq
		b.publish("log", entry)
	}

	if b.ticks%b.every == 0 {
		b.publish("state", status)
	}
	b.ticks++
}

func (b *Bridge) publish(kind string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		b.log.Errorf("failed to encode %s event: %v", kind, err)
		return
	}
	subject := b.prefix + "." + kind
	if err := b.pub.Publish(subject, data); err != nil {
		b.log.Debugf("publish to %s failed: %v", subject, err)
	}
}
