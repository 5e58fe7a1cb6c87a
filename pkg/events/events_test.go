package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/picogrid/tank-arena/pkg/arena"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []message
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.messages = append(f.messages, message{subject, data})
	return f.err
}

func (f *fakePublisher) count(subject string) int {
	n := 0
	for _, m := range f.messages {
		if m.subject == subject {
			n++
		}
	}
	return n
}

func TestBridgePublishesStateEveryN(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBridge(pub, "arena", 3)

	for i := 0; i < 7; i++ {
		b.OnTick(arena.Status{MatchID: "m1", Tick: uint64(i)})
	}

	if got := pub.count("arena.state"); got != 3 {
		t.Errorf("state messages = %d, want 3", got)
	}

	var status map[string]interface{}
	if err := json.Unmarshal(pub.messages[0].data, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status["match_id"] != "m1" {
		t.Errorf("match_id = %v, want m1", status["match_id"])
	}
}

func TestBridgePublishesOnlyNewLogLines(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBridge(pub, "arena", 100)

	t0 := time.Unix(100, 0)
	first := []arena.LogEntry{{Seq: 1, Time: t0, Message: "Battle started!"}}
	b.OnTick(arena.Status{MatchID: "m1", Logs: first})

	second := append(first, arena.LogEntry{Seq: 2, Time: t0.Add(time.Second), Message: "Alpha hit Bravo. Health: 75"})
	b.OnTick(arena.Status{MatchID: "m1", Logs: second})
	b.OnTick(arena.Status{MatchID: "m1", Logs: second})

	if got := pub.count("arena.log"); got != 2 {
		t.Fatalf("log messages = %d, want 2", got)
	}

	// A new match starts the log cursor over
	b.OnTick(arena.Status{MatchID: "m2", Logs: first})
	if got := pub.count("arena.log"); got != 3 {
		t.Errorf("log messages after reset = %d, want 3", got)
	}
}

func TestBridgePublishesSameInstantLogLines(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBridge(pub, "arena", 100)

	now := time.Unix(200, 0)
	logs := []arena.LogEntry{
		{Seq: 7, Time: now, Message: "Alpha hit Bravo. Health: 0"},
		{Seq: 8, Time: now, Message: "Bravo was destroyed by Alpha."},
	}
	b.OnTick(arena.Status{MatchID: "m1", Logs: logs})
	b.OnTick(arena.Status{MatchID: "m1", Logs: logs})

	if got := pub.count("arena.log"); got != 2 {
		t.Fatalf("log messages = %d, want 2", got)
	}
	var last map[string]interface{}
	for _, m := range pub.messages {
		if m.subject != "arena.log" {
			continue
		}
		if err := json.Unmarshal(m.data, &last); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
	}
	if last["message"] != "Bravo was destroyed by Alpha." {
		t.Errorf("second log message = %v", last["message"])
	}
}

func TestBridgeSurvivesPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection closed")}
	b := NewBridge(pub, "x", 0)

	b.OnTick(arena.Status{MatchID: "m1"})
	b.OnTick(arena.Status{MatchID: "m1"})

	if got := pub.count("x.state"); got != 2 {
		t.Errorf("state attempts = %d, want 2", got)
	}
}
