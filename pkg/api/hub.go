package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/logger"
)

const writeWait = 5 * time.Second

type stateMessage struct {
	Type       string       `json:"type"`
	State      arena.Status `json:"state"`
	ServerTime int64        `json:"serverTime"`
}

type clientMessage struct {
	Type   string `json:"type"`
	SentAt int64  `json:"sentAt"`
}

type pongMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
}

type subscriber struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	binary bool // msgpack frames instead of JSON text
}

func (s *subscriber) write(data []byte) error {
	messageType := websocket.TextMessage
	if s.binary {
		messageType = websocket.BinaryMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *subscriber) decode(data []byte, v interface{}) error {
	if !s.binary {
		return json.Unmarshal(data, v)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// encode renders v for the subscriber's encoding
func (s *subscriber) encode(v interface{}) ([]byte, error) {
	if !s.binary {
		return json.Marshal(v)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hub streams match status to WebSocket subscribers
type Hub struct {
	match *arena.Match
	log   logger.Logger

	mu          sync.Mutex
	subscribers map[string]*subscriber
	nextID      atomic.Uint64

	upgrader websocket.Upgrader
}

// NewHub creates a hub for the match
func NewHub(m *arena.Match) *Hub {
	return &Hub{
		match:       m,
		log:         logger.WithPrefix("hub"),
		subscribers: make(map[string]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Count returns the number of connected subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) snapshot() stateMessage {
	return stateMessage{
		Type:       "state",
		State:      h.match.Status(),
		ServerTime: time.Now().UnixMilli(),
	}
}

// Broadcast sends the current status to every subscriber, dropping those
// that fail
func (h *Hub) Broadcast() {
	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	msg := h.snapshot()
	encoded := map[bool][]byte{}
	for id, sub := range subs {
		data, ok := encoded[sub.binary]
		if !ok {
			var err error
			data, err = sub.encode(msg)
			if err != nil {
				h.log.Errorf("failed to marshal state message: %v", err)
				return
			}
			encoded[sub.binary] = data
		}
		if err := sub.write(data); err != nil {
			h.log.Debugf("failed to send update to %s: %v", id, err)
			h.disconnect(id)
		}
	}
}

// Run broadcasts at the given interval until ctx is done, then closes all
// subscriber connections
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.Broadcast()
		}
	}
}

// ServeHTTP upgrades the request and streams state until the client leaves.
// ?encoding=msgpack selects binary msgpack frames.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	binary := r.URL.Query().Get("encoding") == "msgpack"
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade failed: %v", err)
		return
	}

	id := strconv.FormatUint(h.nextID.Add(1), 10)
	sub := &subscriber{conn: conn, binary: binary}
	h.mu.Lock()
	h.subscribers[id] = sub
	h.mu.Unlock()
	h.log.Debugf("subscriber %s connected from %s", id, r.RemoteAddr)

	data, err := sub.encode(h.snapshot())
	if err != nil {
		h.log.Errorf("failed to marshal initial state for %s: %v", id, err)
		h.disconnect(id)
		return
	}
	if err := sub.write(data); err != nil {
		h.disconnect(id)
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.disconnect(id)
			return
		}

		var msg clientMessage
		if err := sub.decode(payload, &msg); err != nil {
			h.log.Debugf("discarding malformed message from %s: %v", id, err)
			continue
		}

		switch msg.Type {
		case "ping":
			pong, err := sub.encode(pongMessage{Type: "pong", ServerTime: time.Now().UnixMilli(), ClientTime: msg.SentAt})
			if err != nil {
				continue
			}
			if err := sub.write(pong); err != nil {
				h.disconnect(id)
				return
			}
		default:
			h.log.Debugf("unknown message type %q from %s", msg.Type, id)
		}
	}
}

func (h *Hub) disconnect(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if ok {
		_ = sub.conn.Close()
		h.log.Debugf("subscriber %s disconnected", id)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		_ = sub.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = sub.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		sub.mu.Unlock()
		_ = sub.conn.Close()
	}
}
