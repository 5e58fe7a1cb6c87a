// Package api exposes match control and status over HTTP and a WebSocket
// state stream.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/brain"
	"github.com/picogrid/tank-arena/pkg/logger"
)

// maxBodyBytes bounds request bodies, brain sources included
const maxBodyBytes = 1 << 20

// Server routes the HTTP API to a match
type Server struct {
	match     *arena.Match
	hub       *Hub
	registry  *brain.Registry
	log       logger.Logger
	mux       *http.ServeMux
	startedAt time.Time
}

// NewServer builds the routes. hub may be nil to disable the stream.
func NewServer(m *arena.Match, hub *Hub, registry *brain.Registry) *Server {
	if registry == nil {
		registry = brain.DefaultRegistry
	}
	s := &Server{
		match:     m,
		hub:       hub,
		registry:  registry,
		log:       logger.WithPrefix("api"),
		mux:       http.NewServeMux(),
		startedAt: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/game-state", s.handleGameState)
	s.mux.HandleFunc("POST /api/add-tank", s.handleAddTank)
	s.mux.HandleFunc("POST /api/start-game", s.handleStartGame)
	s.mux.HandleFunc("POST /api/reset-game", s.handleResetGame)
	s.mux.HandleFunc("GET /api/sample-brains", s.handleSampleBrains)
	s.mux.HandleFunc("GET /api/brains", s.handleBrains)
	s.mux.HandleFunc("GET /api/debug-data", s.handleDebugData)
	s.mux.HandleFunc("GET /api/debug-data/{name}", s.handleTankDebug)
	if s.hub != nil {
		s.mux.Handle("GET /ws", s.hub)
	}
}

// Handler returns the root handler with request logging and panic recovery
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		s.mux.ServeHTTP(w, r)
		s.log.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	})
}

type addTankRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	BrainCode string `json:"brain_code"`
	Strategy  string `json:"strategy"`
}

type addTankResponse struct {
	Success    bool   `json:"success"`
	TankName   string `json:"tank_name"`
	TankID     string `json:"tank_id"`
	BrainError string `json:"brain_error,omitempty"`
}

type startGameResponse struct {
	Success      bool    `json:"success"`
	MaxRounds    int     `json:"max_rounds"`
	RoundTime    float64 `json:"round_time"`
	ThinkTimeout float64 `json:"think_timeout"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"state":       s.match.State(),
		"uptime":      time.Since(s.startedAt).Round(time.Second).String(),
		"subscribers": s.subscriberCount(),
	})
}

func (s *Server) subscriberCount() int {
	if s.hub == nil {
		return 0
	}
	return s.hub.Count()
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.match.Status())
}

func (s *Server) handleAddTank(w http.ResponseWriter, r *http.Request) {
	var req addTankRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	source := req.BrainCode
	if strings.TrimSpace(source) == "" && req.Strategy != "" {
		source = brain.BuiltinPrefix + req.Strategy
	}

	reg, err := s.match.AddTank(arena.TankSpec{
		Name:   req.Name,
		Color:  req.Color,
		Source: source,
	})
	if errors.Is(err, arena.ErrArenaFull) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := addTankResponse{Success: true, TankName: reg.Name, TankID: reg.ID.String()}
	if reg.BrainErr != nil {
		resp.BrainError = reg.BrainErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	params := map[string]interface{}{}
	if err := decodeBody(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.match.Start(arena.StartOptionsFromParams(params))
	if errors.Is(err, arena.ErrStartRejected) {
		writeError(w, http.StatusConflict, "Need at least 2 tanks to start")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	settings := s.match.Settings()
	writeJSON(w, http.StatusOK, startGameResponse{
		Success:      true,
		MaxRounds:    settings.MaxRounds,
		RoundTime:    settings.RoundTime.Seconds(),
		ThinkTimeout: settings.ThinkTimeout.Seconds(),
	})
}

func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	s.match.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSampleBrains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, brain.Samples())
}

func (s *Server) handleBrains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleDebugData(w http.ResponseWriter, r *http.Request) {
	tail, err := tailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := s.match.DebugData()
	for name, events := range data {
		data[name] = lastN(events, tail)
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleTankDebug(w http.ResponseWriter, r *http.Request) {
	tail, err := tailParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.match.TankDebug(r.PathValue("name"))
	if errors.Is(err, arena.ErrUnknownTank) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lastN(events, tail))
}

// tailParam reads the optional ?tail=N limit; 0 means everything
func tailParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("tail")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("tail must be a non-negative integer")
	}
	return n, nil
}

func lastN(events []arena.DebugEvent, n int) []arena.DebugEvent {
	if n > 0 && len(events) > n {
		return events[len(events)-n:]
	}
	return events
}

// decodeBody decodes a JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
