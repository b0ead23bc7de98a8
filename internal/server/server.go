// Package server exposes the manual UI boundary over HTTP: state reads, the
// mutation intents, session lifecycle, save/load and the live update feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/courtside-ai/courtside/internal/game"
	"github.com/courtside-ai/courtside/internal/session"
	"github.com/courtside-ai/courtside/internal/stats"
	"github.com/courtside-ai/courtside/internal/storage"
)

// SessionController is the slice of the session manager the handlers need.
type SessionController interface {
	Start(ctx context.Context) error
	Stop()
	State() session.ConnState
	Level() float64
	LastFrame() []byte
}

// Persister is the slice of the storage layer the handlers need.
type Persister interface {
	Save(slot string, state game.GameState) error
	Load(slot string) (game.GameState, error)
}

// Server wires the HTTP boundary to the rest of the process.
type Server struct {
	store    *game.Store
	sessions SessionController
	analyzer session.Analyzer
	persist  Persister
	logger   *slog.Logger
	router   *chi.Mux
}

// Config carries the server's dependencies.
type Config struct {
	Store    *game.Store
	Sessions SessionController
	Analyzer session.Analyzer
	Persist  Persister
	Logger   *slog.Logger
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    cfg.Store,
		sessions: cfg.Sessions,
		analyzer: cfg.Analyzer,
		persist:  cfg.Persist,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	c := corslib.New(corslib.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/logs", s.handleLogs)
		r.Get("/meter", s.handleMeter)
		r.Get("/glossary", s.handleGlossary)
		r.Get("/stats/{side}", s.handleTeamStats)

		r.Post("/intents/{name}", s.handleIntent)

		r.Get("/session", s.handleSessionState)
		r.Post("/session/start", s.handleSessionStart)
		r.Post("/session/stop", s.handleSessionStop)
		r.Post("/analysis", s.handleAnalysis)

		r.Post("/game/save", s.handleSave)
		r.Post("/game/load", s.handleLoad)
	})
	r.Get("/ws", s.handleWS)

	s.router = r
	return s
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.store.State())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.store.Logs())
}

func (s *Server) handleMeter(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"level": s.sessions.Level(),
		"state": s.sessions.State(),
	})
}

func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, stats.Glossary())
}

func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	state := s.store.State()
	team := state.Home
	if game.ParseSide(chi.URLParam(r, "side")) == game.SideGuest {
		team = state.Guest
	}
	s.respond(w, http.StatusOK, stats.TeamReport(team))
}

// intentRequest is the decoded body for every manual mutation. Fields are
// read per intent; extras are ignored.
type intentRequest struct {
	Team     string       `json:"team"`
	Delta    int          `json:"delta"`
	Name     string       `json:"name"`
	PlayerID string       `json:"playerId"`
	Field    string       `json:"field"`
	Value    string       `json:"value"`
	Player   *game.Player `json:"player"`
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	side := game.ParseSide(req.Team)

	var in game.Intent
	switch chi.URLParam(r, "name") {
	case "adjust-score":
		in = game.AdjustTeamScore{Team: side, Delta: req.Delta}
	case "team-name":
		in = game.SetTeamName{Team: side, Name: req.Name}
	case "player-field":
		in = game.AdjustPlayerField{Team: side, PlayerID: req.PlayerID, Field: req.Field, Delta: req.Delta, Value: req.Value}
	case "replace-player":
		if req.Player == nil {
			s.respondError(w, http.StatusBadRequest, "player is required")
			return
		}
		in = game.ReplacePlayer{Team: side, Player: *req.Player}
	case "toggle-clock":
		in = game.ToggleClock{}
	case "reset-clock":
		in = game.ResetClock{}
	case "advance-quarter":
		in = game.AdvanceQuarter{}
	case "reset":
		in = game.ResetGame{}
	default:
		s.respondError(w, http.StatusNotFound, "unknown intent")
		return
	}

	s.respond(w, http.StatusOK, s.store.Apply(in))
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{"state": s.sessions.State()})
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Start(r.Context()); err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"state": s.sessions.State()})
}

func (s *Server) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	s.sessions.Stop()
	s.respond(w, http.StatusOK, map[string]any{"state": s.sessions.State()})
}

// handleAnalysis runs the one-shot deep analysis on the latest captured
// frame. Failures are logged to the feed and reported; they never affect
// the live session.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	s.store.AddLog("Capturing snapshot for Deep Analysis...", game.LogInfo)

	frame := s.sessions.LastFrame()
	text, err := s.analyzer.Analyze(r.Context(), frame)
	if err != nil {
		s.logger.Error("deep analysis failed", "error", err)
		s.store.AddLog("Deep analysis failed.", game.LogInfo)
		s.respondError(w, http.StatusBadGateway, "deep analysis failed")
		return
	}

	s.store.AddLog("Deep Analysis Result:", game.LogAnalysis)
	s.store.AddLog(truncate(text, 150), game.LogInfo)
	s.respond(w, http.StatusOK, map[string]any{"analysis": text})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	state := s.store.State()
	if err := s.persist.Save(storage.DefaultSlot, state); err != nil {
		s.logger.Error("save failed", "error", err)
		s.store.AddLog("Failed to save game.", game.LogInfo)
		s.respondError(w, http.StatusInternalServerError, "save failed")
		return
	}
	s.store.AddLog("Game saved.", game.LogInfo)
	s.respond(w, http.StatusOK, map[string]any{"saved": true})
}

// handleLoad rehydrates the saved document. A corrupt save is rejected
// without touching in-memory state.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	state, err := s.persist.Load(storage.DefaultSlot)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "no saved game")
		return
	case errors.Is(err, storage.ErrCorrupt):
		s.store.AddLog("Saved game is corrupt; keeping current game.", game.LogInfo)
		s.respondError(w, http.StatusUnprocessableEntity, "saved game is corrupt")
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "load failed")
		return
	}

	s.store.LoadFrom(state)
	s.store.AddLog("Game loaded.", game.LogInfo)
	s.respond(w, http.StatusOK, state)
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, map[string]string{"error": msg})
}
