// Package storage persists whole game-state documents to a keyed sqlite
// store. Documents are saved as JSON snapshots; rehydration validates the
// structure before anything touches in-memory state.
package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/courtside-ai/courtside/internal/game"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultSlot is the save key used by quick save, autosave and load.
const DefaultSlot = "courtside_game_state"

var (
	// ErrNotFound means no document is saved under the slot.
	ErrNotFound = errors.New("no saved game")

	// ErrCorrupt means the saved document failed validation. The caller's
	// in-memory state must be left untouched.
	ErrCorrupt = errors.New("saved game is corrupt")
)

// Store is a sqlite-backed snapshot store.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the document under the slot, replacing any previous save.
func (s *Store) Save(slot string, state game.GameState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO game_snapshots (key, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		slot, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save game state: %w", err)
	}
	return nil
}

// SaveSnapshot satisfies game.Saver for the autosave path.
func (s *Store) SaveSnapshot(state game.GameState) error {
	return s.Save(DefaultSlot, state)
}

// Load rehydrates the document saved under the slot. A document that does
// not parse, or that is missing either team, is rejected as corrupt.
func (s *Store) Load(slot string) (game.GameState, error) {
	var payload string
	err := s.db.QueryRow(`SELECT state FROM game_snapshots WHERE key = ?`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return game.GameState{}, ErrNotFound
	}
	if err != nil {
		return game.GameState{}, fmt.Errorf("load game state: %w", err)
	}
	return decode([]byte(payload))
}

// decode parses and validates a raw saved document.
func decode(payload []byte) (game.GameState, error) {
	// Decode through a probe first: a GameState zero value cannot tell a
	// missing team apart from an empty one.
	var probe struct {
		Home  *json.RawMessage `json:"home"`
		Guest *json.RawMessage `json:"guest"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return game.GameState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if probe.Home == nil || probe.Guest == nil {
		return game.GameState{}, fmt.Errorf("%w: missing team data", ErrCorrupt)
	}

	var state game.GameState
	if err := json.Unmarshal(payload, &state); err != nil {
		return game.GameState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return state, nil
}
