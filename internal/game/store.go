package game

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// highlightDwell is how long lastActivePlayerId stays set after a
	// scoring play before it self-clears.
	highlightDwell = 3 * time.Second

	// autosaveInterval matches the original cadence of silent saves while
	// a game is live or paused.
	autosaveInterval = 60 * time.Second
)

// Saver persists snapshots. Implemented by the storage package; nil
// disables autosave.
type Saver interface {
	SaveSnapshot(state GameState) error
}

// Update is what subscribers receive: a fresh state snapshot, a new log
// entry, or both.
type Update struct {
	State *GameState `json:"state,omitempty"`
	Log   *LogEntry  `json:"log,omitempty"`
}

// Store owns the one mutable GameState for the process plus the append-only
// log feed. Every mutation goes through Apply, which reads the latest
// snapshot under the lock at apply time — manual edits and AI tool calls
// interleave without lost updates.
type Store struct {
	mu    sync.Mutex
	state GameState
	logs  []LogEntry

	subs   map[int]chan Update
	nextID int

	saver  Saver
	logger *slog.Logger

	dwell         time.Duration
	autosaveEvery time.Duration

	highlightTimer *time.Timer
	autosaveTimer  *time.Timer
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithSaver wires the autosave target.
func WithSaver(s Saver) StoreOption {
	return func(st *Store) { st.saver = s }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(st *Store) { st.logger = l }
}

// WithTimings shortens the dwell and autosave timers; test-only knob.
func WithTimings(dwell, autosave time.Duration) StoreOption {
	return func(st *Store) {
		st.dwell = dwell
		st.autosaveEvery = autosave
	}
}

// NewStore seeds a store with the given initial document.
func NewStore(initial GameState, opts ...StoreOption) *Store {
	s := &Store{
		state:         initial.Clone(),
		subs:          make(map[int]chan Update),
		logger:        slog.Default(),
		dwell:         highlightDwell,
		autosaveEvery: autosaveInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot safe to hold across later mutations.
func (s *Store) State() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Logs returns a copy of the feed.
func (s *Store) Logs() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.logs...)
}

// Apply folds an intent into the current snapshot and returns the result.
// ResetGame also clears the log feed.
func (s *Store) Apply(in Intent) GameState {
	s.mu.Lock()
	prev := s.state
	next := Reduce(s.state, in)
	s.state = next
	if _, ok := in.(ResetGame); ok {
		s.logs = nil
	}
	s.armHighlightLocked(prev, next)
	s.armAutosaveLocked()
	snapshot := next.Clone()
	s.mu.Unlock()

	s.broadcast(Update{State: &snapshot})
	return snapshot
}

// AddLog appends one feed entry and notifies subscribers.
func (s *Store) AddLog(message string, typ LogType) LogEntry {
	entry := LogEntry{
		ID:        newID(),
		Timestamp: now(),
		Message:   message,
		Type:      typ,
	}
	s.mu.Lock()
	s.logs = append(s.logs, entry)
	s.mu.Unlock()

	s.broadcast(Update{Log: &entry})
	return entry
}

// LoadFrom replaces the document wholesale with a rehydrated snapshot. The
// caller is responsible for validating it first (see storage.Load).
func (s *Store) LoadFrom(state GameState) {
	s.mu.Lock()
	prev := s.state
	s.state = state.Clone()
	s.armHighlightLocked(prev, s.state)
	s.armAutosaveLocked()
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.broadcast(Update{State: &snapshot})
}

// Subscribe registers a feed of updates. The returned cancel func must be
// called to release the channel. Delivery is best-effort: a subscriber that
// stops draining loses updates rather than blocking mutations.
func (s *Store) Subscribe() (<-chan Update, func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan Update, 64)
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops outstanding timers. Safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlightTimer != nil {
		s.highlightTimer.Stop()
		s.highlightTimer = nil
	}
	if s.autosaveTimer != nil {
		s.autosaveTimer.Stop()
		s.autosaveTimer = nil
	}
}

func (s *Store) broadcast(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- u:
		default:
			// Slow subscriber; drop rather than stall the write path.
		}
	}
}

// armHighlightLocked schedules the self-clearing of lastActivePlayerId.
// The timer is keyed to the specific player id it was armed for, so a later
// score by another player re-arms it and a fire against a stale id is a
// no-op.
func (s *Store) armHighlightLocked(prev, next GameState) {
	id := next.LastActivePlayerID
	if id == "" || id == prev.LastActivePlayerID {
		return
	}
	if s.highlightTimer != nil {
		s.highlightTimer.Stop()
	}
	s.highlightTimer = time.AfterFunc(s.dwell, func() {
		s.clearHighlight(id)
	})
}

func (s *Store) clearHighlight(id string) {
	s.mu.Lock()
	if s.state.LastActivePlayerID != id {
		s.mu.Unlock()
		return
	}
	s.state.LastActivePlayerID = ""
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.broadcast(Update{State: &snapshot})
}

// armAutosaveLocked keeps exactly one pending autosave timer while the game
// is LIVE or PAUSED. Every mutation restarts it; terminal states disarm it.
func (s *Store) armAutosaveLocked() {
	if s.autosaveTimer != nil {
		s.autosaveTimer.Stop()
		s.autosaveTimer = nil
	}
	if s.saver == nil {
		return
	}
	if s.state.Status != StatusLive && s.state.Status != StatusPaused {
		return
	}
	s.autosaveTimer = time.AfterFunc(s.autosaveEvery, s.autosave)
}

func (s *Store) autosave() {
	s.mu.Lock()
	snapshot := s.state.Clone()
	saver := s.saver
	s.mu.Unlock()

	if saver == nil {
		return
	}
	if err := saver.SaveSnapshot(snapshot); err != nil {
		s.logger.Error("autosave failed", "error", err)
		s.AddLog("Failed to save game.", LogInfo)
	}

	s.mu.Lock()
	s.armAutosaveLocked()
	s.mu.Unlock()
}
