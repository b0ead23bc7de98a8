package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtside-ai/courtside/internal/game"
	"github.com/courtside-ai/courtside/internal/session"
	"github.com/courtside-ai/courtside/internal/stats"
	"github.com/courtside-ai/courtside/internal/storage"
)

type fakeSessions struct {
	startErr error
	state    session.ConnState
	stopped  bool
	frame    []byte
}

func (f *fakeSessions) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.state = session.StateConnected
	return nil
}
func (f *fakeSessions) Stop()                   { f.stopped = true; f.state = session.StateDisconnected }
func (f *fakeSessions) State() session.ConnState {
	if f.state == "" {
		return session.StateDisconnected
	}
	return f.state
}
func (f *fakeSessions) Level() float64    { return 0.25 }
func (f *fakeSessions) LastFrame() []byte { return f.frame }

type fakeAnalyzer struct {
	text string
	err  error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, jpeg []byte) (string, error) {
	return f.text, f.err
}

type fakePersister struct {
	saved   map[string]game.GameState
	loadErr error
}

func newFakePersister() *fakePersister {
	return &fakePersister{saved: make(map[string]game.GameState)}
}

func (f *fakePersister) Save(slot string, state game.GameState) error {
	f.saved[slot] = state
	return nil
}

func (f *fakePersister) Load(slot string) (game.GameState, error) {
	if f.loadErr != nil {
		return game.GameState{}, f.loadErr
	}
	state, ok := f.saved[slot]
	if !ok {
		return game.GameState{}, storage.ErrNotFound
	}
	return state, nil
}

type harness struct {
	store    *game.Store
	sessions *fakeSessions
	analyzer *fakeAnalyzer
	persist  *fakePersister
	ts       *httptest.Server
}

func newServerHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:    game.NewStore(game.DemoState()),
		sessions: &fakeSessions{},
		analyzer: &fakeAnalyzer{text: "Zone defense, high energy."},
		persist:  newFakePersister(),
	}
	srv := New(Config{
		Store:    h.store,
		Sessions: h.sessions,
		Analyzer: h.analyzer,
		Persist:  h.persist,
	})
	h.ts = httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		h.ts.Close()
		h.store.Close()
	})
	return h
}

func (h *harness) get(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(h.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func (h *harness) post(t *testing.T, path, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(h.ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func TestStateEndpoint(t *testing.T) {
	h := newServerHarness(t)

	var state game.GameState
	resp := h.get(t, "/api/state", &state)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if state.Home.Name != "HOME" || len(state.Home.Players) != 8 {
		t.Errorf("state = %q with %d players", state.Home.Name, len(state.Home.Players))
	}
}

func TestIntentAdjustScore(t *testing.T) {
	h := newServerHarness(t)
	before := h.store.State().Guest.Score

	var state game.GameState
	resp := h.post(t, "/api/intents/adjust-score", `{"team":"GUEST","delta":3}`, &state)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if state.Guest.Score != before+3 {
		t.Errorf("score = %d, want %d", state.Guest.Score, before+3)
	}
}

func TestIntentClockControls(t *testing.T) {
	h := newServerHarness(t)

	var state game.GameState
	h.post(t, "/api/intents/toggle-clock", "", &state)
	if state.Status != game.StatusLive {
		t.Errorf("status after toggle = %s, want LIVE", state.Status)
	}

	h.post(t, "/api/intents/advance-quarter", "", &state)
	if state.Quarter != 2 || state.GameClock != "12:00" || state.Status != game.StatusPaused {
		t.Errorf("after advance: q=%d clock=%q status=%s", state.Quarter, state.GameClock, state.Status)
	}
}

func TestIntentUnknown(t *testing.T) {
	h := newServerHarness(t)
	resp := h.post(t, "/api/intents/dunk-contest", `{}`, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIntentPlayerField(t *testing.T) {
	h := newServerHarness(t)
	playerID := h.store.State().Home.Players[0].ID
	beforeFGA := h.store.State().Home.Players[0].FGA

	var state game.GameState
	h.post(t, "/api/intents/player-field",
		`{"team":"HOME","playerId":"`+playerID+`","field":"2PA","delta":1}`, &state)
	if got := state.Home.Players[0].FGA; got != beforeFGA+1 {
		t.Errorf("fga = %d, want %d", got, beforeFGA+1)
	}
}

func TestSaveAndLoad(t *testing.T) {
	h := newServerHarness(t)
	h.store.Apply(game.AdjustTeamScore{Team: game.SideHome, Delta: 5})
	wantScore := h.store.State().Home.Score

	resp := h.post(t, "/api/game/save", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}

	h.store.Apply(game.ResetGame{})
	if h.store.State().Home.Score != 0 {
		t.Fatal("reset did not zero the score")
	}

	var state game.GameState
	resp = h.post(t, "/api/game/load", "", &state)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d", resp.StatusCode)
	}
	if state.Home.Score != wantScore {
		t.Errorf("loaded score = %d, want %d", state.Home.Score, wantScore)
	}
	if h.store.State().Home.Score != wantScore {
		t.Errorf("store not rehydrated")
	}
}

func TestLoadCorruptLeavesStateUntouched(t *testing.T) {
	h := newServerHarness(t)
	h.persist.loadErr = storage.ErrCorrupt
	before := h.store.State()

	resp := h.post(t, "/api/game/load", "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	after := h.store.State()
	if after.Home.Score != before.Home.Score || after.Home.Name != before.Home.Name {
		t.Error("corrupt load mutated in-memory state")
	}
}

func TestLoadMissing(t *testing.T) {
	h := newServerHarness(t)
	resp := h.post(t, "/api/game/load", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAnalysis(t *testing.T) {
	h := newServerHarness(t)
	h.sessions.frame = []byte{0xFF, 0xD8, 0xFF, 0xD9}

	var out map[string]string
	resp := h.post(t, "/api/analysis", "", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["analysis"] != "Zone defense, high energy." {
		t.Errorf("analysis = %q", out["analysis"])
	}

	found := false
	for _, e := range h.store.Logs() {
		if e.Message == "Deep Analysis Result:" && e.Type == game.LogAnalysis {
			found = true
		}
	}
	if !found {
		t.Error("analysis result not logged to the feed")
	}
}

func TestAnalysisFailureIsNonFatal(t *testing.T) {
	h := newServerHarness(t)
	h.analyzer.err = errors.New("model unavailable")

	resp := h.post(t, "/api/analysis", "", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	found := false
	for _, e := range h.store.Logs() {
		if e.Message == "Deep analysis failed." {
			found = true
		}
	}
	if !found {
		t.Error("failure not surfaced in the feed")
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	h := newServerHarness(t)

	var status map[string]string
	h.get(t, "/api/session", &status)
	if status["state"] != string(session.StateDisconnected) {
		t.Errorf("initial session state = %q", status["state"])
	}

	resp := h.post(t, "/api/session/start", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	h.sessions.startErr = session.ErrSessionActive
	resp = h.post(t, "/api/session/start", "", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("double start status = %d, want 409", resp.StatusCode)
	}

	resp = h.post(t, "/api/session/stop", "", nil)
	if resp.StatusCode != http.StatusOK || !h.sessions.stopped {
		t.Errorf("stop status = %d, stopped = %v", resp.StatusCode, h.sessions.stopped)
	}
}

func TestMeter(t *testing.T) {
	h := newServerHarness(t)
	var out map[string]any
	h.get(t, "/api/meter", &out)
	if out["level"] != 0.25 {
		t.Errorf("level = %v", out["level"])
	}
	if out["state"] != string(session.StateDisconnected) {
		t.Errorf("state = %v", out["state"])
	}
}

func TestGlossaryAndStats(t *testing.T) {
	h := newServerHarness(t)

	var glossary []stats.GlossaryEntry
	h.get(t, "/api/glossary", &glossary)
	if len(glossary) != 23 {
		t.Errorf("glossary entries = %d, want 23", len(glossary))
	}

	var lines []stats.PlayerLine
	h.get(t, "/api/stats/guest", &lines)
	if len(lines) != 8 {
		t.Errorf("stat lines = %d, want 8", len(lines))
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].Points > lines[i-1].Points {
			t.Errorf("lines not sorted by points desc")
		}
	}
}
