package game

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type captureSaver struct {
	mu    sync.Mutex
	saves []GameState
	err   error
}

func (c *captureSaver) SaveSnapshot(state GameState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves = append(c.saves, state)
	return c.err
}

func (c *captureSaver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saves)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStore_ApplyIsSerializedAndSnapshotted(t *testing.T) {
	s := NewStore(twoPlayerState())
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Apply(AddPoints{Team: SideHome, Points: 2, PlayerNumber: "10"})
		}()
	}
	wg.Wait()

	got := s.State()
	if got.Home.Score != 40 {
		t.Errorf("score = %d, want 40 (no lost updates)", got.Home.Score)
	}
	if got.Home.Players[0].FGM != 20 {
		t.Errorf("fgm = %d, want 20", got.Home.Players[0].FGM)
	}

	// Mutating the returned snapshot must not leak back.
	got.Home.Players[0].Points = 999
	if s.State().Home.Players[0].Points == 999 {
		t.Error("State returned a shared reference")
	}
}

func TestStore_HighlightDwellExpiry(t *testing.T) {
	s := NewStore(twoPlayerState(), WithTimings(30*time.Millisecond, time.Hour))
	defer s.Close()

	s.Apply(AddPoints{Team: SideHome, Points: 2, PlayerNumber: "10"})
	if s.State().LastActivePlayerID != "Home-0" {
		t.Fatalf("highlight not set")
	}

	waitFor(t, func() bool { return s.State().LastActivePlayerID == "" })
}

func TestStore_HighlightRearmOnNewScorer(t *testing.T) {
	s := NewStore(twoPlayerState(), WithTimings(50*time.Millisecond, time.Hour))
	defer s.Close()

	s.Apply(AddPoints{Team: SideHome, Points: 2, PlayerNumber: "10"})
	time.Sleep(30 * time.Millisecond)
	s.Apply(AddPoints{Team: SideHome, Points: 3, ShotType: ShotThree, PlayerNumber: "23"})

	// The first timer would have fired by now; the highlight must still be
	// on the second scorer because the stale clear is a no-op.
	time.Sleep(30 * time.Millisecond)
	if got := s.State().LastActivePlayerID; got != "Home-1" {
		t.Errorf("highlight = %q, want Home-1", got)
	}

	waitFor(t, func() bool { return s.State().LastActivePlayerID == "" })
}

func TestStore_AutosaveWhileLive(t *testing.T) {
	saver := &captureSaver{}
	s := NewStore(twoPlayerState(), WithSaver(saver), WithTimings(time.Hour, 20*time.Millisecond))
	defer s.Close()

	s.Apply(SetScoreboard{HomeScore: 12, GuestScore: 9})

	// The timer re-arms after each save, so more than one fires.
	waitFor(t, func() bool { return saver.count() >= 2 })

	saver.mu.Lock()
	first := saver.saves[0]
	saver.mu.Unlock()
	if first.Home.Score != 12 || first.Guest.Score != 9 {
		t.Errorf("autosaved snapshot = %d-%d, want 12-9", first.Home.Score, first.Guest.Score)
	}
}

func TestStore_NoAutosaveWhileIdle(t *testing.T) {
	saver := &captureSaver{}
	s := NewStore(twoPlayerState(), WithSaver(saver), WithTimings(time.Hour, 15*time.Millisecond))
	defer s.Close()

	// SetTeamName does not change status, so the store stays IDLE.
	s.Apply(SetTeamName{Team: SideHome, Name: "EAGLES"})
	time.Sleep(60 * time.Millisecond)
	if saver.count() != 0 {
		t.Errorf("autosave fired while IDLE: %d saves", saver.count())
	}
}

func TestStore_AutosaveFailureLogsToFeed(t *testing.T) {
	saver := &captureSaver{err: errors.New("disk gone")}
	s := NewStore(twoPlayerState(), WithSaver(saver), WithTimings(time.Hour, 15*time.Millisecond))
	defer s.Close()

	s.Apply(ToggleClock{})
	waitFor(t, func() bool {
		for _, e := range s.Logs() {
			if e.Message == "Failed to save game." {
				return true
			}
		}
		return false
	})
}

func TestStore_SubscribeReceivesStateAndLogs(t *testing.T) {
	s := NewStore(twoPlayerState())
	defer s.Close()

	ch, cancel := s.Subscribe()
	defer cancel()

	s.Apply(AddPoints{Team: SideGuest, Points: 2, PlayerNumber: "7"})
	select {
	case u := <-ch:
		if u.State == nil {
			t.Fatal("expected a state update")
		}
		if u.State.Guest.Score != 2 {
			t.Errorf("update score = %d, want 2", u.State.Guest.Score)
		}
	case <-time.After(time.Second):
		t.Fatal("no state update delivered")
	}

	s.AddLog("Guest Player 1 scores 2 points.", LogScore)
	select {
	case u := <-ch:
		if u.Log == nil {
			t.Fatal("expected a log update")
		}
		if u.Log.Type != LogScore {
			t.Errorf("log type = %s, want score", u.Log.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no log update delivered")
	}
}

func TestStore_CancelStopsDelivery(t *testing.T) {
	s := NewStore(twoPlayerState())
	defer s.Close()

	ch, cancel := s.Subscribe()
	cancel()
	cancel() // idempotent

	// Channel is closed after cancel; mutations must not panic.
	s.Apply(RecordFoul{Team: SideHome, FoulType: "Personal"})
	if _, ok := <-ch; ok {
		t.Error("received on cancelled subscription")
	}
}

func TestStore_ResetClearsLogs(t *testing.T) {
	s := NewStore(twoPlayerState())
	defer s.Close()

	s.AddLog("tip-off", LogInfo)
	s.AddLog("HOME scores.", LogScore)
	if len(s.Logs()) != 2 {
		t.Fatalf("logs = %d, want 2", len(s.Logs()))
	}

	s.Apply(ResetGame{})
	if len(s.Logs()) != 0 {
		t.Errorf("logs survived reset: %d", len(s.Logs()))
	}
	if s.State().Home.Score != 0 {
		t.Errorf("state not reset")
	}
}

func TestStore_LoadFromReplacesDocument(t *testing.T) {
	s := NewStore(twoPlayerState())
	defer s.Close()

	ch, cancel := s.Subscribe()
	defer cancel()

	loaded := DemoState()
	loaded.Home.Name = "RESTORED"
	s.LoadFrom(loaded)

	if s.State().Home.Name != "RESTORED" {
		t.Errorf("document not replaced")
	}
	select {
	case u := <-ch:
		if u.State == nil || u.State.Home.Name != "RESTORED" {
			t.Errorf("subscribers not told about the load")
		}
	case <-time.After(time.Second):
		t.Fatal("no update after load")
	}
}
