// Package game holds the authoritative game-state document and the reducer
// that is its sole write path. Everything else in the process — the live AI
// session, the manual UI boundary, persistence — mutates state exclusively
// through Store.Apply with one of the intents defined in reducer.go.
package game

import "time"

// Status is the lifecycle of the scoring session and clock, not of
// connectivity to the AI backend.
type Status string

const (
	StatusIdle   Status = "IDLE"
	StatusLive   Status = "LIVE"
	StatusPaused Status = "PAUSED"
	StatusEnded  Status = "ENDED"
)

// Side selects one of the two structurally identical teams.
type Side string

const (
	SideHome  Side = "HOME"
	SideGuest Side = "GUEST"
)

// ParseSide normalizes a team selector from tool arguments or UI input.
// Unknown values fall back to HOME; tool calls are best-effort, never
// rejected.
func ParseSide(s string) Side {
	switch s {
	case "GUEST", "guest", "Guest", "AWAY", "away", "Away":
		return SideGuest
	default:
		return SideHome
	}
}

// ShotType classifies a made basket. The wire values match the enum the
// model is given in the tool schema.
type ShotType string

const (
	ShotTwo       ShotType = "2FG"
	ShotThree     ShotType = "3FG"
	ShotFreeThrow ShotType = "FT"
)

// Shot is one made basket with court-relative coordinates. Misses are never
// recorded; attempt counters move independently of shot history.
type Shot struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"` // 0 left sideline .. 100 right sideline
	Y         float64   `json:"y"` // 0 baseline .. 100 halfcourt
	Type      ShotType  `json:"type"`
	Made      bool      `json:"made"`
	Timestamp time.Time `json:"timestamp"`
}

// Player carries the per-player box score. Points is maintained
// incrementally in lockstep with makes; it is never recomputed from the
// shooting counters.
type Player struct {
	ID      string `json:"id"`
	Number  string `json:"number"` // display-only, may be non-numeric
	Name    string `json:"name"`
	IsCourt bool   `json:"isCourt"`

	Points  int `json:"points"`
	Fouls   int `json:"fouls"`
	Assists int `json:"assists"`
	Minutes int `json:"minutes"`
	FGM     int `json:"fgm"`
	FGA     int `json:"fga"`
	FG3M    int `json:"fg3m"`
	FG3A    int `json:"fg3a"`
	FTM     int `json:"ftm"`
	FTA     int `json:"fta"`
	ORB     int `json:"orb"`
	DRB     int `json:"drb"`
	TOV     int `json:"tov"`
	STL     int `json:"stl"`
	BLK     int `json:"blk"`

	Shots []Shot `json:"shots"`
}

// Team is one side of the scoreboard. Players keep insertion order; that is
// the roster order the UI renders.
type Team struct {
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Fouls    int      `json:"fouls"`
	Timeouts int      `json:"timeouts"`
	Players  []Player `json:"players"`
}

// GameState is the single authoritative document.
type GameState struct {
	Status             Status `json:"status"`
	Quarter            int    `json:"quarter"`
	GameClock          string `json:"gameClock"` // display string, set verbatim
	Home               Team   `json:"home"`
	Guest              Team   `json:"guest"`
	LastUpdate         string `json:"lastUpdate"`
	LastActivePlayerID string `json:"lastActivePlayerId,omitempty"`
}

// LogType categorizes feed entries for the UI.
type LogType string

const (
	LogInfo     LogType = "info"
	LogScore    LogType = "score"
	LogFoul     LogType = "foul"
	LogAnalysis LogType = "analysis"
)

// LogEntry is one item of the append-only event feed. The feed is purely
// observational; the reducer never reads it back.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
}

// Clone returns a deep copy. Reducers operate on clones so callers can hold
// snapshots without racing later mutations.
func (g GameState) Clone() GameState {
	out := g
	out.Home = g.Home.clone()
	out.Guest = g.Guest.clone()
	return out
}

func (t Team) clone() Team {
	out := t
	out.Players = make([]Player, len(t.Players))
	for i, p := range t.Players {
		out.Players[i] = p.clone()
	}
	return out
}

func (p Player) clone() Player {
	out := p
	out.Shots = append([]Shot(nil), p.Shots...)
	return out
}

// team returns the mutable side of a (cloned) state.
func team(g *GameState, side Side) *Team {
	if side == SideGuest {
		return &g.Guest
	}
	return &g.Home
}
