package game

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Intent is a tagged description of one desired state change. The set of
// implementations below is closed; Reduce ignores anything else.
type Intent interface{ isIntent() }

// SetScoreboard overwrites both scores (and team names when present) with
// values read off an externally observed scoreboard. Absolute, idempotent.
type SetScoreboard struct {
	HomeScore  int
	GuestScore int
	HomeName   string
	GuestName  string
}

// AddPoints is an incremental score change. The team score always moves;
// player counters move only when PlayerNumber matches a roster entry by
// numeric equality.
type AddPoints struct {
	Team         Side
	Points       int
	Reason       string
	PlayerNumber string // empty when the shooter was not identified
	ShotType     ShotType
	X, Y         *float64
}

// RecordFoul increments a team's foul count. FoulType is a display label.
type RecordFoul struct {
	Team     Side
	FoulType string
}

// SetClock overwrites the clock display verbatim and, when Period is set,
// the quarter.
type SetClock struct {
	Clock  string
	Period *int
}

// AdjustTeamScore is the manual +/- control, clamped at zero.
type AdjustTeamScore struct {
	Team  Side
	Delta int
}

// AdjustPlayerField is the manual per-player editor. The composite fields
// 2PM/2PA/3PM/3PA encode basketball semantics (a make implies an attempt);
// other numeric fields take a clamped delta; "number" and "name" overwrite.
type AdjustPlayerField struct {
	Team     Side
	PlayerID string
	Field    string
	Delta    int
	Value    string // used by non-numeric fields only
}

// ReplacePlayer overwrites a full player record by ID, bypassing the
// composite-field logic. The caller owns consistency.
type ReplacePlayer struct {
	Team   Side
	Player Player
}

// ResetGame replaces both rosters with zeroed ones and returns to IDLE.
type ResetGame struct{}

// SetStatus is used by the session lifecycle (start -> LIVE, teardown ->
// PAUSED). Manual clock control goes through ToggleClock instead.
type SetStatus struct{ Status Status }

// SetTeamName renames one side.
type SetTeamName struct {
	Team Side
	Name string
}

// ToggleClock flips LIVE and PAUSED.
type ToggleClock struct{}

// ResetClock returns the clock display to 12:00 and pauses.
type ResetClock struct{}

// AdvanceQuarter moves to the next period, capped at 4.
type AdvanceQuarter struct{}

func (SetScoreboard) isIntent()     {}
func (AddPoints) isIntent()         {}
func (RecordFoul) isIntent()        {}
func (SetClock) isIntent()          {}
func (AdjustTeamScore) isIntent()   {}
func (AdjustPlayerField) isIntent() {}
func (ReplacePlayer) isIntent()     {}
func (ResetGame) isIntent()         {}
func (SetStatus) isIntent()         {}
func (SetTeamName) isIntent()       {}
func (ToggleClock) isIntent()       {}
func (ResetClock) isIntent()        {}
func (AdvanceQuarter) isIntent()    {}

// now is swappable in tests.
var now = time.Now

func newID() string { return uuid.NewString() }

func stamp(g *GameState) {
	g.LastUpdate = now().Format("3:04:05 PM")
}

// Reduce folds one intent into a new state. It is total: malformed input is
// clamped or ignored, never rejected, because tool calls from the live
// session cannot be retried synchronously.
func Reduce(state GameState, in Intent) GameState {
	g := state.Clone()
	switch v := in.(type) {
	case SetScoreboard:
		g.Home.Score = clamp(v.HomeScore)
		g.Guest.Score = clamp(v.GuestScore)
		if v.HomeName != "" {
			g.Home.Name = v.HomeName
		}
		if v.GuestName != "" {
			g.Guest.Name = v.GuestName
		}
		g.Status = StatusLive
		stamp(&g)

	case AddPoints:
		applyAddPoints(&g, v)
		stamp(&g)

	case RecordFoul:
		team(&g, v.Team).Fouls++
		stamp(&g)

	case SetClock:
		g.GameClock = v.Clock
		if v.Period != nil {
			g.Quarter = *v.Period
		}
		stamp(&g)

	case AdjustTeamScore:
		t := team(&g, v.Team)
		t.Score = clamp(t.Score + v.Delta)
		stamp(&g)

	case AdjustPlayerField:
		applyPlayerField(team(&g, v.Team), v)
		stamp(&g)

	case ReplacePlayer:
		t := team(&g, v.Team)
		for i := range t.Players {
			if t.Players[i].ID == v.Player.ID {
				t.Players[i] = v.Player.clone()
				break
			}
		}
		stamp(&g)

	case ResetGame:
		g = FreshState()

	case SetStatus:
		g.Status = v.Status

	case SetTeamName:
		team(&g, v.Team).Name = v.Name

	case ToggleClock:
		if g.Status == StatusLive {
			g.Status = StatusPaused
		} else {
			g.Status = StatusLive
		}

	case ResetClock:
		g.GameClock = "12:00"
		g.Status = StatusPaused

	case AdvanceQuarter:
		if g.Quarter < 4 {
			g.Quarter++
		}
		g.GameClock = "12:00"
		g.Status = StatusPaused
	}
	return g
}

func applyAddPoints(g *GameState, v AddPoints) {
	t := team(g, v.Team)
	t.Score = clamp(t.Score + v.Points)
	g.Status = StatusLive

	p := findByNumber(t, v.PlayerNumber)
	if p == nil {
		return
	}
	g.LastActivePlayerID = p.ID

	st := resolveShotType(v.ShotType, v.Points)
	recordType := st
	if recordType == "" {
		recordType = ShotTwo
	}
	p.Shots = append(p.Shots, Shot{
		ID:        newID(),
		X:         coord(v.X, 50),
		Y:         coord(v.Y, defaultShotY(recordType)),
		Type:      recordType,
		Made:      true,
		Timestamp: now(),
	})

	switch st {
	case ShotThree:
		// A three is also a field goal.
		p.FG3M++
		p.FG3A++
		p.FGM++
		p.FGA++
		p.Points += 3
	case ShotTwo:
		p.FGM++
		p.FGA++
		p.Points += 2
	case ShotFreeThrow:
		p.FTM++
		p.FTA++
		p.Points++
	default:
		// Unclassified: keep the point total moving, and keep shooting
		// percentages meaningful for multi-point plays.
		p.Points = clamp(p.Points + v.Points)
		if v.Points >= 2 {
			p.FGM++
			p.FGA++
		}
	}
}

// resolveShotType prefers the explicit classification, then infers from the
// point value.
func resolveShotType(st ShotType, points int) ShotType {
	switch st {
	case ShotTwo, ShotThree, ShotFreeThrow:
		return st
	}
	switch points {
	case 2:
		return ShotTwo
	case 3:
		return ShotThree
	case 1:
		return ShotFreeThrow
	}
	return ""
}

func defaultShotY(st ShotType) float64 {
	if st == ShotThree {
		return 80
	}
	return 20
}

func coord(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// findByNumber matches a roster entry by coerced numeric jersey equality.
// "07" matches "7"; a non-numeric query or jersey never matches.
func findByNumber(t *Team, number string) *Player {
	if number == "" {
		return nil
	}
	want, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return nil
	}
	for i := range t.Players {
		got, err := strconv.ParseFloat(t.Players[i].Number, 64)
		if err != nil {
			continue
		}
		if got == want {
			return &t.Players[i]
		}
	}
	return nil
}

func applyPlayerField(t *Team, v AdjustPlayerField) {
	var p *Player
	for i := range t.Players {
		if t.Players[i].ID == v.PlayerID {
			p = &t.Players[i]
			break
		}
	}
	if p == nil {
		return
	}

	d := v.Delta
	switch v.Field {
	case "2PM":
		// Adding or removing a made two moves the attempt and the points
		// with it; a decrement removes the basket, it does not convert it
		// to a miss.
		p.FGM = clamp(p.FGM + d)
		p.FGA = clamp(p.FGA + d)
		p.Points = clamp(p.Points + d*2)
	case "2PA":
		// Attempts alone: the mechanism for recording a miss.
		p.FGA = clamp(p.FGA + d)
	case "3PM":
		p.FG3M = clamp(p.FG3M + d)
		p.FG3A = clamp(p.FG3A + d)
		p.FGM = clamp(p.FGM + d)
		p.FGA = clamp(p.FGA + d)
		p.Points = clamp(p.Points + d*3)
	case "3PA":
		p.FG3A = clamp(p.FG3A + d)
		p.FGA = clamp(p.FGA + d)
	case "points":
		p.Points = clamp(p.Points + d)
	case "fouls":
		p.Fouls = clamp(p.Fouls + d)
	case "assists":
		p.Assists = clamp(p.Assists + d)
	case "minutes":
		p.Minutes = clamp(p.Minutes + d)
	case "fgm":
		p.FGM = clamp(p.FGM + d)
	case "fga":
		p.FGA = clamp(p.FGA + d)
	case "fg3m":
		p.FG3M = clamp(p.FG3M + d)
	case "fg3a":
		p.FG3A = clamp(p.FG3A + d)
	case "ftm":
		p.FTM = clamp(p.FTM + d)
	case "fta":
		p.FTA = clamp(p.FTA + d)
	case "orb":
		p.ORB = clamp(p.ORB + d)
	case "drb":
		p.DRB = clamp(p.DRB + d)
	case "tov":
		p.TOV = clamp(p.TOV + d)
	case "stl":
		p.STL = clamp(p.STL + d)
	case "blk":
		p.BLK = clamp(p.BLK + d)
	case "number":
		p.Number = v.Value
	case "name":
		p.Name = v.Value
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
