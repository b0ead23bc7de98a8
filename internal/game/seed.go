package game

import (
	"fmt"
	"math/rand"
	"time"
)

// DemoState builds the initial scoreboard shown before a real game is
// tracked: a plausible in-progress game with randomized box scores, so the
// advanced-stats views have something to render.
func DemoState() GameState {
	return GameState{
		Status:    StatusIdle,
		Quarter:   1,
		GameClock: "12:00",
		Home: Team{
			Name:     "HOME",
			Score:    86,
			Fouls:    2,
			Timeouts: 3,
			Players:  demoPlayers("Home"),
		},
		Guest: Team{
			Name:     "GUEST",
			Score:    82,
			Fouls:    4,
			Timeouts: 2,
			Players:  demoPlayers("Guest"),
		},
		LastUpdate: "Just now",
	}
}

// FreshState is the zeroed document used for a new game.
func FreshState() GameState {
	return GameState{
		Status:    StatusIdle,
		Quarter:   1,
		GameClock: "12:00",
		Home: Team{
			Name:     "HOME",
			Timeouts: 3,
			Players:  freshPlayers("Home"),
		},
		Guest: Team{
			Name:     "GUEST",
			Timeouts: 3,
			Players:  freshPlayers("Guest"),
		},
		LastUpdate: "New Game",
	}
}

// demoPlayers generates eight players per side, five starters, with
// realistic shooting splits. Points is derived from the counters once, at
// seed time; from then on the reducer maintains it incrementally.
func demoPlayers(prefix string) []Player {
	players := make([]Player, 0, 8)
	for i := 0; i < 8; i++ {
		minutes := rand.Intn(12)
		if i < 5 {
			minutes = 18 + rand.Intn(10)
		}
		fga := minutes/2 + rand.Intn(5)
		fgm := int(float64(fga) * (0.35 + rand.Float64()*0.2))
		fg3a := int(float64(fga) * 0.4)
		fg3m := int(float64(fg3a) * (0.3 + rand.Float64()*0.15))
		fta := rand.Intn(6)
		ftm := int(float64(fta) * 0.75)
		points := (fgm-fg3m)*2 + fg3m*3 + ftm

		assists := rand.Intn(2)
		if i < 5 {
			assists = rand.Intn(8)
		}

		shots := make([]Shot, 0, fgm)
		for s := 0; s < fgm; s++ {
			st := ShotTwo
			if rand.Float64() > 0.7 {
				st = ShotThree
			}
			shots = append(shots, Shot{
				ID:        newID(),
				X:         rand.Float64() * 100,
				Y:         rand.Float64() * 90,
				Type:      st,
				Made:      true,
				Timestamp: time.Now().Add(-time.Duration(rand.Intn(3600)) * time.Second),
			})
		}

		players = append(players, Player{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Number:  fmt.Sprintf("%d", (i+1)*10+rand.Intn(9)),
			Name:    fmt.Sprintf("%s Player %d", prefix, i+1),
			IsCourt: i < 5,
			Points:  points,
			Fouls:   rand.Intn(3),
			Assists: assists,
			Minutes: minutes,
			FGM:     fgm,
			FGA:     fga,
			FG3M:    fg3m,
			FG3A:    fg3a,
			FTM:     ftm,
			FTA:     fta,
			ORB:     rand.Intn(3),
			DRB:     rand.Intn(6),
			TOV:     rand.Intn(4),
			STL:     rand.Intn(3),
			BLK:     rand.Intn(2),
			Shots:   shots,
		})
	}
	return players
}

func freshPlayers(prefix string) []Player {
	players := make([]Player, 0, 8)
	for i := 0; i < 8; i++ {
		players = append(players, Player{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Number:  fmt.Sprintf("%d", (i+1)*10+rand.Intn(9)),
			Name:    fmt.Sprintf("%s Player %d", prefix, i+1),
			IsCourt: i < 5,
			Shots:   []Shot{},
		})
	}
	return players
}
