// Package stats derives presentation-only advanced metrics from a team
// snapshot. It never writes game state.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/courtside-ai/courtside/internal/game"
)

// NA marks a metric the tracked box score cannot support. The engine never
// fabricates a value for these.
const NA = "NA"

// ftPossessionCoeff is the standard possession-estimate weight for free
// throw trips.
const ftPossessionCoeff = 0.44

// GlossaryEntry describes one metric for the glossary view.
type GlossaryEntry struct {
	Category   string `json:"category"`
	Metric     string `json:"metric"`
	Definition string `json:"definition"`
}

var glossary = []GlossaryEntry{
	{"Shooting & Scoring Efficiency", "TS%", "True Shooting Percentage"},
	{"Shooting & Scoring Efficiency", "eFG%", "Effective Field Goal Percentage"},
	{"Shooting & Scoring Efficiency", "PPS", "Points Per Shot"},
	{"Shooting & Scoring Efficiency", "FTr", "Free Throw Rate"},
	{"Shooting & Scoring Efficiency", "3PAr", "3-Point Attempt Rate"},
	{"Possession-Based", "Pace", "Possessions per 48 minutes"},
	{"Possession-Based", "PPP", "Points Per Possession"},
	{"Possession-Based", "ORtg", "Offensive Rating"},
	{"Possession-Based", "DRtg", "Defensive Rating"},
	{"Possession-Based", "NetRtg", "Net Rating"},
	{"Rebounding", "OREB%", "Offensive Rebound Percentage"},
	{"Rebounding", "DREB%", "Defensive Rebound Percentage"},
	{"Rebounding", "REB%", "Total Rebound Percentage"},
	{"Creation & Passing", "AST%", "Assist Percentage"},
	{"Creation & Passing", "AST/TO", "Assist to Turnover Ratio"},
	{"Creation & Passing", "TOV%", "Turnover Percentage"},
	{"On/Off Impact", "On-Off Net Rating", "On vs off court impact"},
	{"On/Off Impact", "RAPM", "Regularized Adjusted Plus-Minus"},
	{"Defense", "DBPM", "Defensive Box Plus Minus"},
	{"Defense", "Deflections", "Ball disruptions"},
	{"Defense", "Opponent Rim FG%", "FG% allowed at rim when contesting"},
	{"Usage & Role", "USG%", "Usage Percentage"},
	{"Usage & Role", "Play-Type PPP", "Points per possession by play type"},
}

// Glossary returns the full metric glossary in display order.
func Glossary() []GlossaryEntry {
	return append([]GlossaryEntry(nil), glossary...)
}

// Columns lists the metrics whose category contains the given tab label.
func Columns(tab string) []string {
	var out []string
	for _, e := range glossary {
		if strings.Contains(e.Category, tab) {
			out = append(out, e.Metric)
		}
	}
	return out
}

// PlayerLine is one row of the advanced-stats table: the player identity
// plus every glossary metric, formatted for display.
type PlayerLine struct {
	PlayerID string            `json:"playerId"`
	Number   string            `json:"number"`
	Name     string            `json:"name"`
	Points   int               `json:"points"`
	Metrics  map[string]string `json:"metrics"`
}

// TeamReport computes every metric for every player on the team, sorted by
// points descending. Pure function of the snapshot.
func TeamReport(t game.Team) []PlayerLine {
	teamFGM := 0
	teamPoss := 0.0
	for _, p := range t.Players {
		teamFGM += p.FGM
		teamPoss += possessions(p)
	}

	lines := make([]PlayerLine, 0, len(t.Players))
	for _, p := range t.Players {
		m := make(map[string]string, len(glossary))
		for _, e := range glossary {
			m[e.Metric] = metric(p, e.Metric, teamFGM, teamPoss)
		}
		lines = append(lines, PlayerLine{
			PlayerID: p.ID,
			Number:   p.Number,
			Name:     p.Name,
			Points:   p.Points,
			Metrics:  m,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Points > lines[j].Points })
	return lines
}

func possessions(p game.Player) float64 {
	return float64(p.FGA) + ftPossessionCoeff*float64(p.FTA) + float64(p.TOV)
}

func metric(p game.Player, name string, teamFGM int, teamPoss float64) string {
	fga := float64(p.FGA)
	poss := possessions(p)

	switch name {
	case "TS%":
		tsa := fga + ftPossessionCoeff*float64(p.FTA)
		if tsa <= 0 {
			return NA
		}
		return pct(float64(p.Points) / (2 * tsa))
	case "eFG%":
		if fga <= 0 {
			return NA
		}
		return pct((float64(p.FGM) + 0.5*float64(p.FG3M)) / fga)
	case "PPS":
		if fga <= 0 {
			return NA
		}
		return fmt.Sprintf("%.2f", float64(p.Points)/fga)
	case "FTr":
		if fga <= 0 {
			return NA
		}
		return fmt.Sprintf("%.3f", float64(p.FTA)/fga)
	case "3PAr":
		if fga <= 0 {
			return NA
		}
		return fmt.Sprintf("%.3f", float64(p.FG3A)/fga)
	case "PPP":
		if poss <= 0 {
			return NA
		}
		return fmt.Sprintf("%.2f", float64(p.Points)/poss)
	case "AST%":
		if teamFGM <= 0 {
			return NA
		}
		return pct(float64(p.Assists) / float64(teamFGM))
	case "AST/TO":
		if p.TOV > 0 {
			return fmt.Sprintf("%.2f", float64(p.Assists)/float64(p.TOV))
		}
		if p.Assists > 0 {
			return "Inf"
		}
		return NA
	case "TOV%":
		if poss <= 0 {
			return "0.0%"
		}
		return pct(float64(p.TOV) / poss)
	case "USG%":
		if teamPoss <= 0 {
			return NA
		}
		return pct(poss / teamPoss)
	}

	// Pace, ratings, rebound shares, on/off, defensive impact and play-type
	// splits all need possession or stint tracking the box score does not
	// carry. Report them as unavailable instead of estimating.
	return NA
}

func pct(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
