package session

import "google.golang.org/genai"

// Tool names the model can invoke.
const (
	toolSyncScoreboard = "sync_scoreboard"
	toolUpdateScore    = "update_score"
	toolUpdateFouls    = "update_fouls"
	toolUpdateClock    = "update_game_clock"
	toolLogAction      = "log_action"
)

// toolDeclarations is the fixed schema handed to the live session. The
// argument names and enums here are load-bearing: dispatch coerces against
// exactly these keys.
func toolDeclarations() []*genai.Tool {
	syncScoreboard := &genai.FunctionDeclaration{
		Name:        toolSyncScoreboard,
		Description: "Synchronize the app scoreboard with the visible on-screen scoreboard overlay. Use this when you first connect or whenever you see the broadcast scoreboard. This SETS the absolute score values.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"home_score":      {Type: genai.TypeNumber, Description: "The HOME team's current score shown on the visible scoreboard."},
				"guest_score":     {Type: genai.TypeNumber, Description: "The GUEST/AWAY team's current score shown on the visible scoreboard."},
				"home_team_name":  {Type: genai.TypeString, Description: `The HOME team name if visible (e.g., "TULANE").`},
				"guest_team_name": {Type: genai.TypeString, Description: `The GUEST team name if visible (e.g., "BOSTON COLLEGE").`},
			},
			Required: []string{"home_score", "guest_score"},
		},
	}

	updateScore := &genai.FunctionDeclaration{
		Name:        toolUpdateScore,
		Description: "Update the score for a specific team when a basket is made or points are awarded. This ADDS points.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"team":          {Type: genai.TypeString, Enum: []string{"HOME", "GUEST"}, Description: "The team that scored."},
				"points":        {Type: genai.TypeNumber, Description: "Points to add (1, 2, or 3)."},
				"reason":        {Type: genai.TypeString, Description: `Short description of the play (e.g., "Three pointer from the corner").`},
				"player_number": {Type: genai.TypeNumber, Description: "The jersey number of the player who scored, if visible."},
				"shot_type": {
					Type: genai.TypeString,
					Enum: []string{"2FG", "3FG", "FT"},
					Description: "The type of shot: 2-point field goal (2FG), 3-point field goal (3FG), or Free Throw (FT).",
				},
				"location_x": {
					Type:        genai.TypeNumber,
					Description: "Shot location X coordinate (0-100). 0 is the left sideline (looking at hoop), 50 is center court, 100 is right sideline.",
				},
				"location_y": {
					Type:        genai.TypeNumber,
					Description: "Shot location Y coordinate (0-100). 0 is the baseline/under hoop, 100 is the halfcourt line.",
				},
			},
			Required: []string{"team", "points", "reason"},
		},
	}

	updateFouls := &genai.FunctionDeclaration{
		Name:        toolUpdateFouls,
		Description: "Record a foul for a team.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"team": {Type: genai.TypeString, Enum: []string{"HOME", "GUEST"}},
				"type": {Type: genai.TypeString, Description: `Type of foul (e.g., "Personal", "Technical").`},
			},
			Required: []string{"team", "type"},
		},
	}

	updateClock := &genai.FunctionDeclaration{
		Name:        toolUpdateClock,
		Description: "Update the game clock and period based on the visible scoreboard in the video.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"clock":  {Type: genai.TypeString, Description: `The time remaining (e.g., "12:00", "04:35").`},
				"period": {Type: genai.TypeNumber, Description: "The current period/quarter number."},
			},
			Required: []string{"clock"},
		},
	}

	logAction := &genai.FunctionDeclaration{
		Name:        toolLogAction,
		Description: "Log a visible game action or player movement to the event feed.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"action_type": {
					Type: genai.TypeString,
					Enum: []string{"DRIBBLE", "PASS", "SHOT_ATTEMPT", "REBOUND", "DEFENSE", "OTHER"},
					Description: "The category of the action.",
				},
				"description":   {Type: genai.TypeString, Description: `Brief description of the event (e.g., "Player 10 drives to the basket", "Cross-court pass to corner").`},
				"player_number": {Type: genai.TypeNumber, Description: "Jersey number if visible."},
				"is_free_throw": {Type: genai.TypeBoolean, Description: "True if the action is related to a free throw."},
			},
			Required: []string{"action_type", "description"},
		},
	}

	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			syncScoreboard, updateScore, updateFouls, updateClock, logAction,
		},
	}}
}
