package session

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/courtside-ai/courtside/internal/game"
)

// Dispatcher folds inbound tool calls into game state. Calls in one batch
// are applied strictly in order, each mutation committed and logged before
// the next begins, and every call gets exactly one acknowledgment whether
// or not its arguments made sense.
type Dispatcher struct {
	store  *game.Store
	logger *slog.Logger
}

// NewDispatcher wires the dispatch table to the state store.
func NewDispatcher(store *game.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: store, logger: logger}
}

// Dispatch applies a batch and returns one ack per call, in call order.
func (d *Dispatcher) Dispatch(calls []ToolCall) []ToolAck {
	acks := make([]ToolAck, 0, len(calls))
	for _, call := range calls {
		d.apply(call)
		acks = append(acks, ToolAck{
			ID:       call.ID,
			Name:     call.Name,
			Response: map[string]any{"result": map[string]any{"status": "ok"}},
		})
	}
	return acks
}

func (d *Dispatcher) apply(call ToolCall) {
	switch call.Name {
	case toolSyncScoreboard:
		d.syncScoreboard(call.Args)
	case toolUpdateScore:
		d.updateScore(call.Args)
	case toolUpdateFouls:
		d.updateFouls(call.Args)
	case toolUpdateClock:
		d.updateClock(call.Args)
	case toolLogAction:
		d.logAction(call.Args)
	default:
		// Still acknowledged by the caller; an unanswered id stalls the
		// model.
		d.logger.Warn("unknown tool call", "name", call.Name, "id", call.ID)
	}
}

func (d *Dispatcher) syncScoreboard(args map[string]any) {
	homeScore := int(argNum(args, "home_score", 0))
	guestScore := int(argNum(args, "guest_score", 0))
	homeName := argStr(args, "home_team_name")
	guestName := argStr(args, "guest_team_name")

	d.store.Apply(game.SetScoreboard{
		HomeScore:  homeScore,
		GuestScore: guestScore,
		HomeName:   homeName,
		GuestName:  guestName,
	})

	label := fmt.Sprintf("%d - %d", homeScore, guestScore)
	if homeName != "" && guestName != "" {
		label = fmt.Sprintf("%s %d - %d %s", homeName, homeScore, guestScore, guestName)
	}
	d.store.AddLog("Synced with broadcast scoreboard: "+label, game.LogInfo)
}

func (d *Dispatcher) updateScore(args map[string]any) {
	team := game.ParseSide(argStr(args, "team"))
	points := int(argNum(args, "points", 0))
	reason := argStr(args, "reason")
	shotType := game.ShotType(argStr(args, "shot_type"))

	in := game.AddPoints{
		Team:         team,
		Points:       points,
		Reason:       reason,
		PlayerNumber: argNumStr(args, "player_number"),
		ShotType:     shotType,
	}
	if x, ok := argNumOK(args, "location_x"); ok {
		in.X = &x
	}
	if y, ok := argNumOK(args, "location_y"); ok {
		in.Y = &y
	}
	d.store.Apply(in)

	label := string(shotType)
	if label == "" {
		label = "Pts"
	}
	d.store.AddLog(fmt.Sprintf("%s scores %d! (%s) %s", team, points, label, reason), game.LogScore)
}

func (d *Dispatcher) updateFouls(args map[string]any) {
	team := game.ParseSide(argStr(args, "team"))
	foulType := argStr(args, "type")
	d.store.Apply(game.RecordFoul{Team: team, FoulType: foulType})
	d.store.AddLog(fmt.Sprintf("Foul on %s: %s", team, foulType), game.LogFoul)
}

func (d *Dispatcher) updateClock(args map[string]any) {
	in := game.SetClock{Clock: argStr(args, "clock")}
	if p, ok := argNumOK(args, "period"); ok {
		period := int(p)
		in.Period = &period
	}
	d.store.Apply(in)

	if in.Period != nil {
		d.store.AddLog(fmt.Sprintf("Clock set to %s (Q%d)", in.Clock, *in.Period), game.LogInfo)
	} else {
		d.store.AddLog(fmt.Sprintf("Clock set to %s", in.Clock), game.LogInfo)
	}
}

// logAction is observation without mutation: the feed entry is the whole
// effect.
func (d *Dispatcher) logAction(args map[string]any) {
	actionType := argStr(args, "action_type")
	description := argStr(args, "description")

	typeStr := actionType
	if argBool(args, "is_free_throw") {
		typeStr = "FT " + actionType
	}
	playerStr := ""
	if num := argNumStr(args, "player_number"); num != "" {
		playerStr = fmt.Sprintf(" (#%s)", num)
	}
	d.store.AddLog(fmt.Sprintf("[%s] %s%s", typeStr, description, playerStr), game.LogAnalysis)
}

// Argument coercion. Tool arguments arrive as loosely typed JSON; numbers
// may be float64 or quoted strings, and anything may be missing. Coercion
// happens here, once, so the reducer only sees clean intents.

func argNum(args map[string]any, key string, fallback float64) float64 {
	if v, ok := argNumOK(args, key); ok {
		return v
	}
	return fallback
}

func argNumOK(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// argNumStr renders a numeric argument as the canonical jersey string, or
// "" when absent.
func argNumStr(args map[string]any, key string) string {
	v, ok := argNumOK(args, key)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func argStr(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func argBool(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
