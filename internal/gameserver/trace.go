package gameserver

import (
	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/storage/postgres"
)

// ArchetypeIndex maps each enemy's UID to its archetype label. Capture it
// at battle start: slain and fallen enemies leave the roster, but their
// trace rows still need the label.
func ArchetypeIndex(enemies []*actor.Enemy) map[string]string {
	idx := make(map[string]string, len(enemies))
	for _, en := range enemies {
		idx[en.UID] = en.Archetype.String()
	}
	return idx
}

// traceAction maps enemy action events to trace labels. Events that are
// not enemy decisions (player actions, taunts, flavor) map to "".
func traceAction(t encounter.EventType) string {
	switch t {
	case encounter.EventEnemyMoved:
		return "move"
	case encounter.EventEnemyCharged:
		return "charge"
	case encounter.EventEnemyAttacked:
		return "attack"
	case encounter.EventEnemyBumped:
		return "bump"
	case encounter.EventEnemyFell:
		return "fall"
	default:
		return ""
	}
}

// TracesFromEvents converts one battle's enemy decision events into trace
// rows for persistence. Events from actors missing from archetypes are
// kept with an empty archetype rather than dropped.
func TracesFromEvents(battleID string, events []encounter.Event, archetypes map[string]string) []postgres.TurnTrace {
	var out []postgres.TurnTrace
	for _, ev := range events {
		action := traceAction(ev.Type)
		if action == "" || ev.ActorUID == "" {
			continue
		}
		out = append(out, postgres.TurnTrace{
			BattleID:  battleID,
			Turn:      ev.Turn,
			EnemyUID:  ev.ActorUID,
			Archetype: archetypes[ev.ActorUID],
			FromX:     ev.From.X,
			FromY:     ev.From.Y,
			ToX:       ev.To.X,
			ToY:       ev.To.Y,
			Action:    action,
		})
	}
	return out
}
