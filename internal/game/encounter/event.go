package encounter

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// EventType classifies one battle event.
type EventType int

const (
	EventPlayerMoved EventType = iota
	EventPlayerBlocked
	EventPlayerAttacked
	EventPlayerStruck
	EventPlayerSlain
	EventPlayerExited
	EventEnemyMoved
	EventEnemyCharged
	EventEnemyAttacked
	EventEnemyBumped
	EventEnemySlain
	EventEnemyFell
	EventKnockback
	EventTaunt
	EventSignRead
	EventVictory
	// EventFlavor carries board-script broadcast lines. It is synthesized
	// by the transport layer, never emitted by the battle itself.
	EventFlavor
)

// String returns the wire label for the event type.
func (t EventType) String() string {
	switch t {
	case EventPlayerMoved:
		return "player_moved"
	case EventPlayerBlocked:
		return "player_blocked"
	case EventPlayerAttacked:
		return "player_attacked"
	case EventPlayerStruck:
		return "player_struck"
	case EventPlayerSlain:
		return "player_slain"
	case EventPlayerExited:
		return "player_exited"
	case EventEnemyMoved:
		return "enemy_moved"
	case EventEnemyCharged:
		return "enemy_charged"
	case EventEnemyAttacked:
		return "enemy_attacked"
	case EventEnemyBumped:
		return "enemy_bumped"
	case EventEnemySlain:
		return "enemy_slain"
	case EventEnemyFell:
		return "enemy_fell"
	case EventKnockback:
		return "knockback"
	case EventTaunt:
		return "taunt"
	case EventSignRead:
		return "sign_read"
	case EventVictory:
		return "victory"
	case EventFlavor:
		return "flavor"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the event type as its wire label.
func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a wire label back into an event type.
func (t *EventType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for et := EventPlayerMoved; et <= EventFlavor; et++ {
		if et.String() == s {
			*t = et
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", s)
}

// Event records what happened when one action resolved. Events are emitted
// in resolution order within a turn; the transport and persistence layers
// consume them as-is.
type Event struct {
	// Type classifies the event.
	Type EventType `json:"type"`
	// Turn is the turn number the event occurred on.
	Turn int `json:"turn"`
	// ActorUID identifies the enemy involved; empty for pure player events.
	ActorUID string `json:"actorUid,omitempty"`
	// ActorName is the display name of the enemy involved.
	ActorName string `json:"actorName,omitempty"`
	// From and To carry movement endpoints where the event describes one.
	From geom.Point `json:"from,omitempty"`
	To   geom.Point `json:"to,omitempty"`
	// Dir is the facing of an attack or bump.
	Dir geom.Delta `json:"dir,omitempty"`
	// Damage is the damage dealt, zero when none.
	Damage int `json:"damage,omitempty"`
	// Text carries sign messages and taunt lines.
	Text string `json:"text,omitempty"`
	// Narrative is a human-readable line describing the event.
	Narrative string `json:"narrative"`
}

// Outcome is the terminal state of an encounter.
type Outcome int

const (
	// OutcomeOngoing means the battle is still being fought.
	OutcomeOngoing Outcome = iota
	// OutcomeVictory means every enemy is slain or fell.
	OutcomeVictory
	// OutcomeDefeat means the player was slain.
	OutcomeDefeat
	// OutcomeWithdrew means the player left through an exit tile.
	OutcomeWithdrew
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeWithdrew:
		return "withdrew"
	default:
		return "unknown"
	}
}
