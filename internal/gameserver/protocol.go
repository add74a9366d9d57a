// Package gameserver exposes encounters over websocket. Each connection is
// one pilot: a read loop parses the JSON envelope, drives the pilot's
// encounter, and streams back events and state. Board scripts broadcast
// flavor lines to every pilot on the same board through the hub.
package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// Client message types.
const (
	ClientJoin     = "join"
	ClientMove     = "move"
	ClientAttack   = "attack"
	ClientReadSign = "read_sign"
	ClientQuit     = "quit"
)

// Server message types.
const (
	ServerWelcome  = "welcome"
	ServerState    = "state"
	ServerEvents   = "events"
	ServerError    = "error"
	ServerGameOver = "game_over"
)

// ClientMessage is the single envelope for every client-to-server message.
// Type selects the command; the remaining fields are read per command and
// ignored otherwise.
type ClientMessage struct {
	Type string `json:"type" jsonschema:"required"`
	// BoardID names the board to fight on. Read by join.
	BoardID string `json:"boardId,omitempty"`
	// CallSign identifies the pilot for battle records. Read by join;
	// empty means the battle goes unrecorded.
	CallSign string `json:"callSign,omitempty"`
	// Password authenticates the call sign, registering it on first use.
	// Read by join when CallSign is set.
	Password string `json:"password,omitempty"`
	// Direction is a compass label ("north" through "northwest").
	// Read by move.
	Direction string `json:"direction,omitempty"`
	// EnemyUID targets an adjacent enemy. Read by attack.
	EnemyUID string `json:"enemyUid,omitempty"`
}

// WelcomeMessage answers a successful join.
type WelcomeMessage struct {
	Type        string        `json:"type" jsonschema:"required"`
	EncounterID string        `json:"encounterId"`
	CallSign    string        `json:"callSign,omitempty"`
	Board       BoardSnapshot `json:"board"`
}

// StateMessage carries the full battle state after each resolved action.
type StateMessage struct {
	Type        string          `json:"type" jsonschema:"required"`
	EncounterID string          `json:"encounterId"`
	Turn        int             `json:"turn"`
	Outcome     string          `json:"outcome"`
	Player      PlayerSnapshot  `json:"player"`
	Enemies     []EnemySnapshot `json:"enemies"`
}

// EventsMessage carries battle events in resolution order, including
// script flavor lines.
type EventsMessage struct {
	Type   string            `json:"type" jsonschema:"required"`
	Events []encounter.Event `json:"events"`
}

// ErrorMessage reports a rejected command. The connection stays open.
type ErrorMessage struct {
	Type    string `json:"type" jsonschema:"required"`
	Message string `json:"message"`
}

// GameOverMessage reports a finished battle. The pilot may join again on
// the same connection.
type GameOverMessage struct {
	Type    string `json:"type" jsonschema:"required"`
	Outcome string `json:"outcome"`
	Turns   int    `json:"turns"`
	Slain   int    `json:"slain"`
}

// BoardSnapshot is the immutable battlefield sent once at join. Rows use
// one rune per cell: '.' floor, '#' wall, 'o' rock, '~' water, 'v' pitfall,
// '>' exit, '?' sign.
type BoardSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Floor       int        `json:"floor"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Rows        []string   `json:"rows"`
	PlayerStart geom.Point `json:"playerStart"`
}

// PlayerSnapshot is the player's visible state.
type PlayerSnapshot struct {
	Pos    geom.Point `json:"pos"`
	HP     int        `json:"hp"`
	MaxHP  int        `json:"maxHp"`
	Attack int        `json:"attack"`
}

// EnemySnapshot is one living enemy's visible state.
type EnemySnapshot struct {
	UID       string     `json:"uid"`
	Name      string     `json:"name"`
	Archetype string     `json:"archetype"`
	Pos       geom.Point `json:"pos"`
	HP        int        `json:"hp"`
	MaxHP     int        `json:"maxHp"`
}

// ParseDirection maps a compass label to its unit step.
//
// Postcondition: Returns a king-step delta, or an error naming the label.
func ParseDirection(s string) (geom.Delta, error) {
	switch s {
	case "north":
		return geom.Delta{DX: 0, DY: -1}, nil
	case "northeast":
		return geom.Delta{DX: 1, DY: -1}, nil
	case "east":
		return geom.Delta{DX: 1, DY: 0}, nil
	case "southeast":
		return geom.Delta{DX: 1, DY: 1}, nil
	case "south":
		return geom.Delta{DX: 0, DY: 1}, nil
	case "southwest":
		return geom.Delta{DX: -1, DY: 1}, nil
	case "west":
		return geom.Delta{DX: -1, DY: 0}, nil
	case "northwest":
		return geom.Delta{DX: -1, DY: -1}, nil
	default:
		return geom.Delta{}, fmt.Errorf("unknown direction %q", s)
	}
}
