package gameserver

import (
	"strings"

	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// tileRune is the canonical wire rune for each terrain kind. Board files
// may use any legend; the snapshot always renders with these.
func tileRune(k board.TileKind) rune {
	switch k {
	case board.TileFloor:
		return '.'
	case board.TileWall:
		return '#'
	case board.TileRock:
		return 'o'
	case board.TileWater:
		return '~'
	case board.TilePitfall:
		return 'v'
	case board.TileExit:
		return '>'
	case board.TileSign:
		return '?'
	default:
		return 'X'
	}
}

// snapshotBoard renders the immutable battlefield for the welcome message.
func snapshotBoard(b *board.Board) BoardSnapshot {
	rows := make([]string, 0, b.Height())
	for y := 0; y < b.Height(); y++ {
		var row strings.Builder
		for x := 0; x < b.Width(); x++ {
			row.WriteRune(tileRune(b.KindAt(geom.Point{X: x, Y: y})))
		}
		rows = append(rows, row.String())
	}
	return BoardSnapshot{
		ID:          b.ID,
		Name:        b.Name,
		Floor:       b.Floor,
		Width:       b.Width(),
		Height:      b.Height(),
		Rows:        rows,
		PlayerStart: b.PlayerStart,
	}
}

// snapshotState captures the mutable battle state after an action resolves.
func snapshotState(enc *encounter.Encounter) StateMessage {
	roster := enc.Enemies()
	enemies := make([]EnemySnapshot, 0, len(roster))
	for _, en := range roster {
		enemies = append(enemies, EnemySnapshot{
			UID:       en.UID,
			Name:      en.Name,
			Archetype: en.Archetype.String(),
			Pos:       en.Pos,
			HP:        en.HP,
			MaxHP:     en.MaxHP,
		})
	}
	return StateMessage{
		Type:        ServerState,
		EncounterID: enc.ID,
		Turn:        enc.Turn,
		Outcome:     enc.Outcome().String(),
		Player: PlayerSnapshot{
			Pos:    enc.Player.Pos,
			HP:     enc.Player.HP,
			MaxHP:  enc.Player.MaxHP,
			Attack: enc.Player.AttackPower,
		},
		Enemies: enemies,
	}
}
