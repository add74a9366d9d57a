// Package board provides the battlefield model: tiles, the board grid, and
// the YAML board loader. Boards are immutable after loading; every encounter
// reads the same shared instance.
package board

import "fmt"

// TileKind identifies the terrain occupying a cell.
type TileKind int

const (
	// TileUnknown is the zero kind, reported for malformed or out-of-bounds
	// lookups. It is never walkable.
	TileUnknown TileKind = iota
	TileFloor
	TileWall
	TileRock
	TileWater
	TilePitfall
	TileExit
	TileSign
)

func (k TileKind) String() string {
	switch k {
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileRock:
		return "rock"
	case TileWater:
		return "water"
	case TilePitfall:
		return "pitfall"
	case TileExit:
		return "exit"
	case TileSign:
		return "sign"
	default:
		return "unknown"
	}
}

// Walkable reports whether an actor may stand on this kind of terrain.
// Anything unrecognized is not walkable.
func (k TileKind) Walkable() bool {
	switch k {
	case TileFloor, TilePitfall, TileExit, TileSign:
		return true
	default:
		return false
	}
}

// ParseTileKind maps a legend value to its tile kind.
//
// Postcondition: Returns a non-unknown kind, or an error naming the value.
func ParseTileKind(s string) (TileKind, error) {
	switch s {
	case "floor":
		return TileFloor, nil
	case "wall":
		return TileWall, nil
	case "rock":
		return TileRock, nil
	case "water":
		return TileWater, nil
	case "pitfall":
		return TilePitfall, nil
	case "exit":
		return TileExit, nil
	case "sign":
		return TileSign, nil
	default:
		return TileUnknown, fmt.Errorf("unknown tile kind %q", s)
	}
}

// Tile is one cell of a board. Most tiles are bare terrain; sign tiles carry
// their message.
type Tile struct {
	Kind TileKind
	// SignText is the message on a sign tile. Empty for every other kind.
	SignText string
}
