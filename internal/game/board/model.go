package board

import (
	"fmt"

	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// Spawn places one enemy template on the board at battle start.
type Spawn struct {
	// Template is the enemy template ID to instantiate.
	Template string
	// At is the spawn cell.
	At geom.Point
}

// Board is a rectangular battlefield. It is immutable once loaded.
type Board struct {
	// ID uniquely identifies this board.
	ID string
	// Name is the display name shown to players.
	Name string
	// Floor is the depth this board sits at in a delve; 1 is the entrance.
	Floor int
	// PlayerStart is the cell the player occupies at battle start.
	PlayerStart geom.Point
	// Spawns lists the enemies populating this board and where they start.
	Spawns []Spawn

	width  int
	height int
	tiles  []Tile
}

// Width returns the board width in cells.
func (b *Board) Width() int { return b.width }

// Height returns the board height in cells.
func (b *Board) Height() int { return b.height }

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p geom.Point) bool {
	return p.X >= 0 && p.X < b.width && p.Y >= 0 && p.Y < b.height
}

// TileAt returns the tile at p.
//
// Postcondition: Returns (tile, true) for in-bounds cells, or
// (Tile{}, false) otherwise. The zero tile has kind TileUnknown.
func (b *Board) TileAt(p geom.Point) (Tile, bool) {
	if !b.InBounds(p) {
		return Tile{}, false
	}
	return b.tiles[p.Y*b.width+p.X], true
}

// KindAt returns the terrain kind at p, or TileUnknown when p is off the
// board. Callers never need to distinguish missing terrain from unwalkable
// terrain; both fail closed.
func (b *Board) KindAt(p geom.Point) TileKind {
	t, ok := b.TileAt(p)
	if !ok {
		return TileUnknown
	}
	return t.Kind
}

// Walkable reports whether the terrain at p can be stood on. Out-of-bounds
// and unknown cells are not walkable.
func (b *Board) Walkable(p geom.Point) bool {
	return b.KindAt(p).Walkable()
}

// SignTextAt returns the message of the sign at p.
//
// Postcondition: Returns (text, true) only when p holds a sign tile.
func (b *Board) SignTextAt(p geom.Point) (string, bool) {
	t, ok := b.TileAt(p)
	if !ok || t.Kind != TileSign {
		return "", false
	}
	return t.SignText, true
}

// Validate checks board invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first
// violation.
func (b *Board) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("board ID must not be empty")
	}
	if b.Name == "" {
		return fmt.Errorf("board %q: name must not be empty", b.ID)
	}
	if b.Floor < 1 {
		return fmt.Errorf("board %q: floor %d must be at least 1", b.ID, b.Floor)
	}
	if b.width <= 0 || b.height <= 0 {
		return fmt.Errorf("board %q: must contain at least one row and column", b.ID)
	}
	if len(b.tiles) != b.width*b.height {
		return fmt.Errorf("board %q: tile count %d does not match %dx%d", b.ID, len(b.tiles), b.width, b.height)
	}
	if !b.Walkable(b.PlayerStart) {
		return fmt.Errorf("board %q: player_start %v is not a walkable cell", b.ID, b.PlayerStart)
	}
	seen := make(map[geom.Point]bool, len(b.Spawns)+1)
	seen[b.PlayerStart] = true
	for i, s := range b.Spawns {
		if s.Template == "" {
			return fmt.Errorf("board %q: spawn %d has empty template", b.ID, i)
		}
		if !b.Walkable(s.At) {
			return fmt.Errorf("board %q: spawn %d at %v is not a walkable cell", b.ID, i, s.At)
		}
		if seen[s.At] {
			return fmt.Errorf("board %q: spawn %d at %v overlaps another actor", b.ID, i, s.At)
		}
		seen[s.At] = true
	}
	return nil
}
