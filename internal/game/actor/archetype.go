// Package actor provides the battlefield actors: enemy archetypes, live
// enemies, the player, and the YAML enemy template loader.
package actor

import "fmt"

// Archetype is the chess-piece behavioral category of an enemy. It selects
// the movement, attack, and charge rules the decision engine applies.
type Archetype int

const (
	ArchetypePawn Archetype = iota
	ArchetypeBishop
	ArchetypeRook
	ArchetypeQueen
	ArchetypeKing
	ArchetypeKnight
)

// Archetypes lists every archetype in declaration order.
var Archetypes = []Archetype{
	ArchetypePawn,
	ArchetypeBishop,
	ArchetypeRook,
	ArchetypeQueen,
	ArchetypeKing,
	ArchetypeKnight,
}

func (a Archetype) String() string {
	switch a {
	case ArchetypePawn:
		return "pawn"
	case ArchetypeBishop:
		return "bishop"
	case ArchetypeRook:
		return "rook"
	case ArchetypeQueen:
		return "queen"
	case ArchetypeKing:
		return "king"
	case ArchetypeKnight:
		return "knight"
	default:
		return fmt.Sprintf("archetype(%d)", int(a))
	}
}

// ParseArchetype maps a template value to its archetype.
//
// Postcondition: Returns a valid archetype, or an error naming the value.
func ParseArchetype(s string) (Archetype, error) {
	switch s {
	case "pawn":
		return ArchetypePawn, nil
	case "bishop":
		return ArchetypeBishop, nil
	case "rook":
		return ArchetypeRook, nil
	case "queen":
		return ArchetypeQueen, nil
	case "king":
		return ArchetypeKing, nil
	case "knight":
		return ArchetypeKnight, nil
	default:
		return 0, fmt.Errorf("unknown archetype %q", s)
	}
}
