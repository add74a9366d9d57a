package ai

import (
	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// strategy is one archetype's row of the behavior table: which directions it
// searches, which lines it charges along, whether the defensive override
// applies to it, and whether valid attack adjacency is resolved before any
// movement is considered.
type strategy struct {
	// moveDirections is the BFS direction set, also used for fallback
	// steps, tactical sidesteps, and retreat candidates.
	moveDirections []geom.Delta
	// chargeDirections are the straight lines the archetype may extend a
	// first path step along. Empty for non-charging archetypes.
	chargeDirections []geom.Delta
	// retreats marks archetypes subject to the defensive override. The
	// queen and king never give ground.
	retreats bool
	// attackFirst resolves an attack before pathfinding whenever the
	// player is validly adjacent, the way a king strikes instead of
	// stepping.
	attackFirst bool
}

// strategyFor returns the behavior table row for a. Every archetype has a
// row; unknown values get a pawn's caution with no movement, which cannot
// happen for enemies built from validated templates.
func strategyFor(a actor.Archetype) strategy {
	switch a {
	case actor.ArchetypePawn:
		return strategy{
			moveDirections: geom.Orthogonals,
			retreats:       true,
		}
	case actor.ArchetypeBishop:
		return strategy{
			moveDirections:   geom.Compass,
			chargeDirections: geom.Diagonals,
			retreats:         true,
			attackFirst:      true,
		}
	case actor.ArchetypeRook:
		return strategy{
			moveDirections:   geom.Orthogonals,
			chargeDirections: geom.Orthogonals,
			retreats:         true,
			attackFirst:      true,
		}
	case actor.ArchetypeQueen:
		return strategy{
			moveDirections:   geom.Compass,
			chargeDirections: geom.Compass,
		}
	case actor.ArchetypeKing:
		return strategy{
			moveDirections: geom.Compass,
			attackFirst:    true,
		}
	case actor.ArchetypeKnight:
		return strategy{
			moveDirections: geom.KnightJumps,
			retreats:       true,
		}
	default:
		return strategy{retreats: true}
	}
}

// attackValid reports whether an archetype standing at from may strike a
// target at to. The knight never strikes by adjacency; it only strikes by
// landing, which the interaction resolver handles separately.
func attackValid(a actor.Archetype, from, to geom.Point, axis geom.Delta) bool {
	switch a {
	case actor.ArchetypePawn:
		d := to.Sub(from)
		if !geom.DiagonallyAdjacent(from, to) {
			return false
		}
		// Forward component of the diagonal must match the walk axis.
		return (axis.DX != 0 && d.DX == axis.DX) || (axis.DY != 0 && d.DY == axis.DY)
	case actor.ArchetypeBishop:
		return geom.DiagonallyAdjacent(from, to)
	case actor.ArchetypeRook:
		return geom.OrthogonallyAdjacent(from, to)
	case actor.ArchetypeQueen, actor.ArchetypeKing:
		return geom.Adjacent(from, to)
	default:
		return false
	}
}
