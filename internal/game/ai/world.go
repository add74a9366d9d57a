package ai

import (
	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// World is the state snapshot one enemy decision reads: the board, the
// player, and the full enemy roster in spawn order. Turn resolution is
// sequential, so a World handed to the mover always reflects every mutation
// earlier enemies applied this turn.
type World struct {
	Board  *board.Board
	Player *actor.Player
	// PlayerPos is the pursuit coordinate for this decision. Callers
	// normally set it to Player.Pos; the two are separate so that targeting
	// can be steered independently of where attacks land.
	PlayerPos geom.Point
	// Roster holds every enemy of the encounter in spawn order, the live
	// ones and, transiently, those slain earlier in the same turn.
	Roster []*actor.Enemy
}

// LivingCount returns the number of living enemies on the roster.
func (w *World) LivingCount() int {
	n := 0
	for _, e := range w.Roster {
		if !e.IsDead() {
			n++
		}
	}
	return n
}

// Leader returns the first living enemy in roster order, or nil when none
// survive. The roster never rotates, so the leader is stable until it dies.
func (w *World) Leader() *actor.Enemy {
	for _, e := range w.Roster {
		if !e.IsDead() {
			return e
		}
	}
	return nil
}

// LivingEnemyAt returns the living enemy standing on p, excluding the one
// with exceptUID, or nil.
func (w *World) LivingEnemyAt(p geom.Point, exceptUID string) *actor.Enemy {
	for _, e := range w.Roster {
		if e.IsDead() || e.UID == exceptUID {
			continue
		}
		if e.Pos == p {
			return e
		}
	}
	return nil
}

// TargetFor returns the cell e pursues this decision. With three or more
// living enemies the leader pursues the player and everyone else pursues the
// leader's current cell, staggering the group's arrival; below three,
// everyone pursues the player directly.
func (w *World) TargetFor(e *actor.Enemy) geom.Point {
	if w.LivingCount() >= 3 {
		if leader := w.Leader(); leader != nil && leader.UID != e.UID {
			return leader.Pos
		}
	}
	return w.PlayerPos
}

// pathWalkable builds the search predicate for e pathing toward target:
// terrain must carry the actor and no other living enemy may stand there.
// The target cell itself is exempt from the occupancy half so that paths can
// terminate on the leader or the player; arrival on an occupied cell is
// still rejected when the move is finalized.
func (w *World) pathWalkable(e *actor.Enemy, target geom.Point) func(geom.Point) bool {
	return func(p geom.Point) bool {
		if p == target {
			return true
		}
		return w.Board.Walkable(p) && w.LivingEnemyAt(p, e.UID) == nil
	}
}

// standable builds the predicate for tactical sidesteps and retreats:
// walkable terrain, no living enemy, and never the player's cell. Stepping
// onto the player is an attack, not a reposition.
func (w *World) standable(e *actor.Enemy) func(geom.Point) bool {
	return func(p geom.Point) bool {
		return w.Board.Walkable(p) && w.LivingEnemyAt(p, e.UID) == nil && p != w.Player.Pos
	}
}
