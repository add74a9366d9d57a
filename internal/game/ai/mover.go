// Package ai implements the per-turn enemy decision engine: leader and
// follower targeting, archetype-aware pathfinding, charge extension,
// tactical and defensive adjustment, and the interaction resolution that
// turns a destination into an attack, bump, knockback, or fall.
//
// One decision produces one outcome: either a destination the caller should
// move the enemy to, or no move, meaning an attack, bump, or fall was
// already resolved here as a side effect. In simulation mode every side
// effect is suppressed and repeated calls from the same snapshot return the
// same destination.
package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/geom"
	"github.com/cory-johannsen/gambit/internal/game/pathfind"
	"github.com/cory-johannsen/gambit/internal/game/tactics"
)

// FeedbackSink receives presentation events from the decision engine:
// sounds, bump animations, trails. Purely advisory; nothing here affects
// correctness, and no call is made in simulation mode.
type FeedbackSink interface {
	// AttackFeedback fires when an enemy's strike connects, facing dir.
	AttackFeedback(attacker *actor.Enemy, dir geom.Delta)
	// BumpFeedback fires when a move collides without dealing damage.
	BumpFeedback(e *actor.Enemy, dir geom.Delta)
	// PlayerStruckFeedback fires the player's hit reaction. Suppressed
	// while the player's own attack from this tick resolves.
	PlayerStruckFeedback(dir geom.Delta)
	// KnockbackFeedback fires when the player is displaced by a knight.
	KnockbackFeedback(from, to geom.Point)
	// ChargeFeedback fires when a charge covers more than one tile.
	ChargeFeedback(e *actor.Enemy, from, to geom.Point)
}

// FallHandler takes over an enemy whose move ended on a pitfall. The
// handler owns the relocation; the decision engine only reports the fall
// and treats the enemy as having left the board.
type FallHandler interface {
	EnemyFell(e *actor.Enemy, at geom.Point)
}

// Mover is the decision engine. One instance serves every enemy of an
// encounter; it holds no per-enemy state.
type Mover struct {
	feedback FeedbackSink
	falls    FallHandler
	logger   *zap.Logger
}

// NewMover creates a decision engine.
//
// Precondition: feedback, falls, and logger must not be nil.
func NewMover(feedback FeedbackSink, falls FallHandler, logger *zap.Logger) *Mover {
	if feedback == nil {
		panic("ai.NewMover: feedback must not be nil")
	}
	if falls == nil {
		panic("ai.NewMover: falls must not be nil")
	}
	if logger == nil {
		panic("ai.NewMover: logger must not be nil")
	}
	return &Mover{feedback: feedback, falls: falls, logger: logger}
}

// DecideMove computes e's action against the current world snapshot.
//
// Postcondition: Returns (destination, true) for a plain move onto a
// walkable, unoccupied cell, or (Point{}, false) when an attack, bump,
// fall, or stuck condition was resolved instead. With sim set, state other
// than a pawn's walk axis is never mutated and no feedback or fall events
// fire; the returned destination is stable across repeated calls on the
// same snapshot.
func (m *Mover) DecideMove(e *actor.Enemy, w *World, sim bool) (geom.Point, bool) {
	if e == nil || e.IsDead() {
		return geom.Point{}, false
	}
	if e.Archetype == actor.ArchetypePawn {
		return m.decidePawn(e, w, sim)
	}

	strat := strategyFor(e.Archetype)
	if strat.attackFirst && !w.Player.IsDead() && attackValid(e.Archetype, e.Pos, w.Player.Pos, e.Axis) {
		m.applyAttack(e, w, sim)
		return geom.Point{}, false
	}
	return m.decideBase(e, w, strat, sim)
}

// decideBase is the shared pipeline: target, path, charge extension,
// tactical sidestep, defensive override, then arrival resolution.
func (m *Mover) decideBase(e *actor.Enemy, w *World, strat strategy, sim bool) (geom.Point, bool) {
	target := w.TargetFor(e)
	path := pathfind.FindPath(e.Pos, target, strat.moveDirections, w.pathWalkable(e, target))

	var proposed geom.Point
	charged := false
	if path.Steps() > 0 {
		proposed = path[1]
		if len(strat.chargeDirections) > 0 {
			if ext, covered := extendCharge(w, e, path, strat.chargeDirections); covered > 1 {
				proposed = ext
				charged = true
			}
		}
	} else {
		fb, ok := m.fallbackStep(e, w, strat)
		if !ok {
			m.logger.Debug("enemy stuck",
				zap.String("enemy", e.UID),
				zap.Stringer("archetype", e.Archetype),
				zap.Stringer("at", e.Pos))
			return geom.Point{}, false
		}
		proposed = fb
	}

	if adjusted, ok := tactics.Adjust(e, w.Roster, w.Player.Pos, proposed, strat.moveDirections, w.standable(e)); ok {
		proposed = adjusted
		charged = false
	}

	if strat.retreats && geom.Manhattan(proposed, w.Player.Pos) <= 2 {
		knightLanding := e.Archetype == actor.ArchetypeKnight && proposed == w.Player.Pos
		if !knightLanding {
			if away, ok := tactics.Retreat(e, w.Player.Pos, strat.moveDirections, w.standable(e)); ok {
				proposed = away
				charged = false
			}
		}
	}

	arrival := proposed.Sub(e.Pos)
	if charged {
		arrival = arrival.Unit()
	}
	from := e.Pos
	dest, moved := m.resolveArrival(e, w, proposed, arrival, sim)
	if moved {
		if charged && !sim {
			m.feedback.ChargeFeedback(e, from, dest)
		}
		m.logger.Debug("enemy move decided",
			zap.String("enemy", e.UID),
			zap.Stringer("archetype", e.Archetype),
			zap.Stringer("from", from),
			zap.Stringer("to", dest),
			zap.Bool("charged", charged),
			zap.Bool("simulated", sim))
	}
	return dest, moved
}

// decidePawn is the pawn's full override of the base pipeline: strike
// diagonally forward when possible, otherwise walk the axis, flipping it
// when blocked. The flip persists on the enemy, including under
// simulation, where it is the one permitted mutation; the returned
// destination is the same either way.
func (m *Mover) decidePawn(e *actor.Enemy, w *World, sim bool) (geom.Point, bool) {
	if e.Axis.IsZero() {
		return geom.Point{}, false
	}
	if !w.Player.IsDead() && attackValid(actor.ArchetypePawn, e.Pos, w.Player.Pos, e.Axis) {
		m.applyAttack(e, w, sim)
		return geom.Point{}, false
	}

	forward := e.Pos.Add(e.Axis)
	if m.pawnBlocked(e, w, forward) {
		if !sim && forward == w.Player.Pos && !w.Player.IsDead() {
			// Head-on contact is not a capture move for a pawn.
			m.feedback.BumpFeedback(e, e.Axis)
		}
		e.Axis = e.Axis.Scale(-1)
		forward = e.Pos.Add(e.Axis)
		if m.pawnBlocked(e, w, forward) {
			return geom.Point{}, false
		}
	}
	return m.resolveArrival(e, w, forward, forward.Sub(e.Pos), sim)
}

// pawnBlocked reports whether the pawn may not walk onto p. The player's
// cell blocks a pawn; pawns only capture diagonally.
func (m *Mover) pawnBlocked(e *actor.Enemy, w *World, p geom.Point) bool {
	if !w.Board.Walkable(p) {
		return true
	}
	if w.LivingEnemyAt(p, e.UID) != nil {
		return true
	}
	return p == w.Player.Pos && !w.Player.IsDead()
}

// extendCharge stretches the first path step into a straight-line charge:
// follow the path while it stays on the step's line, walkable, and free of
// enemies. Returns the farthest such cell and the tiles covered.
func extendCharge(w *World, e *actor.Enemy, path pathfind.Path, chargeDirs []geom.Delta) (geom.Point, int) {
	step := path[1].Sub(path[0])
	if !containsDelta(chargeDirs, step) {
		return path[1], 1
	}
	dest := path[1]
	covered := 1
	for j := 2; j < len(path); j++ {
		if path[j] != path[0].Add(step.Scale(j)) {
			break
		}
		if !w.Board.Walkable(path[j]) || w.LivingEnemyAt(path[j], e.UID) != nil {
			break
		}
		dest = path[j]
		covered = j
	}
	return dest, covered
}

// fallbackStep returns the first open cell in e's direction set: walkable
// terrain with no living enemy on it. The player's cell stays eligible;
// arriving there resolves as contact.
func (m *Mover) fallbackStep(e *actor.Enemy, w *World, strat strategy) (geom.Point, bool) {
	for _, d := range strat.moveDirections {
		c := e.Pos.Add(d)
		if w.Board.Walkable(c) && w.LivingEnemyAt(c, e.UID) == nil {
			return c, true
		}
	}
	return geom.Point{}, false
}

func containsDelta(set []geom.Delta, d geom.Delta) bool {
	for _, s := range set {
		if s == d {
			return true
		}
	}
	return false
}
