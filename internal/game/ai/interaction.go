package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// resolveArrival turns a proposed destination into the final outcome.
// Checked in order: another enemy (bump), a pitfall (fall), the player
// (contact), unwalkable terrain (abort). Only when all four pass does the
// move stand. arrival is the direction of the final step into dest, used
// to validate contact attacks.
//
// Postcondition: with sim set, no actor state changes and no events fire.
func (m *Mover) resolveArrival(e *actor.Enemy, w *World, dest geom.Point, arrival geom.Delta, sim bool) (geom.Point, bool) {
	if other := w.LivingEnemyAt(dest, e.UID); other != nil {
		if !sim {
			m.feedback.BumpFeedback(e, dest.Sub(e.Pos).Unit())
		}
		return geom.Point{}, false
	}
	if w.Board.KindAt(dest) == board.TilePitfall {
		if !sim {
			m.logger.Info("enemy fell into pitfall",
				zap.String("enemy", e.UID),
				zap.Stringer("at", dest))
			m.falls.EnemyFell(e, dest)
		}
		return geom.Point{}, false
	}
	if dest == w.Player.Pos && !w.Player.IsDead() {
		m.resolvePlayerContact(e, w, arrival, sim)
		return geom.Point{}, false
	}
	if !w.Board.Walkable(dest) {
		return geom.Point{}, false
	}
	return dest, true
}

// resolvePlayerContact handles a move that ends on the player's cell. A
// knight landing is always a strike plus knockback. Anyone else strikes
// only if the arrival direction is a legal attack for the archetype;
// otherwise the contact is a shoving bump and the enemy stays put.
func (m *Mover) resolvePlayerContact(e *actor.Enemy, w *World, arrival geom.Delta, sim bool) {
	if e.Archetype == actor.ArchetypeKnight {
		m.resolveKnightLanding(e, w, sim)
		return
	}
	if arrivalAttackValid(e.Archetype, arrival, e.Axis) {
		m.applyAttack(e, w, sim)
		return
	}
	if !sim {
		m.feedback.BumpFeedback(e, arrival)
	}
}

// arrivalAttackValid reports whether stepping into the player's cell from
// direction arrival counts as an attack for the archetype. This mirrors
// attackValid but is framed on the final step: a queen ending a five-tile
// charge on the player attacks along the charge line even though her
// pre-move cell was nowhere near it.
func arrivalAttackValid(a actor.Archetype, arrival geom.Delta, axis geom.Delta) bool {
	dx, dy := arrival.DX, arrival.DY
	switch a {
	case actor.ArchetypePawn:
		// Pawns never move onto the player; capture is handled before
		// movement.
		return false
	case actor.ArchetypeBishop:
		return dx != 0 && dy != 0 && dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
	case actor.ArchetypeRook:
		return (dx == 0) != (dy == 0) && dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
	case actor.ArchetypeQueen, actor.ArchetypeKing:
		return !(dx == 0 && dy == 0) && dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
	case actor.ArchetypeKnight:
		return true
	default:
		return false
	}
}

// applyAttack lands e's strike on the player. The player's hit reaction is
// skipped while their own attack from this tick is still resolving; the
// damage is never skipped.
func (m *Mover) applyAttack(e *actor.Enemy, w *World, sim bool) {
	if sim {
		return
	}
	dir := w.Player.Pos.Sub(e.Pos).Unit()
	w.Player.TakeDamage(e.AttackPower)
	m.feedback.AttackFeedback(e, dir)
	if !w.Player.JustAttacked {
		m.feedback.PlayerStruckFeedback(dir)
	}
	m.logger.Debug("enemy attack",
		zap.String("enemy", e.UID),
		zap.Stringer("archetype", e.Archetype),
		zap.Int("power", e.AttackPower),
		zap.Int("playerHP", w.Player.HP))
}

// resolveKnightLanding strikes the player and shoves them to the
// orthogonal neighbor cell farthest from the knight's pre-jump position,
// then takes the vacated cell. With no free neighbor the damage still
// lands and both stay where they are.
func (m *Mover) resolveKnightLanding(e *actor.Enemy, w *World, sim bool) {
	if sim {
		return
	}
	playerCell := w.Player.Pos
	dir := playerCell.Sub(e.Pos).Unit()
	w.Player.TakeDamage(e.AttackPower)
	m.feedback.AttackFeedback(e, dir)
	if !w.Player.JustAttacked {
		m.feedback.PlayerStruckFeedback(dir)
	}

	var kb geom.Point
	found := false
	best := -1
	for _, d := range geom.Orthogonals {
		c := playerCell.Add(d)
		if !w.Board.Walkable(c) || w.LivingEnemyAt(c, "") != nil {
			continue
		}
		if dist := geom.Manhattan(c, e.Pos); dist > best {
			best = dist
			kb = c
			found = true
		}
	}
	if !found {
		m.logger.Debug("knight landing with no knockback cell",
			zap.String("enemy", e.UID),
			zap.Stringer("at", playerCell))
		return
	}

	w.Player.SetPosition(kb)
	e.MoveTo(playerCell)
	m.feedback.KnockbackFeedback(playerCell, kb)
	m.logger.Debug("knight knockback",
		zap.String("enemy", e.UID),
		zap.Stringer("landed", playerCell),
		zap.Stringer("playerTo", kb))
}
