package actor

import "github.com/cory-johannsen/gambit/internal/game/geom"

// Enemy is a live enemy on a board. It carries only the state the decision
// engine reads or writes; presentation state (bump timers, sprite facing)
// belongs to whoever renders the battle and is driven by feedback events.
type Enemy struct {
	// UID uniquely identifies this runtime instance.
	UID string
	// TemplateID is the source template's ID.
	TemplateID string
	// Name is copied from the template for display.
	Name string
	// Archetype selects the movement and attack rules for this enemy.
	Archetype Archetype
	// Pos is the cell this enemy currently occupies.
	Pos geom.Point
	// Prev is the cell occupied before the most recent move. Equal to Pos
	// until the first move.
	Prev geom.Point
	// HP is the current hit points.
	HP int
	// MaxHP is the maximum hit points.
	MaxHP int
	// AttackPower is the damage dealt by one attack.
	AttackPower int
	// Axis is the pawn's walk direction. Flipped in place when the pawn is
	// blocked; the zero delta for every other archetype.
	Axis geom.Delta
	// Taunts holds flavor lines copied from the template for the
	// presentation layer. Never read by the decision engine.
	Taunts []string
}

// NewEnemy creates a live enemy from a template, standing at pos.
//
// Precondition: uid must be non-empty; tmpl must be non-nil.
// Postcondition: HP equals tmpl.MaxHP; a pawn's Axis points along the
// dominant axis toward facing.
func NewEnemy(uid string, tmpl *Template, pos, facing geom.Point) *Enemy {
	e := &Enemy{
		UID:         uid,
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		Archetype:   tmpl.Archetype,
		Pos:         pos,
		Prev:        pos,
		HP:          tmpl.MaxHP,
		MaxHP:       tmpl.MaxHP,
		AttackPower: tmpl.Attack,
		Taunts:      tmpl.Taunts,
	}
	if tmpl.Archetype == ArchetypePawn {
		e.Axis = PawnAxis(pos, facing)
	}
	return e
}

// MoveTo advances the enemy to p, recording the vacated cell.
func (e *Enemy) MoveTo(p geom.Point) {
	e.Prev = e.Pos
	e.Pos = p
}

// TakeDamage reduces hit points by amount, never below zero.
func (e *Enemy) TakeDamage(amount int) {
	e.HP -= amount
	if e.HP < 0 {
		e.HP = 0
	}
}

// IsDead reports whether the enemy has zero hit points.
func (e *Enemy) IsDead() bool {
	return e.HP <= 0
}

// PawnAxis returns the single-step walk direction from p toward facing along
// the dominant axis. Ties and the degenerate same-cell case resolve to east.
func PawnAxis(p, facing geom.Point) geom.Delta {
	d := facing.Sub(p)
	u := d.Unit()
	switch {
	case d.DX == 0 && d.DY == 0:
		return geom.Delta{DX: 1, DY: 0}
	case abs(d.DY) > abs(d.DX):
		return geom.Delta{DX: 0, DY: u.DY}
	default:
		return geom.Delta{DX: u.DX, DY: 0}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
