package actor

import (
	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// Player is the single player-controlled actor in an encounter. The decision
// engine reads its position and invokes damage and reposition operations; it
// never owns the player's turn.
type Player struct {
	// Pos is the cell the player currently occupies.
	Pos geom.Point
	// Prev is the cell occupied before the most recent move or knockback.
	Prev geom.Point
	// HP is the current hit points.
	HP int
	// MaxHP is the maximum hit points.
	MaxHP int
	// AttackPower is the damage dealt by one player attack.
	AttackPower int
	// JustAttacked is set while the player's own attack from this tick is
	// being answered by the enemy phase. Enemies that strike back during
	// that phase skip the counter-retaliation feedback; damage still lands.
	JustAttacked bool
}

// NewPlayer creates a player standing at pos.
func NewPlayer(pos geom.Point, maxHP, attackPower int) *Player {
	return &Player{
		Pos:         pos,
		Prev:        pos,
		HP:          maxHP,
		MaxHP:       maxHP,
		AttackPower: attackPower,
	}
}

// SetPosition relocates the player, recording the vacated cell. Used both
// for the player's own moves and for knockback displacement.
func (p *Player) SetPosition(pt geom.Point) {
	p.Prev = p.Pos
	p.Pos = pt
}

// TakeDamage reduces hit points by amount, never below zero.
func (p *Player) TakeDamage(amount int) {
	p.HP -= amount
	if p.HP < 0 {
		p.HP = 0
	}
}

// IsDead reports whether the player has zero hit points.
func (p *Player) IsDead() bool {
	return p.HP <= 0
}

// CanOccupy reports whether the player may stand on cell pt of b. Terrain
// only; enemy occupancy is the encounter's concern.
func (p *Player) CanOccupy(pt geom.Point, b *board.Board) bool {
	return b.Walkable(pt)
}
