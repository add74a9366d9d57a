package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

func TestWorld_TargetFor(t *testing.T) {
	b := openArena(t, 10, 10)
	player := actor.NewPlayer(geom.Point{X: 0, Y: 0}, 20, 3)
	leader := spawnEnemy(actor.ArchetypeKing, "e1", geom.Point{X: 9, Y: 0}, player.Pos)
	second := spawnEnemy(actor.ArchetypeRook, "e2", geom.Point{X: 9, Y: 5}, player.Pos)
	third := spawnEnemy(actor.ArchetypeKnight, "e3", geom.Point{X: 5, Y: 9}, player.Pos)
	w := snapshot(b, player, leader, second, third)

	assert.Equal(t, w.PlayerPos, w.TargetFor(leader), "the leader always hunts the player")
	assert.Equal(t, leader.Pos, w.TargetFor(second), "followers converge on the leader")
	assert.Equal(t, leader.Pos, w.TargetFor(third))

	// Below three living enemies the pack formation dissolves.
	third.TakeDamage(third.MaxHP)
	assert.Equal(t, w.PlayerPos, w.TargetFor(second))
}

func TestWorld_LeaderSkipsDead(t *testing.T) {
	b := openArena(t, 10, 10)
	player := actor.NewPlayer(geom.Point{X: 0, Y: 0}, 20, 3)
	first := spawnEnemy(actor.ArchetypeKing, "e1", geom.Point{X: 9, Y: 0}, player.Pos)
	second := spawnEnemy(actor.ArchetypeRook, "e2", geom.Point{X: 9, Y: 5}, player.Pos)
	w := snapshot(b, player, first, second)

	require.Equal(t, first, w.Leader())
	first.TakeDamage(first.MaxHP)
	assert.Equal(t, second, w.Leader(), "leadership passes down the roster, never back")

	second.TakeDamage(second.MaxHP)
	assert.Nil(t, w.Leader())
	assert.Equal(t, 0, w.LivingCount())
}

func TestWorld_LivingEnemyAt(t *testing.T) {
	b := openArena(t, 10, 10)
	player := actor.NewPlayer(geom.Point{X: 0, Y: 0}, 20, 3)
	first := spawnEnemy(actor.ArchetypeKing, "e1", geom.Point{X: 4, Y: 4}, player.Pos)
	second := spawnEnemy(actor.ArchetypeRook, "e2", geom.Point{X: 6, Y: 4}, player.Pos)
	w := snapshot(b, player, first, second)

	assert.Equal(t, first, w.LivingEnemyAt(geom.Point{X: 4, Y: 4}, ""))
	assert.Nil(t, w.LivingEnemyAt(geom.Point{X: 4, Y: 4}, "e1"), "the exclusion hides the occupant from itself")
	assert.Nil(t, w.LivingEnemyAt(geom.Point{X: 5, Y: 4}, ""))

	first.TakeDamage(first.MaxHP)
	assert.Nil(t, w.LivingEnemyAt(geom.Point{X: 4, Y: 4}, ""), "the dead do not block cells")
}

func TestAttackValid(t *testing.T) {
	from := geom.Point{X: 3, Y: 3}
	east := geom.Delta{DX: 1, DY: 0}
	north := geom.Delta{DX: 0, DY: -1}
	none := geom.Delta{}

	tests := []struct {
		name      string
		archetype actor.Archetype
		to        geom.Point
		axis      geom.Delta
		want      bool
	}{
		{"pawn forward diagonal up", actor.ArchetypePawn, geom.Point{X: 4, Y: 2}, east, true},
		{"pawn forward diagonal down", actor.ArchetypePawn, geom.Point{X: 4, Y: 4}, east, true},
		{"pawn rear diagonal", actor.ArchetypePawn, geom.Point{X: 2, Y: 2}, east, false},
		{"pawn straight ahead", actor.ArchetypePawn, geom.Point{X: 4, Y: 3}, east, false},
		{"pawn north axis forward diagonal", actor.ArchetypePawn, geom.Point{X: 2, Y: 2}, north, true},
		{"bishop diagonal", actor.ArchetypeBishop, geom.Point{X: 4, Y: 4}, none, true},
		{"bishop orthogonal", actor.ArchetypeBishop, geom.Point{X: 4, Y: 3}, none, false},
		{"rook orthogonal", actor.ArchetypeRook, geom.Point{X: 3, Y: 4}, none, true},
		{"rook diagonal", actor.ArchetypeRook, geom.Point{X: 4, Y: 4}, none, false},
		{"queen diagonal", actor.ArchetypeQueen, geom.Point{X: 2, Y: 4}, none, true},
		{"queen orthogonal", actor.ArchetypeQueen, geom.Point{X: 2, Y: 3}, none, true},
		{"queen two away", actor.ArchetypeQueen, geom.Point{X: 5, Y: 3}, none, false},
		{"king any neighbor", actor.ArchetypeKing, geom.Point{X: 2, Y: 2}, none, true},
		{"knight never by adjacency", actor.ArchetypeKnight, geom.Point{X: 4, Y: 3}, none, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, attackValid(tc.archetype, from, tc.to, tc.axis))
		})
	}
}

func TestArrivalAttackValid(t *testing.T) {
	tests := []struct {
		name      string
		archetype actor.Archetype
		arrival   geom.Delta
		want      bool
	}{
		{"pawn never arrives as attack", actor.ArchetypePawn, geom.Delta{DX: 1, DY: 1}, false},
		{"bishop along diagonal", actor.ArchetypeBishop, geom.Delta{DX: -1, DY: 1}, true},
		{"bishop along file", actor.ArchetypeBishop, geom.Delta{DX: 0, DY: 1}, false},
		{"rook along file", actor.ArchetypeRook, geom.Delta{DX: 0, DY: -1}, true},
		{"rook along diagonal", actor.ArchetypeRook, geom.Delta{DX: 1, DY: 1}, false},
		{"queen along diagonal", actor.ArchetypeQueen, geom.Delta{DX: 1, DY: -1}, true},
		{"queen along rank", actor.ArchetypeQueen, geom.Delta{DX: -1, DY: 0}, true},
		{"queen zero step", actor.ArchetypeQueen, geom.Delta{}, false},
		{"king along rank", actor.ArchetypeKing, geom.Delta{DX: 1, DY: 0}, true},
		{"knight landing always counts", actor.ArchetypeKnight, geom.Delta{DX: 1, DY: -2}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, arrivalAttackValid(tc.archetype, tc.arrival, geom.Delta{}))
		})
	}
}
