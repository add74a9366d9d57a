package gameserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

func TestArchetypeIndex(t *testing.T) {
	enemies := []*actor.Enemy{
		{UID: "p-1", Archetype: actor.ArchetypePawn},
		{UID: "r-1", Archetype: actor.ArchetypeRook},
	}
	idx := ArchetypeIndex(enemies)
	assert.Equal(t, map[string]string{"p-1": "pawn", "r-1": "rook"}, idx)
}

func TestTracesFromEvents_MapsEnemyActions(t *testing.T) {
	events := []encounter.Event{
		{Type: encounter.EventEnemyMoved, Turn: 1, ActorUID: "p-1",
			From: geom.Point{X: 3, Y: 2}, To: geom.Point{X: 3, Y: 3}},
		{Type: encounter.EventEnemyCharged, Turn: 1, ActorUID: "r-1",
			From: geom.Point{X: 6, Y: 1}, To: geom.Point{X: 2, Y: 1}},
		{Type: encounter.EventEnemyAttacked, Turn: 2, ActorUID: "p-1",
			From: geom.Point{X: 3, Y: 3}, To: geom.Point{X: 3, Y: 3}, Damage: 1},
		{Type: encounter.EventEnemyBumped, Turn: 2, ActorUID: "r-1",
			From: geom.Point{X: 2, Y: 1}, To: geom.Point{X: 2, Y: 1}},
		{Type: encounter.EventEnemyFell, Turn: 3, ActorUID: "p-1",
			From: geom.Point{X: 3, Y: 3}, To: geom.Point{X: 3, Y: 4}},
	}
	idx := map[string]string{"p-1": "pawn", "r-1": "rook"}

	traces := TracesFromEvents("battle-1", events, idx)
	require.Len(t, traces, 5)

	assert.Equal(t, "move", traces[0].Action)
	assert.Equal(t, "charge", traces[1].Action)
	assert.Equal(t, "attack", traces[2].Action)
	assert.Equal(t, "bump", traces[3].Action)
	assert.Equal(t, "fall", traces[4].Action)

	for _, tr := range traces {
		assert.Equal(t, "battle-1", tr.BattleID)
	}
	assert.Equal(t, "pawn", traces[0].Archetype)
	assert.Equal(t, "rook", traces[1].Archetype)
	assert.Equal(t, 1, traces[0].Turn)
	assert.Equal(t, 3, traces[4].FromX)
	assert.Equal(t, 4, traces[4].ToY)
}

func TestTracesFromEvents_SkipsNonDecisionEvents(t *testing.T) {
	events := []encounter.Event{
		{Type: encounter.EventPlayerMoved, Turn: 1},
		{Type: encounter.EventPlayerAttacked, Turn: 1, ActorUID: "p-1"},
		{Type: encounter.EventEnemySlain, Turn: 1, ActorUID: "p-1"},
		{Type: encounter.EventTaunt, Turn: 1, ActorUID: "r-1"},
		{Type: encounter.EventSignRead, Turn: 1},
		{Type: encounter.EventVictory, Turn: 1},
		{Type: encounter.EventFlavor, Turn: 1},
	}
	traces := TracesFromEvents("battle-1", events, nil)
	assert.Empty(t, traces)
}

func TestTracesFromEvents_UnknownArchetypeKept(t *testing.T) {
	events := []encounter.Event{
		{Type: encounter.EventEnemyMoved, Turn: 1, ActorUID: "ghost"},
	}
	traces := TracesFromEvents("battle-1", events, map[string]string{})
	require.Len(t, traces, 1)
	assert.Equal(t, "", traces[0].Archetype)
	assert.Equal(t, "ghost", traces[0].EnemyUID)
}
