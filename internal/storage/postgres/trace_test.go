package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gambit/internal/storage/postgres"
	"github.com/cory-johannsen/gambit/internal/testutil"
)

// traceFixture is a migrated database with one profile and one finished
// battle on the "open-hall" board.
type traceFixture struct {
	traces    *postgres.TraceRepository
	battles   *postgres.BattleRepository
	profileID int64
	battleID  string
}

func setupTraceRepos(t *testing.T) traceFixture {
	t.Helper()
	pool := testutil.NewPool(t)
	ctx := context.Background()

	profRepo := postgres.NewProfileRepository(pool)
	p, err := profRepo.Create(ctx, uniqueName("pilot"), "password123")
	require.NoError(t, err)

	battleRepo := postgres.NewBattleRepository(pool)
	battle := makeTestReport(p.ID, "open-hall", "victory")
	require.NoError(t, battleRepo.Insert(ctx, battle))

	return traceFixture{
		traces:    postgres.NewTraceRepository(pool),
		battles:   battleRepo,
		profileID: p.ID,
		battleID:  battle.ID,
	}
}

func makeTestTrace(battleID string, turn int, uid, archetype, action string) postgres.TurnTrace {
	return postgres.TurnTrace{
		BattleID:  battleID,
		Turn:      turn,
		EnemyUID:  uid,
		Archetype: archetype,
		FromX:     1,
		FromY:     1,
		ToX:       2,
		ToY:       1,
		Action:    action,
	}
}

func TestTraceRepository_InsertBatchAndList(t *testing.T) {
	fx := setupTraceRepos(t)
	ctx := context.Background()

	traces := []postgres.TurnTrace{
		makeTestTrace(fx.battleID, 1, "pawn-1", "pawn", "move"),
		makeTestTrace(fx.battleID, 1, "rook-1", "rook", "charge"),
		makeTestTrace(fx.battleID, 2, "pawn-1", "pawn", "attack"),
	}
	require.NoError(t, fx.traces.InsertBatch(ctx, traces))

	got, err := fx.traces.ListByBattle(ctx, fx.battleID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].Turn)
	assert.Equal(t, "pawn-1", got[0].EnemyUID)
	assert.Equal(t, "move", got[0].Action)
	assert.Equal(t, "rook-1", got[1].EnemyUID)
	assert.Equal(t, "charge", got[1].Action)
	assert.Equal(t, 2, got[2].Turn)
	assert.Equal(t, "attack", got[2].Action)
}

func TestTraceRepository_InsertBatch_Empty(t *testing.T) {
	fx := setupTraceRepos(t)
	ctx := context.Background()

	require.NoError(t, fx.traces.InsertBatch(ctx, nil))

	got, err := fx.traces.ListByBattle(ctx, fx.battleID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTraceRepository_InsertBatch_UnknownBattle(t *testing.T) {
	fx := setupTraceRepos(t)
	err := fx.traces.InsertBatch(context.Background(), []postgres.TurnTrace{
		makeTestTrace(uuid.NewString(), 1, "pawn-1", "pawn", "move"),
	})
	require.Error(t, err)
}

func TestTraceRepository_ListByBattle_PreservesCoordinates(t *testing.T) {
	fx := setupTraceRepos(t)
	ctx := context.Background()

	tr := postgres.TurnTrace{
		BattleID:  fx.battleID,
		Turn:      4,
		EnemyUID:  "kn-2",
		Archetype: "knight",
		FromX:     3,
		FromY:     0,
		ToX:       5,
		ToY:       1,
		Action:    "move",
	}
	require.NoError(t, fx.traces.InsertBatch(ctx, []postgres.TurnTrace{tr}))

	got, err := fx.traces.ListByBattle(ctx, fx.battleID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].FromX)
	assert.Equal(t, 0, got[0].FromY)
	assert.Equal(t, 5, got[0].ToX)
	assert.Equal(t, 1, got[0].ToY)
	assert.Equal(t, "knight", got[0].Archetype)
}

func TestTraceRepository_CountByArchetype(t *testing.T) {
	fx := setupTraceRepos(t)
	ctx := context.Background()

	// A second battle on another board must not bleed into the counts.
	other := makeTestReport(fx.profileID, "pit-march", "defeat")
	require.NoError(t, fx.battles.Insert(ctx, other))
	require.NoError(t, fx.traces.InsertBatch(ctx, []postgres.TurnTrace{
		makeTestTrace(other.ID, 1, "queen-1", "queen", "charge"),
	}))

	require.NoError(t, fx.traces.InsertBatch(ctx, []postgres.TurnTrace{
		makeTestTrace(fx.battleID, 1, "pawn-1", "pawn", "move"),
		makeTestTrace(fx.battleID, 2, "pawn-1", "pawn", "attack"),
		makeTestTrace(fx.battleID, 2, "rook-1", "rook", "bump"),
	}))

	counts, err := fx.traces.CountByArchetype(ctx, "open-hall")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pawn": 2, "rook": 1}, counts)
}

// TestTraceRepository_Property_ListCountMatchesInserts verifies that every
// inserted batch comes back complete and ordered by turn.
func TestTraceRepository_Property_ListCountMatchesInserts(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()

	profRepo := postgres.NewProfileRepository(pool)
	p, err := profRepo.Create(ctx, uniqueName("pilot"), "password123")
	require.NoError(t, err)

	battleRepo := postgres.NewBattleRepository(pool)
	traceRepo := postgres.NewTraceRepository(pool)

	archetypes := []string{"pawn", "bishop", "knight", "rook", "queen", "king"}
	actions := []string{"move", "charge", "attack", "bump", "fall"}

	rapid.Check(t, func(rt *rapid.T) {
		battle := makeTestReport(p.ID, "open-hall", "victory")
		require.NoError(t, battleRepo.Insert(ctx, battle))

		n := rapid.IntRange(1, 12).Draw(rt, "n")
		traces := make([]postgres.TurnTrace, 0, n)
		for i := 0; i < n; i++ {
			traces = append(traces, postgres.TurnTrace{
				BattleID:  battle.ID,
				Turn:      i + 1,
				EnemyUID:  fmt.Sprintf("e-%d", i),
				Archetype: rapid.SampledFrom(archetypes).Draw(rt, "archetype"),
				FromX:     rapid.IntRange(0, 11).Draw(rt, "fx"),
				FromY:     rapid.IntRange(0, 11).Draw(rt, "fy"),
				ToX:       rapid.IntRange(0, 11).Draw(rt, "tx"),
				ToY:       rapid.IntRange(0, 11).Draw(rt, "ty"),
				Action:    rapid.SampledFrom(actions).Draw(rt, "action"),
			})
		}
		require.NoError(t, traceRepo.InsertBatch(ctx, traces))

		got, err := traceRepo.ListByBattle(ctx, battle.ID)
		require.NoError(t, err)
		require.Len(t, got, n)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i].Turn, got[i-1].Turn)
		}
	})
}
