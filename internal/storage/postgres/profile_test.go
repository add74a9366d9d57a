package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gambit/internal/storage/postgres"
	"github.com/cory-johannsen/gambit/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestProfileRepository_Create(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	ctx := context.Background()

	callSign := uniqueName("pilot")
	p, err := repo.Create(ctx, callSign, "password123")
	require.NoError(t, err)

	assert.Greater(t, p.ID, int64(0))
	assert.Equal(t, callSign, p.CallSign)
	assert.NotEqual(t, "password123", p.PasswordHash)
	assert.Equal(t, 0, p.Wins)
	assert.Equal(t, 0, p.Losses)
	assert.Equal(t, 0, p.DeepestFloor)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestProfileRepository_Create_DuplicateCallSign(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	ctx := context.Background()

	callSign := uniqueName("pilot")
	_, err := repo.Create(ctx, callSign, "password123")
	require.NoError(t, err)

	_, err = repo.Create(ctx, callSign, "otherpassword")
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrProfileExists)
}

func TestProfileRepository_Authenticate(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	ctx := context.Background()

	callSign := uniqueName("pilot")
	created, err := repo.Create(ctx, callSign, "password123")
	require.NoError(t, err)

	p, err := repo.Authenticate(ctx, callSign, "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)

	_, err = repo.Authenticate(ctx, callSign, "wrongpassword")
	assert.ErrorIs(t, err, postgres.ErrInvalidCredentials)

	_, err = repo.Authenticate(ctx, uniqueName("ghost"), "password123")
	assert.ErrorIs(t, err, postgres.ErrProfileNotFound)
}

func TestProfileRepository_GetByCallSign_NotFound(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	_, err := repo.GetByCallSign(context.Background(), uniqueName("ghost"))
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrProfileNotFound)
}

func TestProfileRepository_RecordResult(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	ctx := context.Background()

	callSign := uniqueName("pilot")
	created, err := repo.Create(ctx, callSign, "password123")
	require.NoError(t, err)

	require.NoError(t, repo.RecordResult(ctx, created.ID, true, 3))
	require.NoError(t, repo.RecordResult(ctx, created.ID, false, 5))
	require.NoError(t, repo.RecordResult(ctx, created.ID, true, 2))

	p, err := repo.GetByCallSign(ctx, callSign)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Wins)
	assert.Equal(t, 1, p.Losses)
	// Floor 2 came after floor 5; deepest_floor must not shrink.
	assert.Equal(t, 5, p.DeepestFloor)
}

func TestProfileRepository_RecordResult_NotFound(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	err := repo.RecordResult(context.Background(), 99999999, true, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrProfileNotFound)
}

func TestProfileRepository_Leaderboard(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	ctx := context.Background()

	ace, err := repo.Create(ctx, uniqueName("ace"), "password123")
	require.NoError(t, err)
	rookie, err := repo.Create(ctx, uniqueName("rookie"), "password123")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordResult(ctx, ace.ID, true, i+1))
	}
	require.NoError(t, repo.RecordResult(ctx, rookie.ID, false, 1))

	top, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, ace.ID, top[0].ID)
	assert.Equal(t, 3, top[0].Wins)
	assert.Equal(t, rookie.ID, top[1].ID)
}

func TestProfileRepository_Leaderboard_Limit(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := repo.Create(ctx, uniqueName(fmt.Sprintf("pilot%d", i)), "password123")
		require.NoError(t, err)
	}

	top, err := repo.Leaderboard(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

// TestProfileRepository_Property_TallyMatchesResults verifies that any
// sequence of recorded results leaves wins and losses equal to the number
// of victories and defeats applied, and deepest_floor equal to the maximum
// floor seen.
func TestProfileRepository_Property_TallyMatchesResults(t *testing.T) {
	repo := postgres.NewProfileRepository(testutil.NewPool(t))
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		p, err := repo.Create(ctx, uniqueName("pilot"), "password123")
		require.NoError(t, err)

		n := rapid.IntRange(1, 8).Draw(rt, "n")
		wantWins, wantLosses, wantFloor := 0, 0, 0
		for i := 0; i < n; i++ {
			won := rapid.Bool().Draw(rt, "won")
			floor := rapid.IntRange(1, 20).Draw(rt, "floor")
			require.NoError(t, repo.RecordResult(ctx, p.ID, won, floor))
			if won {
				wantWins++
			} else {
				wantLosses++
			}
			if floor > wantFloor {
				wantFloor = floor
			}
		}

		got, err := repo.GetByCallSign(ctx, p.CallSign)
		require.NoError(t, err)
		assert.Equal(t, wantWins, got.Wins)
		assert.Equal(t, wantLosses, got.Losses)
		assert.Equal(t, wantFloor, got.DeepestFloor)
	})
}
