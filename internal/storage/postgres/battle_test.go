package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gambit/internal/storage/postgres"
	"github.com/cory-johannsen/gambit/internal/testutil"
)

// setupBattleRepos creates a pool, a profile to own the battles, and the
// battle repository under test.
func setupBattleRepos(t *testing.T) (*postgres.BattleRepository, int64) {
	t.Helper()
	pool := testutil.NewPool(t)
	profRepo := postgres.NewProfileRepository(pool)
	p, err := profRepo.Create(context.Background(), uniqueName("pilot"), "password123")
	require.NoError(t, err)
	return postgres.NewBattleRepository(pool), p.ID
}

func makeTestReport(profileID int64, boardID, outcome string) postgres.BattleReport {
	return postgres.BattleReport{
		ID:        uuid.NewString(),
		BoardID:   boardID,
		ProfileID: profileID,
		Outcome:   outcome,
		Turns:     14,
		Slain:     3,
		Duration:  92 * time.Second,
	}
}

func TestBattleRepository_InsertAndGet(t *testing.T) {
	repo, profileID := setupBattleRepos(t)
	ctx := context.Background()

	r := makeTestReport(profileID, "open-hall", "victory")
	require.NoError(t, repo.Insert(ctx, r))

	fetched, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, fetched.ID)
	assert.Equal(t, "open-hall", fetched.BoardID)
	assert.Equal(t, profileID, fetched.ProfileID)
	assert.Equal(t, "victory", fetched.Outcome)
	assert.Equal(t, 14, fetched.Turns)
	assert.Equal(t, 3, fetched.Slain)
	assert.Equal(t, 92*time.Second, fetched.Duration)
	assert.False(t, fetched.CreatedAt.IsZero())
}

func TestBattleRepository_DurationMillisecondResolution(t *testing.T) {
	repo, profileID := setupBattleRepos(t)
	ctx := context.Background()

	r := makeTestReport(profileID, "open-hall", "defeat")
	// Sub-millisecond remainder is dropped by the duration_ms column.
	r.Duration = 1500*time.Millisecond + 750*time.Microsecond
	require.NoError(t, repo.Insert(ctx, r))

	fetched, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, fetched.Duration)
}

func TestBattleRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := setupBattleRepos(t)
	_, err := repo.GetByID(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.ErrorIs(t, err, postgres.ErrBattleNotFound)
}

func TestBattleRepository_Insert_UnknownProfile(t *testing.T) {
	repo, _ := setupBattleRepos(t)
	r := makeTestReport(99999999, "open-hall", "victory")
	err := repo.Insert(context.Background(), r)
	require.Error(t, err)
}

func TestBattleRepository_ListByProfile(t *testing.T) {
	repo, profileID := setupBattleRepos(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, makeTestReport(profileID, "open-hall", "victory")))
	require.NoError(t, repo.Insert(ctx, makeTestReport(profileID, "pit-march", "defeat")))
	require.NoError(t, repo.Insert(ctx, makeTestReport(profileID, "open-hall", "withdrew")))

	reports, err := repo.ListByProfile(ctx, profileID, 10)
	require.NoError(t, err)
	assert.Len(t, reports, 3)

	limited, err := repo.ListByProfile(ctx, profileID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestBattleRepository_ListByProfile_Empty(t *testing.T) {
	repo, profileID := setupBattleRepos(t)
	reports, err := repo.ListByProfile(context.Background(), profileID, 10)
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestBattleRepository_OutcomeCounts(t *testing.T) {
	repo, profileID := setupBattleRepos(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, makeTestReport(profileID, "open-hall", "victory")))
	require.NoError(t, repo.Insert(ctx, makeTestReport(profileID, "open-hall", "victory")))
	require.NoError(t, repo.Insert(ctx, makeTestReport(profileID, "open-hall", "defeat")))
	require.NoError(t, repo.Insert(ctx, makeTestReport(profileID, "pit-march", "defeat")))

	counts, err := repo.OutcomeCounts(ctx, "open-hall")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"victory": 2, "defeat": 1}, counts)
}

func TestBattleRepository_OutcomeCounts_EmptyBoard(t *testing.T) {
	repo, _ := setupBattleRepos(t)
	counts, err := repo.OutcomeCounts(context.Background(), "never-played")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

// TestBattleRepository_Property_InsertThenGet verifies that any valid report
// round-trips through the database unchanged.
func TestBattleRepository_Property_InsertThenGet(t *testing.T) {
	repo, profileID := setupBattleRepos(t)
	ctx := context.Background()

	outcomes := []string{"victory", "defeat", "withdrew"}
	rapid.Check(t, func(rt *rapid.T) {
		r := postgres.BattleReport{
			ID:        uuid.NewString(),
			BoardID:   rapid.StringMatching(`[a-z][a-z-]{1,20}`).Draw(rt, "board"),
			ProfileID: profileID,
			Outcome:   rapid.SampledFrom(outcomes).Draw(rt, "outcome"),
			Turns:     rapid.IntRange(1, 500).Draw(rt, "turns"),
			Slain:     rapid.IntRange(0, 16).Draw(rt, "slain"),
			Duration:  time.Duration(rapid.Int64Range(1, 3_600_000).Draw(rt, "ms")) * time.Millisecond,
		}

		require.NoError(t, repo.Insert(ctx, r))

		fetched, err := repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.BoardID, fetched.BoardID)
		assert.Equal(t, r.Outcome, fetched.Outcome)
		assert.Equal(t, r.Turns, fetched.Turns)
		assert.Equal(t, r.Slain, fetched.Slain)
		assert.Equal(t, r.Duration, fetched.Duration)
	})
}
