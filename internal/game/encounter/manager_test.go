package encounter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/board"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	hall := loadTestBoard(t, openHallYAML)
	lane := loadTestBoard(t, rookLaneYAML)
	boards := map[string]*board.Board{hall.ID: hall, lane.ID: lane}
	return NewManager(boards, testTemplates(), DefaultConfig(), NopHooks{}, zap.NewNop())
}

func TestManager_StartGetEnd(t *testing.T) {
	m := newTestManager(t)

	enc, err := m.Start("open-hall")
	require.NoError(t, err)
	require.NotEmpty(t, enc.ID)
	assert.Equal(t, "open-hall", enc.Board.ID)
	assert.Len(t, enc.Enemies(), 2)

	got, ok := m.Get(enc.ID)
	require.True(t, ok)
	assert.Same(t, enc, got)
	assert.Equal(t, 1, m.Active())

	m.End(enc.ID)
	_, ok = m.Get(enc.ID)
	assert.False(t, ok)
	assert.Zero(t, m.Active())
}

func TestManager_StartUnknownBoard(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Start("catacombs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown board "catacombs"`)
}

func TestManager_StartAssignsDistinctIDs(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Start("rook-lane")
	require.NoError(t, err)
	second, err := m.Start("rook-lane")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, m.Active())
}

func TestManager_EndUnknownIsNoOp(t *testing.T) {
	m := newTestManager(t)
	m.End("no-such-battle")
	assert.Zero(t, m.Active())
}

func TestManager_BoardIDs(t *testing.T) {
	m := newTestManager(t)
	ids := m.BoardIDs()
	assert.ElementsMatch(t, []string{"open-hall", "rook-lane"}, ids)
}

func TestManager_FindEnemy(t *testing.T) {
	m := newTestManager(t)

	enc, err := m.Start("open-hall")
	require.NoError(t, err)
	want := enc.Enemies()[0]

	got, ok := m.FindEnemy(want.UID)
	require.True(t, ok)
	assert.Same(t, want, got)

	_, ok = m.FindEnemy("no-such-uid")
	assert.False(t, ok)

	m.End(enc.ID)
	_, ok = m.FindEnemy(want.UID)
	assert.False(t, ok)
}
