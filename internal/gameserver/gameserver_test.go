package gameserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/testutil"
)

// duelYAML is a minimal board: one weak pawn east of the player, a sign
// under the player's feet, and an exit one step south.
const duelYAML = `
board:
  id: duel
  name: "Duel Pit"
  floor: 2
  legend:
    "#": wall
    ".": floor
    "s": sign
    ">": exit
  rows:
    - "#####"
    - "#s..#"
    - "#>..#"
    - "#####"
  player_start: {x: 1, y: 1}
  signs:
    - at: {x: 1, y: 1}
      text: "One foe. One chance."
  spawns:
    - template: weak-pawn
      at: {x: 2, y: 1}
`

// marchYAML is a longer hall where the pawn needs several turns to close.
const marchYAML = `
board:
  id: march
  name: "Long March"
  legend:
    "#": wall
    ".": floor
  rows:
    - "########"
    - "#......#"
    - "#......#"
    - "########"
  player_start: {x: 1, y: 1}
  spawns:
    - template: weak-pawn
      at: {x: 6, y: 2}
`

func serverTemplates() map[string]*actor.Template {
	return map[string]*actor.Template{
		"weak-pawn": {ID: "weak-pawn", Name: "Weak Pawn", Archetype: actor.ArchetypePawn, MaxHP: 2, Attack: 1},
	}
}

func mustBoard(t *testing.T, yamlText string) *board.Board {
	t.Helper()
	b, err := board.LoadBoardFromBytes([]byte(yamlText))
	require.NoError(t, err)
	return b
}

// newGameServer builds a handler with no storage, serves it over httptest,
// and returns a connected client.
func newGameServer(t *testing.T, yamls ...string) *testutil.WSClient {
	t.Helper()
	client, _ := newGameServerWithHub(t, yamls...)
	return client
}

func newGameServerWithHub(t *testing.T, yamls ...string) (*testutil.WSClient, *Hub) {
	t.Helper()
	boards := make(map[string]*board.Board, len(yamls))
	for _, y := range yamls {
		b := mustBoard(t, y)
		boards[b.ID] = b
	}

	logger := zap.NewNop()
	hub := NewHub(logger)
	// A strong player swing one-shots the weak pawn; tests that want a
	// longer fight move instead of attacking.
	mgr := encounter.NewManager(boards, serverTemplates(), encounter.Config{PlayerHP: 20, PlayerAttack: 5}, encounter.NopHooks{}, logger)
	h := NewHandler(mgr, hub, nil, nil, nil, logger)

	srv := httptest.NewServer(http.HandlerFunc(h.Handle))
	t.Cleanup(srv.Close)

	return testutil.NewWSClient(t, srv.URL), hub
}
