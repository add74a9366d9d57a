package gameserver

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/encounter"
)

// session is one connected pilot. The write mutex serializes outbound
// messages; the read loop and hub broadcasts both write to the connection.
type session struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	// boardID is the board the pilot is fighting on, empty outside a
	// battle. Guarded by the hub mutex, not writeMu.
	boardID string
}

// send marshals v and writes it as one text message.
func (s *session) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks live sessions and fans script broadcasts out to every pilot
// on the target board. It is safe for concurrent use.
type Hub struct {
	mu       sync.Mutex
	sessions map[*session]struct{}
	logger   *zap.Logger
}

// NewHub creates an empty hub.
//
// Precondition: logger must not be nil.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		panic("gameserver.NewHub: logger must not be nil")
	}
	return &Hub{
		sessions: make(map[*session]struct{}),
		logger:   logger,
	}
}

// add registers a freshly upgraded connection.
func (h *Hub) add(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s] = struct{}{}
}

// remove drops a session. Removing an unregistered session is a no-op.
func (h *Hub) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s)
}

// setBoard records which board a session is fighting on; empty clears it.
func (h *Hub) setBoard(s *session, boardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s.boardID = boardID
}

// Sessions returns the number of connected pilots.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Broadcast delivers a flavor line to every pilot fighting on boardID.
// Board scripts reach players through this; a failed write is logged and
// left for the session's own read loop to clean up.
func (h *Hub) Broadcast(boardID, text string) {
	msg := EventsMessage{
		Type: ServerEvents,
		Events: []encounter.Event{{
			Type:      encounter.EventFlavor,
			Text:      text,
			Narrative: text,
		}},
	}

	h.mu.Lock()
	targets := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		if s.boardID == boardID {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	for _, s := range targets {
		if err := s.send(msg); err != nil {
			h.logger.Warn("broadcast write failed",
				zap.String("board", boardID),
				zap.Error(err))
		}
	}
}
