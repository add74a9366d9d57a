package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/game/geom"
	"github.com/cory-johannsen/gambit/internal/storage/postgres"
)

// persistTimeout bounds battle persistence after a connection is already
// gone; the write must not block hub cleanup forever.
const persistTimeout = 5 * time.Second

// pilot is the per-connection battle state. It lives on the connection's
// read-loop goroutine and is never shared.
type pilot struct {
	sess    *session
	enc     *encounter.Encounter
	profile *postgres.Profile

	archetypes map[string]string
	traces     []postgres.TurnTrace
	started    time.Time
	spawned    int
}

// Handler upgrades connections and runs one read loop per pilot. Commands
// mutate only that pilot's encounter, so no handler-level locking is
// needed; the hub serializes the shared pieces.
type Handler struct {
	encounters *encounter.Manager
	hub        *Hub
	profiles   *postgres.ProfileRepository
	battles    *postgres.BattleRepository
	traces     *postgres.TraceRepository
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewHandler creates the websocket handler. The three repositories may be
// nil; battles then go unrecorded.
//
// Precondition: encounters, hub, and logger must not be nil.
func NewHandler(encounters *encounter.Manager, hub *Hub, profiles *postgres.ProfileRepository, battles *postgres.BattleRepository, traces *postgres.TraceRepository, logger *zap.Logger) *Handler {
	if encounters == nil {
		panic("gameserver.NewHandler: encounters must not be nil")
	}
	if hub == nil {
		panic("gameserver.NewHandler: hub must not be nil")
	}
	if logger == nil {
		panic("gameserver.NewHandler: logger must not be nil")
	}
	return &Handler{
		encounters: encounters,
		hub:        hub,
		profiles:   profiles,
		battles:    battles,
		traces:     traces,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the request and serves the pilot until disconnect.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("remote", r.RemoteAddr),
			zap.Error(err))
		return
	}

	logger := h.logger.With(zap.String("remote", r.RemoteAddr))
	logger.Info("pilot connected")

	s := &session{conn: conn}
	h.hub.add(s)
	p := &pilot{sess: s}

	defer func() {
		h.abandonBattle(p, logger)
		h.hub.remove(s)
		conn.Close()
		logger.Info("pilot disconnected")
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Debug("discarding malformed message", zap.Error(err))
			if !h.sendError(s, "malformed message") {
				return
			}
			continue
		}

		var ok bool
		switch msg.Type {
		case ClientJoin:
			ok = h.handleJoin(p, msg, logger)
		case ClientMove:
			ok = h.handleMove(p, msg)
		case ClientAttack:
			ok = h.handleAttack(p, msg)
		case ClientReadSign:
			ok = h.handleReadSign(p)
		case ClientQuit:
			h.handleQuit(p, logger)
			return
		default:
			ok = h.sendError(s, "unknown command %q", msg.Type)
		}
		if !ok {
			return
		}
	}
}

// handleJoin resolves the pilot's profile and starts an encounter.
func (h *Handler) handleJoin(p *pilot, msg ClientMessage, logger *zap.Logger) bool {
	if p.enc != nil {
		return h.sendError(p.sess, "finish your battle first")
	}

	profile, ok := h.resolveProfile(p, msg, logger)
	if !ok {
		return true
	}

	enc, err := h.encounters.Start(msg.BoardID)
	if err != nil {
		return h.sendError(p.sess, "cannot join: %v", err)
	}

	p.enc = enc
	p.profile = profile
	p.archetypes = ArchetypeIndex(enc.Enemies())
	p.traces = nil
	p.started = time.Now()
	p.spawned = len(enc.Enemies())
	h.hub.setBoard(p.sess, enc.Board.ID)

	callSign := ""
	if profile != nil {
		callSign = profile.CallSign
	}
	welcome := WelcomeMessage{
		Type:        ServerWelcome,
		EncounterID: enc.ID,
		CallSign:    callSign,
		Board:       snapshotBoard(enc.Board),
	}
	if err := p.sess.send(welcome); err != nil {
		return false
	}
	return p.sess.send(snapshotState(enc)) == nil
}

// resolveProfile binds the pilot to a stored profile, registering unknown
// call signs on first use. A false second return means join must stop; an
// explanatory message has already been sent.
func (h *Handler) resolveProfile(p *pilot, msg ClientMessage, logger *zap.Logger) (*postgres.Profile, bool) {
	if msg.CallSign == "" {
		return nil, true
	}
	if h.profiles == nil {
		logger.Info("profile storage disabled, battle will not be recorded",
			zap.String("call_sign", msg.CallSign))
		return nil, true
	}
	if msg.Password == "" {
		h.sendError(p.sess, "password required to play as %q", msg.CallSign)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	profile, err := h.profiles.Authenticate(ctx, msg.CallSign, msg.Password)
	if err == nil {
		return &profile, true
	}
	if errors.Is(err, postgres.ErrInvalidCredentials) {
		h.sendError(p.sess, "invalid credentials for %q", msg.CallSign)
		return nil, false
	}
	if !errors.Is(err, postgres.ErrProfileNotFound) {
		logger.Error("profile lookup failed", zap.Error(err))
		h.sendError(p.sess, "profile storage unavailable")
		return nil, false
	}

	profile, err = h.profiles.Create(ctx, msg.CallSign, msg.Password)
	if err != nil {
		logger.Error("profile registration failed", zap.Error(err))
		h.sendError(p.sess, "profile storage unavailable")
		return nil, false
	}
	logger.Info("registered new pilot", zap.String("call_sign", profile.CallSign))
	return &profile, true
}

// handleMove steps the player and resolves the answering enemy phase.
func (h *Handler) handleMove(p *pilot, msg ClientMessage) bool {
	if !h.inBattle(p) {
		return h.sendError(p.sess, "no battle in progress")
	}
	dir, err := ParseDirection(msg.Direction)
	if err != nil {
		return h.sendError(p.sess, "%v", err)
	}
	if err := p.enc.MovePlayer(dir); err != nil {
		return h.sendError(p.sess, "%v", err)
	}
	return h.afterPlayerAction(p)
}

// handleAttack swings at the named enemy and resolves the answering phase.
func (h *Handler) handleAttack(p *pilot, msg ClientMessage) bool {
	if !h.inBattle(p) {
		return h.sendError(p.sess, "no battle in progress")
	}

	var target geom.Point
	found := false
	for _, en := range p.enc.Enemies() {
		if en.UID == msg.EnemyUID {
			target = en.Pos
			found = true
			break
		}
	}
	if !found {
		return h.sendError(p.sess, "no enemy %q on the board", msg.EnemyUID)
	}
	if !geom.Adjacent(p.enc.Player.Pos, target) {
		return h.sendError(p.sess, "enemy %q is out of reach", msg.EnemyUID)
	}

	if err := p.enc.PlayerAttack(target.Sub(p.enc.Player.Pos)); err != nil {
		return h.sendError(p.sess, "%v", err)
	}
	return h.afterPlayerAction(p)
}

// handleReadSign reads the sign under the player. Reading is free; no
// enemy phase answers it.
func (h *Handler) handleReadSign(p *pilot) bool {
	if !h.inBattle(p) {
		return h.sendError(p.sess, "no battle in progress")
	}
	if _, ok := p.enc.ReadSign(); !ok {
		return h.sendError(p.sess, "no sign underfoot")
	}
	return h.sendEvents(p, p.enc.DrainEvents())
}

// handleQuit abandons any live battle and closes the connection. An
// abandoned battle is recorded as a withdrawal.
func (h *Handler) handleQuit(p *pilot, logger *zap.Logger) {
	if !h.inBattle(p) {
		return
	}
	enc := p.enc
	h.concludeBattle(p, encounter.OutcomeWithdrew, logger)
	_ = p.sess.send(GameOverMessage{
		Type:    ServerGameOver,
		Outcome: encounter.OutcomeWithdrew.String(),
		Turns:   enc.Turn,
		Slain:   p.spawned - len(enc.Enemies()),
	})
}

// afterPlayerAction runs the enemy phase, streams events and state, and
// settles the battle if it just ended.
func (h *Handler) afterPlayerAction(p *pilot) bool {
	enc := p.enc
	if !enc.Over() {
		enc.ResolveEnemyTurns()
	}

	events := enc.DrainEvents()
	p.traces = append(p.traces, TracesFromEvents(enc.ID, events, p.archetypes)...)

	if !h.sendEvents(p, events) {
		return false
	}
	if err := p.sess.send(snapshotState(enc)); err != nil {
		return false
	}

	if !enc.Over() {
		return true
	}

	outcome := enc.Outcome()
	logger := h.logger.With(zap.String("encounter", enc.ID))
	h.concludeBattle(p, outcome, logger)
	return p.sess.send(GameOverMessage{
		Type:    ServerGameOver,
		Outcome: outcome.String(),
		Turns:   enc.Turn,
		Slain:   p.spawned - len(enc.Enemies()),
	}) == nil
}

// sendEvents streams events to the pilot; an empty batch sends nothing.
func (h *Handler) sendEvents(p *pilot, events []encounter.Event) bool {
	if len(events) == 0 {
		return true
	}
	return p.sess.send(EventsMessage{Type: ServerEvents, Events: events}) == nil
}

// sendError reports a rejected command. The connection stays open; a
// false return means the write itself failed.
func (h *Handler) sendError(s *session, format string, args ...any) bool {
	return s.send(ErrorMessage{Type: ServerError, Message: fmt.Sprintf(format, args...)}) == nil
}

func (h *Handler) inBattle(p *pilot) bool {
	return p.enc != nil && !p.enc.Over()
}

// abandonBattle settles a battle left running at disconnect. It is a
// no-op when the pilot is between battles.
func (h *Handler) abandonBattle(p *pilot, logger *zap.Logger) {
	if !h.inBattle(p) {
		return
	}
	logger.Info("pilot abandoned battle", zap.String("encounter", p.enc.ID))
	h.concludeBattle(p, encounter.OutcomeWithdrew, logger)
}

// concludeBattle persists the finished battle and releases it. Persistence
// failures are logged, never surfaced; the battle itself is already
// decided.
func (h *Handler) concludeBattle(p *pilot, outcome encounter.Outcome, logger *zap.Logger) {
	enc := p.enc
	h.encounters.End(enc.ID)
	h.hub.setBoard(p.sess, "")
	p.enc = nil

	if p.profile == nil || h.battles == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	report := postgres.BattleReport{
		ID:        enc.ID,
		BoardID:   enc.Board.ID,
		ProfileID: p.profile.ID,
		Outcome:   outcome.String(),
		Turns:     enc.Turn,
		Slain:     p.spawned - len(enc.Enemies()),
		Duration:  time.Since(p.started),
	}
	if err := h.battles.Insert(ctx, report); err != nil {
		logger.Error("recording battle failed", zap.Error(err))
		return
	}
	if h.traces != nil {
		if err := h.traces.InsertBatch(ctx, p.traces); err != nil {
			logger.Error("recording battle traces failed", zap.Error(err))
		}
	}
	if err := h.profiles.RecordResult(ctx, p.profile.ID, outcome == encounter.OutcomeVictory, enc.Board.Floor); err != nil {
		logger.Error("recording battle result failed", zap.Error(err))
	}
	logger.Info("battle recorded",
		zap.String("call_sign", p.profile.CallSign),
		zap.String("outcome", outcome.String()),
		zap.Int("turns", report.Turns),
		zap.Int("slain", report.Slain))
}
