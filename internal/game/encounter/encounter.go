// Package encounter owns one battle: the board, the player, the enemy
// roster, and the turn loop that hands each enemy to the decision engine.
// An Encounter is confined to a single goroutine; only the Manager's
// registry is safe for concurrent use.
package encounter

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/ai"
	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// Config carries the tunable player statistics applied to new encounters.
// Non-positive values fall back to the defaults.
type Config struct {
	PlayerHP     int
	PlayerAttack int
}

// DefaultConfig returns the stock player statistics.
func DefaultConfig() Config {
	return Config{PlayerHP: 20, PlayerAttack: 3}
}

// BattleHooks receives battle lifecycle notifications, typically to run
// board scripts. Hooks fire after the triggering state change has been
// applied and never fire in simulation mode.
type BattleHooks interface {
	OnEnemyAttack(boardID string, enemy *actor.Enemy, damage, playerHP int)
	OnEnemyFell(boardID string, enemy *actor.Enemy, at geom.Point)
	OnKnockback(boardID string, from, to geom.Point)
	OnPlayerSlain(boardID string)
}

// NopHooks ignores every notification.
type NopHooks struct{}

func (NopHooks) OnEnemyAttack(string, *actor.Enemy, int, int) {}
func (NopHooks) OnEnemyFell(string, *actor.Enemy, geom.Point) {}
func (NopHooks) OnKnockback(string, geom.Point, geom.Point)   {}
func (NopHooks) OnPlayerSlain(string)                         {}

// Encounter is one running battle. The roster holds the living enemies in
// spawn order; slain and fallen enemies are removed as they drop, so the
// front of the roster is always the current leader.
type Encounter struct {
	// ID uniquely identifies this battle.
	ID string
	// Board is the shared, immutable battlefield.
	Board *board.Board
	// Player is the player-controlled actor.
	Player *actor.Player
	// Turn counts enemy phases. It is zero until the first phase begins.
	Turn int

	roster  []*actor.Enemy
	mover   *ai.Mover
	hooks   BattleHooks
	logger  *zap.Logger
	pending []Event
	outcome Outcome
}

// NewEncounter starts a battle on b, spawning one enemy per board spawn in
// declaration order. Pawns face the player's starting cell.
//
// Precondition: b, hooks, and logger must not be nil.
// Postcondition: Returns an error when b has no spawns or names a template
// missing from templates.
func NewEncounter(id string, b *board.Board, templates map[string]*actor.Template, cfg Config, hooks BattleHooks, logger *zap.Logger) (*Encounter, error) {
	if b == nil {
		panic("encounter.NewEncounter: board must not be nil")
	}
	if hooks == nil {
		panic("encounter.NewEncounter: hooks must not be nil")
	}
	if logger == nil {
		panic("encounter.NewEncounter: logger must not be nil")
	}
	if len(b.Spawns) == 0 {
		return nil, fmt.Errorf("board %q has no enemy spawns", b.ID)
	}
	def := DefaultConfig()
	if cfg.PlayerHP <= 0 {
		cfg.PlayerHP = def.PlayerHP
	}
	if cfg.PlayerAttack <= 0 {
		cfg.PlayerAttack = def.PlayerAttack
	}

	e := &Encounter{
		ID:     id,
		Board:  b,
		Player: actor.NewPlayer(b.PlayerStart, cfg.PlayerHP, cfg.PlayerAttack),
		hooks:  hooks,
		logger: logger,
	}
	for i, sp := range b.Spawns {
		tmpl, ok := templates[sp.Template]
		if !ok {
			return nil, fmt.Errorf("board %q spawn %d: unknown enemy template %q", b.ID, i, sp.Template)
		}
		e.roster = append(e.roster, actor.NewEnemy(uuid.NewString(), tmpl, sp.At, b.PlayerStart))
	}
	sink := &battleSink{enc: e}
	e.mover = ai.NewMover(sink, sink, logger)
	return e, nil
}

// Enemies returns the living roster in spawn order. The slice is a copy;
// the enemies are live.
func (e *Encounter) Enemies() []*actor.Enemy {
	out := make([]*actor.Enemy, len(e.roster))
	copy(out, e.roster)
	return out
}

// Outcome reports the battle's terminal state, OutcomeOngoing while it is
// still being fought.
func (e *Encounter) Outcome() Outcome {
	return e.outcome
}

// Over reports whether the battle has ended.
func (e *Encounter) Over() bool {
	return e.outcome != OutcomeOngoing
}

// DrainEvents returns every event emitted since the previous drain and
// clears the queue.
func (e *Encounter) DrainEvents() []Event {
	out := e.pending
	e.pending = nil
	return out
}

// PendingEvents returns a copy of the undrained events.
func (e *Encounter) PendingEvents() []Event {
	return append([]Event(nil), e.pending...)
}

// MovePlayer advances the player one step in dir.
//
// Precondition: dir must be a single king step.
// Postcondition: Either the player stands on the destination and a movement
// event was emitted, or a blocked event explains the refusal. Stepping onto
// an exit tile ends the battle with OutcomeWithdrew.
func (e *Encounter) MovePlayer(dir geom.Delta) error {
	if e.Over() {
		return fmt.Errorf("encounter %s: battle is over", e.ID)
	}
	if !unitStep(dir) {
		return fmt.Errorf("encounter %s: %v is not a single step", e.ID, dir)
	}
	dest := e.Player.Pos.Add(dir)
	if blocker := e.enemyAt(dest); blocker != nil {
		e.emit(Event{Type: EventPlayerBlocked, ActorUID: blocker.UID, ActorName: blocker.Name, Dir: dir,
			Narrative: fmt.Sprintf("%s stands in your way.", blocker.Name)})
		return nil
	}
	if !e.Board.Walkable(dest) {
		e.emit(Event{Type: EventPlayerBlocked, Dir: dir,
			Narrative: "The way is blocked."})
		return nil
	}
	if e.Board.KindAt(dest) == board.TilePitfall {
		e.emit(Event{Type: EventPlayerBlocked, Dir: dir,
			Narrative: "A pit yawns at your feet. You hold your step."})
		return nil
	}
	from := e.Player.Pos
	e.Player.SetPosition(dest)
	e.emit(Event{Type: EventPlayerMoved, From: from, To: dest, Dir: dir,
		Narrative: fmt.Sprintf("You step %s.", dirName(dir))})
	if e.Board.KindAt(dest) == board.TileExit {
		e.outcome = OutcomeWithdrew
		e.emit(Event{Type: EventPlayerExited, To: dest,
			Narrative: "You withdraw from the field."})
	}
	return nil
}

// PlayerAttack swings at the cell one step away in dir. The swing counts as
// the player's attack for this tick whether or not it connects, so the
// enemy phase that answers it skips the hit-reaction feedback.
//
// Precondition: dir must be a single king step.
func (e *Encounter) PlayerAttack(dir geom.Delta) error {
	if e.Over() {
		return fmt.Errorf("encounter %s: battle is over", e.ID)
	}
	if !unitStep(dir) {
		return fmt.Errorf("encounter %s: %v is not a single step", e.ID, dir)
	}
	e.Player.JustAttacked = true
	target := e.enemyAt(e.Player.Pos.Add(dir))
	if target == nil {
		e.emit(Event{Type: EventPlayerAttacked, Dir: dir,
			Narrative: "You swing at empty air."})
		return nil
	}
	target.TakeDamage(e.Player.AttackPower)
	e.emit(Event{Type: EventPlayerAttacked, ActorUID: target.UID, ActorName: target.Name, Dir: dir,
		Damage:    e.Player.AttackPower,
		Narrative: fmt.Sprintf("You strike %s for %d.", target.Name, e.Player.AttackPower)})
	if target.IsDead() {
		e.removeEnemy(target.UID)
		e.emit(Event{Type: EventEnemySlain, ActorUID: target.UID, ActorName: target.Name, To: target.Pos,
			Narrative: fmt.Sprintf("%s is slain.", target.Name)})
		e.checkVictory()
	}
	return nil
}

// ReadSign reads the sign under the player.
//
// Postcondition: Returns (text, true) and emits a sign event only when the
// player stands on a sign tile.
func (e *Encounter) ReadSign() (string, bool) {
	text, ok := e.Board.SignTextAt(e.Player.Pos)
	if !ok {
		return "", false
	}
	e.emit(Event{Type: EventSignRead, Text: text,
		Narrative: fmt.Sprintf("The sign reads: %q", text)})
	return text, true
}

// ResolveEnemyTurns runs one full enemy phase, handing each living enemy to
// the decision engine in roster order. The phase stops early if the player
// falls.
//
// Postcondition: The player's attack flag is cleared. The returned slice
// holds this phase's events in resolution order; they remain queued for
// DrainEvents as well.
func (e *Encounter) ResolveEnemyTurns() []Event {
	if e.Over() {
		return nil
	}
	e.Turn++
	start := len(e.pending)

	// Iterate a snapshot: an enemy that falls removes itself from the
	// roster while the phase is still walking it.
	phase := make([]*actor.Enemy, len(e.roster))
	copy(phase, e.roster)
	for _, en := range phase {
		if en.IsDead() {
			continue
		}
		from := en.Pos
		dest, moved := e.mover.DecideMove(en, e.world(), false)
		if moved {
			en.MoveTo(dest)
			e.emit(Event{Type: EventEnemyMoved, ActorUID: en.UID, ActorName: en.Name, From: from, To: dest,
				Narrative: fmt.Sprintf("%s advances.", en.Name)})
		}
		if e.Player.IsDead() {
			e.outcome = OutcomeDefeat
			e.emit(Event{Type: EventPlayerSlain, To: e.Player.Pos,
				Narrative: "You fall."})
			e.hooks.OnPlayerSlain(e.Board.ID)
			break
		}
	}

	e.Player.JustAttacked = false
	e.checkVictory()
	return append([]Event(nil), e.pending[start:]...)
}

// Preview is one enemy's next inclination, computed without mutating the
// battle.
type Preview struct {
	UID  string     `json:"uid"`
	Dest geom.Point `json:"dest"`
	// Moves reports whether the enemy would relocate; false means its turn
	// would resolve in place as an attack, bump, fall, or stuck condition.
	Moves bool `json:"moves"`
}

// PreviewEnemyMoves simulates each living enemy's next decision against the
// current state. Earlier enemies are not advanced before later ones are
// asked, so the preview shows first inclinations, not a resolved phase.
func (e *Encounter) PreviewEnemyMoves() []Preview {
	var out []Preview
	for _, en := range e.roster {
		if en.IsDead() {
			continue
		}
		dest, moved := e.mover.DecideMove(en, e.world(), true)
		out = append(out, Preview{UID: en.UID, Dest: dest, Moves: moved})
	}
	return out
}

func (e *Encounter) world() *ai.World {
	return &ai.World{
		Board:     e.Board,
		Player:    e.Player,
		PlayerPos: e.Player.Pos,
		Roster:    e.roster,
	}
}

func (e *Encounter) enemyAt(p geom.Point) *actor.Enemy {
	for _, en := range e.roster {
		if !en.IsDead() && en.Pos == p {
			return en
		}
	}
	return nil
}

func (e *Encounter) removeEnemy(uid string) {
	for i, en := range e.roster {
		if en.UID == uid {
			e.roster = append(e.roster[:i], e.roster[i+1:]...)
			return
		}
	}
}

func (e *Encounter) checkVictory() {
	if e.Over() || len(e.roster) > 0 {
		return
	}
	e.outcome = OutcomeVictory
	e.emit(Event{Type: EventVictory, Narrative: "The field is yours."})
}

func (e *Encounter) emit(ev Event) {
	ev.Turn = e.Turn
	e.pending = append(e.pending, ev)
	e.logger.Debug("battle event",
		zap.String("encounter", e.ID),
		zap.Stringer("event", ev.Type),
		zap.String("narrative", ev.Narrative))
}

// battleSink adapts decision-engine callbacks into battle events and script
// hooks, keeping the Encounter's public surface free of the ai interfaces.
type battleSink struct {
	enc *Encounter
}

func (s *battleSink) AttackFeedback(attacker *actor.Enemy, dir geom.Delta) {
	e := s.enc
	e.emit(Event{Type: EventEnemyAttacked, ActorUID: attacker.UID, ActorName: attacker.Name,
		From: attacker.Pos, To: attacker.Pos, Dir: dir,
		Damage:    attacker.AttackPower,
		Narrative: fmt.Sprintf("%s strikes you for %d.", attacker.Name, attacker.AttackPower)})
	if line, ok := tauntFor(attacker, e.Turn); ok {
		e.emit(Event{Type: EventTaunt, ActorUID: attacker.UID, ActorName: attacker.Name, Text: line,
			Narrative: fmt.Sprintf("%s: %q", attacker.Name, line)})
	}
	e.hooks.OnEnemyAttack(e.Board.ID, attacker, attacker.AttackPower, e.Player.HP)
}

func (s *battleSink) BumpFeedback(en *actor.Enemy, dir geom.Delta) {
	s.enc.emit(Event{Type: EventEnemyBumped, ActorUID: en.UID, ActorName: en.Name,
		From: en.Pos, To: en.Pos, Dir: dir,
		Narrative: fmt.Sprintf("%s bumps to a halt.", en.Name)})
}

func (s *battleSink) PlayerStruckFeedback(dir geom.Delta) {
	s.enc.emit(Event{Type: EventPlayerStruck, Dir: dir,
		Narrative: "You reel from the blow."})
}

func (s *battleSink) KnockbackFeedback(from, to geom.Point) {
	e := s.enc
	e.emit(Event{Type: EventKnockback, From: from, To: to,
		Narrative: "The blow hurls you back."})
	e.hooks.OnKnockback(e.Board.ID, from, to)
}

func (s *battleSink) ChargeFeedback(en *actor.Enemy, from, to geom.Point) {
	s.enc.emit(Event{Type: EventEnemyCharged, ActorUID: en.UID, ActorName: en.Name, From: from, To: to,
		Narrative: fmt.Sprintf("%s charges!", en.Name)})
}

func (s *battleSink) EnemyFell(en *actor.Enemy, at geom.Point) {
	e := s.enc
	e.removeEnemy(en.UID)
	e.emit(Event{Type: EventEnemyFell, ActorUID: en.UID, ActorName: en.Name,
		From: en.Pos, To: at,
		Narrative: fmt.Sprintf("%s plunges into the pit.", en.Name)})
	e.hooks.OnEnemyFell(e.Board.ID, en, at)
}

// tauntFor picks a deterministic taunt line for the given turn.
func tauntFor(en *actor.Enemy, turn int) (string, bool) {
	if len(en.Taunts) == 0 {
		return "", false
	}
	if turn < 0 {
		turn = 0
	}
	return en.Taunts[turn%len(en.Taunts)], true
}

func unitStep(d geom.Delta) bool {
	return !d.IsZero() && d.DX >= -1 && d.DX <= 1 && d.DY >= -1 && d.DY <= 1
}

func dirName(d geom.Delta) string {
	switch d {
	case geom.Delta{DX: 0, DY: -1}:
		return "north"
	case geom.Delta{DX: 1, DY: -1}:
		return "northeast"
	case geom.Delta{DX: 1, DY: 0}:
		return "east"
	case geom.Delta{DX: 1, DY: 1}:
		return "southeast"
	case geom.Delta{DX: 0, DY: 1}:
		return "south"
	case geom.Delta{DX: -1, DY: 1}:
		return "southwest"
	case geom.Delta{DX: -1, DY: 0}:
		return "west"
	case geom.Delta{DX: -1, DY: -1}:
		return "northwest"
	default:
		return d.String()
	}
}
