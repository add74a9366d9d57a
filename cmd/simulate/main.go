// Package main provides a headless battle simulator for enemy balancing.
// It replays each configured board against deterministic player policies
// and prints a JSON summary of the outcomes. The decision engine has no
// randomness, so one run per board and policy characterizes the matchup.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/config"
	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/game/geom"
	"github.com/cory-johannsen/gambit/internal/game/pathfind"
	"github.com/cory-johannsen/gambit/internal/gameserver"
	"github.com/cory-johannsen/gambit/internal/observability"
	"github.com/cory-johannsen/gambit/internal/storage/postgres"
)

// policy drives the player for one action per turn. Implementations must be
// deterministic; the summary is only meaningful when replays are identical.
type policy interface {
	Name() string
	// Act performs exactly one player action on the encounter.
	Act(enc *encounter.Encounter) error
}

// runReport summarizes one simulated battle.
type runReport struct {
	Board     string `json:"board"`
	Floor     int    `json:"floor"`
	Policy    string `json:"policy"`
	Outcome   string `json:"outcome"`
	Turns     int    `json:"turns"`
	Slain     int    `json:"slain"`
	Spawned   int    `json:"spawned"`
	PlayerHP  int    `json:"playerHp"`
	Decisions int    `json:"decisions"`
}

// summary is the simulator's stdout document.
type summary struct {
	GeneratedAt  time.Time   `json:"generatedAt"`
	PlayerHP     int         `json:"playerHp"`
	PlayerAttack int         `json:"playerAttack"`
	MaxTurns     int         `json:"maxTurns"`
	Runs         []runReport `json:"runs"`
}

// traceLine is one enemy decision in the optional JSONL trace output. It
// mirrors the battle_turns columns so recorded files line up with the
// database traces.
type traceLine struct {
	Battle    string `json:"battle"`
	Board     string `json:"board"`
	Policy    string `json:"policy"`
	Turn      int    `json:"turn"`
	EnemyUID  string `json:"enemyUid"`
	Archetype string `json:"archetype"`
	FromX     int    `json:"fromX"`
	FromY     int    `json:"fromY"`
	ToX       int    `json:"toX"`
	ToY       int    `json:"toY"`
	Action    string `json:"action"`
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	boardID := flag.String("board", "", "board to simulate; empty = all boards")
	policyName := flag.String("policy", "all", "player policy: duelist, survivor, statue, runner, or all")
	maxTurns := flag.Int("max-turns", 200, "turn cap before a battle is scored as a stalemate")
	tracePath := flag.String("traces", "", "optional JSONL file for per-decision traces")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// The summary owns stdout; logs go to stderr.
	cfg.Logging.Output = "stderr"
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	boardList, err := board.LoadBoardsFromDir(cfg.Content.BoardsDir)
	if err != nil {
		logger.Fatal("loading boards", zap.Error(err))
	}
	templates, err := actor.LoadTemplates(cfg.Content.EnemiesDir)
	if err != nil {
		logger.Fatal("loading enemy templates", zap.Error(err))
	}

	boards := selectBoards(boardList, *boardID)
	if len(boards) == 0 {
		logger.Fatal("no matching board", zap.String("board", *boardID))
	}
	policies := selectPolicies(*policyName)
	if len(policies) == 0 {
		logger.Fatal("unknown policy", zap.String("policy", *policyName))
	}

	var traceOut *os.File
	if *tracePath != "" {
		traceOut, err = os.Create(*tracePath)
		if err != nil {
			logger.Fatal("creating trace file", zap.String("path", *tracePath), zap.Error(err))
		}
		defer traceOut.Close()
	}

	encCfg := encounter.Config{PlayerHP: cfg.Game.PlayerHP, PlayerAttack: cfg.Game.PlayerAttack}
	out := summary{
		GeneratedAt:  time.Now().UTC(),
		PlayerHP:     cfg.Game.PlayerHP,
		PlayerAttack: cfg.Game.PlayerAttack,
		MaxTurns:     *maxTurns,
	}

	for _, b := range boards {
		for _, p := range policies {
			report, traces, err := simulate(b, templates, encCfg, p, *maxTurns, logger)
			if err != nil {
				logger.Fatal("simulation failed",
					zap.String("board", b.ID),
					zap.String("policy", p.Name()),
					zap.Error(err))
			}
			out.Runs = append(out.Runs, report)
			if traceOut != nil {
				if err := writeTraces(traceOut, b.ID, p.Name(), traces); err != nil {
					logger.Fatal("writing traces", zap.Error(err))
				}
			}
			logger.Info("battle simulated",
				zap.String("board", b.ID),
				zap.String("policy", p.Name()),
				zap.String("outcome", report.Outcome),
				zap.Int("turns", report.Turns))
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("encoding summary", zap.Error(err))
	}
}

// simulate fights one battle to its end or the turn cap.
func simulate(b *board.Board, templates map[string]*actor.Template, cfg encounter.Config, p policy, maxTurns int, logger *zap.Logger) (runReport, []postgres.TurnTrace, error) {
	id := fmt.Sprintf("sim-%s-%s", b.ID, p.Name())
	enc, err := encounter.NewEncounter(id, b, templates, cfg, encounter.NopHooks{}, logger)
	if err != nil {
		return runReport{}, nil, fmt.Errorf("starting battle on %q: %w", b.ID, err)
	}

	archetypes := gameserver.ArchetypeIndex(enc.Enemies())
	spawned := len(enc.Enemies())
	var traces []postgres.TurnTrace

	actions := 0
	for !enc.Over() && actions < maxTurns {
		if err := p.Act(enc); err != nil {
			return runReport{}, nil, fmt.Errorf("policy %s on %q: %w", p.Name(), b.ID, err)
		}
		actions++
		if !enc.Over() {
			enc.ResolveEnemyTurns()
		}
		traces = append(traces, gameserver.TracesFromEvents(enc.ID, enc.DrainEvents(), archetypes)...)
	}

	outcome := enc.Outcome().String()
	if !enc.Over() {
		outcome = "stalemate"
	}
	return runReport{
		Board:     b.ID,
		Floor:     b.Floor,
		Policy:    p.Name(),
		Outcome:   outcome,
		Turns:     enc.Turn,
		Slain:     spawned - len(enc.Enemies()),
		Spawned:   spawned,
		PlayerHP:  enc.Player.HP,
		Decisions: len(traces),
	}, traces, nil
}

func writeTraces(f *os.File, boardID, policyName string, traces []postgres.TurnTrace) error {
	enc := json.NewEncoder(f)
	for _, tr := range traces {
		line := traceLine{
			Battle:    tr.BattleID,
			Board:     boardID,
			Policy:    policyName,
			Turn:      tr.Turn,
			EnemyUID:  tr.EnemyUID,
			Archetype: tr.Archetype,
			FromX:     tr.FromX,
			FromY:     tr.FromY,
			ToX:       tr.ToX,
			ToY:       tr.ToY,
			Action:    tr.Action,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encoding trace line: %w", err)
		}
	}
	return nil
}

// selectBoards filters by id and orders by floor, then id, for stable output.
func selectBoards(all []*board.Board, id string) []*board.Board {
	var out []*board.Board
	for _, b := range all {
		if id == "" || b.ID == id {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Floor != out[j].Floor {
			return out[i].Floor < out[j].Floor
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func selectPolicies(name string) []policy {
	all := []policy{duelist{}, survivor{}, statue{}, runner{}}
	if name == "all" {
		return all
	}
	for _, p := range all {
		if p.Name() == name {
			return []policy{p}
		}
	}
	return nil
}

// nearestEnemy picks the closest enemy by Manhattan distance, roster order
// breaking ties.
func nearestEnemy(roster []*actor.Enemy, from geom.Point) *actor.Enemy {
	var best *actor.Enemy
	bestDist := 0
	for _, en := range roster {
		d := geom.Manhattan(from, en.Pos)
		if best == nil || d < bestDist {
			best = en
			bestDist = d
		}
	}
	return best
}

// pathTo returns a shortest king-step path from the player to target. The
// target cell itself is always expandable so a path can terminate on an
// enemy or an exit.
func pathTo(enc *encounter.Encounter, target geom.Point) pathfind.Path {
	occupied := make(map[geom.Point]bool)
	for _, en := range enc.Enemies() {
		occupied[en.Pos] = true
	}
	walkable := func(p geom.Point) bool {
		if p == target {
			return true
		}
		return enc.Board.Walkable(p) && !occupied[p]
	}
	return pathfind.FindPath(enc.Player.Pos, target, geom.Compass, walkable)
}

// stepToward returns the first step of a shortest path to target, stopping
// short of the target cell itself.
func stepToward(enc *encounter.Encounter, target geom.Point) (geom.Delta, bool) {
	path := pathTo(enc, target)
	if path.Steps() < 2 {
		return geom.Delta{}, false
	}
	return path[1].Sub(enc.Player.Pos), true
}

// adjacentEnemy returns the first enemy in roster order within king reach.
func adjacentEnemy(enc *encounter.Encounter) *actor.Enemy {
	for _, en := range enc.Enemies() {
		if geom.Adjacent(enc.Player.Pos, en.Pos) {
			return en
		}
	}
	return nil
}

// whiffAt swings toward target without reaching it, spending the turn while
// holding position.
func whiffAt(enc *encounter.Encounter, target geom.Point) error {
	return enc.PlayerAttack(target.Sub(enc.Player.Pos).Unit())
}

// duelist closes on the nearest enemy and trades blows.
type duelist struct{}

func (duelist) Name() string { return "duelist" }

func (duelist) Act(enc *encounter.Encounter) error {
	if en := adjacentEnemy(enc); en != nil {
		return enc.PlayerAttack(en.Pos.Sub(enc.Player.Pos))
	}
	target := nearestEnemy(enc.Enemies(), enc.Player.Pos)
	if step, ok := stepToward(enc, target.Pos); ok {
		return enc.MovePlayer(step)
	}
	return whiffAt(enc, target.Pos)
}

// survivor keeps its distance, fighting only when cornered.
type survivor struct{}

func (survivor) Name() string { return "survivor" }

func (s survivor) Act(enc *encounter.Encounter) error {
	if en := adjacentEnemy(enc); en != nil {
		return enc.PlayerAttack(en.Pos.Sub(enc.Player.Pos))
	}

	roster := enc.Enemies()
	occupied := make(map[geom.Point]bool, len(roster))
	for _, en := range roster {
		occupied[en.Pos] = true
	}

	// Take the step that most increases the distance to the closest enemy;
	// hold position when no step improves it.
	here := enc.Player.Pos
	best := here
	bestDist := nearestDistance(roster, here)
	for _, d := range geom.Compass {
		cand := here.Add(d)
		if !enc.Board.Walkable(cand) || occupied[cand] {
			continue
		}
		if dist := nearestDistance(roster, cand); dist > bestDist {
			best = cand
			bestDist = dist
		}
	}
	if best != here {
		return enc.MovePlayer(best.Sub(here))
	}
	return whiffAt(enc, nearestEnemy(roster, here).Pos)
}

func nearestDistance(roster []*actor.Enemy, from geom.Point) int {
	best := 0
	for i, en := range roster {
		d := geom.Manhattan(from, en.Pos)
		if i == 0 || d < best {
			best = d
		}
	}
	return best
}

// statue never moves; it measures how quickly a board's roster can close on
// and finish a stationary player.
type statue struct{}

func (statue) Name() string { return "statue" }

func (statue) Act(enc *encounter.Encounter) error {
	if en := adjacentEnemy(enc); en != nil {
		return enc.PlayerAttack(en.Pos.Sub(enc.Player.Pos))
	}
	return whiffAt(enc, enc.Player.Pos.Add(geom.Delta{DX: 0, DY: -1}))
}

// runner makes for the nearest exit, measuring whether withdrawal is a live
// option on the board. Without a reachable exit it degrades to survivor.
type runner struct{}

func (runner) Name() string { return "runner" }

func (r runner) Act(enc *encounter.Encounter) error {
	var best pathfind.Path
	for _, exit := range exitCells(enc.Board) {
		path := pathTo(enc, exit)
		if path.Steps() == 0 {
			continue
		}
		if best == nil || path.Steps() < best.Steps() {
			best = path
		}
	}
	if best != nil {
		return enc.MovePlayer(best[1].Sub(enc.Player.Pos))
	}
	return survivor{}.Act(enc)
}

func exitCells(b *board.Board) []geom.Point {
	var out []geom.Point
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			p := geom.Point{X: x, Y: y}
			if b.KindAt(p) == board.TileExit {
				out = append(out, p)
			}
		}
	}
	return out
}
