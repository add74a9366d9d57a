package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TurnTrace is one enemy decision within a battle, recorded for AI
// balancing. Action is the resolved act: "move", "charge", "attack",
// "bump", or "fall".
type TurnTrace struct {
	BattleID  string
	Turn      int
	EnemyUID  string
	Archetype string
	FromX     int
	FromY     int
	ToX       int
	ToY       int
	Action    string
}

// TraceRepository provides per-turn decision trace persistence.
type TraceRepository struct {
	db *pgxpool.Pool
}

// NewTraceRepository creates a TraceRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTraceRepository(db *pgxpool.Pool) *TraceRepository {
	return &TraceRepository{db: db}
}

// InsertBatch stores a battle's accumulated traces in one round trip.
// A nil or empty slice is a no-op.
//
// Precondition: every trace's BattleID must reference an existing battle.
// Postcondition: Either all rows are inserted or an error is returned.
func (t *TraceRepository) InsertBatch(ctx context.Context, traces []TurnTrace) error {
	if len(traces) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tr := range traces {
		batch.Queue(
			`INSERT INTO battle_turns (battle_id, turn, enemy_uid, archetype, from_x, from_y, to_x, to_y, action)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			tr.BattleID, tr.Turn, tr.EnemyUID, tr.Archetype,
			tr.FromX, tr.FromY, tr.ToX, tr.ToY, tr.Action,
		)
	}

	results := t.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range traces {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting trace %d of %d: %w", i+1, len(traces), err)
		}
	}
	return nil
}

// ListByBattle returns a battle's traces in turn order.
//
// Precondition: battleID must be non-empty.
// Postcondition: Returns the traces (may be empty) or a non-nil error.
func (t *TraceRepository) ListByBattle(ctx context.Context, battleID string) ([]TurnTrace, error) {
	rows, err := t.db.Query(ctx,
		`SELECT battle_id, turn, enemy_uid, archetype, from_x, from_y, to_x, to_y, action
		 FROM battle_turns WHERE battle_id = $1 ORDER BY turn ASC, id ASC`,
		battleID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing traces: %w", err)
	}
	defer rows.Close()

	out := make([]TurnTrace, 0)
	for rows.Next() {
		var tr TurnTrace
		if err := rows.Scan(&tr.BattleID, &tr.Turn, &tr.EnemyUID, &tr.Archetype,
			&tr.FromX, &tr.FromY, &tr.ToX, &tr.ToY, &tr.Action); err != nil {
			return nil, fmt.Errorf("scanning trace row: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// CountByArchetype returns how many traced decisions each archetype made
// on the given board, across all battles.
//
// Precondition: boardID must be non-empty.
// Postcondition: Returns a map keyed by archetype label (may be empty).
func (t *TraceRepository) CountByArchetype(ctx context.Context, boardID string) (map[string]int, error) {
	rows, err := t.db.Query(ctx,
		`SELECT bt.archetype, COUNT(*)
		 FROM battle_turns bt
		 JOIN battles b ON b.id = bt.battle_id
		 WHERE b.board_id = $1
		 GROUP BY bt.archetype`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting traces by archetype: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var archetype string
		var n int
		if err := rows.Scan(&archetype, &n); err != nil {
			return nil, fmt.Errorf("scanning archetype count row: %w", err)
		}
		out[archetype] = n
	}
	return out, rows.Err()
}
