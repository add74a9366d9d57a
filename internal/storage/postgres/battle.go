package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrBattleNotFound is returned when a battle lookup yields no results.
var ErrBattleNotFound = errors.New("battle not found")

// BattleReport is one finished encounter's telemetry row.
type BattleReport struct {
	// ID is the encounter UUID assigned when the battle started.
	ID        string
	BoardID   string
	ProfileID int64
	// Outcome is the encounter outcome label: "victory", "defeat", or "withdrew".
	Outcome   string
	Turns     int
	Slain     int
	Duration  time.Duration
	CreatedAt time.Time
}

// BattleRepository provides battle telemetry persistence operations.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// Insert stores a finished battle. Duration is persisted with millisecond
// resolution.
//
// Precondition: r.ID must be a UUID; r.ProfileID must reference an existing profile.
// Postcondition: Returns nil on success or a non-nil error.
func (b *BattleRepository) Insert(ctx context.Context, r BattleReport) error {
	_, err := b.db.Exec(ctx,
		`INSERT INTO battles (id, board_id, profile_id, outcome, turns, slain, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.BoardID, r.ProfileID, r.Outcome, r.Turns, r.Slain, r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting battle: %w", err)
	}
	return nil
}

// GetByID retrieves a battle by its UUID.
//
// Postcondition: Returns the BattleReport or ErrBattleNotFound.
func (b *BattleRepository) GetByID(ctx context.Context, id string) (BattleReport, error) {
	var r BattleReport
	var durationMs int64
	err := b.db.QueryRow(ctx,
		`SELECT id, board_id, profile_id, outcome, turns, slain, duration_ms, created_at
		 FROM battles WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.BoardID, &r.ProfileID, &r.Outcome, &r.Turns, &r.Slain, &durationMs, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BattleReport{}, ErrBattleNotFound
		}
		return BattleReport{}, fmt.Errorf("querying battle: %w", err)
	}
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return r, nil
}

// ListByProfile returns the most recent battles for a profile, newest first.
//
// Precondition: profileID must be > 0; limit must be > 0.
// Postcondition: Returns up to limit reports (may be empty) or a non-nil error.
func (b *BattleRepository) ListByProfile(ctx context.Context, profileID int64, limit int) ([]BattleReport, error) {
	rows, err := b.db.Query(ctx,
		`SELECT id, board_id, profile_id, outcome, turns, slain, duration_ms, created_at
		 FROM battles WHERE profile_id = $1 ORDER BY created_at DESC LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battles: %w", err)
	}
	defer rows.Close()

	out := make([]BattleReport, 0, limit)
	for rows.Next() {
		var r BattleReport
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.BoardID, &r.ProfileID, &r.Outcome, &r.Turns, &r.Slain, &durationMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning battle row: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// OutcomeCounts returns how many battles on a board ended in each outcome.
// Used for board difficulty balancing.
//
// Precondition: boardID must be non-empty.
// Postcondition: Returns a map keyed by outcome label (may be empty).
func (b *BattleRepository) OutcomeCounts(ctx context.Context, boardID string) (map[string]int, error) {
	rows, err := b.db.Query(ctx,
		`SELECT outcome, COUNT(*) FROM battles WHERE board_id = $1 GROUP BY outcome`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting battle outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		out[outcome] = n
	}
	return out, rows.Err()
}
