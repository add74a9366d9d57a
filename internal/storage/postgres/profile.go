package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Profile represents a pilot profile in the database.
type Profile struct {
	ID           int64
	CallSign     string
	PasswordHash string
	Wins         int
	Losses       int
	DeepestFloor int
	CreatedAt    time.Time
}

// ErrProfileNotFound is returned when a profile lookup yields no results.
var ErrProfileNotFound = errors.New("profile not found")

// ErrProfileExists is returned when attempting to create a duplicate call sign.
var ErrProfileExists = errors.New("profile already exists")

// ErrInvalidCredentials is returned when authentication fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ProfileRepository provides pilot profile persistence operations.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a ProfileRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile with a bcrypt-hashed password.
//
// Precondition: callSign must be non-empty; password must be non-empty.
// Postcondition: Returns the created Profile with ID and CreatedAt set,
// or ErrProfileExists if the call sign is taken.
func (r *ProfileRepository) Create(ctx context.Context, callSign, password string) (Profile, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Profile{}, fmt.Errorf("hashing password: %w", err)
	}

	var p Profile
	err = r.db.QueryRow(ctx,
		`INSERT INTO profiles (call_sign, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, call_sign, password_hash, wins, losses, deepest_floor, created_at`,
		callSign, hash,
	).Scan(&p.ID, &p.CallSign, &p.PasswordHash, &p.Wins, &p.Losses, &p.DeepestFloor, &p.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return Profile{}, ErrProfileExists
		}
		return Profile{}, fmt.Errorf("inserting profile: %w", err)
	}

	return p, nil
}

// Authenticate verifies credentials and returns the matching profile.
//
// Precondition: callSign and password must be non-empty.
// Postcondition: Returns the Profile if credentials are valid,
// ErrProfileNotFound if the call sign doesn't exist,
// or ErrInvalidCredentials if the password is wrong.
func (r *ProfileRepository) Authenticate(ctx context.Context, callSign, password string) (Profile, error) {
	p, err := r.GetByCallSign(ctx, callSign)
	if err != nil {
		return Profile{}, err
	}

	if !CheckPassword(password, p.PasswordHash) {
		return Profile{}, ErrInvalidCredentials
	}

	return p, nil
}

// GetByCallSign retrieves a profile by call sign.
//
// Precondition: callSign must be non-empty.
// Postcondition: Returns the Profile or ErrProfileNotFound.
func (r *ProfileRepository) GetByCallSign(ctx context.Context, callSign string) (Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx,
		`SELECT id, call_sign, password_hash, wins, losses, deepest_floor, created_at
		 FROM profiles WHERE call_sign = $1`,
		callSign,
	).Scan(&p.ID, &p.CallSign, &p.PasswordHash, &p.Wins, &p.Losses, &p.DeepestFloor, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// RecordResult applies a finished battle to the profile's tally. A victory
// increments wins, anything else increments losses; deepest_floor only
// ever grows.
//
// Precondition: profileID must be > 0; floor must be >= 0.
// Postcondition: Returns nil on success, ErrProfileNotFound if no row updated.
func (r *ProfileRepository) RecordResult(ctx context.Context, profileID int64, won bool, floor int) error {
	var tag string
	if won {
		tag = "wins"
	} else {
		tag = "losses"
	}
	// tag is one of two literals above, never caller input.
	query := fmt.Sprintf(
		`UPDATE profiles SET %s = %s + 1, deepest_floor = GREATEST(deepest_floor, $2) WHERE id = $1`,
		tag, tag,
	)

	res, err := r.db.Exec(ctx, query, profileID, floor)
	if err != nil {
		return fmt.Errorf("recording battle result: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Leaderboard returns the top profiles ordered by wins, then fewest losses.
//
// Precondition: limit must be > 0.
// Postcondition: Returns up to limit profiles (may be empty) or a non-nil error.
func (r *ProfileRepository) Leaderboard(ctx context.Context, limit int) ([]Profile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, call_sign, password_hash, wins, losses, deepest_floor, created_at
		 FROM profiles ORDER BY wins DESC, losses ASC, call_sign ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]Profile, 0, limit)
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.CallSign, &p.PasswordHash, &p.Wins, &p.Losses, &p.DeepestFloor, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
