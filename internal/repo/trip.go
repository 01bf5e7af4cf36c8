// Package repo contains all database access logic for the dive logbook.
// Each resource has its own file with an interface and a Postgres
// implementation; sqlite.go holds the single-file SQLite implementations used
// by the command line tool. No business logic lives here, only SQL and type
// mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripHintRepo persists trips so that dives flagged as belonging to a trip
// can find it again on the next grouping pass.
type TripHintRepo interface {
	// Create inserts a trip hint and returns the persisted record.
	Create(ctx context.Context, hint domain.TripHint) (domain.TripHint, error)

	// List returns every hint ordered by started_at descending.
	List(ctx context.Context) ([]domain.TripHint, error)

	// Delete removes a hint. Returns domain.ErrNotFound if it does not exist.
	// Dives that pointed at it keep their flag and simply find no trip.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgTripHintRepo struct {
	db db
}

// NewTripHintRepo constructs a TripHintRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripHintRepo(db db) TripHintRepo {
	return &pgTripHintRepo{db: db}
}

func (r *pgTripHintRepo) Create(ctx context.Context, hint domain.TripHint) (domain.TripHint, error) {
	const q = `
		INSERT INTO dive_trips (started_at, location)
		VALUES (@started_at, @location)
		RETURNING id, started_at, location, created_at`

	args := pgx.NamedArgs{
		"started_at": hint.StartedAt,
		"location":   hint.Location,
	}

	result, err := scanTripHint(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripHint{}, fmt.Errorf("repo.TripHintRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripHintRepo) List(ctx context.Context) ([]domain.TripHint, error) {
	const q = `
		SELECT id, started_at, location, created_at
		FROM dive_trips
		ORDER BY started_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripHintRepo.List: %w", err)
	}
	defer rows.Close()

	var hints []domain.TripHint
	for rows.Next() {
		h, err := scanTripHint(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripHintRepo.List: scan: %w", err)
		}
		hints = append(hints, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripHintRepo.List: rows: %w", err)
	}
	return hints, nil
}

func (r *pgTripHintRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM dive_trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripHintRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripHintRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTripHint(s scanner) (domain.TripHint, error) {
	var (
		h  domain.TripHint
		id pgtype.UUID
	)

	if err := s.Scan(&id, &h.StartedAt, &h.Location, &h.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripHint{}, domain.ErrNotFound
		}
		return domain.TripHint{}, err
	}

	h.ID = uuid.UUID(id.Bytes)
	h.StartedAt = h.StartedAt.UTC()
	return h, nil
}
