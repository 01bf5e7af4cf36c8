package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/pkordes/dive-logbook/internal/domain"
)

// sqliteSchema mirrors the Postgres migrations. Times are stored as Unix
// nanoseconds, ids as text.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dive_trips (
  id         TEXT PRIMARY KEY,
  started_at INTEGER NOT NULL,
  location   TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS dives (
  id            TEXT PRIMARY KEY,
  number        INTEGER NOT NULL DEFAULT 0,
  started_at    INTEGER NOT NULL,
  duration_sec  INTEGER NOT NULL DEFAULT 0 CHECK (duration_sec >= 0),
  max_depth_mm  INTEGER NOT NULL DEFAULT 0,
  mean_depth_mm INTEGER NOT NULL DEFAULT 0,
  rating        INTEGER NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
  location      TEXT NOT NULL DEFAULT '',
  suit          TEXT NOT NULL DEFAULT '',
  water_temp_mk INTEGER NOT NULL DEFAULT 0,
  trip_flag     TEXT NOT NULL DEFAULT 'unassigned' CHECK (trip_flag IN ('unassigned','no_trip','in_trip')),
  cylinders     TEXT NOT NULL DEFAULT '[]',
  weights       TEXT NOT NULL DEFAULT '[]',
  samples       TEXT NOT NULL DEFAULT '[]',
  created_at    INTEGER NOT NULL,
  updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dives_started_at ON dives(started_at);
CREATE INDEX IF NOT EXISTS idx_dive_trips_started_at ON dive_trips(started_at);
`

// OpenSQLite opens the logbook file at path, creating it and its schema if needed.
// Callers are responsible for closing the returned *sql.DB.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("repo.OpenSQLite: create dirs: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: schema: %w", err)
	}
	return db, nil
}

type sqliteDiveRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDiveRepo constructs a DiveRepo over a database opened with OpenSQLite.
func NewSQLiteDiveRepo(db *sql.DB) DiveRepo {
	return &sqliteDiveRepo{db: db, now: time.Now}
}

func (r *sqliteDiveRepo) Create(ctx context.Context, dive domain.Dive) (domain.Dive, error) {
	const q = `
		INSERT INTO dives (id, number, started_at, duration_sec, max_depth_mm, mean_depth_mm, rating,
		                   location, suit, water_temp_mk, trip_flag, cylinders, weights, samples,
		                   created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	b, err := encodeBlobs(dive)
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.SQLiteDiveRepo.Create: %w", err)
	}
	id := uuid.New()
	now := r.now().UnixNano()
	_, err = r.db.ExecContext(ctx, q,
		id.String(), dive.Number, dive.When.UnixNano(), dive.DurationSec, dive.MaxDepthMM, dive.MeanDepthMM,
		dive.Rating, dive.Location, dive.Suit, dive.WaterTempMK, dive.TripFlag.String(),
		b.cylinders, b.weights, b.samples, now, now)
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.SQLiteDiveRepo.Create: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteDiveRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Dive, error) {
	q := `SELECT ` + diveColumns + ` FROM dives WHERE id = ?`

	d, err := scanSQLiteDive(r.db.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.SQLiteDiveRepo.GetByID: %w", err)
	}
	return d, nil
}

func (r *sqliteDiveRepo) List(ctx context.Context) ([]domain.Dive, error) {
	q := `SELECT ` + diveColumns + ` FROM dives ORDER BY started_at ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteDiveRepo.List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dives []domain.Dive
	for rows.Next() {
		d, err := scanSQLiteDive(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SQLiteDiveRepo.List: scan: %w", err)
		}
		dives = append(dives, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SQLiteDiveRepo.List: rows: %w", err)
	}
	return dives, nil
}

func (r *sqliteDiveRepo) Update(ctx context.Context, dive domain.Dive) (domain.Dive, error) {
	const q = `
		UPDATE dives
		SET number = ?, started_at = ?, duration_sec = ?, max_depth_mm = ?, mean_depth_mm = ?,
		    rating = ?, location = ?, suit = ?, water_temp_mk = ?, trip_flag = ?,
		    cylinders = ?, weights = ?, samples = ?, updated_at = ?
		WHERE id = ?`

	b, err := encodeBlobs(dive)
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.SQLiteDiveRepo.Update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q,
		dive.Number, dive.When.UnixNano(), dive.DurationSec, dive.MaxDepthMM, dive.MeanDepthMM,
		dive.Rating, dive.Location, dive.Suit, dive.WaterTempMK, dive.TripFlag.String(),
		b.cylinders, b.weights, b.samples, r.now().UnixNano(), dive.ID.String())
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.SQLiteDiveRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Dive{}, fmt.Errorf("repo.SQLiteDiveRepo.Update: %w", domain.ErrNotFound)
	}
	return r.GetByID(ctx, dive.ID)
}

func (r *sqliteDiveRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dives WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("repo.SQLiteDiveRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repo.SQLiteDiveRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanSQLiteDive(s scanner) (domain.Dive, error) {
	var (
		d                           domain.Dive
		id                          string
		raw                         rawDive
		when, createdAt, updatedAt  int64
		cylinders, weights, samples string
	)

	err := s.Scan(&id, &d.Number, &when, &d.DurationSec, &d.MaxDepthMM, &d.MeanDepthMM, &d.Rating,
		&d.Location, &d.Suit, &d.WaterTempMK, &raw.flag, &cylinders, &weights, &samples,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Dive{}, domain.ErrNotFound
		}
		return domain.Dive{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Dive{}, fmt.Errorf("parse id: %w", err)
	}
	d.ID = parsed
	d.When = time.Unix(0, when).UTC()
	d.CreatedAt = time.Unix(0, createdAt).UTC()
	d.UpdatedAt = time.Unix(0, updatedAt).UTC()
	raw.cylinders, raw.weights, raw.samples = []byte(cylinders), []byte(weights), []byte(samples)
	if err := raw.decodeInto(&d); err != nil {
		return domain.Dive{}, err
	}
	return d, nil
}

type sqliteTripHintRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTripHintRepo constructs a TripHintRepo over a database opened with OpenSQLite.
func NewSQLiteTripHintRepo(db *sql.DB) TripHintRepo {
	return &sqliteTripHintRepo{db: db, now: time.Now}
}

func (r *sqliteTripHintRepo) Create(ctx context.Context, hint domain.TripHint) (domain.TripHint, error) {
	const q = `INSERT INTO dive_trips (id, started_at, location, created_at) VALUES (?, ?, ?, ?)`

	out := domain.TripHint{
		ID:        uuid.New(),
		StartedAt: hint.StartedAt.UTC(),
		Location:  hint.Location,
		CreatedAt: r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, q, out.ID.String(), out.StartedAt.UnixNano(), out.Location, out.CreatedAt.UnixNano())
	if err != nil {
		return domain.TripHint{}, fmt.Errorf("repo.SQLiteTripHintRepo.Create: %w", err)
	}
	return out, nil
}

func (r *sqliteTripHintRepo) List(ctx context.Context) ([]domain.TripHint, error) {
	const q = `SELECT id, started_at, location, created_at FROM dive_trips ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteTripHintRepo.List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hints []domain.TripHint
	for rows.Next() {
		var (
			h                  domain.TripHint
			id                 string
			started, createdAt int64
		)
		if err := rows.Scan(&id, &started, &h.Location, &createdAt); err != nil {
			return nil, fmt.Errorf("repo.SQLiteTripHintRepo.List: scan: %w", err)
		}
		if h.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("repo.SQLiteTripHintRepo.List: parse id: %w", err)
		}
		h.StartedAt = time.Unix(0, started).UTC()
		h.CreatedAt = time.Unix(0, createdAt).UTC()
		hints = append(hints, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SQLiteTripHintRepo.List: rows: %w", err)
	}
	return hints, nil
}

func (r *sqliteTripHintRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dive_trips WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("repo.SQLiteTripHintRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repo.SQLiteTripHintRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}
