package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// DiveRepo defines the persistence operations for dives.
// Selection and the derived statistics are session state and are not stored.
type DiveRepo interface {
	// Create inserts a new dive and returns the persisted record (with
	// generated id, created_at and updated_at populated).
	Create(ctx context.Context, dive domain.Dive) (domain.Dive, error)

	// GetByID retrieves a single dive. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Dive, error)

	// List returns every dive ordered by start time ascending.
	List(ctx context.Context) ([]domain.Dive, error)

	// Update overwrites the stored fields of a dive and returns the updated
	// record. Returns domain.ErrNotFound if no dive with that ID exists.
	Update(ctx context.Context, dive domain.Dive) (domain.Dive, error)

	// Delete removes a dive by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

const diveColumns = `id, number, started_at, duration_sec, max_depth_mm, mean_depth_mm, rating,
		location, suit, water_temp_mk, trip_flag, cylinders, weights, samples, created_at, updated_at`

type pgDiveRepo struct {
	db db
}

// NewDiveRepo constructs a DiveRepo backed by the provided db connection.
func NewDiveRepo(db db) DiveRepo {
	return &pgDiveRepo{db: db}
}

func (r *pgDiveRepo) Create(ctx context.Context, dive domain.Dive) (domain.Dive, error) {
	const q = `
		INSERT INTO dives (number, started_at, duration_sec, max_depth_mm, mean_depth_mm, rating,
		                   location, suit, water_temp_mk, trip_flag, cylinders, weights, samples)
		VALUES (@number, @started_at, @duration_sec, @max_depth_mm, @mean_depth_mm, @rating,
		        @location, @suit, @water_temp_mk, @trip_flag, @cylinders, @weights, @samples)
		RETURNING ` + diveColumns

	args, err := diveArgs(dive)
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.DiveRepo.Create: %w", err)
	}

	result, err := scanDive(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.DiveRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDiveRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Dive, error) {
	q := `SELECT ` + diveColumns + ` FROM dives WHERE id = @id`

	result, err := scanDive(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.DiveRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDiveRepo) List(ctx context.Context) ([]domain.Dive, error) {
	q := `SELECT ` + diveColumns + ` FROM dives ORDER BY started_at ASC, created_at ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.DiveRepo.List: %w", err)
	}
	defer rows.Close()

	var dives []domain.Dive
	for rows.Next() {
		d, err := scanDive(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DiveRepo.List: scan: %w", err)
		}
		dives = append(dives, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DiveRepo.List: rows: %w", err)
	}
	return dives, nil
}

func (r *pgDiveRepo) Update(ctx context.Context, dive domain.Dive) (domain.Dive, error) {
	const q = `
		UPDATE dives
		SET number        = @number,
		    started_at    = @started_at,
		    duration_sec  = @duration_sec,
		    max_depth_mm  = @max_depth_mm,
		    mean_depth_mm = @mean_depth_mm,
		    rating        = @rating,
		    location      = @location,
		    suit          = @suit,
		    water_temp_mk = @water_temp_mk,
		    trip_flag     = @trip_flag,
		    cylinders     = @cylinders,
		    weights       = @weights,
		    samples       = @samples,
		    updated_at    = now()
		WHERE id = @id
		RETURNING ` + diveColumns

	args, err := diveArgs(dive)
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.DiveRepo.Update: %w", err)
	}
	args["id"] = dive.ID

	result, err := scanDive(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Dive{}, fmt.Errorf("repo.DiveRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgDiveRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM dives WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.DiveRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DiveRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// diveArgs maps the stored fields of a dive to named query arguments.
// Cylinders, weights and samples travel as JSON documents.
func diveArgs(d domain.Dive) (pgx.NamedArgs, error) {
	blobs, err := encodeBlobs(d)
	if err != nil {
		return nil, err
	}
	return pgx.NamedArgs{
		"number":        d.Number,
		"started_at":    d.When,
		"duration_sec":  d.DurationSec,
		"max_depth_mm":  d.MaxDepthMM,
		"mean_depth_mm": d.MeanDepthMM,
		"rating":        d.Rating,
		"location":      d.Location,
		"suit":          d.Suit,
		"water_temp_mk": d.WaterTempMK,
		"trip_flag":     d.TripFlag.String(),
		"cylinders":     blobs.cylinders,
		"weights":       blobs.weights,
		"samples":       blobs.samples,
	}, nil
}

func scanDive(s scanner) (domain.Dive, error) {
	var (
		d    domain.Dive
		id   pgtype.UUID
		raw  rawDive
		when time.Time
	)

	err := s.Scan(&id, &d.Number, &when, &d.DurationSec, &d.MaxDepthMM, &d.MeanDepthMM, &d.Rating,
		&d.Location, &d.Suit, &d.WaterTempMK, &raw.flag, &raw.cylinders, &raw.weights, &raw.samples,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Dive{}, domain.ErrNotFound
		}
		return domain.Dive{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.When = when.UTC()
	if err := raw.decodeInto(&d); err != nil {
		return domain.Dive{}, err
	}
	return d, nil
}

// blobs are the JSON encoded list columns of a dive.
type blobs struct {
	cylinders string
	weights   string
	samples   string
}

func encodeBlobs(d domain.Dive) (blobs, error) {
	var (
		b   blobs
		err error
	)
	if b.cylinders, err = marshalList(d.Cylinders); err != nil {
		return blobs{}, fmt.Errorf("encode cylinders: %w", err)
	}
	if b.weights, err = marshalList(d.Weights); err != nil {
		return blobs{}, fmt.Errorf("encode weights: %w", err)
	}
	if b.samples, err = marshalList(d.Samples); err != nil {
		return blobs{}, fmt.Errorf("encode samples: %w", err)
	}
	return b, nil
}

func marshalList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// rawDive holds the columns of a dive row that need decoding after the scan.
type rawDive struct {
	flag      string
	cylinders []byte
	weights   []byte
	samples   []byte
}

func (r rawDive) decodeInto(d *domain.Dive) error {
	flag, err := domain.ParseTripFlag(r.flag)
	if err != nil {
		return err
	}
	d.TripFlag = flag
	if err := unmarshalList(r.cylinders, &d.Cylinders); err != nil {
		return fmt.Errorf("decode cylinders: %w", err)
	}
	if err := unmarshalList(r.weights, &d.Weights); err != nil {
		return fmt.Errorf("decode weights: %w", err)
	}
	if err := unmarshalList(r.samples, &d.Samples); err != nil {
		return fmt.Errorf("decode samples: %w", err)
	}
	return nil
}

func unmarshalList[T any](data []byte, dst *[]T) error {
	if len(data) == 0 {
		*dst = nil
		return nil
	}
	return json.Unmarshal(data, dst)
}
