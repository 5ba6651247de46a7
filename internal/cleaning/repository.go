package cleaning

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richxcame/urban-mobility/internal/ingest"
	"github.com/richxcame/urban-mobility/internal/sampling"
)

var cleanTripColumns = []string{
	"id",
	"pickup_datetime", "dropoff_datetime",
	"pickup_latitude", "pickup_longitude",
	"dropoff_latitude", "dropoff_longitude",
	"passenger_count",
}

// Repository holds the clean trip set, a derived view recomputed by the
// pipeline. The raw trip store is never mutated.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new clean trip repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Reset discards the previous derived view before a recompute.
func (r *Repository) Reset(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE clean_trips`); err != nil {
		return fmt.Errorf("resetting clean trips: %w", err)
	}
	return nil
}

// AppendBatch appends a batch of clean trips.
func (r *Repository) AppendBatch(ctx context.Context, trips []ingest.TripRecord) error {
	if len(trips) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, []interface{}{
			t.ID,
			t.PickupDatetime, t.DropoffDatetime,
			t.PickupLatitude, t.PickupLongitude,
			t.DropoffLatitude, t.DropoffLongitude,
			t.PassengerCount,
		})
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"clean_trips"}, cleanTripColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("appending clean trips: %w", err)
	}
	return nil
}

// Count returns the size of the clean trip set.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clean_trips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting clean trips: %w", err)
	}
	return n, nil
}

// ScanPickupTimes returns every pickup timestamp in the clean set, ordered.
func (r *Repository) ScanPickupTimes(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, `SELECT pickup_datetime FROM clean_trips ORDER BY pickup_datetime`)
	if err != nil {
		return nil, fmt.Errorf("scanning pickup times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning pickup time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning pickup times: %w", err)
	}
	return times, nil
}

// ScanPickupCoordinates returns every pickup coordinate in the clean set.
func (r *Repository) ScanPickupCoordinates(ctx context.Context) ([]sampling.Coordinate, error) {
	rows, err := r.db.Query(ctx, `SELECT pickup_latitude, pickup_longitude FROM clean_trips`)
	if err != nil {
		return nil, fmt.Errorf("scanning pickup coordinates: %w", err)
	}
	defer rows.Close()

	var coords []sampling.Coordinate
	for rows.Next() {
		var c sampling.Coordinate
		if err := rows.Scan(&c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scanning pickup coordinate: %w", err)
		}
		coords = append(coords, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning pickup coordinates: %w", err)
	}
	return coords, nil
}
