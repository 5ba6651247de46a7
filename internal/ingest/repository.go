package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var tripColumns = []string{
	"id",
	"pickup_datetime", "dropoff_datetime",
	"pickup_latitude", "pickup_longitude",
	"dropoff_latitude", "dropoff_longitude",
	"passenger_count",
}

// Repository is the append-only trip store. The ingestor is its only writer;
// downstream stages read it via batched scans.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new trip store repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// AppendBatch appends a batch of trips, preserving their order via the
// table's sequence column.
func (r *Repository) AppendBatch(ctx context.Context, trips []TripRecord) error {
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

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"trips"}, tripColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("appending trip batch: %w", err)
	}
	return nil
}

// Count returns the number of stored trips.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting trips: %w", err)
	}
	return n, nil
}

// ScanBatch returns up to batchSize trips with a source sequence greater than
// afterSeq, in source order, along with the last sequence seen. Callers page
// through the full store by feeding the returned sequence back in.
func (r *Repository) ScanBatch(ctx context.Context, afterSeq int64, batchSize int) ([]TripRecord, int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT seq, id,
		       pickup_datetime, dropoff_datetime,
		       pickup_latitude, pickup_longitude,
		       dropoff_latitude, dropoff_longitude,
		       passenger_count
		FROM trips
		WHERE seq > $1
		ORDER BY seq
		LIMIT $2`, afterSeq, batchSize)
	if err != nil {
		return nil, afterSeq, fmt.Errorf("scanning trip batch: %w", err)
	}
	defer rows.Close()

	trips := make([]TripRecord, 0, batchSize)
	lastSeq := afterSeq
	for rows.Next() {
		var t TripRecord
		if err := rows.Scan(
			&lastSeq, &t.ID,
			&t.PickupDatetime, &t.DropoffDatetime,
			&t.PickupLatitude, &t.PickupLongitude,
			&t.DropoffLatitude, &t.DropoffLongitude,
			&t.PassengerCount,
		); err != nil {
			return nil, afterSeq, fmt.Errorf("scanning trip row: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, afterSeq, fmt.Errorf("scanning trip batch: %w", err)
	}

	return trips, lastSeq, nil
}
