package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists forecast runs so the presentation layer can read the
// latest fitted output without re-running the pipeline.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new forecast repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveRun stores a forecast result and its points, returning the run ID.
func (r *Repository) SaveRun(ctx context.Context, result *Result) (uuid.UUID, error) {
	runID := uuid.New()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("starting forecast run transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO forecast_runs
			(id, created_at, horizon_hours, train_size, holdout_size, mae, rmse, mape, r2, low_confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		runID, time.Now().UTC(), result.HorizonHours,
		result.TrainSize, result.HoldoutSize,
		result.Metrics.MAE, result.Metrics.RMSE, result.Metrics.MAPE, result.Metrics.R2,
		result.LowConfidence,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting forecast run: %w", err)
	}

	rows := make([][]interface{}, 0, len(result.Points))
	for _, p := range result.Points {
		rows = append(rows, []interface{}{runID, p.Timestamp, p.Predicted, p.LowerBound, p.UpperBound})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"forecast_points"},
		[]string{"run_id", "ts", "predicted_count", "lower_bound", "upper_bound"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting forecast points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing forecast run: %w", err)
	}
	return runID, nil
}

// LatestRun loads the most recent persisted forecast, or pgx.ErrNoRows when
// no run exists yet.
func (r *Repository) LatestRun(ctx context.Context) (*Result, error) {
	var runID uuid.UUID
	result := &Result{}
	err := r.db.QueryRow(ctx, `
		SELECT id, horizon_hours, train_size, holdout_size, mae, rmse, mape, r2, low_confidence
		FROM forecast_runs
		ORDER BY created_at DESC
		LIMIT 1`).Scan(
		&runID, &result.HorizonHours,
		&result.TrainSize, &result.HoldoutSize,
		&result.Metrics.MAE, &result.Metrics.RMSE, &result.Metrics.MAPE, &result.Metrics.R2,
		&result.LowConfidence,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT ts, predicted_count, lower_bound, upper_bound
		FROM forecast_points
		WHERE run_id = $1
		ORDER BY ts`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading forecast points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Timestamp, &p.Predicted, &p.LowerBound, &p.UpperBound); err != nil {
			return nil, fmt.Errorf("scanning forecast point: %w", err)
		}
		result.Points = append(result.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading forecast points: %w", err)
	}
	return result, nil
}
