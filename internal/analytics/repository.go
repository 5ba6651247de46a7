package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the analytics aggregations over the clean trip set.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new analytics repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetKPISummary returns total trips, average duration in minutes, and the
// most common passenger count.
func (r *Repository) GetKPISummary(ctx context.Context) (*KPISummary, error) {
	summary := &KPISummary{}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (dropoff_datetime - pickup_datetime)) / 60.0), 0),
		       COALESCE(MODE() WITHIN GROUP (ORDER BY passenger_count), 0)
		FROM clean_trips`).Scan(&summary.TotalTrips, &summary.AvgDurationMinutes, &summary.ModePassengerCount)
	if err != nil {
		return nil, fmt.Errorf("loading kpi summary: %w", err)
	}
	return summary, nil
}

// GetHourlyProfile returns trip counts grouped by hour of day.
func (r *Repository) GetHourlyProfile(ctx context.Context) ([]HourCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(HOUR FROM pickup_datetime)::int AS hour, COUNT(*)
		FROM clean_trips
		GROUP BY hour
		ORDER BY hour`)
	if err != nil {
		return nil, fmt.Errorf("loading hourly profile: %w", err)
	}
	defer rows.Close()

	var profile []HourCount
	for rows.Next() {
		var h HourCount
		if err := rows.Scan(&h.Hour, &h.Count); err != nil {
			return nil, fmt.Errorf("scanning hourly profile: %w", err)
		}
		profile = append(profile, h)
	}
	return profile, rows.Err()
}

// GetWeekHeatmap returns the hour-of-day by day-of-week demand matrix.
func (r *Repository) GetWeekHeatmap(ctx context.Context) ([]WeekHeatmapCell, error) {
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(DOW FROM pickup_datetime)::int AS dow,
		       EXTRACT(HOUR FROM pickup_datetime)::int AS hour,
		       COUNT(*)
		FROM clean_trips
		GROUP BY dow, hour
		ORDER BY dow, hour`)
	if err != nil {
		return nil, fmt.Errorf("loading week heatmap: %w", err)
	}
	defer rows.Close()

	var cells []WeekHeatmapCell
	for rows.Next() {
		var c WeekHeatmapCell
		if err := rows.Scan(&c.DayOfWeek, &c.Hour, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning week heatmap: %w", err)
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// GetPassengerDistribution returns trip counts grouped by passenger count.
func (r *Repository) GetPassengerDistribution(ctx context.Context) ([]PassengerCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT passenger_count, COUNT(*)
		FROM clean_trips
		GROUP BY passenger_count
		ORDER BY passenger_count`)
	if err != nil {
		return nil, fmt.Errorf("loading passenger distribution: %w", err)
	}
	defer rows.Close()

	var dist []PassengerCount
	for rows.Next() {
		var p PassengerCount
		if err := rows.Scan(&p.Passengers, &p.Count); err != nil {
			return nil, fmt.Errorf("scanning passenger distribution: %w", err)
		}
		dist = append(dist, p)
	}
	return dist, rows.Err()
}

// GetDurationHistogram bins trip durations into numBins equal-width bins
// between 0 and maxMinutes.
func (r *Repository) GetDurationHistogram(ctx context.Context, maxMinutes float64, numBins int) ([]DurationBucket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT width_bucket(EXTRACT(EPOCH FROM (dropoff_datetime - pickup_datetime)) / 60.0, 0, $1, $2) AS bin,
		       COUNT(*)
		FROM clean_trips
		GROUP BY bin
		ORDER BY bin`, maxMinutes, numBins)
	if err != nil {
		return nil, fmt.Errorf("loading duration histogram: %w", err)
	}
	defer rows.Close()

	binWidth := maxMinutes / float64(numBins)
	var hist []DurationBucket
	for rows.Next() {
		var bin int
		var count int64
		if err := rows.Scan(&bin, &count); err != nil {
			return nil, fmt.Errorf("scanning duration histogram: %w", err)
		}
		hist = append(hist, DurationBucket{UpToMinutes: float64(bin) * binWidth, Count: count})
	}
	return hist, rows.Err()
}
