package demand

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/richxcame/urban-mobility/internal/forecast"
	"github.com/richxcame/urban-mobility/internal/hotspot"
	"github.com/richxcame/urban-mobility/internal/sampling"
	"github.com/richxcame/urban-mobility/internal/timeseries"
	"github.com/richxcame/urban-mobility/pkg/common"
	"github.com/richxcame/urban-mobility/pkg/config"
)

// CleanTripSource is the read side of the clean trip store.
type CleanTripSource interface {
	Count(ctx context.Context) (int64, error)
	ScanPickupTimes(ctx context.Context) ([]time.Time, error)
	ScanPickupCoordinates(ctx context.Context) ([]sampling.Coordinate, error)
}

// ForecastStore loads persisted forecast runs.
type ForecastStore interface {
	LatestRun(ctx context.Context) (*forecast.Result, error)
}

// Service exposes the pipeline artifacts to the presentation layer. Every
// response is recomputed from the clean trip set; nothing is served from
// internal mutable state.
type Service struct {
	source CleanTripSource
	store  ForecastStore
	engine *forecast.Engine
	cfg    *config.PipelineConfig
}

// NewService creates a new demand service
func NewService(source CleanTripSource, store ForecastStore, engine *forecast.Engine, cfg *config.PipelineConfig) *Service {
	return &Service{source: source, store: store, engine: engine, cfg: cfg}
}

// GetDemandSeries returns the gap-free hourly demand series.
func (s *Service) GetDemandSeries(ctx context.Context) (timeseries.Series, error) {
	pickups, err := s.source.ScanPickupTimes(ctx)
	if err != nil {
		return nil, err
	}
	series, err := timeseries.AggregateHourly(pickups)
	if errors.Is(err, timeseries.ErrEmptySeries) {
		return nil, common.NewUnprocessableError("clean trip set is empty", err)
	}
	return series, err
}

// GetForecast fits the model over the current series and returns predictions
// extending horizonHours beyond the last observed bucket.
func (s *Service) GetForecast(ctx context.Context, horizonHours int) (*forecast.Result, error) {
	if horizonHours <= 0 || horizonHours > config.MaxForecastHorizonHours {
		return nil, common.NewBadRequestError(
			fmt.Sprintf("horizon must be between 1 and %d hours", config.MaxForecastHorizonHours), nil)
	}

	series, err := s.GetDemandSeries(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Forecast(series, horizonHours)
	if errors.Is(err, forecast.ErrInsufficientData) {
		return nil, common.NewUnprocessableError("demand series is too short to fit", err)
	}
	return result, err
}

// GetLatestForecast returns the most recent persisted pipeline forecast.
func (s *Service) GetLatestForecast(ctx context.Context) (*forecast.Result, error) {
	result, err := s.store.LatestRun(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("no forecast run has been stored yet", err)
	}
	return result, err
}

// GetSample draws a uniform random subset of clean pickup coordinates.
// Requests beyond the population or the hard cap are clamped, never refused.
// A fixed seed yields a reproducible draw.
func (s *Service) GetSample(ctx context.Context, size int, seed int64) ([]sampling.Coordinate, error) {
	if size <= 0 {
		size = s.cfg.SampleSize
	}

	population, err := s.source.ScanPickupCoordinates(ctx)
	if err != nil {
		return nil, err
	}

	return sampling.NewSampler(seed).Sample(population, size), nil
}

// GetHotspots aggregates a coordinate sample into H3 cells ordered by
// density.
func (s *Service) GetHotspots(ctx context.Context, size int, seed int64) ([]hotspot.Cell, error) {
	sample, err := s.GetSample(ctx, size, seed)
	if err != nil {
		return nil, err
	}
	return hotspot.Aggregate(sample, s.cfg.HotspotResolution)
}
