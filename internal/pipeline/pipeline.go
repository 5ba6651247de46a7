package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richxcame/urban-mobility/internal/cleaning"
	"github.com/richxcame/urban-mobility/internal/forecast"
	"github.com/richxcame/urban-mobility/internal/ingest"
	"github.com/richxcame/urban-mobility/internal/observability"
	"github.com/richxcame/urban-mobility/internal/timeseries"
	"github.com/richxcame/urban-mobility/pkg/config"
	"github.com/richxcame/urban-mobility/pkg/logger"
)

// ErrNoCleanTrips is returned when the cleaning filter leaves zero rows.
// A degenerate clean set cannot be aggregated or fit, so the run stops here
// instead of producing empty downstream artifacts.
var ErrNoCleanTrips = errors.New("pipeline: cleaning filter produced zero rows")

// RawStore is the append-only trip store written by the ingest stage and
// scanned by the cleaning stage.
type RawStore interface {
	AppendBatch(ctx context.Context, trips []ingest.TripRecord) error
	ScanBatch(ctx context.Context, afterSeq int64, batchSize int) ([]ingest.TripRecord, int64, error)
}

// CleanStore holds the derived clean trip view.
type CleanStore interface {
	Reset(ctx context.Context) error
	AppendBatch(ctx context.Context, trips []ingest.TripRecord) error
	ScanPickupTimes(ctx context.Context) ([]time.Time, error)
}

// ForecastSink persists the fitted forecast.
type ForecastSink interface {
	SaveRun(ctx context.Context, result *forecast.Result) (uuid.UUID, error)
}

// Summary reports what one pipeline run did at each stage.
type Summary struct {
	Ingest        ingest.Stats        `json:"ingest"`
	CleanTrips    int64               `json:"clean_trips"`
	Rejections    cleaning.Rejections `json:"rejections"`
	SeriesBuckets int                 `json:"series_buckets"`
	ForecastRunID uuid.UUID           `json:"forecast_run_id"`
	Metrics       forecast.Metrics    `json:"metrics"`
	LowConfidence bool                `json:"low_confidence"`
}

// Pipeline runs the batch stages strictly in sequence: ingest, clean,
// aggregate, forecast. Each stage reads the previous stage's artifact and
// produces a new one; nothing is mutated in place.
type Pipeline struct {
	source       ingest.BatchSource
	rawStore     RawStore
	cleanStore   CleanStore
	forecastSink ForecastSink
	filter       *cleaning.Filter
	engine       *forecast.Engine
	metrics      *observability.Metrics
	cfg          *config.PipelineConfig
}

// New creates a pipeline over the given stores and configuration.
func New(
	source ingest.BatchSource,
	rawStore RawStore,
	cleanStore CleanStore,
	forecastSink ForecastSink,
	filter *cleaning.Filter,
	engine *forecast.Engine,
	metrics *observability.Metrics,
	cfg *config.PipelineConfig,
) *Pipeline {
	return &Pipeline{
		source:       source,
		rawStore:     rawStore,
		cleanStore:   cleanStore,
		forecastSink: forecastSink,
		filter:       filter,
		engine:       engine,
		metrics:      metrics,
		cfg:          cfg,
	}
}

// Run executes all stages and returns the run summary.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	log := logger.WithContext(ctx)

	stats, err := timed(p.metrics, "ingest", func() (ingest.Stats, error) {
		ingestor := ingest.NewIngestor(p.source, p.rawStore, p.metrics, p.cfg.BatchSize)
		return ingestor.Run(ctx)
	})
	if err != nil {
		return summary, err
	}
	summary.Ingest = stats

	cleanCount, rejections, err := p.timedClean(ctx)
	if err != nil {
		return summary, err
	}
	summary.CleanTrips = cleanCount
	summary.Rejections = rejections
	if cleanCount == 0 {
		return summary, ErrNoCleanTrips
	}

	series, err := timed(p.metrics, "aggregate", func() (timeseries.Series, error) {
		pickups, err := p.cleanStore.ScanPickupTimes(ctx)
		if err != nil {
			return nil, err
		}
		return timeseries.AggregateHourly(pickups)
	})
	if err != nil {
		return summary, fmt.Errorf("aggregate stage: %w", err)
	}
	summary.SeriesBuckets = len(series)

	result, err := timed(p.metrics, "forecast", func() (*forecast.Result, error) {
		return p.engine.Forecast(series, p.cfg.ForecastHorizonHours)
	})
	if err != nil {
		return summary, fmt.Errorf("forecast stage: %w", err)
	}
	summary.Metrics = result.Metrics
	summary.LowConfidence = result.LowConfidence

	runID, err := p.forecastSink.SaveRun(ctx, result)
	if err != nil {
		return summary, fmt.Errorf("forecast stage: %w", err)
	}
	summary.ForecastRunID = runID

	log.Info("Pipeline run complete",
		zap.Int64("rows_stored", summary.Ingest.RowsStored),
		zap.Int64("clean_trips", summary.CleanTrips),
		zap.Int("series_buckets", summary.SeriesBuckets),
		zap.Float64("mae", summary.Metrics.MAE),
		zap.Float64("rmse", summary.Metrics.RMSE),
		zap.Float64("r2", summary.Metrics.R2),
		zap.Bool("low_confidence", summary.LowConfidence),
		zap.String("forecast_run_id", runID.String()),
	)
	return summary, nil
}

// runClean scans the raw store in batches, filters each batch, and appends
// the survivors to the clean store. Memory stays bounded by the batch size.
func (p *Pipeline) runClean(ctx context.Context) (int64, cleaning.Rejections, error) {
	if err := p.cleanStore.Reset(ctx); err != nil {
		return 0, nil, fmt.Errorf("clean stage: %w", err)
	}

	var total int64
	rejections := cleaning.Rejections{}
	var afterSeq int64

	for {
		batch, lastSeq, err := p.rawStore.ScanBatch(ctx, afterSeq, p.cfg.BatchSize)
		if err != nil {
			return total, rejections, fmt.Errorf("clean stage: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		afterSeq = lastSeq

		clean, batchRejections := p.filter.Apply(batch)
		for predicate, n := range batchRejections {
			rejections[predicate] += n
			p.metrics.RowsRejected.WithLabelValues(predicate).Add(float64(n))
		}

		if err := p.cleanStore.AppendBatch(ctx, clean); err != nil {
			return total, rejections, fmt.Errorf("clean stage: %w", err)
		}
		total += int64(len(clean))
		p.metrics.RowsCleaned.Add(float64(len(clean)))
	}

	return total, rejections, nil
}

func (p *Pipeline) timedClean(ctx context.Context) (int64, cleaning.Rejections, error) {
	start := time.Now()
	defer func() {
		p.metrics.StageDuration.WithLabelValues("clean").Observe(time.Since(start).Seconds())
	}()
	return p.runClean(ctx)
}

// timed wraps a stage with its duration metric.
func timed[T any](metrics *observability.Metrics, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}()
	return fn()
}
