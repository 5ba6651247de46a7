package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/richxcame/urban-mobility/internal/observability"
	"github.com/richxcame/urban-mobility/pkg/logger"
)

// TripStore is the destination the ingestor appends batches to.
type TripStore interface {
	AppendBatch(ctx context.Context, trips []TripRecord) error
}

// Ingestor reads a record source in fixed-size batches and appends each batch
// to the trip store. Memory use is bounded by the batch size; batches are
// processed strictly in sequence.
type Ingestor struct {
	source    BatchSource
	store     TripStore
	metrics   *observability.Metrics
	batchSize int
}

// NewIngestor creates a new ingestor
func NewIngestor(source BatchSource, store TripStore, metrics *observability.Metrics, batchSize int) *Ingestor {
	return &Ingestor{
		source:    source,
		store:     store,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Run drains the source into the store. Malformed rows are dropped and
// counted, never aborting the batch they arrived in.
func (i *Ingestor) Run(ctx context.Context) (Stats, error) {
	stats := Stats{}
	log := logger.WithContext(ctx)

	for {
		records, dropped, err := i.source.ReadBatch(ctx, i.batchSize)
		if err != nil {
			return stats, fmt.Errorf("ingest: reading batch %d: %w", stats.Batches+1, err)
		}

		stats.RowsRead += int64(len(records) + dropped)
		stats.RowsDropped += int64(dropped)
		i.metrics.RowsDropped.Add(float64(dropped))

		if len(records) == 0 && dropped == 0 {
			break
		}

		if len(records) > 0 {
			if err := i.store.AppendBatch(ctx, records); err != nil {
				return stats, fmt.Errorf("ingest: storing batch %d: %w", stats.Batches+1, err)
			}
			stats.RowsStored += int64(len(records))
			i.metrics.RowsIngested.Add(float64(len(records)))
			i.metrics.BatchSize.Observe(float64(len(records)))
		}

		stats.Batches++
		log.Info("Ingested batch",
			zap.Int("batch", stats.Batches),
			zap.Int("rows", len(records)),
			zap.Int("dropped", dropped),
		)
	}

	log.Info("Ingestion complete",
		zap.Int64("rows_read", stats.RowsRead),
		zap.Int64("rows_stored", stats.RowsStored),
		zap.Int64("rows_dropped", stats.RowsDropped),
		zap.Int("batches", stats.Batches),
	)
	return stats, nil
}
