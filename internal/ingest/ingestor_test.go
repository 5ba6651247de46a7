package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richxcame/urban-mobility/internal/observability"
)

// stubSource replays a fixed script of batches.
type stubSource struct {
	batches []stubBatch
	err     error
	calls   int
}

type stubBatch struct {
	records []TripRecord
	dropped int
}

func (s *stubSource) ReadBatch(_ context.Context, _ int) ([]TripRecord, int, error) {
	if s.err != nil && s.calls == len(s.batches) {
		return nil, 0, s.err
	}
	if s.calls >= len(s.batches) {
		return nil, 0, nil
	}
	batch := s.batches[s.calls]
	s.calls++
	return batch.records, batch.dropped, nil
}

// memoryStore appends batches in memory, optionally failing.
type memoryStore struct {
	trips []TripRecord
	err   error
}

func (m *memoryStore) AppendBatch(_ context.Context, trips []TripRecord) error {
	if m.err != nil {
		return m.err
	}
	m.trips = append(m.trips, trips...)
	return nil
}

func makeTrips(n int) []TripRecord {
	pickup := time.Date(2016, 3, 14, 17, 0, 0, 0, time.UTC)
	out := make([]TripRecord, n)
	for i := range out {
		out[i] = TripRecord{
			ID:              uuid.New(),
			PickupDatetime:  pickup.Add(time.Duration(i) * time.Minute),
			DropoffDatetime: pickup.Add(time.Duration(i+15) * time.Minute),
			PassengerCount:  1,
		}
	}
	return out
}

func TestIngestorRun(t *testing.T) {
	ctx := context.Background()

	t.Run("drains the source batch by batch", func(t *testing.T) {
		first, second := makeTrips(3), makeTrips(2)
		source := &stubSource{batches: []stubBatch{
			{records: first, dropped: 1},
			{records: second, dropped: 0},
		}}
		store := &memoryStore{}

		ingestor := NewIngestor(source, store, observability.NewMetricsForTesting(), 3)
		stats, err := ingestor.Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(6), stats.RowsRead)
		assert.Equal(t, int64(5), stats.RowsStored)
		assert.Equal(t, int64(1), stats.RowsDropped)
		assert.Equal(t, 2, stats.Batches)
		require.Len(t, store.trips, 5)
		// Arrival order survives into the store.
		assert.Equal(t, first[0].ID, store.trips[0].ID)
		assert.Equal(t, second[1].ID, store.trips[4].ID)
	})

	t.Run("an all-dropped batch still advances", func(t *testing.T) {
		source := &stubSource{batches: []stubBatch{
			{records: nil, dropped: 4},
			{records: makeTrips(1), dropped: 0},
		}}
		store := &memoryStore{}

		ingestor := NewIngestor(source, store, observability.NewMetricsForTesting(), 10)
		stats, err := ingestor.Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(5), stats.RowsRead)
		assert.Equal(t, int64(1), stats.RowsStored)
		assert.Equal(t, int64(4), stats.RowsDropped)
	})

	t.Run("empty source", func(t *testing.T) {
		ingestor := NewIngestor(&stubSource{}, &memoryStore{}, observability.NewMetricsForTesting(), 10)
		stats, err := ingestor.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.RowsRead)
		assert.Zero(t, stats.Batches)
	})

	t.Run("source error aborts the run", func(t *testing.T) {
		sourceErr := errors.New("read failed")
		source := &stubSource{err: sourceErr}

		ingestor := NewIngestor(source, &memoryStore{}, observability.NewMetricsForTesting(), 10)
		_, err := ingestor.Run(ctx)
		assert.ErrorIs(t, err, sourceErr)
	})

	t.Run("store error aborts the run", func(t *testing.T) {
		storeErr := errors.New("insert failed")
		source := &stubSource{batches: []stubBatch{{records: makeTrips(2)}}}

		ingestor := NewIngestor(source, &memoryStore{err: storeErr}, observability.NewMetricsForTesting(), 10)
		stats, err := ingestor.Run(ctx)
		assert.ErrorIs(t, err, storeErr)
		assert.Zero(t, stats.RowsStored)
	})
}
