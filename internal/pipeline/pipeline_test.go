package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richxcame/urban-mobility/internal/cleaning"
	"github.com/richxcame/urban-mobility/internal/forecast"
	"github.com/richxcame/urban-mobility/internal/ingest"
	"github.com/richxcame/urban-mobility/internal/observability"
	"github.com/richxcame/urban-mobility/pkg/config"
)

// sliceSource serves a fixed record slice in batches, reporting extra
// dropped rows on the first batch.
type sliceSource struct {
	records []ingest.TripRecord
	dropped int
	offset  int
}

func (s *sliceSource) ReadBatch(_ context.Context, batchSize int) ([]ingest.TripRecord, int, error) {
	if s.offset >= len(s.records) {
		return nil, 0, nil
	}
	end := s.offset + batchSize
	if end > len(s.records) {
		end = len(s.records)
	}
	batch := s.records[s.offset:end]
	s.offset = end

	dropped := s.dropped
	s.dropped = 0
	return batch, dropped, nil
}

// fakeRawStore keeps trips in arrival order; the slice index doubles as the
// sequence number.
type fakeRawStore struct {
	trips []ingest.TripRecord
}

func (f *fakeRawStore) AppendBatch(_ context.Context, trips []ingest.TripRecord) error {
	f.trips = append(f.trips, trips...)
	return nil
}

func (f *fakeRawStore) ScanBatch(_ context.Context, afterSeq int64, batchSize int) ([]ingest.TripRecord, int64, error) {
	if afterSeq >= int64(len(f.trips)) {
		return nil, afterSeq, nil
	}
	end := afterSeq + int64(batchSize)
	if end > int64(len(f.trips)) {
		end = int64(len(f.trips))
	}
	return f.trips[afterSeq:end], end, nil
}

type fakeCleanStore struct {
	trips    []ingest.TripRecord
	resets   int
	scanErr  error
	appendFn func([]ingest.TripRecord) error
}

func (f *fakeCleanStore) Reset(context.Context) error {
	f.resets++
	f.trips = nil
	return nil
}

func (f *fakeCleanStore) AppendBatch(_ context.Context, trips []ingest.TripRecord) error {
	if f.appendFn != nil {
		if err := f.appendFn(trips); err != nil {
			return err
		}
	}
	f.trips = append(f.trips, trips...)
	return nil
}

func (f *fakeCleanStore) ScanPickupTimes(context.Context) ([]time.Time, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	out := make([]time.Time, len(f.trips))
	for i, t := range f.trips {
		out[i] = t.PickupDatetime
	}
	return out, nil
}

type fakeForecastSink struct {
	saved *forecast.Result
	runID uuid.UUID
	err   error
}

func (f *fakeForecastSink) SaveRun(_ context.Context, result *forecast.Result) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.saved = result
	return f.runID, nil
}

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		BatchSize: 100,
		Bounds: config.BoundingBox{
			LatMin: config.DefaultLatMin,
			LatMax: config.DefaultLatMax,
			LonMin: config.DefaultLonMin,
			LonMax: config.DefaultLonMax,
		},
		MinTripDuration:      time.Minute,
		MaxTripDuration:      90 * time.Minute,
		TrainSplitRatio:      0.9,
		ForecastHorizonHours: 24,
		SampleSize:           5000,
		HotspotResolution:    8,
	}
}

// hourlyTrips builds one valid Manhattan trip per hour for n hours.
func hourlyTrips(n int) []ingest.TripRecord {
	base := time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]ingest.TripRecord, n)
	for i := range out {
		pickup := base.Add(time.Duration(i) * time.Hour)
		out[i] = ingest.TripRecord{
			ID:               uuid.New(),
			PickupDatetime:   pickup,
			DropoffDatetime:  pickup.Add(20 * time.Minute),
			PickupLatitude:   40.7614,
			PickupLongitude:  -73.9776,
			DropoffLatitude:  40.7505,
			DropoffLongitude: -73.9934,
			PassengerCount:   1,
		}
	}
	return out
}

func newTestPipeline(source ingest.BatchSource, raw *fakeRawStore, clean *fakeCleanStore, sink *fakeForecastSink, cfg *config.PipelineConfig) *Pipeline {
	engine, err := forecast.NewEngine(cfg.TrainSplitRatio)
	if err != nil {
		panic(err)
	}
	return New(source, raw, clean, sink, cleaning.NewFilter(cfg), engine, observability.NewMetricsForTesting(), cfg)
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	cfg := testPipelineConfig()

	t.Run("full run", func(t *testing.T) {
		trips := hourlyTrips(504)

		// Two rows the filter must reject.
		noPassengers := trips[0]
		noPassengers.ID = uuid.New()
		noPassengers.PassengerCount = 0
		tooShort := trips[0]
		tooShort.ID = uuid.New()
		tooShort.DropoffDatetime = tooShort.PickupDatetime.Add(10 * time.Second)

		source := &sliceSource{records: append(trips, noPassengers, tooShort), dropped: 3}
		raw := &fakeRawStore{}
		clean := &fakeCleanStore{}
		sink := &fakeForecastSink{runID: uuid.New()}

		summary, err := newTestPipeline(source, raw, clean, sink, cfg).Run(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(509), summary.Ingest.RowsRead)
		assert.Equal(t, int64(506), summary.Ingest.RowsStored)
		assert.Equal(t, int64(3), summary.Ingest.RowsDropped)

		assert.Equal(t, int64(504), summary.CleanTrips)
		assert.Equal(t, 1, summary.Rejections[cleaning.PredicatePassengers])
		assert.Equal(t, 1, summary.Rejections[cleaning.PredicateDuration])

		assert.Equal(t, 504, summary.SeriesBuckets)
		assert.Equal(t, sink.runID, summary.ForecastRunID)
		assert.False(t, summary.LowConfidence)

		require.NotNil(t, sink.saved)
		assert.Equal(t, 453, sink.saved.TrainSize)
		assert.Equal(t, 51, sink.saved.HoldoutSize)
		assert.Len(t, sink.saved.Points, 504+cfg.ForecastHorizonHours)

		assert.Equal(t, 1, clean.resets)
	})

	t.Run("stops when cleaning leaves nothing", func(t *testing.T) {
		bad := hourlyTrips(10)
		for i := range bad {
			bad[i].PassengerCount = 0
		}

		source := &sliceSource{records: bad}
		summary, err := newTestPipeline(source, &fakeRawStore{}, &fakeCleanStore{}, &fakeForecastSink{}, cfg).Run(ctx)

		assert.ErrorIs(t, err, ErrNoCleanTrips)
		assert.Equal(t, int64(0), summary.CleanTrips)
		assert.Equal(t, 10, summary.Rejections[cleaning.PredicatePassengers])
	})

	t.Run("short history is flagged, not refused", func(t *testing.T) {
		source := &sliceSource{records: hourlyTrips(120)}
		sink := &fakeForecastSink{runID: uuid.New()}

		summary, err := newTestPipeline(source, &fakeRawStore{}, &fakeCleanStore{}, sink, cfg).Run(ctx)
		require.NoError(t, err)
		assert.True(t, summary.LowConfidence)
	})

	t.Run("clean store errors abort the run", func(t *testing.T) {
		appendErr := errors.New("copy failed")
		clean := &fakeCleanStore{appendFn: func([]ingest.TripRecord) error { return appendErr }}

		source := &sliceSource{records: hourlyTrips(48)}
		_, err := newTestPipeline(source, &fakeRawStore{}, clean, &fakeForecastSink{}, cfg).Run(ctx)
		assert.ErrorIs(t, err, appendErr)
	})

	t.Run("sink errors abort the run", func(t *testing.T) {
		sinkErr := errors.New("insert failed")
		source := &sliceSource{records: hourlyTrips(504)}

		_, err := newTestPipeline(source, &fakeRawStore{}, &fakeCleanStore{}, &fakeForecastSink{err: sinkErr}, cfg).Run(ctx)
		assert.ErrorIs(t, err, sinkErr)
	})
}
