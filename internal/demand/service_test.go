package demand

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/richxcame/urban-mobility/internal/forecast"
	"github.com/richxcame/urban-mobility/internal/sampling"
	"github.com/richxcame/urban-mobility/pkg/common"
	"github.com/richxcame/urban-mobility/pkg/config"
)

// MockCleanTripSource is a mock implementation of CleanTripSource
type MockCleanTripSource struct {
	mock.Mock
}

func (m *MockCleanTripSource) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCleanTripSource) ScanPickupTimes(ctx context.Context) ([]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockCleanTripSource) ScanPickupCoordinates(ctx context.Context) ([]sampling.Coordinate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sampling.Coordinate), args.Error(1)
}

// MockForecastStore is a mock implementation of ForecastStore
type MockForecastStore struct {
	mock.Mock
}

func (m *MockForecastStore) LatestRun(ctx context.Context) (*forecast.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forecast.Result), args.Error(1)
}

func testService(source CleanTripSource, store ForecastStore) *Service {
	engine, err := forecast.NewEngine(0.9)
	if err != nil {
		panic(err)
	}
	cfg := &config.PipelineConfig{
		SampleSize:        5000,
		HotspotResolution: 8,
	}
	return NewService(source, store, engine, cfg)
}

// hourlyPickups returns one pickup per hour over n consecutive hours.
func hourlyPickups(n int) []time.Time {
	base := time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func TestGetDemandSeries(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupTimes", ctx).Return(hourlyPickups(48), nil)

		series, err := testService(source, nil).GetDemandSeries(ctx)
		require.NoError(t, err)
		assert.Len(t, series, 48)
	})

	t.Run("empty clean set maps to unprocessable", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupTimes", ctx).Return([]time.Time{}, nil)

		_, err := testService(source, nil).GetDemandSeries(ctx)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 422, appErr.Code)
	})

	t.Run("source error passes through", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupTimes", ctx).Return(nil, errors.New("scan failed"))

		_, err := testService(source, nil).GetDemandSeries(ctx)
		assert.Error(t, err)
	})
}

func TestGetForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects out-of-range horizons", func(t *testing.T) {
		service := testService(new(MockCleanTripSource), nil)

		for _, horizon := range []int{0, -5, config.MaxForecastHorizonHours + 1} {
			_, err := service.GetForecast(ctx, horizon)
			var appErr *common.AppError
			require.ErrorAs(t, err, &appErr, "horizon %d", horizon)
			assert.Equal(t, 400, appErr.Code)
		}
	})

	t.Run("fits and extends the series", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupTimes", ctx).Return(hourlyPickups(504), nil)

		result, err := testService(source, nil).GetForecast(ctx, 24)
		require.NoError(t, err)
		assert.Equal(t, 24, result.HorizonHours)
		assert.Len(t, result.Points, 504+24)
		for _, p := range result.Points {
			assert.GreaterOrEqual(t, p.Predicted, 0.0)
		}
	})

	t.Run("short series maps to unprocessable", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupTimes", ctx).Return(hourlyPickups(2), nil)

		_, err := testService(source, nil).GetForecast(ctx, 24)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 422, appErr.Code)
	})
}

func TestGetLatestForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := new(MockForecastStore)
		stored := &forecast.Result{TrainSize: 453, HoldoutSize: 51}
		store.On("LatestRun", ctx).Return(stored, nil)

		got, err := testService(new(MockCleanTripSource), store).GetLatestForecast(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("no stored run maps to not found", func(t *testing.T) {
		store := new(MockForecastStore)
		store.On("LatestRun", ctx).Return(nil, pgx.ErrNoRows)

		_, err := testService(new(MockCleanTripSource), store).GetLatestForecast(ctx)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Code)
	})
}

func TestGetSample(t *testing.T) {
	ctx := context.Background()

	population := make([]sampling.Coordinate, 100)
	for i := range population {
		population[i] = sampling.Coordinate{Latitude: 40.7 + float64(i)*0.001, Longitude: -74.0}
	}

	t.Run("draws the requested size", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupCoordinates", ctx).Return(population, nil)

		sample, err := testService(source, nil).GetSample(ctx, 30, 7)
		require.NoError(t, err)
		assert.Len(t, sample, 30)
	})

	t.Run("non-positive size falls back to the configured default", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupCoordinates", ctx).Return(population, nil)

		// Default 5000 exceeds the population of 100, so the draw clamps.
		sample, err := testService(source, nil).GetSample(ctx, 0, 7)
		require.NoError(t, err)
		assert.Len(t, sample, 100)
	})

	t.Run("same seed reproduces the draw", func(t *testing.T) {
		source := new(MockCleanTripSource)
		source.On("ScanPickupCoordinates", ctx).Return(population, nil)
		service := testService(source, nil)

		a, err := service.GetSample(ctx, 20, 123)
		require.NoError(t, err)
		b, err := service.GetSample(ctx, 20, 123)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestGetHotspots(t *testing.T) {
	ctx := context.Background()

	population := make([]sampling.Coordinate, 50)
	for i := range population {
		population[i] = sampling.Coordinate{Latitude: 40.7580, Longitude: -73.9855}
	}

	source := new(MockCleanTripSource)
	source.On("ScanPickupCoordinates", ctx).Return(population, nil)

	cells, err := testService(source, nil).GetHotspots(ctx, 50, 1)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 50, cells[0].Count)
}
