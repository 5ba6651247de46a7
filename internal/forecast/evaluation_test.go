package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAbsoluteError(t *testing.T) {
	assert.InDelta(t, 2.0/3.0, meanAbsoluteError([]float64{1, 2, 3}, []float64{2, 2, 2}), 1e-9)
	assert.Zero(t, meanAbsoluteError([]float64{5, 5}, []float64{5, 5}))
	assert.Zero(t, meanAbsoluteError(nil, nil))
}

func TestRootMeanSquaredError(t *testing.T) {
	assert.InDelta(t, math.Sqrt(2.0/3.0), rootMeanSquaredError([]float64{1, 2, 3}, []float64{2, 2, 2}), 1e-9)
	assert.Zero(t, rootMeanSquaredError(nil, nil))

	// RMSE weighs large misses harder than MAE.
	actual := []float64{0, 0, 0, 0}
	predicted := []float64{0, 0, 0, 8}
	assert.Greater(t,
		rootMeanSquaredError(actual, predicted),
		meanAbsoluteError(actual, predicted),
	)
}

func TestMeanAbsolutePercentageError(t *testing.T) {
	t.Run("skips zero actuals", func(t *testing.T) {
		got := meanAbsolutePercentageError([]float64{10, 0, 20}, []float64{12, 5, 18})
		assert.InDelta(t, 15.0, got, 1e-9)
	})

	t.Run("all-zero actuals", func(t *testing.T) {
		assert.Zero(t, meanAbsolutePercentageError([]float64{0, 0, 0}, []float64{1, 2, 3}))
	})
}

func TestRSquared(t *testing.T) {
	t.Run("perfect fit", func(t *testing.T) {
		assert.Equal(t, 1.0, rSquared([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4}))
	})

	t.Run("mean prediction explains nothing", func(t *testing.T) {
		assert.InDelta(t, 0.0, rSquared([]float64{1, 2, 3, 4}, []float64{2.5, 2.5, 2.5, 2.5}), 1e-9)
	})

	t.Run("partial fit", func(t *testing.T) {
		assert.InDelta(t, 0.5, rSquared([]float64{1, 2, 3}, []float64{1, 2, 2}), 1e-9)
	})

	t.Run("constant actual series", func(t *testing.T) {
		assert.Equal(t, 1.0, rSquared([]float64{5, 5, 5}, []float64{5, 5, 5}))
		assert.Equal(t, 0.0, rSquared([]float64{5, 5, 5}, []float64{5, 5, 6}))
	})

	t.Run("worse than the mean goes negative", func(t *testing.T) {
		assert.Less(t, rSquared([]float64{1, 2, 3}, []float64{30, -10, 50}), 0.0)
	})
}
