package forecast

import (
	"math"
)

// evaluate computes the holdout accuracy metrics. Both slices must be the
// same length and aligned by timestamp.
func evaluate(actual, predicted []float64) Metrics {
	return Metrics{
		MAE:  meanAbsoluteError(actual, predicted),
		RMSE: rootMeanSquaredError(actual, predicted),
		MAPE: meanAbsolutePercentageError(actual, predicted),
		R2:   rSquared(actual, predicted),
	}
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

func rootMeanSquaredError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// meanAbsolutePercentageError skips zero actuals rather than dividing by
// them; an all-zero holdout yields 0.
func meanAbsolutePercentageError(actual, predicted []float64) float64 {
	var sum float64
	n := 0
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

// rSquared is 1 - SS_res/SS_tot. A constant actual series has no variance to
// explain: the result is 1 for an exact fit and 0 otherwise.
func rSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var mean float64
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		ssRes += r * r
		d := actual[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
