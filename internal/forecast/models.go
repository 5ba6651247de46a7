package forecast

import (
	"time"
)

// Point is a single forecast row: a point prediction with its uncertainty
// interval. Predicted is clamped to zero; demand cannot be negative.
type Point struct {
	Timestamp  time.Time `json:"timestamp"`
	Predicted  float64   `json:"predicted_count"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

// Metrics are the regression-accuracy metrics computed once per fitted model
// over the held-out split.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2"`
}

// Result is the full output of a fit/evaluate/predict cycle.
type Result struct {
	// Points covers every hour of the historical range plus the requested
	// future horizon.
	Points      []Point `json:"points"`
	Metrics     Metrics `json:"metrics"`
	TrainSize   int     `json:"train_size"`
	HoldoutSize int     `json:"holdout_size"`
	// HorizonHours is the number of future buckets beyond the last
	// observed one.
	HorizonHours int `json:"horizon_hours"`
	// LowConfidence is set when the series holds fewer than two complete
	// weeks, making the seasonality components unreliable.
	LowConfidence bool `json:"low_confidence"`
}
