package timeseries

import (
	"errors"
	"time"
)

// ErrEmptySeries is returned when aggregation is asked to run over zero
// trips. A degenerate series cannot feed the forecaster, so the condition is
// surfaced instead of producing an empty artifact.
var ErrEmptySeries = errors.New("timeseries: no trips to aggregate")

// AggregateHourly collapses pickup timestamps into the hourly demand series.
// Buckets run from the earliest to the latest observed pickup hour inclusive,
// and hours with no trips are present with a zero count. A gap would read as
// "unobserved" rather than "zero demand" downstream, corrupting the
// seasonality fit, so the grid is always complete.
func AggregateHourly(pickups []time.Time) (Series, error) {
	if len(pickups) == 0 {
		return nil, ErrEmptySeries
	}

	counts := make(map[time.Time]int, len(pickups))
	min := pickups[0].Truncate(time.Hour)
	max := min
	for _, t := range pickups {
		bucket := t.Truncate(time.Hour)
		counts[bucket]++
		if bucket.Before(min) {
			min = bucket
		}
		if bucket.After(max) {
			max = bucket
		}
	}

	n := int(max.Sub(min)/time.Hour) + 1
	series := make(Series, 0, n)
	for bucket := min; !bucket.After(max); bucket = bucket.Add(time.Hour) {
		series = append(series, DemandPoint{HourBucket: bucket, Count: counts[bucket]})
	}

	return series, nil
}
