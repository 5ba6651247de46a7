package timeseries

import (
	"time"
)

// DemandPoint is one hourly bucket of the demand series.
type DemandPoint struct {
	HourBucket time.Time `json:"hour_bucket"`
	Count      int       `json:"count"`
}

// Series is a contiguous hourly demand series: buckets are strictly
// increasing at exactly one hour spacing, with empty hours present at zero.
type Series []DemandPoint

// Total returns the sum of all bucket counts.
func (s Series) Total() int {
	total := 0
	for _, p := range s {
		total += p.Count
	}
	return total
}

// Counts returns the bucket counts as floats, in order.
func (s Series) Counts() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Count)
	}
	return out
}

// Timestamps returns the bucket timestamps, in order.
func (s Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.HourBucket
	}
	return out
}
