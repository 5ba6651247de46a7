package cleaning

import (
	"math"
	"time"

	"github.com/richxcame/urban-mobility/internal/ingest"
	"github.com/richxcame/urban-mobility/pkg/config"
)

// Predicate names, used for rejection accounting.
const (
	PredicateBounds       = "bounds"
	PredicatePassengers   = "passengers"
	PredicateDuration     = "duration"
	PredicateCompleteness = "completeness"
)

// Rejections counts rows excluded by each predicate. A row failing several
// predicates is attributed to each one it fails: the predicates are an
// order-independent conjunction, so no single predicate "owns" the rejection.
type Rejections map[string]int

// Filter applies the trip validity predicates. It never mutates its input;
// filtering an already-clean set returns an equal set.
type Filter struct {
	bounds config.BoundingBox
	minDur time.Duration
	maxDur time.Duration
}

// NewFilter creates a filter from the pipeline configuration.
func NewFilter(cfg *config.PipelineConfig) *Filter {
	return &Filter{
		bounds: cfg.Bounds,
		minDur: cfg.MinTripDuration,
		maxDur: cfg.MaxTripDuration,
	}
}

// Apply returns the subset of trips satisfying every predicate, in input
// order, along with per-predicate rejection counts.
func (f *Filter) Apply(trips []ingest.TripRecord) ([]ingest.TripRecord, Rejections) {
	clean := make([]ingest.TripRecord, 0, len(trips))
	rejections := Rejections{}

	for _, t := range trips {
		ok := true
		if !f.WithinBounds(t) {
			rejections[PredicateBounds]++
			ok = false
		}
		if !HasPassengers(t) {
			rejections[PredicatePassengers]++
			ok = false
		}
		if !f.DurationInRange(t) {
			rejections[PredicateDuration]++
			ok = false
		}
		if !IsComplete(t) {
			rejections[PredicateCompleteness]++
			ok = false
		}
		if ok {
			clean = append(clean, t)
		}
	}

	return clean, rejections
}

// WithinBounds reports whether both trip endpoints lie inside the bounding box.
func (f *Filter) WithinBounds(t ingest.TripRecord) bool {
	return f.bounds.Contains(t.PickupLatitude, t.PickupLongitude) &&
		f.bounds.Contains(t.DropoffLatitude, t.DropoffLongitude)
}

// DurationInRange reports whether the trip duration is inside the configured
// bounds, both ends inclusive.
func (f *Filter) DurationInRange(t ingest.TripRecord) bool {
	d := t.Duration()
	return d >= f.minDur && d <= f.maxDur
}

// HasPassengers reports whether the trip carried at least one passenger.
func HasPassengers(t ingest.TripRecord) bool {
	return t.PassengerCount >= 1
}

// IsComplete reports whether every required field holds a real value: both
// timestamps set, and no coordinate NaN or infinite.
func IsComplete(t ingest.TripRecord) bool {
	if t.PickupDatetime.IsZero() || t.DropoffDatetime.IsZero() {
		return false
	}
	for _, v := range []float64{t.PickupLatitude, t.PickupLongitude, t.DropoffLatitude, t.DropoffLongitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
