package ingest

import (
	"time"

	"github.com/google/uuid"
)

// TripRecord is a single ride trip as stored in the trip store.
type TripRecord struct {
	ID               uuid.UUID `json:"id" db:"id"`
	PickupDatetime   time.Time `json:"pickup_datetime" db:"pickup_datetime"`
	DropoffDatetime  time.Time `json:"dropoff_datetime" db:"dropoff_datetime"`
	PickupLatitude   float64   `json:"pickup_latitude" db:"pickup_latitude"`
	PickupLongitude  float64   `json:"pickup_longitude" db:"pickup_longitude"`
	DropoffLatitude  float64   `json:"dropoff_latitude" db:"dropoff_latitude"`
	DropoffLongitude float64   `json:"dropoff_longitude" db:"dropoff_longitude"`
	PassengerCount   int       `json:"passenger_count" db:"passenger_count"`
}

// Duration returns the trip duration.
func (t TripRecord) Duration() time.Duration {
	return t.DropoffDatetime.Sub(t.PickupDatetime)
}

// Stats summarizes one ingestion run.
type Stats struct {
	RowsRead    int64 `json:"rows_read"`
	RowsStored  int64 `json:"rows_stored"`
	RowsDropped int64 `json:"rows_dropped"`
	Batches     int   `json:"batches"`
}
