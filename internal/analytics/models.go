package analytics

// KPISummary holds the headline numbers over the clean trip set.
type KPISummary struct {
	TotalTrips         int64   `json:"total_trips"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	ModePassengerCount int     `json:"mode_passenger_count"`
}

// HourCount is the trip count for one hour of the day (0-23), aggregated
// over the whole range.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// WeekHeatmapCell is one cell of the hour-of-day by day-of-week demand
// matrix. DayOfWeek follows the Postgres DOW convention, 0 = Sunday.
type WeekHeatmapCell struct {
	DayOfWeek int   `json:"day_of_week"`
	Hour      int   `json:"hour"`
	Count     int64 `json:"count"`
}

// PassengerCount is the number of trips carrying a given passenger count.
type PassengerCount struct {
	Passengers int   `json:"passengers"`
	Count      int64 `json:"count"`
}

// DurationBucket is one bin of the trip duration histogram.
type DurationBucket struct {
	// UpToMinutes is the inclusive upper edge of the bin in minutes.
	UpToMinutes float64 `json:"up_to_minutes"`
	Count       int64   `json:"count"`
}
