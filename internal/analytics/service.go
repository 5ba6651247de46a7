package analytics

import (
	"context"
)

// AnalyticsRepository defines the persistence operations required by the service.
type AnalyticsRepository interface {
	GetKPISummary(ctx context.Context) (*KPISummary, error)
	GetHourlyProfile(ctx context.Context) ([]HourCount, error)
	GetWeekHeatmap(ctx context.Context) ([]WeekHeatmapCell, error)
	GetPassengerDistribution(ctx context.Context) ([]PassengerCount, error)
	GetDurationHistogram(ctx context.Context, maxMinutes float64, numBins int) ([]DurationBucket, error)
}

// Default histogram shape for the duration distribution view.
const (
	defaultHistogramMaxMinutes = 90
	defaultHistogramBins       = 50
)

// Service handles analytics business logic
type Service struct {
	repo AnalyticsRepository
}

// NewService creates a new analytics service
func NewService(repo AnalyticsRepository) *Service {
	return &Service{repo: repo}
}

// GetKPISummary retrieves the headline metrics over the clean trip set
func (s *Service) GetKPISummary(ctx context.Context) (*KPISummary, error) {
	return s.repo.GetKPISummary(ctx)
}

// GetHourlyProfile retrieves demand grouped by hour of day
func (s *Service) GetHourlyProfile(ctx context.Context) ([]HourCount, error) {
	profile, err := s.repo.GetHourlyProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = []HourCount{}
	}
	return profile, nil
}

// GetWeekHeatmap retrieves the hour-by-weekday demand matrix
func (s *Service) GetWeekHeatmap(ctx context.Context) ([]WeekHeatmapCell, error) {
	cells, err := s.repo.GetWeekHeatmap(ctx)
	if err != nil {
		return nil, err
	}
	if cells == nil {
		cells = []WeekHeatmapCell{}
	}
	return cells, nil
}

// GetPassengerDistribution retrieves trip counts by passenger count
func (s *Service) GetPassengerDistribution(ctx context.Context) ([]PassengerCount, error) {
	dist, err := s.repo.GetPassengerDistribution(ctx)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		dist = []PassengerCount{}
	}
	return dist, nil
}

// GetDurationHistogram retrieves the trip duration distribution
func (s *Service) GetDurationHistogram(ctx context.Context) ([]DurationBucket, error) {
	hist, err := s.repo.GetDurationHistogram(ctx, defaultHistogramMaxMinutes, defaultHistogramBins)
	if err != nil {
		return nil, err
	}
	if hist == nil {
		hist = []DurationBucket{}
	}
	return hist, nil
}
