package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/richxcame/urban-mobility/internal/timeseries"
	"github.com/richxcame/urban-mobility/pkg/logger"
)

const (
	hoursPerWeek = 7 * 24
	// minSeriesLen is the smallest series the engine will fit: the trend
	// needs two points, and the holdout needs at least one.
	minSeriesLen = 3
	// reliableSeriesLen is the shortest series whose daily and weekly
	// components are considered trustworthy.
	reliableSeriesLen = 2 * hoursPerWeek
	// intervalZ is the z-score of the ~95% uncertainty interval.
	intervalZ = 1.96
)

var (
	// ErrEmptySeries is returned when asked to forecast a nil or empty series.
	ErrEmptySeries = errors.New("forecast: empty demand series")
	// ErrInsufficientData is returned when the series is too short to split
	// into a usable training prefix and holdout suffix.
	ErrInsufficientData = errors.New("forecast: series too short to fit")
)

// Engine fits a seasonal additive model on a training prefix of the series,
// evaluates against the held-out suffix, and extends the fit over a future
// horizon. The decomposition is linear trend + hour-of-day component +
// day-of-week component, mirroring the daily and weekly seasonality of urban
// ride demand.
type Engine struct {
	splitRatio float64
}

// NewEngine creates an engine with the given train/holdout split ratio,
// which must lie in (0,1). The split is chronological, never shuffled.
func NewEngine(splitRatio float64) (*Engine, error) {
	if splitRatio <= 0 || splitRatio >= 1 {
		return nil, fmt.Errorf("forecast: split ratio %v outside (0,1)", splitRatio)
	}
	return &Engine{splitRatio: splitRatio}, nil
}

// model is a fitted additive decomposition.
type model struct {
	origin    time.Time
	slope     float64
	intercept float64
	daily     [24]float64
	weekly    [7]float64
	sigma     float64
}

// Forecast runs the whole cycle: split, fit on the training prefix, score
// the holdout, then refit on the full series and predict every historical
// hour plus horizonHours future ones.
func (e *Engine) Forecast(series timeseries.Series, horizonHours int) (*Result, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if horizonHours < 0 {
		return nil, fmt.Errorf("forecast: negative horizon %d", horizonHours)
	}
	if len(series) < minSeriesLen {
		return nil, fmt.Errorf("%w: %d buckets", ErrInsufficientData, len(series))
	}

	// Chronological split; the boundary index truncates, matching
	// int(len*ratio): a 504-bucket series at 0.9 trains on 453.
	trainSize := int(float64(len(series)) * e.splitRatio)
	if trainSize < 2 {
		trainSize = 2
	}
	if trainSize >= len(series) {
		trainSize = len(series) - 1
	}
	train, holdout := series[:trainSize], series[trainSize:]

	lowConfidence := len(train) < reliableSeriesLen
	if lowConfidence {
		logger.Warn("Training series shorter than two full weeks, seasonality components are unreliable",
			zap.Int("train_buckets", len(train)),
			zap.Int("reliable_buckets", reliableSeriesLen),
		)
	}

	evalModel := fit(train)
	holdoutPred := make([]float64, len(holdout))
	for i, p := range holdout {
		holdoutPred[i] = clampNonNegative(evalModel.predictAt(p.HourBucket))
	}
	metrics := evaluate(holdout.Counts(), holdoutPred)

	// Final model uses every observed bucket, like the evaluation model
	// never saw the holdout.
	finalModel := fit(series)

	last := series[len(series)-1].HourBucket
	points := make([]Point, 0, len(series)+horizonHours)
	for _, p := range series {
		points = append(points, finalModel.pointAt(p.HourBucket))
	}
	for h := 1; h <= horizonHours; h++ {
		points = append(points, finalModel.pointAt(last.Add(time.Duration(h)*time.Hour)))
	}

	return &Result{
		Points:        points,
		Metrics:       metrics,
		TrainSize:     len(train),
		HoldoutSize:   len(holdout),
		HorizonHours:  horizonHours,
		LowConfidence: lowConfidence,
	}, nil
}

// fit decomposes the series into trend, daily, and weekly components.
func fit(series timeseries.Series) *model {
	m := &model{origin: series[0].HourBucket}
	n := len(series)

	// Least-squares trend over the hour index.
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range series {
		x, y := float64(i), float64(p.Count)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom != 0 {
		m.slope = (fn*sumXY - sumX*sumY) / denom
	}
	m.intercept = (sumY - m.slope*sumX) / fn

	// Daily component: mean detrended value per hour of day.
	var hourSums [24]float64
	var hourCounts [24]int
	detrended := make([]float64, n)
	for i, p := range series {
		detrended[i] = float64(p.Count) - m.trendAt(i)
		h := p.HourBucket.Hour()
		hourSums[h] += detrended[i]
		hourCounts[h]++
	}
	for h := range m.daily {
		if hourCounts[h] > 0 {
			m.daily[h] = hourSums[h] / float64(hourCounts[h])
		}
	}

	// Weekly component: mean per day of week of what the trend and daily
	// components leave behind.
	var daySums [7]float64
	var dayCounts [7]int
	for i, p := range series {
		rest := detrended[i] - m.daily[p.HourBucket.Hour()]
		d := int(p.HourBucket.Weekday())
		daySums[d] += rest
		dayCounts[d]++
	}
	for d := range m.weekly {
		if dayCounts[d] > 0 {
			m.weekly[d] = daySums[d] / float64(dayCounts[d])
		}
	}

	// Residual spread drives the uncertainty interval.
	var ss float64
	for _, p := range series {
		r := float64(p.Count) - m.predictAt(p.HourBucket)
		ss += r * r
	}
	m.sigma = math.Sqrt(ss / fn)

	return m
}

func (m *model) trendAt(index int) float64 {
	return m.intercept + m.slope*float64(index)
}

// predictAt returns the raw additive prediction for a bucket timestamp. The
// hour index may point past the fitted range; that is the future horizon.
func (m *model) predictAt(t time.Time) float64 {
	index := int(t.Sub(m.origin) / time.Hour)
	return m.trendAt(index) + m.daily[t.Hour()] + m.weekly[int(t.Weekday())]
}

// pointAt builds a forecast row with the prediction clamped at zero and a
// symmetric ~95% interval around the raw value.
func (m *model) pointAt(t time.Time) Point {
	raw := m.predictAt(t)
	return Point{
		Timestamp:  t,
		Predicted:  clampNonNegative(raw),
		LowerBound: raw - intervalZ*m.sigma,
		UpperBound: raw + intervalZ*m.sigma,
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
