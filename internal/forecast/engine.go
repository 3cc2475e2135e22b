// Package forecast projects monthly spend forward with an additive
// time-series model: a least-squares linear trend over a month index plus
// per-calendar-month seasonal offsets learned from the residuals. The fit
// is closed-form, so identical input always yields identical output.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/smartcfo/invoice-insights/internal/models"
)

// ErrInsufficientData is returned when fewer than two distinct months of
// history are available. Callers treat it as a result state, not a
// failure: there is simply nothing to extrapolate from yet.
var ErrInsufficientData = errors.New("forecast requires at least 2 months of valid history")

// DefaultHorizon is the number of future months projected when the
// caller does not ask for a specific horizon.
const DefaultHorizon = 6

// zScore95 widens the uncertainty band to a 95% interval under a normal
// residual assumption.
const zScore95 = 1.96

// Engine fits and projects spend forecasts.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a forecast engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// observation is one historical month, indexed by months elapsed since
// the first observed month so irregular gaps keep their true spacing.
type observation struct {
	month time.Time
	index float64
	value float64
}

// Forecast projects horizon future months beyond the last observed month.
// Series entries with an unparsable month key are dropped; entries for
// the same month are summed. Fewer than two surviving months yields
// ErrInsufficientData. horizon must be >= 1. The returned slice always
// has exactly horizon points, each with a symmetric uncertainty band.
func (e *Engine) Forecast(series []models.MonthlyTrend, horizon int) ([]models.ForecastPoint, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("forecast horizon must be >= 1, got %d", horizon)
	}

	obs := e.prepare(series)
	if len(obs) < 2 {
		return nil, ErrInsufficientData
	}

	slope, intercept := fitTrend(obs)
	seasonal := seasonalOffsets(obs, slope, intercept)
	band := zScore95 * residualStdDev(obs, slope, intercept, seasonal)

	e.logger.Debug("Fitted forecast model",
		zap.Int("observations", len(obs)),
		zap.Float64("slope", slope),
		zap.Float64("intercept", intercept),
		zap.Float64("band", band))

	last := obs[len(obs)-1]
	first := obs[0].month
	points := make([]models.ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		period := last.month.AddDate(0, i, 0)
		idx := monthsBetween(first, period)
		predicted := slope*idx + intercept + seasonal[period.Month()]
		points = append(points, models.ForecastPoint{
			Period:     period,
			Predicted:  predicted,
			LowerBound: predicted - band,
			UpperBound: predicted + band,
		})
	}
	return points, nil
}

// prepare parses month keys, folds duplicate months together and sorts
// chronologically. Unparsable keys are skipped, never fatal.
func (e *Engine) prepare(series []models.MonthlyTrend) []observation {
	totals := make(map[time.Time]float64)
	for _, entry := range series {
		month, err := time.Parse("2006-01", entry.Month)
		if err != nil {
			e.logger.Warn("Skipping series entry with unparsable month", zap.String("month", entry.Month))
			continue
		}
		totals[month] += entry.TotalAmount
	}

	obs := make([]observation, 0, len(totals))
	for month, value := range totals {
		obs = append(obs, observation{month: month, value: value})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].month.Before(obs[j].month) })

	for i := range obs {
		obs[i].index = monthsBetween(obs[0].month, obs[i].month)
	}
	return obs
}

// fitTrend runs ordinary least squares of value on month index.
func fitTrend(obs []observation) (slope, intercept float64) {
	n := float64(len(obs))
	var sumX, sumY, sumXY, sumXX float64
	for _, o := range obs {
		sumX += o.index
		sumY += o.value
		sumXY += o.index * o.value
		sumXX += o.index * o.index
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// seasonalOffsets averages the trend residuals per calendar month.
// Months never observed keep a zero offset.
func seasonalOffsets(obs []observation, slope, intercept float64) map[time.Month]float64 {
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, o := range obs {
		residual := o.value - (slope*o.index + intercept)
		sums[o.month.Month()] += residual
		counts[o.month.Month()]++
	}

	offsets := make(map[time.Month]float64, len(sums))
	for m, sum := range sums {
		offsets[m] = sum / float64(counts[m])
	}
	return offsets
}

// residualStdDev measures the spread left after trend and seasonality,
// which sizes the uncertainty band.
func residualStdDev(obs []observation, slope, intercept float64, seasonal map[time.Month]float64) float64 {
	var sumSquares float64
	for _, o := range obs {
		residual := o.value - (slope*o.index + intercept + seasonal[o.month.Month()])
		sumSquares += residual * residual
	}
	return math.Sqrt(sumSquares / float64(len(obs)))
}

// monthsBetween counts whole calendar months from a to b.
func monthsBetween(a, b time.Time) float64 {
	years := b.Year() - a.Year()
	months := int(b.Month()) - int(a.Month())
	return float64(years*12 + months)
}
