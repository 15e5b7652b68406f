package forecast

import (
	"fmt"
	"time"
)

const (
	// DefaultMonthsAhead is the horizon used when the caller does not pick one.
	DefaultMonthsAhead = 6

	// MinHistoryMonths is the shortest series the fit accepts.
	MinHistoryMonths = 12
)

// InsufficientHistoryError reports a series too short to fit. Callers skip or
// flag the region; the error is never fatal to a pipeline run.
type InsufficientHistoryError struct {
	Months   int
	Required int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: %d months observed, %d required", e.Months, e.Required)
}

// Observation is one historical month. The caller supplies observations in
// chronological order, first-of-month dates, no duplicate months.
type Observation struct {
	Month        time.Time
	Transactions float64
}

// Point is one projected month.
type Point struct {
	Month              time.Time
	TrendValue         float64
	SeasonalMultiplier float64
	ForecastValue      float64
}

// Result carries the fitted trend, the per-calendar-month multipliers and the
// projected points. All values stay in floating point; rounding belongs to
// the presentation boundary.
type Result struct {
	Slope               float64
	Intercept           float64
	SeasonalMultipliers map[time.Month]float64
	Points              []Point
}

// Project fits a least-squares linear trend with per-month seasonal
// multipliers to history and extrapolates monthsAhead points, one per
// calendar month past the last observation. A non-positive monthsAhead
// falls back to DefaultMonthsAhead. The trend is not floored at zero: a
// strongly negative slope may project negative values.
func Project(history []Observation, monthsAhead int) (Result, error) {
	if monthsAhead <= 0 {
		monthsAhead = DefaultMonthsAhead
	}
	if len(history) < MinHistoryMonths {
		return Result{}, &InsufficientHistoryError{Months: len(history), Required: MinHistoryMonths}
	}

	slope, intercept := fitTrend(history)
	multipliers := seasonalMultipliers(history, slope, intercept)

	last := history[len(history)-1].Month
	lastIdx := len(history) - 1
	points := make([]Point, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		month := last.AddDate(0, i, 0)
		trend := slope*float64(lastIdx+i) + intercept
		mult := multipliers[month.Month()]
		points = append(points, Point{
			Month:              month,
			TrendValue:         trend,
			SeasonalMultiplier: mult,
			ForecastValue:      trend * mult,
		})
	}

	return Result{
		Slope:               slope,
		Intercept:           intercept,
		SeasonalMultipliers: multipliers,
		Points:              points,
	}, nil
}

// Fit exposes the trend fit on its own for aggregate series that need slope
// and intercept without the seasonal projection. Requires two points; the
// full history floor applies only to Project.
func Fit(history []Observation) (slope, intercept float64, err error) {
	if len(history) < 2 {
		return 0, 0, &InsufficientHistoryError{Months: len(history), Required: 2}
	}
	slope, intercept = fitTrend(history)
	return slope, intercept, nil
}

// fitTrend is the closed-form ordinary least squares fit over the zero-based
// time index of the series.
func fitTrend(history []Observation) (slope, intercept float64) {
	n := float64(len(history))
	sumT := 0.0
	sumY := 0.0
	for i, obs := range history {
		sumT += float64(i)
		sumY += obs.Transactions
	}
	meanT := sumT / n
	meanY := sumY / n

	num := 0.0
	den := 0.0
	for i, obs := range history {
		dt := float64(i) - meanT
		num += dt * (obs.Transactions - meanY)
		den += dt * dt
	}
	if den == 0 {
		return 0, meanY
	}
	slope = num / den
	intercept = meanY - slope*meanT
	return slope, intercept
}

// seasonalMultipliers averages the actual/trend ratio per calendar month.
// Every month 1..12 gets an entry; months with no observations stay at a
// neutral 1.0.
func seasonalMultipliers(history []Observation, slope, intercept float64) map[time.Month]float64 {
	sums := map[time.Month]float64{}
	counts := map[time.Month]int{}
	for i, obs := range history {
		trend := slope*float64(i) + intercept
		m := obs.Month.Month()
		sums[m] += seasonalRatio(obs.Transactions, trend)
		counts[m]++
	}

	out := make(map[time.Month]float64, 12)
	for m := time.January; m <= time.December; m++ {
		if counts[m] > 0 {
			out[m] = sums[m] / float64(counts[m])
		} else {
			out[m] = 1.0
		}
	}
	return out
}

// seasonalRatio is actual over trend, defaulting to a neutral 1.0 when the
// trend value is zero.
func seasonalRatio(actual, trend float64) float64 {
	if trend == 0 {
		return 1.0
	}
	return actual / trend
}
