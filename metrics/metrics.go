// Package metrics computes return and risk statistics from an ordered
// portfolio-value series. Every ratio degrades to NaN when its denominator
// is zero; nothing here panics on degenerate input.
package metrics

import (
	"fmt"
	"math"
	"time"
)

// Periods-per-year constants for the supported sampling frequencies.
const (
	PeriodsDailyEquity = 252.0
	PeriodsDailyCrypto = 365.0
	PeriodsHourly      = 252.0 * 24.0
)

// PeriodsPerYear maps a decision frequency to annualization periods.
// Always-open markets trade every calendar day.
func PeriodsPerYear(frequency string, alwaysOpen bool) (float64, error) {
	switch frequency {
	case "daily":
		if alwaysOpen {
			return PeriodsDailyCrypto, nil
		}
		return PeriodsDailyEquity, nil
	case "hourly":
		return PeriodsHourly, nil
	default:
		return 0, fmt.Errorf("metrics: unknown frequency %q", frequency)
	}
}

// Point is one portfolio valuation.
type Point struct {
	Time  time.Time
	Value float64
}

// Options tunes a computation.
type Options struct {
	// PeriodsPerYear for annualization; required.
	PeriodsPerYear float64
	// RiskFree is the per-period risk-free rate subtracted in Sharpe and
	// Sortino. Zero by default.
	RiskFree float64
	// Flagged marks cycles that did not complete cleanly; carried through
	// to the report so downstream analysis can exclude them.
	Flagged []time.Time
}

// Report is the computed statistics bundle.
type Report struct {
	Periods          int
	StartValue       float64
	EndValue         float64
	CumulativeReturn float64
	AnnualizedReturn float64
	Volatility       float64
	Sharpe           float64
	Sortino          float64
	MaxDrawdown      float64
	Calmar           float64
	WinRate          float64
	FlaggedCycles    []time.Time
}

// Compute derives the report from a value series of at least two points in
// ascending time order.
func Compute(points []Point, opts Options) (Report, error) {
	if len(points) < 2 {
		return Report{}, fmt.Errorf("metrics: need at least 2 points, have %d", len(points))
	}
	if opts.PeriodsPerYear <= 0 {
		return Report{}, fmt.Errorf("metrics: periods per year must be positive")
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			return Report{}, fmt.Errorf("metrics: points out of order at %s", points[i].Time.Format(time.RFC3339))
		}
	}

	rets := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		if prev == 0 {
			return Report{}, fmt.Errorf("metrics: zero portfolio value at %s", points[i-1].Time.Format(time.RFC3339))
		}
		rets = append(rets, points[i].Value/prev-1)
	}

	rep := Report{
		Periods:       len(rets),
		StartValue:    points[0].Value,
		EndValue:      points[len(points)-1].Value,
		FlaggedCycles: append([]time.Time(nil), opts.Flagged...),
	}

	rep.CumulativeReturn = rep.EndValue/rep.StartValue - 1
	rep.AnnualizedReturn = math.Pow(1+rep.CumulativeReturn, opts.PeriodsPerYear/float64(len(rets))) - 1

	sd := stddev(rets)
	rep.Volatility = sd * math.Sqrt(opts.PeriodsPerYear)

	excess := make([]float64, len(rets))
	for i, r := range rets {
		excess[i] = r - opts.RiskFree
	}
	rep.Sharpe = ratio(mean(excess), sd) * math.Sqrt(opts.PeriodsPerYear)
	rep.Sortino = ratio(mean(excess), downsideDev(excess)) * math.Sqrt(opts.PeriodsPerYear)

	rep.MaxDrawdown = maxDrawdown(points)
	rep.Calmar = ratio(rep.AnnualizedReturn, math.Abs(rep.MaxDrawdown))

	rep.WinRate = winRate(rets)
	return rep, nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation; NaN below two observations.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// downsideDev is the standard deviation of the negative returns only.
func downsideDev(xs []float64) float64 {
	var ss float64
	n := 0
	for _, x := range xs {
		if x < 0 {
			ss += x * x
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(ss / float64(n))
}

// maxDrawdown tracks the running peak and returns the deepest peak-to-value
// decline as a fraction of the peak.
func maxDrawdown(points []Point) float64 {
	peak := points[0].Value
	worst := 0.0
	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			if dd := (peak - p.Value) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

func winRate(rets []float64) float64 {
	wins, nonzero := 0, 0
	for _, r := range rets {
		if r != 0 {
			nonzero++
			if r > 0 {
				wins++
			}
		}
	}
	return ratio(float64(wins), float64(nonzero))
}

// ratio reports NaN instead of dividing by zero.
func ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}
