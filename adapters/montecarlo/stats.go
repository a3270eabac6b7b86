package montecarlo

import (
	"math"

	"github.com/montanaflynn/stats"

	"schedrisk/domain/risk"
)

// summarize reduces a trial vector to its percentile/mean/std/min/max
// summary. An empty vector yields the zero summary (trivial project).
func summarize(data []float64) risk.DurationSummary {
	if len(data) == 0 {
		return risk.DurationSummary{}
	}
	s := risk.DurationSummary{}
	s.P10 = percentileOrZero(data, 10)
	s.P50 = percentileOrZero(data, 50)
	s.P80 = percentileOrZero(data, 80)
	s.P90 = percentileOrZero(data, 90)
	s.Mean, _ = stats.Mean(data)
	s.StdDev, _ = stats.StandardDeviation(data)
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	return s
}

func percentileOrZero(data []float64, p float64) float64 {
	v, err := stats.Percentile(data, p)
	if err != nil {
		return 0
	}
	return v
}

// sensitivity is the Pearson correlation between an activity's raw duration
// samples and the per-trial total project durations. Zero-variance inputs on
// either side report 0, never NaN.
func sensitivity(samples, totals []float64) float64 {
	if len(samples) != len(totals) || len(samples) < 2 {
		return 0
	}
	if isConstantSeries(samples) || isConstantSeries(totals) {
		return 0
	}
	r, err := stats.Pearson(samples, totals)
	if err != nil || math.IsNaN(r) {
		return 0
	}
	return r
}

func isConstantSeries(data []float64) bool {
	first := data[0]
	for _, v := range data[1:] {
		if v != first {
			return false
		}
	}
	return true
}
