package montecarlo

import (
	"math"

	"schedrisk/domain/risk"
)

// buildHistogram bins the total-duration samples automatically using
// Sturges' rule. Constant samples collapse to a single populated bin.
func buildHistogram(totals []float64) risk.Histogram {
	if len(totals) == 0 {
		return risk.Histogram{}
	}

	min, max := totals[0], totals[0]
	for _, v := range totals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		return risk.Histogram{
			Edges:  []float64{min, max},
			Counts: []int{len(totals)},
		}
	}

	bins := int(math.Ceil(math.Log2(float64(len(totals))))) + 1
	if bins < 1 {
		bins = 1
	}
	width := (max - min) / float64(bins)

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	edges[bins] = max // guard against accumulated rounding

	counts := make([]int, bins)
	for _, v := range totals {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1 // max lands in the final, right-closed bin
		}
		counts[idx]++
	}
	return risk.Histogram{Edges: edges, Counts: counts}
}
