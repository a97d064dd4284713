package report

import (
	"math"
	"slices"
)

// p95 is the upper percentile shown in the addition-size summary.
const p95 = 0.95

// sizeDistribution summarizes the spread of addition sizes.
type sizeDistribution struct {
	Count  int
	Mean   float64
	Median float64
	P95    float64
	Max    int
}

// summarizeSizes computes distribution facts over raw addition sizes.
func summarizeSizes(sizes []int) sizeDistribution {
	if len(sizes) == 0 {
		return sizeDistribution{}
	}

	sorted := make([]float64, len(sizes))

	var sum float64

	for i, s := range sizes {
		sorted[i] = float64(s)
		sum += float64(s)
	}

	slices.Sort(sorted)

	return sizeDistribution{
		Count:  len(sizes),
		Mean:   sum / float64(len(sizes)),
		Median: percentile(sorted, 0.5),
		P95:    percentile(sorted, p95),
		Max:    int(sorted[len(sorted)-1]),
	}
}

// percentile returns the p-th percentile of an already-sorted slice using
// linear interpolation. p must be in [0, 1].
func percentile(sorted []float64, p float64) float64 {
	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
