package coin

import (
	"math"
	"sort"
)

// iqrFenceFactor is the classic 1.5×IQR outlier fence
const iqrFenceFactor = 1.5

// quantile returns the linearly interpolated quantile of an ascending-sorted
// slice: for fractional index idx = (n-1)*p the value is interpolated between
// the surrounding order statistics.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := float64(len(sorted)-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(idx-float64(lo))
}

// ComputeRobustStats summarizes a non-empty price set. Prices outside the
// bounds envelope are dropped first; if that leaves nothing, the raw set is
// used instead so bounds alone never produce zero data. Quartiles and the
// 1.5×IQR fence come from the bounded set, and the median is recomputed over
// the fenced (trimmed) values.
func ComputeRobustStats(prices []float64, bounds Bounds) RobustStats {
	if len(prices) == 0 {
		return RobustStats{}
	}

	bounded := make([]float64, 0, len(prices))
	for _, p := range prices {
		if bounds.Contains(p) {
			bounded = append(bounded, p)
		}
	}
	if len(bounded) == 0 {
		bounded = append(bounded, prices...)
	}

	sort.Float64s(bounded)

	p25 := quantile(bounded, 0.25)
	p75 := quantile(bounded, 0.75)
	iqr := p75 - p25
	fenceLow := p25 - iqrFenceFactor*iqr
	fenceHigh := p75 + iqrFenceFactor*iqr

	// The fence is inclusive, and the median of the bounded set always lies
	// inside it, so trimmed is never empty
	trimmed := make([]float64, 0, len(bounded))
	for _, p := range bounded {
		if p >= fenceLow && p <= fenceHigh {
			trimmed = append(trimmed, p)
		}
	}

	return RobustStats{
		Median:  quantile(trimmed, 0.5),
		P25:     p25,
		P75:     p75,
		IQR:     iqr,
		Trimmed: trimmed,
	}
}
