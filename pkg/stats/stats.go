package stats

import (
	"math"
)

// Mean computes the average of the non-NaN values of a slice.
// It returns NaN when no value is present.
func Mean(x []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Variance computes the population variance of the non-NaN values in a single pass.
func Variance(x []float64) float64 {
	sum, sumSq, n := 0.0, 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		sumSq += v * v
		n++
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	v := (sumSq / float64(n)) - (mean * mean)
	if v < 0 {
		// rounding on near-constant input
		return 0
	}
	return v
}

// Std computes the population standard deviation of the non-NaN values.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// MinMax returns the minimum and maximum non-NaN values in the slice.
// ok is false when there is none.
func MinMax(x []float64) (lo, hi float64, ok bool) {
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}

// DropNaN returns the non-NaN values of x in a new slice.
func DropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Unique returns the distinct non-NaN values in order of first appearance.
func Unique(x []float64) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
