package stats

import "math"

// MinMaxScale scales each column to [0, 1]. X is column-major.
// A constant column scales to 0 and NaN cells stay NaN.
func MinMaxScale(cols [][]float64) [][]float64 {
	out := make([][]float64, len(cols))
	for j, col := range cols {
		lo, hi, _ := MinMax(col)
		scaled := make([]float64, len(col))
		for i, v := range col {
			switch {
			case math.IsNaN(v):
				scaled[i] = math.NaN()
			case hi > lo:
				scaled[i] = (v - lo) / (hi - lo)
			default:
				scaled[i] = 0
			}
		}
		out[j] = scaled
	}
	return out
}

// Clip limits v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Decimals returns the number of decimal places needed to print v exactly,
// capped at max.
func Decimals(v float64, max int) int {
	for d := 0; d < max; d++ {
		if math.Abs(v-Round(v, d)) < 1e-9 {
			return d
		}
	}
	return max
}
