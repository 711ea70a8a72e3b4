package dataprep

import (
	"math"
	"sort"

	"trafo/pkg/stats"
)

// Categories returns the distinct non-NaN values of col in ascending order.
func Categories(col []float64) []float64 {
	cats := stats.Unique(col)
	sort.Float64s(cats)
	return cats
}

// OneHot encodes col against categories. NaN and unknown values encode as all zeros.
func OneHot(col []float64, categories []float64) [][]float64 {
	index := LabelIndex(categories)
	out := make([][]float64, len(col))
	for i, v := range col {
		vec := make([]float64, len(categories))
		if k, ok := index[v]; ok && !math.IsNaN(v) {
			vec[k] = 1
		}
		out[i] = vec
	}
	return out
}

// LabelIndex maps each category to its position.
func LabelIndex(categories []float64) map[float64]int {
	index := make(map[float64]int, len(categories))
	for k, c := range categories {
		index[c] = k
	}
	return index
}
