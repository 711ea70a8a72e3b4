package dataprep

import (
	"math"

	"trafo/pkg/dataset"
	"trafo/pkg/stats"
)

// ImputeMean replaces NaN cells of every column with the column mean, in place.
// A column without any value is filled with 0. It returns the number of cells filled.
func ImputeMean(f *dataset.Frame) int {
	filled := 0
	for j := range f.Width() {
		filled += ImputeMeanColumn(f.ColumnAt(j))
	}
	return filled
}

// ImputeMeanColumn replaces NaN values of col with its mean, in place.
func ImputeMeanColumn(col []float64) int {
	mean := stats.Mean(col)
	if math.IsNaN(mean) {
		mean = 0
	}
	filled := 0
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = mean
			filled++
		}
	}
	return filled
}
