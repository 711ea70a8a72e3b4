package dataprep

import (
	"errors"
	"math"
	"math/rand"

	"trafo/pkg/dataset"
	"trafo/pkg/stats"
)

// Derived FC columns.
const (
	FlameTrapColumn    = "Condicao_Corta_Chama"
	OilReservoirColumn = "Nivel_Reservatorio_Oleo"
)

// ErrNoFeatures is returned when a frame has no column to derive from.
var ErrNoFeatures = errors.New("dataprep: no feature columns")

// DegradationFactor min-max normalises every column not listed in exclude and
// averages them per row. The result lies in [0, 1]; rows without any value get 0.
func DegradationFactor(f *dataset.Frame, exclude ...string) ([]float64, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	var cols [][]float64
	for _, name := range f.Names() {
		if _, ok := skip[name]; ok {
			continue
		}
		cols = append(cols, f.Column(name))
	}
	if len(cols) == 0 {
		return nil, ErrNoFeatures
	}

	scaled := stats.MinMaxScale(cols)
	factor := make([]float64, f.Len())
	row := make([]float64, len(scaled))
	for i := range factor {
		for j := range scaled {
			row[j] = scaled[j][i]
		}
		m := stats.Mean(row)
		if math.IsNaN(m) {
			m = 0
		}
		factor[i] = m
	}
	return factor, nil
}

// FlameTrapCondition maps a degradation factor to a flame-trap condition in [0, 1]:
// no degradation gives 1, full degradation 0.2, before noise.
func FlameTrapCondition(factor, noise float64) float64 {
	return stats.Round(stats.Clip(1.0-factor*0.8+noise, 0, 1), 2)
}

// OilReservoirLevel maps a degradation factor to an oil reservoir level in [10, 100]:
// no degradation gives 100, full degradation 30, before noise.
func OilReservoirLevel(factor, noise float64) float64 {
	return stats.Round(stats.Clip(100-factor*70+noise, 10, 100), 1)
}

// AddDerivedFeatures appends the flame-trap condition and oil reservoir level
// columns to f. Noise is uniform in ±0.05 and ±5 respectively, drawn from rnd.
func AddDerivedFeatures(f *dataset.Frame, rnd *rand.Rand) error {
	factor, err := DegradationFactor(f, dataset.RowNumberColumn)
	if err != nil {
		return err
	}
	n := len(factor)

	condition := make([]float64, n)
	for i := range n {
		condition[i] = FlameTrapCondition(factor[i], uniform(rnd, -0.05, 0.05))
	}
	level := make([]float64, n)
	for i := range n {
		level[i] = OilReservoirLevel(factor[i], uniform(rnd, -5, 5))
	}

	if err := f.SetColumn(FlameTrapColumn, condition); err != nil {
		return err
	}
	return f.SetColumn(OilReservoirColumn, level)
}

func uniform(rnd *rand.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}
