package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KDE is a one-dimensional Gaussian kernel density estimate.
type KDE struct {
	data      []float64
	Bandwidth float64
}

// NewKDE fits a Gaussian KDE on the non-NaN values of x using Scott's rule,
// bandwidth = std * n^(-1/5) with the sample standard deviation.
// It returns nil when fewer than two distinct values are present.
func NewKDE(x []float64) *KDE {
	data := DropNaN(x)
	if len(data) < 2 {
		return nil
	}
	std := stat.StdDev(data, nil)
	if std == 0 || math.IsNaN(std) {
		return nil
	}
	return &KDE{
		data:      data,
		Bandwidth: std * math.Pow(float64(len(data)), -0.2),
	}
}

// Density evaluates the estimated probability density at x.
func (k *KDE) Density(x float64) float64 {
	norm := 1 / (k.Bandwidth * math.Sqrt(2*math.Pi) * float64(len(k.data)))
	sum := 0.0
	for _, xi := range k.data {
		u := (x - xi) / k.Bandwidth
		sum += math.Exp(-0.5 * u * u)
	}
	return sum * norm
}

// Curve evaluates the density at n evenly spaced points spanning the data
// extended by three bandwidths on each side.
func (k *KDE) Curve(n int) (xs, ys []float64) {
	lo, hi := floats.Min(k.data), floats.Max(k.data)
	xs = floats.Span(make([]float64, n), lo-3*k.Bandwidth, hi+3*k.Bandwidth)
	ys = make([]float64, n)
	for i, x := range xs {
		ys[i] = k.Density(x)
	}
	return xs, ys
}
