package nn

import "math"

// Binary cross-entropy loss and gradient for predicted probabilities.
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := range n {
		p := math.Min(math.Max(yPred[i], 1e-12), 1-1e-12)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (p - y) / float64(n)
	}
	return s / float64(n), grad
}

// BCEWithLogits is BCE applied to sigmoid(logits), computed without
// overflow. The gradient is with respect to the logits.
func BCEWithLogits(yTrue, logits []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)

	for i := range n {
		z, y := logits[i], yTrue[i]
		s += math.Max(z, 0) - z*y + math.Log1p(math.Exp(-math.Abs(z)))
		grad[i] = (Sigmoid(z) - y) / float64(n)
	}
	return s / float64(n), grad
}
