package optim

import "math"

// Adam keeps bias-corrected first and second moment estimates per parameter.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	WeightDecay  float64 // L2 penalty added to the gradient

	t    int
	m, v [][]float64
}

// NewAdam uses beta1 0.9, beta2 0.999 and epsilon 1e-8 unless overridden.
func NewAdam(lr float64, opts ...AdamOption) *Adam {
	a := &Adam{LearningRate: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
	for _, o := range opts {
		o(a)
	}
	return a
}

type AdamOption func(*Adam)

func WithBetas(b1, b2 float64) AdamOption {
	return func(a *Adam) { a.Beta1, a.Beta2 = b1, b2 }
}
func WithWeightDecay(wd float64) AdamOption { return func(a *Adam) { a.WeightDecay = wd } }

func (a *Adam) Step(params, grads [][]float64) {
	if a.m == nil {
		a.m = zerosLike(params)
		a.v = zerosLike(params)
	}
	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))

	for p := range params {
		m, v := a.m[p], a.v[p]
		for i := range params[p] {
			g := grads[p][i] + a.WeightDecay*params[p][i]
			m[i] = a.Beta1*m[i] + (1-a.Beta1)*g
			v[i] = a.Beta2*v[i] + (1-a.Beta2)*g*g
			params[p][i] -= a.LearningRate * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.Epsilon)
		}
	}
}
