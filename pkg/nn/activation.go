package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func SigmoidPrime(x float64) float64 { s := Sigmoid(x); return s * (1 - s) }

func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func ReLUPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// LeakyReLU keeps a slope of alpha for negative inputs.
func LeakyReLU(x, alpha float64) float64 {
	if x > 0 {
		return x
	}
	return alpha * x
}

func LeakyReLUPrime(x, alpha float64) float64 {
	if x > 0 {
		return 1
	}
	return alpha
}

// Activation applies an element-wise function. The derivative is taken with
// respect to the cached input.
type Activation struct {
	f     func(float64) float64
	prime func(float64) float64
	input *mat.Dense
}

func NewReLU() *Activation { return &Activation{f: ReLU, prime: ReLUPrime} }

func NewSigmoid() *Activation { return &Activation{f: Sigmoid, prime: SigmoidPrime} }

func NewLeakyReLU(alpha float64) *Activation {
	return &Activation{
		f:     func(x float64) float64 { return LeakyReLU(x, alpha) },
		prime: func(x float64) float64 { return LeakyReLUPrime(x, alpha) },
	}
}

func NewTanh() *Activation {
	return &Activation{
		f: math.Tanh,
		prime: func(x float64) float64 {
			t := math.Tanh(x)
			return 1 - t*t
		},
	}
}

func (a *Activation) Forward(x *mat.Dense) *mat.Dense {
	a.input = x
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return a.f(v) }, x)
	return &out
}

func (a *Activation) Backward(grad *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(i, j int, g float64) float64 { return g * a.prime(a.input.At(i, j)) }, grad)
	return &out
}

func (a *Activation) Params() []Param { return nil }
