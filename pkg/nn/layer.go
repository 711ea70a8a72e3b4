// Package nn holds the small feed-forward building blocks used by the table
// GAN: dense layers, element-wise activations and a per-span output layer.
// Batches are row-major gonum matrices (one sample per row).
package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Param exposes a parameter slice and its gradient to an optimizer. Both
// alias the layer's storage.
type Param struct {
	Value []float64
	Grad  []float64
}

// Layer is one differentiable stage. Backward must follow the Forward call
// whose input it differentiates.
type Layer interface {
	Forward(x *mat.Dense) *mat.Dense
	Backward(grad *mat.Dense) *mat.Dense
	Params() []Param
}

// Dense computes x*W + b.
type Dense struct {
	W *mat.Dense // in x out
	B []float64

	gradW *mat.Dense
	gradB []float64
	input *mat.Dense
}

// NewDense draws weights and biases from U(-1/sqrt(in), 1/sqrt(in)).
func NewDense(in, out int, rnd *rand.Rand) *Dense {
	bound := 1 / math.Sqrt(float64(in))
	w := make([]float64, in*out)
	for i := range w {
		w[i] = (rnd.Float64()*2 - 1) * bound
	}
	b := make([]float64, out)
	for i := range b {
		b[i] = (rnd.Float64()*2 - 1) * bound
	}
	return &Dense{
		W:     mat.NewDense(in, out, w),
		B:     b,
		gradW: mat.NewDense(in, out, nil),
		gradB: make([]float64, out),
	}
}

func (d *Dense) Forward(x *mat.Dense) *mat.Dense {
	d.input = x
	r, _ := x.Dims()
	_, c := d.W.Dims()
	out := mat.NewDense(r, c, nil)
	out.Mul(x, d.W)
	for i := 0; i < r; i++ {
		floats.Add(out.RawRowView(i), d.B)
	}
	return out
}

func (d *Dense) Backward(grad *mat.Dense) *mat.Dense {
	d.gradW.Mul(d.input.T(), grad)

	r, _ := grad.Dims()
	for j := range d.gradB {
		d.gradB[j] = 0
	}
	for i := 0; i < r; i++ {
		floats.Add(d.gradB, grad.RawRowView(i))
	}

	in, _ := d.W.Dims()
	out := mat.NewDense(r, in, nil)
	out.Mul(grad, d.W.T())
	return out
}

func (d *Dense) Params() []Param {
	return []Param{
		{Value: d.W.RawMatrix().Data, Grad: d.gradW.RawMatrix().Data},
		{Value: d.B, Grad: d.gradB},
	}
}

// Sequential chains layers.
type Sequential struct {
	Layers []Layer
}

func NewSequential(layers ...Layer) *Sequential { return &Sequential{Layers: layers} }

func (s *Sequential) Forward(x *mat.Dense) *mat.Dense {
	for _, l := range s.Layers {
		x = l.Forward(x)
	}
	return x
}

func (s *Sequential) Backward(grad *mat.Dense) *mat.Dense {
	for i := len(s.Layers) - 1; i >= 0; i-- {
		grad = s.Layers[i].Backward(grad)
	}
	return grad
}

func (s *Sequential) Params() []Param {
	var out []Param
	for _, l := range s.Layers {
		out = append(out, l.Params()...)
	}
	return out
}

// MLP builds [Dense -> act()] for each hidden width, then a final Dense to out.
func MLP(in int, hidden []int, out int, act func() Layer, rnd *rand.Rand) *Sequential {
	var layers []Layer
	prev := in
	for _, h := range hidden {
		layers = append(layers, NewDense(prev, h, rnd), act())
		prev = h
	}
	layers = append(layers, NewDense(prev, out, rnd))
	return NewSequential(layers...)
}

// Column returns column j of m as a new slice.
func Column(m *mat.Dense, j int) []float64 {
	r, _ := m.Dims()
	return mat.Col(make([]float64, r), j, m)
}

// FromColumn wraps v as an n x 1 matrix.
func FromColumn(v []float64) *mat.Dense { return mat.NewDense(len(v), 1, v) }
