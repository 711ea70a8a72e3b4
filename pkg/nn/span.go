package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpanKind selects the activation of an output span.
type SpanKind int

const (
	SpanTanh SpanKind = iota
	SpanSoftmax
)

// Span is a contiguous block of output columns.
type Span struct {
	Width int
	Kind  SpanKind
}

// SpanActivation applies tanh or softmax to each span of a row.
type SpanActivation struct {
	Spans  []Span
	output *mat.Dense
}

func NewSpanActivation(spans []Span) *SpanActivation { return &SpanActivation{Spans: spans} }

// Width is the total number of columns covered by the spans.
func (s *SpanActivation) Width() int {
	w := 0
	for _, sp := range s.Spans {
		w += sp.Width
	}
	return w
}

func (s *SpanActivation) Forward(x *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(x)
	r, _ := out.Dims()
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		start := 0
		for _, sp := range s.Spans {
			seg := row[start : start+sp.Width]
			switch sp.Kind {
			case SpanTanh:
				for k := range seg {
					seg[k] = math.Tanh(seg[k])
				}
			case SpanSoftmax:
				softmax(seg)
			}
			start += sp.Width
		}
	}
	s.output = out
	return out
}

func (s *SpanActivation) Backward(grad *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(grad)
	r, _ := out.Dims()
	for i := 0; i < r; i++ {
		g := out.RawRowView(i)
		y := s.output.RawRowView(i)
		start := 0
		for _, sp := range s.Spans {
			gs, ys := g[start:start+sp.Width], y[start:start+sp.Width]
			switch sp.Kind {
			case SpanTanh:
				for k := range gs {
					gs[k] *= 1 - ys[k]*ys[k]
				}
			case SpanSoftmax:
				dot := 0.0
				for k := range gs {
					dot += gs[k] * ys[k]
				}
				for k := range gs {
					gs[k] = ys[k] * (gs[k] - dot)
				}
			}
			start += sp.Width
		}
	}
	return out
}

func (s *SpanActivation) Params() []Param { return nil }

func softmax(v []float64) {
	hi := math.Inf(-1)
	for _, x := range v {
		hi = math.Max(hi, x)
	}
	sum := 0.0
	for k, x := range v {
		v[k] = math.Exp(x - hi)
		sum += v[k]
	}
	for k := range v {
		v[k] /= sum
	}
}
