// Package optim updates parameter slices in place from their gradients.
package optim

// Optimizer applies one update. params[i] and grads[i] must have equal length
// and keep the same order across calls.
type Optimizer interface {
	Step(params, grads [][]float64)
}

// Stochastic Gradient Descent optimizer with learning rate and optional momentum.
type SGD struct {
	LearningRate float64
	Momentum     float64

	velocity [][]float64
}

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

func (o *SGD) Step(params, grads [][]float64) {
	if o.Momentum == 0 {
		for p := range params {
			for i := range params[p] {
				params[p][i] -= o.LearningRate * grads[p][i]
			}
		}
		return
	}
	if o.velocity == nil {
		o.velocity = zerosLike(params)
	}
	for p := range params {
		v := o.velocity[p]
		for i := range params[p] {
			v[i] = o.Momentum*v[i] + grads[p][i]
			params[p][i] -= o.LearningRate * v[i]
		}
	}
}

func zerosLike(params [][]float64) [][]float64 {
	out := make([][]float64, len(params))
	for p := range params {
		out[p] = make([]float64, len(params[p]))
	}
	return out
}
