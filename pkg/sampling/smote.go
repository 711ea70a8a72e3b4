// Package sampling rebalances labelled training data.
package sampling

import (
	"errors"
	"math/rand"
	"sort"

	"trafo/pkg/model"
)

// SMOTE oversamples every minority class up to the majority count by
// interpolating between a sample and one of its nearest same-class neighbours.
type SMOTE struct {
	KNeighbors  int
	RandomState int64
}

// Option functional config
type Option func(*SMOTE)

func WithKNeighbors(k int) Option       { return func(s *SMOTE) { s.KNeighbors = k } }
func WithRandomState(seed int64) Option { return func(s *SMOTE) { s.RandomState = seed } }

// NewSMOTE returns a sampler with k = 5 and seed 42.
func NewSMOTE(opts ...Option) *SMOTE {
	s := &SMOTE{KNeighbors: 5, RandomState: 42}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FitResample returns X and y followed by the generated rows. The inputs are
// not modified.
func (s *SMOTE) FitResample(X [][]float64, y []int) ([][]float64, []int, error) {
	if len(X) == 0 {
		return nil, nil, errors.New("smote: empty X")
	}
	if len(X) != len(y) {
		return nil, nil, errors.New("smote: X and y length mismatch")
	}
	if s.KNeighbors <= 0 {
		return nil, nil, errors.New("smote: KNeighbors must be positive")
	}

	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	labels := make([]int, 0, len(byClass))
	majority := 0
	for label, rows := range byClass {
		labels = append(labels, label)
		majority = max(majority, len(rows))
	}
	sort.Ints(labels)

	outX := make([][]float64, len(X), len(X)+len(X))
	for i := range X {
		outX[i] = append([]float64(nil), X[i]...)
	}
	outY := append([]int(nil), y...)

	rnd := rand.New(rand.NewSource(s.RandomState))
	for _, label := range labels {
		rows := byClass[label]
		need := majority - len(rows)
		if need == 0 {
			continue
		}
		synth, err := s.generate(X, rows, need, rnd)
		if err != nil {
			return nil, nil, err
		}
		outX = append(outX, synth...)
		for range synth {
			outY = append(outY, label)
		}
	}
	return outX, outY, nil
}

func (s *SMOTE) generate(X [][]float64, rows []int, need int, rnd *rand.Rand) ([][]float64, error) {
	out := make([][]float64, 0, need)

	// a lone sample can only be repeated
	if len(rows) == 1 {
		for range need {
			out = append(out, append([]float64(nil), X[rows[0]]...))
		}
		return out, nil
	}

	k := min(s.KNeighbors, len(rows)-1)
	members := make([][]float64, len(rows))
	for i, r := range rows {
		members[i] = X[r]
	}
	nn := model.NewNearestNeighbors(k)
	if err := nn.Fit(members); err != nil {
		return nil, err
	}
	neighbors := nn.KNeighbors(members, true)

	for range need {
		pick := rnd.Intn(len(members) * k)
		i, j := pick/k, neighbors[pick/k][pick%k]
		gap := rnd.Float64()

		row := make([]float64, len(members[i]))
		for f := range row {
			row[f] = members[i][f] + gap*(members[j][f]-members[i][f])
		}
		out = append(out, row)
	}
	return out, nil
}
