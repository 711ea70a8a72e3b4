package model

import (
	"errors"
	"runtime"
	"sort"
	"sync"
)

// NearestNeighbors answers k-nearest-neighbour queries over a fitted set of points.
type NearestNeighbors struct {
	K int
	X [][]float64
}

// NewNearestNeighbors creates a neighbour index returning K neighbours per query.
func NewNearestNeighbors(k int) *NearestNeighbors {
	return &NearestNeighbors{K: k}
}

// Fit stores the reference points.
func (m *NearestNeighbors) Fit(X [][]float64) error {
	if m.K <= 0 {
		return errors.New("knn: K must be positive")
	}
	if len(X) == 0 {
		return errors.New("knn: empty X")
	}
	m.X = X
	return nil
}

// KNeighbors returns, for each query row, the indices of its nearest fitted
// points ordered by distance. With excludeSelf the query is assumed to be the
// fitted set and row i never lists itself.
func (m *NearestNeighbors) KNeighbors(X [][]float64, excludeSelf bool) [][]int {
	if len(X) == 0 {
		return nil
	}

	out := make([][]int, len(X))
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(X))
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				self := -1
				if excludeSelf {
					self = i
				}
				out[i] = m.neighborsSingle(X[i], self)
			}
		}(start, end)
	}

	wg.Wait()
	return out
}

// neighborsSingle keeps a small sorted slice of the closest points seen so far.
func (m *NearestNeighbors) neighborsSingle(xi []float64, skip int) []int {
	type pair struct {
		d float64
		j int
	}

	nbrs := make([]pair, 0, m.K+1)
	for j, xj := range m.X {
		if j == skip {
			continue
		}
		neighbor := pair{d: euclidSquared(xi, xj), j: j}

		if len(nbrs) < m.K {
			nbrs = append(nbrs, neighbor)
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		} else if neighbor.d < nbrs[len(nbrs)-1].d {
			nbrs[len(nbrs)-1] = neighbor
			sort.SliceStable(nbrs, func(a, b int) bool { return nbrs[a].d < nbrs[b].d })
		}
	}

	out := make([]int, len(nbrs))
	for k, p := range nbrs {
		out[k] = p.j
	}
	return out
}

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
