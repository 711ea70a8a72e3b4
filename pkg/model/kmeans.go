package model

import (
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// KMeans partitions data points into K clusters.
type KMeans struct {
	K           int
	MaxIter     int
	RandomState int64
	Centroids   [][]float64
	Inertia     float64 // Sum of squared distances to nearest centroid
}

// NewKMeans creates and returns a new KMeans model with specified K and max iterations.
func NewKMeans(k int, maxIter int, seed int64) *KMeans {
	return &KMeans{
		K:           k,
		MaxIter:     maxIter,
		RandomState: seed,
	}
}

// Fit runs Lloyd iterations from a k-means++ start.
func (m *KMeans) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("kmeans: input data cannot be empty")
	}
	if m.K <= 0 {
		return errors.New("kmeans: K must be positive")
	}

	n, p := len(X), len(X[0])
	if n < m.K {
		return errors.New("kmeans: number of data points is less than K")
	}

	m.initCenters(X, rand.New(rand.NewSource(m.RandomState)))

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	for it := 0; it < m.MaxIter; it++ {
		// assignment step, one changed flag per worker
		changed := make([]bool, workers)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			start := w * rowsPerWorker
			end := min(start+rowsPerWorker, n)
			if start >= end {
				continue
			}

			wg.Add(1)
			go func(w, start, end int) {
				defer wg.Done()
				for i := start; i < end; i++ {
					best, _ := m.nearest(X[i])
					if assign[i] != best {
						changed[w] = true
					}
					assign[i] = best
				}
			}(w, start, end)
		}
		wg.Wait()

		// update step
		sums := make([][]float64, m.K)
		counts := make([]int, m.K)
		for k := 0; k < m.K; k++ {
			sums[k] = make([]float64, p)
		}
		for i := 0; i < n; i++ {
			k := assign[i]
			counts[k]++
			for j := 0; j < p; j++ {
				sums[k][j] += X[i][j]
			}
		}
		for k := 0; k < m.K; k++ {
			if counts[k] == 0 {
				continue // empty cluster keeps its centroid
			}
			for j := 0; j < p; j++ {
				m.Centroids[k][j] = sums[k][j] / float64(counts[k])
			}
		}

		converged := true
		for _, c := range changed {
			if c {
				converged = false
			}
		}
		if converged {
			break
		}
	}

	m.Inertia = 0
	for i := range X {
		_, d2 := m.nearest(X[i])
		m.Inertia += d2
	}
	return nil
}

// Predict assigns each data point to its nearest centroid.
func (m *KMeans) Predict(X [][]float64) ([]int, error) {
	if len(X) == 0 {
		return nil, errors.New("kmeans: input data for prediction cannot be empty")
	}
	if len(m.Centroids) == 0 {
		return nil, errors.New("kmeans: model is not fitted")
	}

	n, p := len(X), len(X[0])
	if p != len(m.Centroids[0]) {
		return nil, errors.New("kmeans: feature count mismatch between input data and model centroids")
	}

	assignments := make([]int, n)
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				assignments[i], _ = m.nearest(X[i])
			}
		}(start, end)
	}
	wg.Wait()

	return assignments, nil
}

func (m *KMeans) nearest(x []float64) (int, float64) {
	best, bestdSquared := 0, math.MaxFloat64
	for k, c := range m.Centroids {
		if d2 := euclidSquared(x, c); d2 < bestdSquared {
			bestdSquared = d2
			best = k
		}
	}
	return best, bestdSquared
}

// initCenters is k-means++ seeding.
func (m *KMeans) initCenters(X [][]float64, rnd *rand.Rand) {
	n := len(X)
	m.Centroids = make([][]float64, m.K)

	m.Centroids[0] = append([]float64{}, X[rnd.Intn(n)]...)

	distSq := make([]float64, n)
	for k := 1; k < m.K; k++ {
		total := 0.0
		for i, x := range X {
			minDist := math.MaxFloat64
			for _, c := range m.Centroids[:k] {
				minDist = min(minDist, euclidSquared(x, c))
			}
			distSq[i] = minDist
			total += minDist
		}

		r := rnd.Float64() * total
		cumulative := 0.0
		pick := n - 1
		for i, d2 := range distSq {
			cumulative += d2
			if cumulative >= r && d2 > 0 {
				pick = i
				break
			}
		}
		m.Centroids[k] = append([]float64{}, X[pick]...)
	}
}
