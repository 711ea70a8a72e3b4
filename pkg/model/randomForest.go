package model

import (
	"errors"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// RandomForest for classification
type RandomForest struct {
	// Hyperparameters / options
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       string // gini or entropy
	MaxFeatures     int    // 0 => sqrt(p), as usual for classification forests
	Bootstrap       bool
	RandomState     int64
	NJobs           int // 0 => GOMAXPROCS

	// Internal state
	Trees   []*DecisionTreeClassifier
	classes []int
}

// RandomForestOption functional config for RandomForest
type RandomForestOption func(*RandomForest)

func WithNEstimators(n int) RandomForestOption {
	return func(rf *RandomForest) { rf.NEstimators = n }
}

func WithBootstrap(b bool) RandomForestOption {
	return func(rf *RandomForest) { rf.Bootstrap = b }
}

func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}

func WithForestMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}

func WithForestMinSamplesLeaf(n int) RandomForestOption {
	return func(rf *RandomForest) { rf.MinSamplesLeaf = n }
}

func WithForestCriterion(c string) RandomForestOption {
	return func(rf *RandomForest) { rf.Criterion = c }
}

func WithForestRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForest) { rf.RandomState = seed }
}

func WithNJobs(n int) RandomForestOption {
	return func(rf *RandomForest) { rf.NJobs = n }
}

// NewRandomForest initializes the forest with sensible defaults.
func NewRandomForest(opts ...RandomForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		MaxFeatures:     0,
		Bootstrap:       true,
		RandomState:     time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the random forest. Trees are grown concurrently; tree i is
// seeded with RandomState+i so results do not depend on scheduling.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if err := validateXY(X, y); err != nil {
		return err
	}
	if rf.NEstimators <= 0 {
		return errors.New("randomforest: NEstimators must be positive")
	}
	n := len(X)
	rf.classes = uniqueSorted(y)

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(len(X[0])))))
	}

	jobs := rf.NJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	rf.Trees = make([]*DecisionTreeClassifier, rf.NEstimators)
	var g errgroup.Group
	g.SetLimit(jobs)
	for i := range rf.NEstimators {
		g.Go(func() error {
			seed := rf.RandomState + int64(i)
			treeRand := rand.New(rand.NewSource(seed))

			// bootstrap sample as indices, not a copy of the data
			sampleIndices := make([]int, n)
			for j := range sampleIndices {
				if rf.Bootstrap {
					sampleIndices[j] = treeRand.Intn(n)
				} else {
					sampleIndices[j] = j
				}
			}

			tree := NewDecisionTreeClassifier(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMinSamplesLeaf(rf.MinSamplesLeaf),
				WithCriterion(rf.Criterion),
				WithMaxFeatures(maxFeatures),
				WithRandomState(seed),
			)
			if err := tree.fitIndices(X, y, sampleIndices, rf.classes); err != nil {
				return err
			}
			rf.Trees[i] = tree
			return nil
		})
	}
	return g.Wait()
}

// Classes returns the labels in the order used by PredictProba.
func (rf *RandomForest) Classes() []int { return rf.classes }

// PredictProba averages the class probabilities of all trees.
func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, len(rf.classes))
	}
	if len(rf.Trees) == 0 {
		return out
	}

	perTree := make([][][]float64, len(rf.Trees))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t, tree := range rf.Trees {
		g.Go(func() error {
			perTree[t] = tree.PredictProba(X)
			return nil
		})
	}
	_ = g.Wait()

	scale := 1.0 / float64(len(rf.Trees))
	for _, probas := range perTree {
		for i, p := range probas {
			for k, v := range p {
				out[i][k] += v * scale
			}
		}
	}
	return out
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForest) Predict(X [][]float64) []int {
	probas := rf.PredictProba(X)
	out := make([]int, len(X))
	for i, p := range probas {
		out[i] = rf.classes[argmaxFloat(p)]
	}
	return out
}

// PositiveProba returns the probability of label for every row in X.
func (rf *RandomForest) PositiveProba(X [][]float64, label int) []float64 {
	col := -1
	for k, c := range rf.classes {
		if c == label {
			col = k
		}
	}
	out := make([]float64, len(X))
	if col < 0 {
		return out
	}
	for i, p := range rf.PredictProba(X) {
		out[i] = p[col]
	}
	return out
}

// FeatureImportances is the mean of the per-tree normalised impurity
// decreases, renormalised to sum to 1.
func (rf *RandomForest) FeatureImportances() []float64 {
	if len(rf.Trees) == 0 {
		return nil
	}
	out := make([]float64, rf.Trees[0].nFeatures)
	for _, tree := range rf.Trees {
		for f, v := range tree.FeatureImportances() {
			out[f] += v
		}
	}
	for f := range out {
		out[f] /= float64(len(rf.Trees))
	}
	normalize(out)
	return out
}
