package model

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// separable builds rows where only feature 0 carries the label.
func separable(n int, seed int64) ([][]float64, []int) {
	rnd := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		y[i] = i % 2
		X[i] = []float64{
			float64(y[i])*2 + rnd.Float64(),
			rnd.Float64(),
			rnd.NormFloat64(),
		}
	}
	return X, y
}

func TestRandomForestImportancesIdentifyInformativeFeature(t *testing.T) {
	defer goleak.VerifyNone(t)

	X, y := separable(200, 1)
	rf := NewRandomForest(WithNEstimators(30), WithForestRandomState(42))
	require.NoError(t, rf.Fit(X, y))

	imp := rf.FeatureImportances()
	require.Len(t, imp, 3)
	sum := 0.0
	for _, v := range imp {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, imp[0], imp[1])
	assert.Greater(t, imp[0], imp[2])

	Xt, yt := separable(100, 2)
	assert.GreaterOrEqual(t, Accuracy(yt, rf.Predict(Xt)), 0.95)
}

func TestRandomForestIsDeterministic(t *testing.T) {
	defer goleak.VerifyNone(t)

	X, y := separable(120, 3)
	a := NewRandomForest(WithNEstimators(10), WithForestRandomState(42))
	b := NewRandomForest(WithNEstimators(10), WithForestRandomState(42), WithNJobs(1))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.PredictProba(X), b.PredictProba(X))
	assert.Equal(t, a.FeatureImportances(), b.FeatureImportances())
}

func TestRandomForestProbabilitiesSumToOne(t *testing.T) {
	X, y := separable(80, 4)
	rf := NewRandomForest(WithNEstimators(5), WithForestRandomState(7))
	require.NoError(t, rf.Fit(X, y))
	assert.Equal(t, []int{0, 1}, rf.Classes())

	for _, p := range rf.PredictProba(X) {
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)
	}
	pos := rf.PositiveProba(X[:3], 1)
	assert.Len(t, pos, 3)
}

func TestRandomForestRejectsBadInput(t *testing.T) {
	rf := NewRandomForest()
	assert.Error(t, rf.Fit(nil, nil))
	assert.Error(t, rf.Fit([][]float64{{1}, {2}}, []int{0}))
}

func TestDecisionTreeSeparatesThreshold(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []int{0, 0, 0, 1, 1, 1}
	tree := NewDecisionTreeClassifier(WithRandomState(1))
	require.NoError(t, tree.Fit(X, y))

	assert.Equal(t, []int{0, 1}, tree.Predict([][]float64{{2.5}, {9}}))
	assert.Equal(t, []float64{1}, tree.FeatureImportances())
	// missing values follow the larger branch
	assert.Len(t, tree.Predict([][]float64{{math.NaN()}}), 1)
}

func TestDecisionTreeProbasWithDepthLimit(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []int{0, 1, 0, 1}
	tree := NewDecisionTreeClassifier(WithMaxDepth(1), WithRandomState(1))
	require.NoError(t, tree.Fit(X, y))
	for _, p := range tree.PredictProba(X) {
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-12)
	}
}

func TestDecisionTreeEntropyCriterion(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []int{0, 0, 0, 1, 1, 1}
	tree := NewDecisionTreeClassifier(WithCriterion("entropy"), WithRandomState(1))
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []int{0, 1}, tree.Predict([][]float64{{2.5}, {9}}))

	bad := NewDecisionTreeClassifier(WithCriterion("mse"))
	assert.ErrorContains(t, bad.Fit(X, y), "unknown criterion")
}

func TestDecisionTreeStoppingRules(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []int{0, 0, 0, 1, 1, 1}

	tree := NewDecisionTreeClassifier(WithMinImpurityDecrease(1e9), WithRandomState(1))
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []float64{0}, tree.FeatureImportances())
	assert.Equal(t, []float64{0.5, 0.5}, tree.PredictProba([][]float64{{1}})[0])

	// leaves of three still allow the middle split, leaves of four do not
	tree = NewDecisionTreeClassifier(WithMinSamplesLeaf(3), WithMinSamplesSplit(2), WithRandomState(1))
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []int{0, 1}, tree.Predict([][]float64{{1}, {12}}))

	tree = NewDecisionTreeClassifier(WithMinSamplesLeaf(4), WithRandomState(1))
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []float64{0.5, 0.5}, tree.PredictProba([][]float64{{12}})[0])
}

func TestRandomForestOptions(t *testing.T) {
	defer goleak.VerifyNone(t)

	X := [][]float64{{1, 5}, {2, 5}, {3, 5}, {10, 5}, {11, 5}, {12, 5}}
	y := []int{0, 0, 0, 1, 1, 1}
	rf := NewRandomForest(
		WithNEstimators(5),
		WithBootstrap(false),
		WithForestMaxDepth(1),
		WithForestMaxFeatures(2),
		WithForestMinSamplesLeaf(1),
		WithForestCriterion("entropy"),
		WithForestRandomState(3),
		WithNJobs(2),
	)
	require.NoError(t, rf.Fit(X, y))
	assert.Equal(t, []int{0, 1}, rf.Predict([][]float64{{2, 5}, {11, 5}}))
	assert.InDelta(t, 1.0, rf.FeatureImportances()[0], 1e-12)
	for _, tree := range rf.Trees {
		assert.Equal(t, "entropy", tree.Criterion)
		assert.Equal(t, 1, tree.MaxDepth)
	}

	bad := NewRandomForest(WithNEstimators(2), WithForestCriterion("mse"))
	assert.Error(t, bad.Fit(X, y))
}

func TestROCAUC(t *testing.T) {
	auc, err := ROCAUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, auc, 1e-12)

	auc, err = ROCAUC([]int{0, 1, 1, 0}, []float64{0.1, 0.2, 0.3, 0.4}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, auc, 1e-12)

	auc, err = ROCAUC([]int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, 1e-12)

	_, err = ROCAUC([]int{1, 1}, []float64{0.2, 0.3}, 1)
	assert.ErrorIs(t, err, ErrSingleClass)
}

func TestFidelityFromAUC(t *testing.T) {
	assert.Equal(t, FidelityExcellent, FidelityFromAUC(0.5))
	assert.Equal(t, FidelityGood, FidelityFromAUC(0.72))
	assert.Equal(t, FidelityPoor, FidelityFromAUC(0.9))
	assert.Equal(t, FidelityPoor, FidelityFromAUC(0.1))
	assert.Equal(t, FidelityExcellent, FidelityFromAUC(0.4))
	assert.Equal(t, "good", FidelityGood.String())
	assert.NotEmpty(t, FidelityPoor.Interpretation())
}

func TestClassificationReport(t *testing.T) {
	r := NewClassificationReport([]int{0, 0, 1, 1}, []int{0, 1, 1, 1}, map[int]string{0: "Real", 1: "Sintético"})

	require.Len(t, r.Classes, 2)
	assert.Equal(t, 1.0, r.Classes[0].Precision)
	assert.Equal(t, 0.5, r.Classes[0].Recall)
	assert.InDelta(t, 2.0/3.0, r.Classes[1].Precision, 1e-12)
	assert.Equal(t, 1.0, r.Classes[1].Recall)
	assert.Equal(t, 0.75, r.Accuracy)
	assert.Equal(t, 4, r.WeightedAvg.Support)

	out := r.String()
	assert.Contains(t, out, "Sintético")
	assert.Contains(t, out, "accuracy")
	assert.Contains(t, out, "weighted avg")
	assert.Equal(t, 8, len(strings.Split(strings.TrimRight(out, "\n"), "\n")))
}

func TestKMeansOneDimensionalModes(t *testing.T) {
	X := [][]float64{{0}, {0.1}, {0.2}, {10}, {10.1}, {10.2}}
	km := NewKMeans(2, 100, 42)
	require.NoError(t, km.Fit(X))

	centers := []float64{km.Centroids[0][0], km.Centroids[1][0]}
	sort.Float64s(centers)
	assert.InDelta(t, 0.1, centers[0], 1e-9)
	assert.InDelta(t, 10.1, centers[1], 1e-9)

	labels, err := km.Predict([][]float64{{0.05}, {9.9}})
	require.NoError(t, err)
	assert.NotEqual(t, labels[0], labels[1])

	assert.Error(t, NewKMeans(3, 10, 1).Fit([][]float64{{1}}))
}

func TestNearestNeighborsExcludesSelf(t *testing.T) {
	X := [][]float64{{0}, {1}, {3}, {7}}
	nn := NewNearestNeighbors(2)
	require.NoError(t, nn.Fit(X))

	got := nn.KNeighbors(X, true)
	assert.Equal(t, []int{1, 2}, got[0])
	assert.Equal(t, []int{0, 2}, got[1])
	assert.Equal(t, []int{1, 0}, got[2])
	assert.Equal(t, []int{2, 1}, got[3])
}
