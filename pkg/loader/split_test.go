package loader

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataset(nA, nB int) ([][]float64, []int) {
	var X [][]float64
	var y []int
	for i := range nA {
		X = append(X, []float64{float64(i)})
		y = append(y, 0)
	}
	for i := range nB {
		X = append(X, []float64{float64(1000 + i)})
		y = append(y, 1)
	}
	return X, y
}

func TestStratifiedSplitKeepsProportions(t *testing.T) {
	X, y := dataset(200, 100)

	s, err := StratifiedSplit(X, y, 0.3, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Len(t, s.XTest, 90)
	assert.Len(t, s.XTrain, 210)
	assert.Equal(t, map[int]int{0: 60, 1: 30}, ClassCounts(s.YTest))
	assert.Equal(t, map[int]int{0: 140, 1: 70}, ClassCounts(s.YTrain))

	for i, row := range s.XTest {
		assert.Equal(t, s.YTest[i] == 1, row[0] >= 1000)
	}
}

func TestStratifiedSplitCeilsTestSize(t *testing.T) {
	X, y := dataset(215, 215)

	s, err := StratifiedSplit(X, y, 0.3, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Len(t, s.YTest, 129)
	counts := ClassCounts(s.YTest)
	assert.Equal(t, 129, counts[0]+counts[1])
	assert.InDelta(t, counts[0], counts[1], 1)
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	X, y := dataset(50, 40)

	a, err := StratifiedSplit(X, y, 0.3, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := StratifiedSplit(X, y, 0.3, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, a.XTest, b.XTest)
	assert.Equal(t, a.YTrain, b.YTrain)
}

func TestStratifiedSplitRejectsBadInput(t *testing.T) {
	X, y := dataset(10, 1)
	_, err := StratifiedSplit(X, y, 0.3, rand.New(rand.NewSource(1)))
	assert.Error(t, err)

	X, y = dataset(10, 10)
	_, err = StratifiedSplit(X, y[:5], 0.3, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = StratifiedSplit(X, y, 1.5, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
