package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafo/pkg/loader"
)

func TestSMOTEBalancesClasses(t *testing.T) {
	X := [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {10, 0}, {11, 1}, {12, 0}}
	y := []int{0, 0, 0, 0, 0, 0, 1, 1, 1}

	Xr, yr, err := NewSMOTE().FitResample(X, y)
	require.NoError(t, err)

	counts := loader.ClassCounts(yr)
	assert.Equal(t, 6, counts[0])
	assert.Equal(t, 6, counts[1])
	assert.Len(t, Xr, 12)
	assert.Equal(t, X, Xr[:9])

	// synthetic rows lie inside the minority bounding box
	for _, row := range Xr[9:] {
		assert.True(t, row[0] >= 10 && row[0] <= 12, "x=%v", row)
		assert.True(t, row[1] >= 0 && row[1] <= 1, "y=%v", row)
	}
}

func TestSMOTEIsDeterministic(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {7}, {8}}
	y := []int{0, 0, 0, 0, 1, 1}

	a, _, err := NewSMOTE(WithRandomState(42)).FitResample(X, y)
	require.NoError(t, err)
	b, _, err := NewSMOTE(WithRandomState(42)).FitResample(X, y)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSMOTESingleMinoritySample(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {9}}
	y := []int{0, 0, 0, 1}

	Xr, yr, err := NewSMOTE().FitResample(X, y)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, yr)
	assert.Equal(t, []float64{9}, Xr[5])
}

func TestSMOTEBalancedInputUnchanged(t *testing.T) {
	X := [][]float64{{0}, {1}}
	y := []int{0, 1}
	Xr, yr, err := NewSMOTE().FitResample(X, y)
	require.NoError(t, err)
	assert.Equal(t, X, Xr)
	assert.Equal(t, y, yr)

	_, _, err = NewSMOTE().FitResample(X, []int{0})
	assert.Error(t, err)
}
