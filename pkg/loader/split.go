package loader

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Split holds the result of a train/test split.
type Split struct {
	XTrain, XTest [][]float64
	YTrain, YTest []int
}

// StratifiedSplit splits X, y into train and test sets by ratio while keeping
// the class proportions of y in both parts. The test set gets ceil(n*testRatio) rows.
func StratifiedSplit(X [][]float64, y []int, testRatio float64, rnd *rand.Rand) (*Split, error) {
	n := len(X)
	if n != len(y) {
		return nil, errors.New("loader: X and y length mismatch")
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, errors.New("loader: test ratio must be in (0, 1)")
	}

	byClass := map[int][]int{}
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	for c, idx := range byClass {
		if len(idx) < 2 {
			return nil, errors.New("loader: every class needs at least two members")
		}
		classes = append(classes, c)
	}
	sort.Ints(classes)

	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < len(classes) || n-nTest < len(classes) {
		return nil, errors.New("loader: split too small for the number of classes")
	}
	counts := allocate(classes, byClass, nTest, n)

	var trainIdx, testIdx []int
	for _, c := range classes {
		idx := append([]int(nil), byClass[c]...)
		rnd.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		testIdx = append(testIdx, idx[:counts[c]]...)
		trainIdx = append(trainIdx, idx[counts[c]:]...)
	}
	rnd.Shuffle(len(trainIdx), func(a, b int) { trainIdx[a], trainIdx[b] = trainIdx[b], trainIdx[a] })
	rnd.Shuffle(len(testIdx), func(a, b int) { testIdx[a], testIdx[b] = testIdx[b], testIdx[a] })

	s := &Split{}
	for _, i := range trainIdx {
		s.XTrain = append(s.XTrain, X[i])
		s.YTrain = append(s.YTrain, y[i])
	}
	for _, i := range testIdx {
		s.XTest = append(s.XTest, X[i])
		s.YTest = append(s.YTest, y[i])
	}
	return s, nil
}

// allocate distributes nTest rows over the classes proportionally to their
// size, handing leftovers to the largest fractional remainders.
func allocate(classes []int, byClass map[int][]int, nTest, n int) map[int]int {
	type share struct {
		class int
		frac  float64
	}
	counts := make(map[int]int, len(classes))
	shares := make([]share, 0, len(classes))
	assigned := 0
	for _, c := range classes {
		exact := float64(len(byClass[c])) * float64(nTest) / float64(n)
		k := int(math.Floor(exact))
		// keep at least one row of each class on both sides
		k = max(1, min(k, len(byClass[c])-1))
		counts[c] = k
		assigned += k
		shares = append(shares, share{c, exact - math.Floor(exact)})
	}
	sort.SliceStable(shares, func(a, b int) bool { return shares[a].frac > shares[b].frac })
	for i := 0; assigned < nTest && i < 2*len(shares); i++ {
		s := shares[i%len(shares)]
		if counts[s.class] < len(byClass[s.class])-1 {
			counts[s.class]++
			assigned++
		}
	}
	for i := 0; assigned > nTest && i < 2*len(shares); i++ {
		s := shares[len(shares)-1-i%len(shares)]
		if counts[s.class] > 1 {
			counts[s.class]--
			assigned--
		}
	}
	return counts
}

// ClassCounts returns the number of samples per label.
func ClassCounts(y []int) map[int]int {
	counts := map[int]int{}
	for _, c := range y {
		counts[c]++
	}
	return counts
}
