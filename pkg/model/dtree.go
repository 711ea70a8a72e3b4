package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// DecisionTreeClassifier is a binary-split CART tree over numeric features.
// Rows reaching a leaf vote with their class frequencies.
type DecisionTreeClassifier struct {
	MaxDepth            int // 0 grows until leaves are pure
	MinSamplesSplit     int
	MinSamplesLeaf      int
	Criterion           string // gini or entropy
	MaxFeatures         int    // features tried per split, 0 tries all
	MinImpurityDecrease float64
	RandomState         int64

	root       *dtNode
	classes    []int     // ascending, column order of PredictProba
	importance []float64 // summed weighted impurity decrease per feature
	nFeatures  int
}

type dtNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // left when value <= threshold
	left      *dtNode
	right     *dtNode

	n      int
	probas []float64
}

type Option func(*DecisionTreeClassifier)

func WithMaxDepth(d int) Option {
	return func(t *DecisionTreeClassifier) { t.MaxDepth = d }
}

func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}

func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}

func WithCriterion(c string) Option {
	return func(t *DecisionTreeClassifier) { t.Criterion = c }
}

func WithMaxFeatures(k int) Option {
	return func(t *DecisionTreeClassifier) { t.MaxFeatures = k }
}

func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}

func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier returns an unbounded gini tree seeded from the clock.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		RandomState:     time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Fit grows the tree on X and y. Missing values are NaN: they go right while
// training and follow the larger branch when predicting.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []int) error {
	if err := validateXY(X, y); err != nil {
		return err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.fitIndices(X, y, idx, uniqueSorted(y))
}

// fitIndices trains on the rows listed in idx; duplicates act as sample weights,
// which is how bootstrap samples reach the tree.
func (t *DecisionTreeClassifier) fitIndices(X [][]float64, y []int, idx []int, classes []int) error {
	if len(idx) == 0 {
		return errors.New("dtree: no samples")
	}
	t.classes = classes
	t.nFeatures = len(X[0])
	t.importance = make([]float64, t.nFeatures)

	// class index per row
	classMap := make(map[int]int, len(classes))
	for k, c := range classes {
		classMap[c] = k
	}
	yi := make([]int, len(y))
	for i, lab := range y {
		k, ok := classMap[lab]
		if !ok {
			return errors.New("dtree: label not in class list")
		}
		yi[i] = k
	}

	var impurity func([]int) float64
	switch t.Criterion {
	case "", "gini":
		impurity = giniFromCounts
	case "entropy":
		impurity = entropyFromCounts
	default:
		return fmt.Errorf("dtree: unknown criterion %q", t.Criterion)
	}

	b := &builder{
		tree:     t,
		X:        X,
		y:        yi,
		impurity: impurity,
		rnd:      rand.New(rand.NewSource(t.RandomState)),
	}
	t.root = b.build(idx, 0)
	return nil
}

// Classes returns the labels in the order used by PredictProba.
func (t *DecisionTreeClassifier) Classes() []int { return t.classes }

// Predict returns predicted class labels.
func (t *DecisionTreeClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = t.classes[argmaxFloat(t.predictProbaSingle(X[i]))]
	}
	return out
}

// PredictProba returns the per-class probability vectors for rows in X.
func (t *DecisionTreeClassifier) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = t.predictProbaSingle(X[i])
	}
	return out
}

// FeatureImportances returns the impurity-based importance of each feature,
// normalised to sum to 1 (all zeros for a single-leaf tree).
func (t *DecisionTreeClassifier) FeatureImportances() []float64 {
	out := make([]float64, len(t.importance))
	copy(out, t.importance)
	normalize(out)
	return out
}

type builder struct {
	tree     *DecisionTreeClassifier
	X        [][]float64
	y        []int
	impurity func([]int) float64
	rnd      *rand.Rand
}

// splitResult holds the best split found for a node.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
	impL      float64
	impR      float64
}

// pair is a value and the row it came from.
type pair struct {
	v float64
	i int
}

func (b *builder) build(idx []int, depth int) *dtNode {
	t := b.tree
	nClasses := len(t.classes)
	node := &dtNode{n: len(idx)}

	counts := make([]int, nClasses)
	for _, ii := range idx {
		counts[b.y[ii]]++
	}
	node.probas = countsToProbas(counts)

	if isPure(counts) ||
		len(idx) < t.MinSamplesSplit ||
		len(idx) < 2*t.MinSamplesLeaf ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		node.isLeaf = true
		return node
	}

	parentImpurity := b.impurity(counts)
	best := b.findBestSplit(idx, parentImpurity)
	if best.feature < 0 || best.gain <= t.MinImpurityDecrease {
		node.isLeaf = true
		return node
	}

	n := float64(len(idx))
	t.importance[best.feature] += n*parentImpurity -
		float64(len(best.leftIdx))*best.impL -
		float64(len(best.rightIdx))*best.impR

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = b.build(best.leftIdx, depth+1)
	node.right = b.build(best.rightIdx, depth+1)
	return node
}

// findBestSplit visits features in random order. It evaluates at least
// MaxFeatures of them and keeps going until a split with positive gain is found.
func (b *builder) findBestSplit(idx []int, parentImpurity float64) splitResult {
	p := b.tree.nFeatures
	limit := b.tree.MaxFeatures
	if limit <= 0 || limit > p {
		limit = p
	}
	order := b.rnd.Perm(p)

	best := splitResult{feature: -1}
	for visited, f := range order {
		if visited >= limit && best.feature >= 0 {
			break
		}
		res := b.splitFeature(idx, f, parentImpurity)
		if res.feature >= 0 && res.gain > best.gain {
			best = res
		}
	}
	return best
}

// splitFeature scans all thresholds of one feature with running class counts.
func (b *builder) splitFeature(idx []int, f int, parentImpurity float64) splitResult {
	nClasses := len(b.tree.classes)
	minLeaf := max(b.tree.MinSamplesLeaf, 1)
	result := splitResult{feature: -1}

	vals := make([]pair, 0, len(idx))
	var nans []int
	for _, ii := range idx {
		v := b.X[ii][f]
		if math.IsNaN(v) {
			nans = append(nans, ii)
			continue
		}
		vals = append(vals, pair{v, ii})
	}
	if len(vals) < 2 {
		return result
	}
	sort.Slice(vals, func(a, c int) bool { return vals[a].v < vals[c].v })

	// missing values always travel right
	right := make([]int, nClasses)
	left := make([]int, nClasses)
	for _, pv := range vals {
		right[b.y[pv.i]]++
	}
	for _, ii := range nans {
		right[b.y[ii]]++
	}

	n := float64(len(idx))
	bestPos := -1
	for s := 1; s < len(vals); s++ {
		c := b.y[vals[s-1].i]
		left[c]++
		right[c]--
		if vals[s].v == vals[s-1].v {
			continue
		}
		nl, nr := s, len(idx)-s
		if nl < minLeaf || nr < minLeaf {
			continue
		}
		impL := b.impurity(left)
		impR := b.impurity(right)
		gain := parentImpurity - (float64(nl)/n)*impL - (float64(nr)/n)*impR
		if gain > result.gain {
			result.gain = gain
			result.feature = f
			result.threshold = (vals[s-1].v + vals[s].v) / 2.0
			result.impL, result.impR = impL, impR
			bestPos = s
		}
	}
	if bestPos < 0 {
		return result
	}

	result.leftIdx = make([]int, 0, bestPos)
	for _, pv := range vals[:bestPos] {
		result.leftIdx = append(result.leftIdx, pv.i)
	}
	result.rightIdx = make([]int, 0, len(idx)-bestPos)
	for _, pv := range vals[bestPos:] {
		result.rightIdx = append(result.rightIdx, pv.i)
	}
	result.rightIdx = append(result.rightIdx, nans...)
	return result
}

func (t *DecisionTreeClassifier) predictProbaSingle(x []float64) []float64 {
	if t.root == nil {
		p := make([]float64, len(t.classes))
		for i := range p {
			p[i] = 1.0 / float64(len(p))
		}
		return p
	}
	node := t.root
	for !node.isLeaf {
		val := x[node.feature]
		if math.IsNaN(val) {
			// missing: choose branch with more samples
			if node.left.n >= node.right.n {
				node = node.left
			} else {
				node = node.right
			}
			continue
		}
		if val <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.probas
}

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 1.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * p
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}

func argmaxFloat(arr []float64) int {
	best := 0
	for i := 1; i < len(arr); i++ {
		if arr[i] > arr[best] {
			best = i
		}
	}
	return best
}

func normalize(v []float64) {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	if sum <= 0 {
		return
	}
	for i := range v {
		v[i] /= sum
	}
}

func uniqueSorted(y []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func validateXY(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("model: empty X")
	}
	if len(y) != len(X) {
		return errors.New("model: X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("model: inconsistent number of features in X rows")
		}
	}
	return nil
}
