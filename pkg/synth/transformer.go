package synth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"trafo/pkg/dataprep"
	"trafo/pkg/dataset"
	"trafo/pkg/model"
	"trafo/pkg/nn"
	"trafo/pkg/stats"
)

const (
	defaultMaxModes = 10
	minModeWeight   = 0.005
	kmeansMaxIter   = 100
	scalarClip      = 0.99
)

// mode is one Gaussian component of a numerical column.
type mode struct {
	mean, std, weight float64
}

type columnTransform struct {
	meta  ColumnMeta
	fill  float64
	modes []mode
	cats  []float64
}

// width is the number of encoded columns.
func (c *columnTransform) width() int {
	if c.meta.SDType == SDTypeCategorical {
		return len(c.cats)
	}
	return 1 + len(c.modes)
}

// DataTransformer encodes a frame into the matrix the GAN trains on and
// decodes generated rows back into column values. Numerical columns use
// mode-specific normalisation, categorical columns one-hot; id columns are
// left out.
type DataTransformer struct {
	MaxModes int
	Seed     int64

	columns []columnTransform
}

// NewDataTransformer returns a transformer with up to 10 modes per column.
func NewDataTransformer(seed int64) *DataTransformer {
	return &DataTransformer{MaxModes: defaultMaxModes, Seed: seed}
}

// Fit learns modes and categories for every non-id column in meta.
func (t *DataTransformer) Fit(f *dataset.Frame, meta *Metadata) error {
	t.columns = t.columns[:0]
	for _, cm := range meta.Columns {
		if cm.SDType == SDTypeID {
			continue
		}
		raw := f.Column(cm.Name)
		if raw == nil {
			return fmt.Errorf("synth: column %q missing from frame", cm.Name)
		}
		ct := columnTransform{meta: cm}

		switch cm.SDType {
		case SDTypeCategorical:
			ct.cats = dataprep.Categories(raw)
			if len(ct.cats) == 0 {
				ct.cats = []float64{0}
			}
			ct.fill = mostFrequent(raw, ct.cats)
		default:
			ct.fill = stats.Mean(raw)
			if math.IsNaN(ct.fill) {
				ct.fill = 0
			}
			modes, err := t.fitModes(filled(raw, ct.fill))
			if err != nil {
				return fmt.Errorf("synth: column %q: %w", cm.Name, err)
			}
			ct.modes = modes
		}
		t.columns = append(t.columns, ct)
	}
	return nil
}

// fitModes clusters a column in one dimension and keeps the modes holding at
// least 0.5% of the rows.
func (t *DataTransformer) fitModes(values []float64) ([]mode, error) {
	k := min(t.MaxModes, len(stats.Unique(values)))
	lo, hi, _ := stats.MinMax(values)
	floor := math.Max(1e-6, (hi-lo)*1e-3)

	if k <= 1 {
		return []mode{{mean: stats.Mean(values), std: math.Max(stats.Std(values), floor), weight: 1}}, nil
	}

	X := make([][]float64, len(values))
	for i, v := range values {
		X[i] = []float64{v}
	}
	km := model.NewKMeans(k, kmeansMaxIter, t.Seed)
	if err := km.Fit(X); err != nil {
		return nil, err
	}
	assign, err := km.Predict(X)
	if err != nil {
		return nil, err
	}

	groups := make([][]float64, k)
	for i, a := range assign {
		groups[a] = append(groups[a], values[i])
	}
	var modes []mode
	for _, g := range groups {
		w := float64(len(g)) / float64(len(values))
		if len(g) == 0 || w < minModeWeight {
			continue
		}
		modes = append(modes, mode{mean: stats.Mean(g), std: math.Max(stats.Std(g), floor), weight: w})
	}
	if len(modes) == 0 {
		modes = append(modes, mode{mean: stats.Mean(values), std: math.Max(stats.Std(values), floor), weight: 1})
	}
	return modes, nil
}

// Spans describes the output layout for the generator's last activation.
func (t *DataTransformer) Spans() []nn.Span {
	var spans []nn.Span
	for i := range t.columns {
		c := &t.columns[i]
		if c.meta.SDType == SDTypeCategorical {
			spans = append(spans, nn.Span{Width: len(c.cats), Kind: nn.SpanSoftmax})
			continue
		}
		spans = append(spans,
			nn.Span{Width: 1, Kind: nn.SpanTanh},
			nn.Span{Width: len(c.modes), Kind: nn.SpanSoftmax},
		)
	}
	return spans
}

// Width is the encoded row width.
func (t *DataTransformer) Width() int {
	w := 0
	for i := range t.columns {
		w += t.columns[i].width()
	}
	return w
}

// Transform encodes f into a rows x Width matrix. Missing values take the
// column fill value.
func (t *DataTransformer) Transform(f *dataset.Frame) (*mat.Dense, error) {
	n := f.Len()
	out := mat.NewDense(n, t.Width(), nil)
	offset := 0
	for ci := range t.columns {
		c := &t.columns[ci]
		raw := f.Column(c.meta.Name)
		if raw == nil {
			return nil, fmt.Errorf("synth: column %q missing from frame", c.meta.Name)
		}
		values := filled(raw, c.fill)

		if c.meta.SDType == SDTypeCategorical {
			for i, vec := range dataprep.OneHot(values, c.cats) {
				copy(out.RawRowView(i)[offset:], vec)
			}
		} else {
			for i, v := range values {
				row := out.RawRowView(i)[offset:]
				k := c.likeliestMode(v)
				m := c.modes[k]
				row[0] = stats.Clip((v-m.mean)/(4*m.std), -scalarClip, scalarClip)
				row[1+k] = 1
			}
		}
		offset += c.width()
	}
	return out, nil
}

// likeliestMode picks the mode with the highest weighted Gaussian density.
func (c *columnTransform) likeliestMode(v float64) int {
	best, bestScore := 0, math.Inf(-1)
	for k, m := range c.modes {
		z := (v - m.mean) / m.std
		score := math.Log(m.weight) - math.Log(m.std) - z*z/2
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	return best
}

// Inverse decodes generated rows into one value slice per transformed column,
// keyed by column name. Values are clipped to the observed range and rounded
// to the observed precision.
func (t *DataTransformer) Inverse(m *mat.Dense) map[string][]float64 {
	n, _ := m.Dims()
	out := make(map[string][]float64, len(t.columns))
	offset := 0
	for ci := range t.columns {
		c := &t.columns[ci]
		values := make([]float64, n)
		for i := range n {
			seg := m.RawRowView(i)[offset : offset+c.width()]
			if c.meta.SDType == SDTypeCategorical {
				values[i] = c.cats[argmax(seg)]
				continue
			}
			k := argmax(seg[1:])
			md := c.modes[k]
			v := stats.Clip(seg[0], -1, 1)*4*md.std + md.mean
			v = stats.Clip(v, c.meta.Min, c.meta.Max)
			values[i] = stats.Round(v, c.meta.Decimals)
		}
		out[c.meta.Name] = values
		offset += c.width()
	}
	return out
}

func filled(col []float64, fill float64) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			v = fill
		}
		out[i] = v
	}
	return out
}

func mostFrequent(col, cats []float64) float64 {
	counts := make(map[float64]int, len(cats))
	for _, v := range col {
		if !math.IsNaN(v) {
			counts[v]++
		}
	}
	best := cats[0]
	for _, c := range cats {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
