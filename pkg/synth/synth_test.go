package synth

import (
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafo/pkg/dataset"
	"trafo/pkg/stats"
)

// table has a row number, a bimodal measurement with a few gaps, a binary
// flag and a one-decimal level.
func table(t *testing.T, n int) *dataset.Frame {
	t.Helper()
	rnd := rand.New(rand.NewSource(7))
	no := make([]float64, n)
	load := make([]float64, n)
	flag := make([]float64, n)
	level := make([]float64, n)
	for i := range n {
		no[i] = float64(i + 1)
		center := 10.0
		if i%2 == 1 {
			center = 50
		}
		load[i] = stats.Round(center+rnd.NormFloat64(), 2)
		if i%10 == 3 {
			load[i] = math.NaN()
		}
		flag[i] = float64(i % 2)
		level[i] = stats.Round(20+rnd.Float64()*60, 1)
	}
	f, err := dataset.FromColumns(
		[]string{"No.", "Load", "Flag", "Level"},
		[][]float64{no, load, flag, level},
	)
	require.NoError(t, err)
	return f
}

func smallSynth(meta *Metadata) *Synthesizer {
	return NewSynthesizer(meta,
		WithEpochs(20),
		WithBatchSize(500),
		WithEmbeddingDim(8),
		WithGeneratorDims(16, 16),
		WithDiscriminatorDims(16, 16),
		WithLearningRate(1e-3),
		WithSeed(42),
	)
}

func TestDetectMetadata(t *testing.T) {
	meta := DetectMetadata(table(t, 60))

	types := map[string]SDType{}
	for _, c := range meta.Columns {
		types[c.Name] = c.SDType
	}
	assert.Equal(t, SDTypeID, types["No."])
	assert.Equal(t, SDTypeNumerical, types["Load"])
	assert.Equal(t, SDTypeCategorical, types["Flag"])
	assert.Equal(t, SDTypeNumerical, types["Level"])
	assert.Equal(t, "No.", meta.PrimaryKey)

	load, ok := meta.Column("Load")
	require.True(t, ok)
	assert.InDelta(t, 0.1, load.NullRatio, 1e-12)
	assert.Equal(t, 2, load.Decimals)

	flag, _ := meta.Column("Flag")
	assert.Equal(t, []float64{0, 1}, flag.Categories)
}

func TestUpdateColumn(t *testing.T) {
	meta := DetectMetadata(table(t, 60))
	require.NoError(t, meta.UpdateColumn("No.", SDTypeNumerical))
	assert.Empty(t, meta.PrimaryKey)
	require.NoError(t, meta.UpdateColumn("No.", SDTypeID))
	assert.Equal(t, "No.", meta.PrimaryKey)

	assert.Error(t, meta.UpdateColumn("missing", SDTypeID))
	assert.Error(t, meta.UpdateColumn("Load", SDType("text")))
}

func TestMetadataYAMLRoundTrip(t *testing.T) {
	meta := DetectMetadata(table(t, 60))
	path := filepath.Join(t.TempDir(), "out.csv.metadata.yaml")
	require.NoError(t, meta.SaveYAML(path))

	back, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, meta, back)
}

func TestTransformerFindsModes(t *testing.T) {
	f := table(t, 100)
	meta := DetectMetadata(f)
	tr := NewDataTransformer(42)
	require.NoError(t, tr.Fit(f, meta))

	require.Len(t, tr.columns, 3)
	assert.GreaterOrEqual(t, len(tr.columns[0].modes), 2)
	assert.LessOrEqual(t, len(tr.columns[0].modes), defaultMaxModes)
	assert.Len(t, tr.columns[1].cats, 2)

	enc, err := tr.Transform(f)
	require.NoError(t, err)
	rows, width := enc.Dims()
	assert.Equal(t, 100, rows)
	assert.Equal(t, tr.Width(), width)

	// decoding the encoding recovers the (clipped, rounded) values
	dec := tr.Inverse(enc)
	assert.Equal(t, f.Column("Flag"), dec["Flag"])
	for i, v := range f.Column("Level") {
		assert.InDelta(t, v, dec["Level"][i], 0.051)
	}
}

func TestSampleBeforeFit(t *testing.T) {
	s := smallSynth(DetectMetadata(table(t, 20)))
	_, err := s.Sample(5)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestSynthesizerSamplesRespectObservedBounds(t *testing.T) {
	f := table(t, 60)
	meta := DetectMetadata(f)
	s := smallSynth(meta)
	require.NoError(t, s.Fit(context.Background(), f))

	out, err := s.Sample(40)
	require.NoError(t, err)
	assert.Equal(t, 40, out.Len())
	assert.Equal(t, f.Names(), out.Names())

	for i, id := range out.Column("No.") {
		assert.Equal(t, float64(i), id)
	}
	for _, v := range out.Column("Flag") {
		assert.Contains(t, []float64{0, 1}, v)
	}
	for _, name := range []string{"Load", "Level"} {
		cm, _ := meta.Column(name)
		for _, v := range out.Column(name) {
			if math.IsNaN(v) {
				continue
			}
			assert.GreaterOrEqual(t, v, cm.Min)
			assert.LessOrEqual(t, v, cm.Max)
			assert.Equal(t, stats.Round(v, cm.Decimals), v)
		}
	}
}

func TestSynthesizerIsReproducible(t *testing.T) {
	f := table(t, 40)
	a := smallSynth(DetectMetadata(f))
	b := smallSynth(DetectMetadata(f))
	require.NoError(t, a.Fit(context.Background(), f))
	require.NoError(t, b.Fit(context.Background(), f))

	sa, err := a.Sample(10)
	require.NoError(t, err)
	sb, err := b.Sample(10)
	require.NoError(t, err)
	assert.Equal(t, sa.Column("Level"), sb.Column("Level"))
}

func TestFitHonoursContext(t *testing.T) {
	f := table(t, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := smallSynth(DetectMetadata(f))
	assert.ErrorIs(t, s.Fit(ctx, f), context.Canceled)
	_, err := s.Sample(3)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestOptimizerSelection(t *testing.T) {
	f := table(t, 20)
	s := NewSynthesizer(DetectMetadata(f), WithOptimizer("rmsprop"), WithEpochs(1))
	assert.Error(t, s.Fit(context.Background(), f))

	s = NewSynthesizer(DetectMetadata(f), WithOptimizer("sgd"), WithEpochs(2),
		WithEmbeddingDim(4), WithGeneratorDims(8), WithDiscriminatorDims(8))
	require.NoError(t, s.Fit(context.Background(), f))
}
