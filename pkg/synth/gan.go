// Package synth learns a generative adversarial model of a numeric table and
// samples synthetic rows from it.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"trafo/pkg/dataset"
	"trafo/pkg/nn"
	"trafo/pkg/optim"
)

// ErrNotFitted is returned by Sample before a successful Fit.
var ErrNotFitted = errors.New("synth: synthesizer is not fitted")

const leakySlope = 0.2

// Synthesizer is a conditional-free table GAN: a generator maps Gaussian noise
// to encoded rows and a discriminator scores rows as real or generated.
type Synthesizer struct {
	Epochs            int
	BatchSize         int
	EmbeddingDim      int
	GeneratorDims     []int
	DiscriminatorDims []int
	LearningRate      float64
	Beta1, Beta2      float64
	Optimizer         string // "adam" (default) or "sgd"
	Seed              int64
	Logger            *slog.Logger

	metadata    *Metadata
	names       []string
	transformer *DataTransformer
	generator   *nn.Sequential
	rnd         *rand.Rand
	fitted      bool
}

// Option functional config
type Option func(*Synthesizer)

func WithEpochs(n int) Option       { return func(s *Synthesizer) { s.Epochs = n } }
func WithBatchSize(n int) Option    { return func(s *Synthesizer) { s.BatchSize = n } }
func WithEmbeddingDim(n int) Option { return func(s *Synthesizer) { s.EmbeddingDim = n } }
func WithGeneratorDims(dims ...int) Option {
	return func(s *Synthesizer) { s.GeneratorDims = dims }
}
func WithDiscriminatorDims(dims ...int) Option {
	return func(s *Synthesizer) { s.DiscriminatorDims = dims }
}
func WithLearningRate(lr float64) Option    { return func(s *Synthesizer) { s.LearningRate = lr } }
func WithOptimizer(name string) Option      { return func(s *Synthesizer) { s.Optimizer = name } }
func WithSeed(seed int64) Option            { return func(s *Synthesizer) { s.Seed = seed } }
func WithLogger(logger *slog.Logger) Option { return func(s *Synthesizer) { s.Logger = logger } }

// NewSynthesizer returns a synthesizer for tables described by meta.
func NewSynthesizer(meta *Metadata, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		Epochs:            1000,
		BatchSize:         500,
		EmbeddingDim:      128,
		GeneratorDims:     []int{256, 256},
		DiscriminatorDims: []int{256, 256},
		LearningRate:      2e-4,
		Beta1:             0.5,
		Beta2:             0.9,
		Optimizer:         "adam",
		Seed:              42,
		metadata:          meta,
	}
	for _, o := range opts {
		o(s)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Metadata returns the table description the synthesizer was built with.
func (s *Synthesizer) Metadata() *Metadata { return s.metadata }

func (s *Synthesizer) newOptimizer() (optim.Optimizer, error) {
	switch s.Optimizer {
	case "", "adam":
		return optim.NewAdam(s.LearningRate, optim.WithBetas(s.Beta1, s.Beta2), optim.WithWeightDecay(1e-6)), nil
	case "sgd":
		return optim.NewSGD(s.LearningRate), nil
	default:
		return nil, fmt.Errorf("synth: unknown optimizer %q", s.Optimizer)
	}
}

// Fit trains generator and discriminator on f. The context is checked
// between epochs.
func (s *Synthesizer) Fit(ctx context.Context, f *dataset.Frame) error {
	if f.Len() == 0 {
		return errors.New("synth: empty frame")
	}
	if s.Epochs <= 0 || s.BatchSize <= 0 || s.EmbeddingDim <= 0 {
		return errors.New("synth: epochs, batch size and embedding dim must be positive")
	}
	s.fitted = false
	s.rnd = rand.New(rand.NewSource(s.Seed))
	s.names = f.Names()

	s.transformer = NewDataTransformer(s.Seed)
	if err := s.transformer.Fit(f, s.metadata); err != nil {
		return err
	}
	data, err := s.transformer.Transform(f)
	if err != nil {
		return err
	}
	width := s.transformer.Width()

	s.generator = nn.MLP(s.EmbeddingDim, s.GeneratorDims, width, func() nn.Layer { return nn.NewReLU() }, s.rnd)
	s.generator.Layers = append(s.generator.Layers, nn.NewSpanActivation(s.transformer.Spans()))
	discriminator := nn.MLP(width, s.DiscriminatorDims, 1, func() nn.Layer { return nn.NewLeakyReLU(leakySlope) }, s.rnd)

	optG, err := s.newOptimizer()
	if err != nil {
		return err
	}
	optD, err := s.newOptimizer()
	if err != nil {
		return err
	}
	gValues, gGrads := split(s.generator.Params())
	dValues, dGrads := split(discriminator.Params())

	n := f.Len()
	batch := min(s.BatchSize, n)
	steps := max(1, n/batch)
	realLabels := constant(2*batch, 0)
	for i := range batch {
		realLabels[i] = 1
	}
	ones := constant(batch, 1)

	s.Logger.Info("training synthesizer",
		"rows", n, "encoded_width", width, "epochs", s.Epochs, "batch", batch)

	for epoch := range s.Epochs {
		if err := ctx.Err(); err != nil {
			return err
		}
		var dLoss, gLoss float64
		for range steps {
			// discriminator: real rows labelled 1, generated rows 0
			realRows := s.realBatch(data, batch)
			fake := s.generator.Forward(s.noise(batch))
			var x mat.Dense
			x.Stack(realRows, fake)
			logits := discriminator.Forward(&x)
			var grad []float64
			dLoss, grad = nn.BCEWithLogits(realLabels, nn.Column(logits, 0))
			discriminator.Backward(nn.FromColumn(grad))
			optD.Step(dValues, dGrads)

			// generator: non-saturating loss, labels flipped to 1
			fake = s.generator.Forward(s.noise(batch))
			logits = discriminator.Forward(fake)
			gLoss, grad = nn.BCEWithLogits(ones, nn.Column(logits, 0))
			s.generator.Backward(discriminator.Backward(nn.FromColumn(grad)))
			optG.Step(gValues, gGrads)
		}
		if (epoch+1)%100 == 0 || epoch == 0 {
			s.Logger.Debug("epoch", "epoch", epoch+1, "loss_d", dLoss, "loss_g", gLoss)
		}
		if math.IsNaN(dLoss) || math.IsNaN(gLoss) {
			return fmt.Errorf("synth: training diverged at epoch %d", epoch+1)
		}
	}
	s.fitted = true
	return nil
}

// Sample draws n synthetic rows with the columns of the training frame.
// Id columns are numbered 0..n-1 and missing values reappear at the observed
// null ratio.
func (s *Synthesizer) Sample(n int) (*dataset.Frame, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}
	if n <= 0 {
		return nil, errors.New("synth: number of rows must be positive")
	}
	decoded := s.transformer.Inverse(s.generator.Forward(s.noise(n)))

	cols := make([][]float64, len(s.names))
	for j, name := range s.names {
		cm, ok := s.metadata.Column(name)
		if ok && cm.SDType == SDTypeID {
			ids := make([]float64, n)
			for i := range ids {
				ids[i] = float64(i)
			}
			cols[j] = ids
			continue
		}
		values := decoded[name]
		if ok && cm.NullRatio > 0 {
			for i := range values {
				if s.rnd.Float64() < cm.NullRatio {
					values[i] = math.NaN()
				}
			}
		}
		cols[j] = values
	}
	return dataset.FromColumns(s.names, cols)
}

func (s *Synthesizer) noise(n int) *mat.Dense {
	z := make([]float64, n*s.EmbeddingDim)
	for i := range z {
		z[i] = s.rnd.NormFloat64()
	}
	return mat.NewDense(n, s.EmbeddingDim, z)
}

func (s *Synthesizer) realBatch(data *mat.Dense, batch int) *mat.Dense {
	n, w := data.Dims()
	out := mat.NewDense(batch, w, nil)
	for i, r := range s.rnd.Perm(n)[:batch] {
		out.SetRow(i, data.RawRowView(r))
	}
	return out
}

func split(params []nn.Param) (values, grads [][]float64) {
	for _, p := range params {
		values = append(values, p.Value)
		grads = append(grads, p.Grad)
	}
	return values, grads
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
