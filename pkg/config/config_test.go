package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 1000, cfg.Generate.Epochs)
	assert.Equal(t, 215, cfg.Generate.Rows)
	assert.Equal(t, []int{256, 256}, cfg.Generate.GeneratorDims)
	assert.Equal(t, 0.3, cfg.Classify.TestSize)
	assert.Equal(t, 300, cfg.Visualize.DPI)
	assert.Equal(t, "gini", cfg.Classify.Criterion)
	assert.True(t, cfg.Classify.Bootstrap)
	assert.Equal(t, 0, cfg.Classify.MaxFeatures)
	assert.Equal(t, 1, cfg.Classify.MinSamplesLeaf)
	assert.Equal(t, "pdf", cfg.Validate.Format)

	list := cfg.DatasetList()
	require.Len(t, list, 2)
	assert.Equal(t, "FC", list[0].Name)
	assert.True(t, list[0].DeriveFeatures)
	assert.Equal(t, "HI", list[1].Name)
	assert.Equal(t, "Dados Fis HI.csv", list[1].Real)
	assert.False(t, list[1].DeriveFeatures)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trafo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir: /data
classify:
  criterion: entropy
  bootstrap: false
generate:
  epochs: 50
  generator_dims: [64]
datasets:
  hi:
    real: other.csv
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Generate.Epochs)
	assert.Equal(t, "entropy", cfg.Classify.Criterion)
	assert.False(t, cfg.Classify.Bootstrap)
	assert.Equal(t, 100, cfg.Classify.NEstimators)
	assert.Equal(t, []int{64}, cfg.Generate.GeneratorDims)
	assert.Equal(t, 215, cfg.Generate.Rows)
	assert.Equal(t, "other.csv", cfg.Datasets["hi"].Real)
	assert.Equal(t, "HI", cfg.Datasets["hi"].Name)
	assert.Equal(t, filepath.Join("/data", "x.csv"), cfg.Path("x.csv"))
}

func TestLoadRejectsBadValues(t *testing.T) {
	v := viper.New()
	v.Set("classify.test_size", 1.5)
	_, err := Load(v, "")
	assert.ErrorContains(t, err, "test_size")

	v = viper.New()
	v.Set("classify.criterion", "mse")
	v.Set("validate.format", "jpeg")
	_, err = Load(v, "")
	assert.ErrorContains(t, err, "classify.criterion")
	assert.ErrorContains(t, err, "validate.format")

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
