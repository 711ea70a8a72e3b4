// Package config holds the run settings. Every value has a default, so the
// tool runs without a config file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
)

// Dataset names one real table and its synthetic counterpart.
type Dataset struct {
	Name           string `mapstructure:"name"`
	Real           string `mapstructure:"real"`
	Synthetic      string `mapstructure:"synthetic"`
	DeriveFeatures bool   `mapstructure:"derive_features"`
}

type VisualizeSettings struct {
	OutputDir string `mapstructure:"output_dir"`
	DPI       int    `mapstructure:"dpi"`
	Bins      int    `mapstructure:"bins"`
}

type GenerateSettings struct {
	Epochs            int     `mapstructure:"epochs"`
	Rows              int     `mapstructure:"rows"`
	BatchSize         int     `mapstructure:"batch_size"`
	EmbeddingDim      int     `mapstructure:"embedding_dim"`
	GeneratorDims     []int   `mapstructure:"generator_dims"`
	DiscriminatorDims []int   `mapstructure:"discriminator_dims"`
	LearningRate      float64 `mapstructure:"learning_rate"`
	Optimizer         string  `mapstructure:"optimizer"`
	IDColumn          string  `mapstructure:"id_column"`
}

type ClassifySettings struct {
	TestSize       float64 `mapstructure:"test_size"`
	NEstimators    int     `mapstructure:"n_estimators"`
	Criterion      string  `mapstructure:"criterion"`
	MaxDepth       int     `mapstructure:"max_depth"`    // 0 grows until leaves are pure
	MaxFeatures    int     `mapstructure:"max_features"` // 0 uses sqrt of the column count
	MinSamplesLeaf int     `mapstructure:"min_samples_leaf"`
	Bootstrap      bool    `mapstructure:"bootstrap"`
	SMOTENeighbors int     `mapstructure:"smote_neighbors"`
	DPI            int     `mapstructure:"dpi"`
}

type ValidateSettings struct {
	OutputDir string `mapstructure:"output_dir"`
	Suffix    string `mapstructure:"suffix"`
	Bins      int    `mapstructure:"bins"`
	Format    string `mapstructure:"format"` // pdf, svg or png
	DPI       int    `mapstructure:"dpi"`    // png only
}

// Config is the full set of run settings.
type Config struct {
	Dir       string             `mapstructure:"dir"`
	Seed      int64              `mapstructure:"seed"`
	LogLevel  string             `mapstructure:"log_level"`
	LogFormat string             `mapstructure:"log_format"`
	LogFile   string             `mapstructure:"log_file"`
	Datasets  map[string]Dataset `mapstructure:"datasets"`
	Visualize VisualizeSettings  `mapstructure:"visualize"`
	Generate  GenerateSettings   `mapstructure:"generate"`
	Classify  ClassifySettings   `mapstructure:"classify"`
	Validate  ValidateSettings   `mapstructure:"validate"`
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dir", ".")
	v.SetDefault("seed", 42)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")

	v.SetDefault("datasets.fc.name", "FC")
	v.SetDefault("datasets.fc.real", "Dados Fis FC.csv")
	v.SetDefault("datasets.fc.synthetic", "Dados_FC_Sinteticos_Final.csv")
	v.SetDefault("datasets.fc.derive_features", true)
	v.SetDefault("datasets.hi.name", "HI")
	v.SetDefault("datasets.hi.real", "Dados Fis HI.csv")
	v.SetDefault("datasets.hi.synthetic", "Dados_HI_Sinteticos_Final.csv")
	v.SetDefault("datasets.hi.derive_features", false)

	v.SetDefault("visualize.output_dir", "visualizacoes")
	v.SetDefault("visualize.dpi", 300)
	v.SetDefault("visualize.bins", 20)

	v.SetDefault("generate.epochs", 1000)
	v.SetDefault("generate.rows", 215)
	v.SetDefault("generate.batch_size", 500)
	v.SetDefault("generate.embedding_dim", 128)
	v.SetDefault("generate.generator_dims", []int{256, 256})
	v.SetDefault("generate.discriminator_dims", []int{256, 256})
	v.SetDefault("generate.learning_rate", 2e-4)
	v.SetDefault("generate.optimizer", "adam")
	v.SetDefault("generate.id_column", "No.")

	v.SetDefault("classify.test_size", 0.3)
	v.SetDefault("classify.n_estimators", 100)
	v.SetDefault("classify.criterion", "gini")
	v.SetDefault("classify.max_depth", 0)
	v.SetDefault("classify.max_features", 0)
	v.SetDefault("classify.min_samples_leaf", 1)
	v.SetDefault("classify.bootstrap", true)
	v.SetDefault("classify.smote_neighbors", 5)
	v.SetDefault("classify.dpi", 100)

	v.SetDefault("validate.output_dir", "visualizacoes_pt")
	v.SetDefault("validate.suffix", "_Final")
	v.SetDefault("validate.bins", 20)
	v.SetDefault("validate.format", "pdf")
	v.SetDefault("validate.dpi", 300)
}

// Load applies defaults, reads file when it is not empty and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in settings.
func Default() *Config {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Check validates value ranges.
func (c *Config) Check() error {
	var errs []error
	if len(c.Datasets) == 0 {
		errs = append(errs, errors.New("no datasets configured"))
	}
	for key, ds := range c.Datasets {
		if ds.Name == "" {
			errs = append(errs, fmt.Errorf("datasets.%s.name is empty", key))
		}
	}
	if c.Visualize.DPI <= 0 || c.Classify.DPI <= 0 || c.Validate.DPI <= 0 {
		errs = append(errs, errors.New("dpi must be positive"))
	}
	if c.Visualize.Bins <= 0 || c.Validate.Bins <= 0 {
		errs = append(errs, errors.New("bins must be positive"))
	}
	g := c.Generate
	if g.Epochs <= 0 || g.Rows <= 0 || g.BatchSize <= 0 || g.EmbeddingDim <= 0 {
		errs = append(errs, errors.New("generate: epochs, rows, batch_size and embedding_dim must be positive"))
	}
	if g.LearningRate <= 0 {
		errs = append(errs, errors.New("generate.learning_rate must be positive"))
	}
	if c.Classify.TestSize <= 0 || c.Classify.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("classify.test_size %.2f outside (0, 1)", c.Classify.TestSize))
	}
	if c.Classify.NEstimators <= 0 || c.Classify.SMOTENeighbors <= 0 || c.Classify.MinSamplesLeaf <= 0 {
		errs = append(errs, errors.New("classify: n_estimators, smote_neighbors and min_samples_leaf must be positive"))
	}
	if c.Classify.MaxDepth < 0 || c.Classify.MaxFeatures < 0 {
		errs = append(errs, errors.New("classify: max_depth and max_features must not be negative"))
	}
	switch c.Classify.Criterion {
	case "gini", "entropy":
	default:
		errs = append(errs, fmt.Errorf("classify.criterion %q is not gini or entropy", c.Classify.Criterion))
	}
	switch c.Validate.Format {
	case "pdf", "svg", "png":
	default:
		errs = append(errs, fmt.Errorf("validate.format %q is not pdf, svg or png", c.Validate.Format))
	}
	return errors.Join(errs...)
}

// DatasetList returns the datasets ordered by key (fc before hi).
func (c *Config) DatasetList() []Dataset {
	keys := make([]string, 0, len(c.Datasets))
	for k := range c.Datasets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Dataset, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.Datasets[k])
	}
	return out
}

// Path resolves name against the base directory.
func (c *Config) Path(name ...string) string {
	return filepath.Join(append([]string{c.Dir}, name...)...)
}
