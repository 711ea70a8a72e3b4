package synth

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"trafo/pkg/dataprep"
	"trafo/pkg/dataset"
	"trafo/pkg/stats"
)

// SDType is the semantic type of a column.
type SDType string

const (
	SDTypeID          SDType = "id"
	SDTypeCategorical SDType = "categorical"
	SDTypeNumerical   SDType = "numerical"
)

const maxDecimals = 6

var idName = regexp.MustCompile(`(?i)^(id|no\.?|.*_id)$`)

// ColumnMeta records what the synthesizer needs to know about one column.
type ColumnMeta struct {
	Name       string    `yaml:"name"`
	SDType     SDType    `yaml:"sdtype"`
	Min        float64   `yaml:"min"`
	Max        float64   `yaml:"max"`
	Decimals   int       `yaml:"decimals"`
	NullRatio  float64   `yaml:"null_ratio"`
	Categories []float64 `yaml:"categories,omitempty"`
}

// Metadata describes a table, columns in frame order.
type Metadata struct {
	Columns    []ColumnMeta `yaml:"columns"`
	PrimaryKey string       `yaml:"primary_key,omitempty"`
}

// DetectMetadata infers column types and observed ranges from a frame.
func DetectMetadata(f *dataset.Frame) *Metadata {
	m := &Metadata{}
	for j, name := range f.Names() {
		col := f.ColumnAt(j)
		cm := ColumnMeta{Name: name, SDType: detectType(name, col)}

		values := stats.DropNaN(col)
		if lo, hi, ok := stats.MinMax(values); ok {
			cm.Min, cm.Max = lo, hi
		}
		for _, v := range values {
			cm.Decimals = max(cm.Decimals, stats.Decimals(v, maxDecimals))
		}
		if len(col) > 0 {
			cm.NullRatio = float64(len(col)-len(values)) / float64(len(col))
		}
		if cm.SDType == SDTypeCategorical {
			cm.Categories = dataprep.Categories(col)
		}
		if cm.SDType == SDTypeID && m.PrimaryKey == "" {
			m.PrimaryKey = name
		}
		m.Columns = append(m.Columns, cm)
	}
	return m
}

func detectType(name string, col []float64) SDType {
	values := stats.DropNaN(col)
	integral := len(values) > 0
	for _, v := range values {
		if v != math.Trunc(v) {
			integral = false
			break
		}
	}
	if !integral {
		return SDTypeNumerical
	}

	distinct := len(stats.Unique(values))
	if idName.MatchString(strings.TrimSpace(name)) && distinct == len(col) {
		return SDTypeID
	}
	if len(col) > 5 && (float64(distinct)/float64(len(col)) <= 0.05 || distinct <= 2) {
		return SDTypeCategorical
	}
	return SDTypeNumerical
}

// Column returns the metadata of the named column.
func (m *Metadata) Column(name string) (*ColumnMeta, bool) {
	for i := range m.Columns {
		if m.Columns[i].Name == name {
			return &m.Columns[i], true
		}
	}
	return nil, false
}

// UpdateColumn overrides the detected type of a column.
func (m *Metadata) UpdateColumn(name string, sdtype SDType) error {
	cm, ok := m.Column(name)
	if !ok {
		return fmt.Errorf("synth: unknown column %q", name)
	}
	switch sdtype {
	case SDTypeID, SDTypeCategorical, SDTypeNumerical:
	default:
		return fmt.Errorf("synth: unknown sdtype %q", sdtype)
	}
	cm.SDType = sdtype
	if sdtype == SDTypeID {
		m.PrimaryKey = name
	} else if m.PrimaryKey == name {
		m.PrimaryKey = ""
	}
	return nil
}

// SaveYAML writes the metadata to path.
func (m *Metadata) SaveYAML(path string) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("synth: encode metadata: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadMetadata reads metadata written by SaveYAML.
func LoadMetadata(path string) (*Metadata, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Metadata{}
	if err := yaml.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("synth: decode metadata: %w", err)
	}
	return m, nil
}
