package dataset

import (
	"errors"
	"fmt"
	"math"
)

// Frame is an ordered set of named numeric columns of equal length.
// Missing cells are stored as NaN.
type Frame struct {
	names []string
	cols  [][]float64
	index map[string]int
}

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{index: map[string]int{}}
}

// FromColumns builds a frame from column names and column-major data.
// The slices are used as is, not copied.
func FromColumns(names []string, cols [][]float64) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, errors.New("dataset: names and columns length mismatch")
	}
	f := NewFrame()
	for j, name := range names {
		if err := f.AddColumn(name, cols[j]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return len(f.cols[0])
}

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.names) }

// Names returns a copy of the column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Has reports whether the frame has a column with the given name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the values of the named column, or nil if absent.
// The returned slice aliases the frame.
func (f *Frame) Column(name string) []float64 {
	j, ok := f.index[name]
	if !ok {
		return nil
	}
	return f.cols[j]
}

// ColumnAt returns the values of the j-th column.
func (f *Frame) ColumnAt(j int) []float64 { return f.cols[j] }

// AddColumn appends a column. Its length must match the existing rows.
func (f *Frame) AddColumn(name string, values []float64) error {
	if _, ok := f.index[name]; ok {
		return fmt.Errorf("dataset: duplicate column %q", name)
	}
	if len(f.cols) > 0 && len(values) != f.Len() {
		return fmt.Errorf("dataset: column %q has %d rows, frame has %d", name, len(values), f.Len())
	}
	f.index[name] = len(f.names)
	f.names = append(f.names, name)
	f.cols = append(f.cols, values)
	return nil
}

// SetColumn replaces or appends the named column.
func (f *Frame) SetColumn(name string, values []float64) error {
	j, ok := f.index[name]
	if !ok {
		return f.AddColumn(name, values)
	}
	if len(values) != f.Len() {
		return fmt.Errorf("dataset: column %q has %d rows, frame has %d", name, len(values), f.Len())
	}
	f.cols[j] = values
	return nil
}

// Drop removes the named columns in place. Unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keptNames := f.names[:0]
	keptCols := f.cols[:0]
	for j, n := range f.names {
		if _, ok := drop[n]; ok {
			continue
		}
		keptNames = append(keptNames, n)
		keptCols = append(keptCols, f.cols[j])
	}
	f.names, f.cols = keptNames, keptCols
	f.reindex()
}

// Select returns a new frame with the named columns in the given order.
func (f *Frame) Select(names []string) (*Frame, error) {
	out := NewFrame()
	for _, n := range names {
		col := f.Column(n)
		if col == nil {
			return nil, fmt.Errorf("dataset: unknown column %q", n)
		}
		c := make([]float64, len(col))
		copy(c, col)
		if err := out.AddColumn(n, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Rows returns a row-major copy of the data.
func (f *Frame) Rows() [][]float64 {
	n, p := f.Len(), f.Width()
	out := make([][]float64, n)
	for i := range n {
		row := make([]float64, p)
		for j := range p {
			row[j] = f.cols[j][i]
		}
		out[i] = row
	}
	return out
}

// Concat returns a new frame holding the rows of f followed by the rows of other.
// Both frames must have the same columns; other is matched by name.
func (f *Frame) Concat(other *Frame) (*Frame, error) {
	if other.Width() != f.Width() {
		return nil, errors.New("dataset: concat column count mismatch")
	}
	out := NewFrame()
	for j, n := range f.names {
		oc := other.Column(n)
		if oc == nil {
			return nil, fmt.Errorf("dataset: concat missing column %q", n)
		}
		c := make([]float64, 0, len(f.cols[j])+len(oc))
		c = append(c, f.cols[j]...)
		c = append(c, oc...)
		if err := out.AddColumn(n, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// HasNaN reports whether any cell is missing.
func (f *Frame) HasNaN() bool {
	for _, c := range f.cols {
		for _, v := range c {
			if math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}

// CommonColumns returns the names present in both frames, in the order of a.
func CommonColumns(a, b *Frame) []string {
	var out []string
	for _, n := range a.names {
		if b.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.names))
	for j, n := range f.names {
		f.index[n] = j
	}
}
