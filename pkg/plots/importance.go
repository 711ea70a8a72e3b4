package plots

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Importance is one feature and its score.
type Importance struct {
	Name  string
	Value float64
}

// SortedImportances pairs names with values, highest first. Ties keep input order.
func SortedImportances(names []string, values []float64) ([]Importance, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("plots: %d names for %d importances", len(names), len(values))
	}
	out := make([]Importance, len(names))
	for i := range names {
		out[i] = Importance{Name: names[i], Value: values[i]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
	return out, nil
}

// ImportanceChart draws horizontal bars, the first entry on top.
func ImportanceChart(items []Importance, title string) (*plot.Plot, error) {
	if len(items) == 0 {
		return nil, errors.New("plots: no importances")
	}

	p := newPlot()
	p.Title.Text = title
	p.Title.TextStyle.Color = Text
	p.X.Label.Text = "Nível de Importância"
	p.Y.Label.Text = "Feature"
	p.X.Min = 0

	colors := palette.Heat(len(items)+1, 1).Colors()
	labels := make([]string, len(items))
	for i, it := range items {
		// bottom to top
		pos := len(items) - 1 - i
		labels[pos] = it.Name

		b, err := plotter.NewBarChart(plotter.Values{it.Value}, vg.Points(14))
		if err != nil {
			return nil, err
		}
		b.Horizontal = true
		b.XMin = float64(pos)
		b.Color = colors[i]
		b.LineStyle.Width = 0
		p.Add(b)
	}
	p.NominalY(labels...)
	return p, nil
}
