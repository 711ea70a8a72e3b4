package plots

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"trafo/pkg/stats"
)

// ErrNoValues is returned when a column has nothing to draw.
var ErrNoValues = errors.New("plots: no values")

const kdePoints = 200

var histFill = color.NRGBA{R: Primary.R, G: Primary.G, B: Primary.B, A: 0xbf}

// Histogram draws a bins-bar histogram of the non-NaN values with a Gaussian
// KDE curve scaled to counts.
func Histogram(values []float64, bins int, xLabel, yLabel string) (*plot.Plot, error) {
	data := stats.DropNaN(values)
	if len(data) == 0 {
		return nil, ErrNoValues
	}

	p := newPlot()
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	h, err := histogram(data, bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = histFill
	h.LineStyle.Color = Primary
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)

	if k := stats.NewKDE(data); k != nil && len(h.Bins) > 0 {
		width := h.Bins[0].Max - h.Bins[0].Min
		scale := float64(len(data)) * width
		xs, ys := k.Curve(kdePoints)
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = xs[i]
			pts[i].Y = ys[i] * scale
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = Primary
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
	}
	return p, nil
}

// histogram bins data; a constant column gets one unit-wide bar.
func histogram(data []float64, bins int) (*plotter.Histogram, error) {
	lo, hi, _ := stats.MinMax(data)
	if lo < hi {
		return plotter.NewHist(plotter.Values(data), bins)
	}
	return &plotter.Histogram{
		Bins:      []plotter.HistogramBin{{Min: lo - 0.5, Max: lo + 0.5, Weight: float64(len(data))}},
		Width:     1,
		LineStyle: plotter.DefaultLineStyle,
	}, nil
}

// BoxPlot draws a single vertical box of the non-NaN values.
func BoxPlot(values []float64, yLabel string) (*plot.Plot, error) {
	data := stats.DropNaN(values)
	if len(data) == 0 {
		return nil, ErrNoValues
	}

	p := newPlot()
	p.Y.Label.Text = yLabel

	b, err := plotter.NewBoxPlot(vg.Points(80), 0, plotter.Values(data))
	if err != nil {
		return nil, err
	}
	b.FillColor = histFill
	b.BoxStyle.Color = Text
	b.MedianStyle.Color = Text
	b.WhiskerStyle.Color = Text
	p.Add(b)
	p.HideX()
	return p, nil
}
