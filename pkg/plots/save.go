// Package plots renders the distribution and importance charts.
package plots

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	// Primary is the fill colour of every chart (#003366).
	Primary = color.RGBA{R: 0x00, G: 0x33, B: 0x66, A: 0xff}
	// Text is the colour of labels and ticks.
	Text = color.Black
)

// Size is a figure size in inches.
type Size struct {
	Width, Height vg.Length
}

var (
	FigureSize     = Size{6 * vg.Inch, 4 * vg.Inch}
	ImportanceSize = Size{12 * vg.Inch, 8 * vg.Inch}
)

// Save writes p to path. The format follows the extension; PNG files are
// rasterised at dpi.
func Save(p *plot.Plot, size Size, dpi int, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		if err := p.Save(size.Width, size.Height, path); err != nil {
			return fmt.Errorf("plots: save %s: %w", path, err)
		}
		return nil
	}
	if dpi <= 0 {
		return errors.New("plots: dpi must be positive")
	}

	c := vgimg.NewWith(vgimg.UseWH(size.Width, size.Height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("plots: encode %s: %w", path, err)
	}
	return f.Close()
}

func newPlot() *plot.Plot {
	p := plot.New()
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Label.TextStyle.Color = Text
		a.Tick.Label.Color = Text
		a.LineStyle.Color = Text
	}
	return p
}
