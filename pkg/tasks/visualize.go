package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trafo/pkg/dataset"
	"trafo/pkg/plots"
	"trafo/pkg/stats"
	"trafo/pkg/translate"
)

const frequencyLabel = "Frequência"

// VisualizeResult lists the images written and the datasets skipped.
type VisualizeResult struct {
	Files   []string
	Skipped []string
}

// Visualize draws a histogram with density curve and a boxplot for every
// column of each real dataset.
func Visualize(ctx context.Context, env *Env) (*VisualizeResult, error) {
	cfg := env.Config
	outDir := cfg.Path(cfg.Visualize.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	res := &VisualizeResult{}
	for _, ds := range cfg.DatasetList() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		log := env.logger().With("dataset", ds.Name)

		f, err := env.load(cfg.Path(ds.Real), dataset.WithoutRowNumber())
		switch {
		case errors.Is(err, dataset.ErrNotFound):
			env.printf("✗ ERRO: O arquivo '%s' não foi encontrado em '%s'.\n", ds.Real, cfg.Dir)
		case err != nil:
			env.printf("✗ ERRO ao ler '%s': %v\n", ds.Real, err)
		default:
			env.printf("✓ Arquivo '%s' carregado com sucesso.\n", ds.Real)
		}
		if err != nil {
			log.Warn("dataset skipped", "error", err)
			env.printf("\n--- Geração de gráficos para '%s' pulada (dados não carregados).\n", ds.Name)
			res.Skipped = append(res.Skipped, ds.Name)
			continue
		}

		env.printf("\n--- Gerando gráficos individuais para o dataset: %s ---\n", ds.Name)
		prefix := strings.ToLower(ds.Name)
		for _, col := range f.Names() {
			display, ok := translate.Lookup(col)
			if !ok {
				display = col
				log.Debug("column has no display name", "column", col)
			}
			safe := translate.SafeFileName(display)
			values := f.Column(col)
			if len(stats.DropNaN(values)) == 0 {
				continue
			}

			files, err := saveColumnPlots(values, display, filepath.Join(outDir, prefix), safe, cfg.Visualize.Bins, cfg.Visualize.DPI)
			res.Files = append(res.Files, files...)
			if err != nil {
				log.Error("plot failed", "column", col, "error", err)
				continue
			}
			env.printf(" ✓ Gráficos para '%s' salvos.\n", display)
		}
	}

	env.printf("\n--- Processo finalizado. Figuras salvas em: '%s' ---\n", outDir)
	return res, nil
}

// saveColumnPlots writes <base>_hist_<safe>.png and <base>_box_<safe>.png.
func saveColumnPlots(values []float64, display, base, safe string, bins, dpi int) ([]string, error) {
	var files []string
	hist, err := plots.Histogram(values, bins, display, frequencyLabel)
	if err != nil {
		return nil, err
	}
	histPath := fmt.Sprintf("%s_hist_%s.png", base, safe)
	if err := plots.Save(hist, plots.FigureSize, dpi, histPath); err != nil {
		return files, err
	}
	files = append(files, histPath)

	box, err := plots.BoxPlot(values, display)
	if err != nil {
		return files, err
	}
	boxPath := fmt.Sprintf("%s_box_%s.png", base, safe)
	if err := plots.Save(box, plots.FigureSize, dpi, boxPath); err != nil {
		return files, err
	}
	return append(files, boxPath), nil
}
