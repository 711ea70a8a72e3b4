package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trafo/pkg/config"
	"trafo/pkg/dataset"
	"trafo/pkg/plots"
	"trafo/pkg/stats"
	"trafo/pkg/translate"
)

// ValidateResult lists the chart files written and the datasets skipped.
type ValidateResult struct {
	Files   []string
	Skipped []string
}

// Validate plots the distribution of every column of the synthetic tables,
// one file per column in the configured format (PDF by default). It fails
// with ErrNoInput when no synthetic table could be read.
func Validate(ctx context.Context, env *Env) (*ValidateResult, error) {
	cfg := env.Config
	outDir := cfg.Path(cfg.Validate.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	res := &ValidateResult{}
	type loaded struct {
		ds config.Dataset
		f  *dataset.Frame
	}
	var inputs []loaded
	for _, ds := range cfg.DatasetList() {
		path := cfg.Path(ds.Synthetic)
		f, err := env.load(path, dataset.WithoutRowNumber())
		switch {
		case errors.Is(err, dataset.ErrNotFound):
			env.printf("Erro: Arquivo não encontrado. Verifique se os arquivos CSV estão na pasta '%s'. Detalhes: %v\n", cfg.Dir, err)
		case err != nil:
			env.printf("Erro: Falha ao ler o arquivo '%s'. Detalhes: %v\n", path, err)
		}
		if err != nil {
			env.logger().Warn("dataset skipped", "dataset", ds.Name, "error", err)
			res.Skipped = append(res.Skipped, ds.Name)
			continue
		}
		inputs = append(inputs, loaded{ds: ds, f: f})
	}
	if len(inputs) == 0 {
		return res, ErrNoInput
	}
	env.printf("Arquivos de dados sintéticos finais carregados com sucesso.\n")
	env.printf("Dados carregados de: %s\n", cfg.Dir)

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := in.ds.Name + cfg.Validate.Suffix
		env.printf("\n--- Gerando gráficos individuais para: %s ---\n", name)

		for _, col := range in.f.Names() {
			values := in.f.Column(col)
			if len(stats.DropNaN(values)) == 0 {
				continue
			}
			display := translate.DisplayName(col)
			p, err := plots.Histogram(values, cfg.Validate.Bins, display, frequencyLabel)
			if err != nil {
				env.logger().Error("plot failed", "dataset", name, "column", col, "error", err)
				continue
			}
			file := fmt.Sprintf("dist_%s_%s.%s", strings.ToLower(name), translate.SafeFileName(display), cfg.Validate.Format)
			path := filepath.Join(outDir, file)
			if err := plots.Save(p, plots.FigureSize, cfg.Validate.DPI, path); err != nil {
				env.logger().Error("plot failed", "dataset", name, "column", col, "error", err)
				continue
			}
			res.Files = append(res.Files, path)
			env.printf(" → Gráfico salvo em: %s\n", path)
		}
	}

	env.printf("\n--- Geração de gráficos individuais concluída ---\n")
	env.printf("Todos os arquivos .%s foram salvos em: %s\n", cfg.Validate.Format, outDir)
	return res, nil
}
