package tasks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"

	"trafo/pkg/config"
	"trafo/pkg/dataprep"
	"trafo/pkg/dataset"
	"trafo/pkg/synth"
)

const modelName = "CTGAN"

// GenerateResult lists the synthetic tables written and the datasets skipped.
type GenerateResult struct {
	Files   []string
	Skipped []string
}

// Generate trains one synthesizer per dataset and writes the sampled rows
// plus a metadata sidecar. A failing dataset is reported and skipped; only a
// cancelled context stops the run.
func Generate(ctx context.Context, env *Env) (*GenerateResult, error) {
	cfg := env.Config
	res := &GenerateResult{}

	for _, ds := range cfg.DatasetList() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		input := cfg.Path(ds.Real)
		env.printf("\n%s\n", banner(fmt.Sprintf("Processando: %s com %s", filepath.Base(input), modelName), 20))

		out, err := generateDataset(ctx, env, ds)
		switch {
		case ctx.Err() != nil:
			return res, ctx.Err()
		case errors.Is(err, dataset.ErrNotFound):
			env.printf("ERRO: Arquivo original não encontrado em '%s'. Pulando.\n", input)
		case err != nil:
			env.printf("Ocorreu um erro inesperado durante o processamento de %s: %v\n", filepath.Base(input), err)
		}
		if err != nil {
			env.logger().Error("generation failed", "dataset", ds.Name, "error", err)
			res.Skipped = append(res.Skipped, ds.Name)
			continue
		}
		res.Files = append(res.Files, out)
	}

	env.printf("\n--- Processo de Geração Finalizado ---\n")
	return res, nil
}

func generateDataset(ctx context.Context, env *Env, ds config.Dataset) (string, error) {
	cfg := env.Config
	log := env.logger().With("dataset", ds.Name)

	f, err := env.load(cfg.Path(ds.Real))
	if err != nil {
		return "", err
	}
	env.printf("Dados reais carregados com %d linhas e %d colunas.\n", f.Len(), f.Width())

	if ds.DeriveFeatures {
		env.printf("Adicionando features extras ao dataset %s original com lógica aprimorada...\n", ds.Name)
		err := dataprep.AddDerivedFeatures(f, rand.New(rand.NewSource(cfg.Seed)))
		switch {
		case errors.Is(err, dataprep.ErrNoFeatures):
			env.printf("Nenhuma feature encontrada para basear a lógica. Pulando adição de colunas.\n")
			log.Warn("derived features skipped", "error", err)
		case err != nil:
			return "", err
		default:
			env.printf("Novas features lógicas adicionadas. O shape para treino agora é: (%d, %d)\n", f.Len(), f.Width())
		}
	}

	meta := synth.DetectMetadata(f)
	if id := cfg.Generate.IDColumn; id != "" && f.Has(id) {
		if err := meta.UpdateColumn(id, synth.SDTypeID); err != nil {
			return "", err
		}
	}

	g := cfg.Generate
	s := synth.NewSynthesizer(meta,
		synth.WithEpochs(g.Epochs),
		synth.WithBatchSize(g.BatchSize),
		synth.WithEmbeddingDim(g.EmbeddingDim),
		synth.WithGeneratorDims(g.GeneratorDims...),
		synth.WithDiscriminatorDims(g.DiscriminatorDims...),
		synth.WithLearningRate(g.LearningRate),
		synth.WithOptimizer(g.Optimizer),
		synth.WithSeed(cfg.Seed),
		synth.WithLogger(log),
	)

	env.printf("Iniciando o treinamento do modelo... (Isso pode levar alguns minutos)\n")
	if err := s.Fit(ctx, f); err != nil {
		return "", fmt.Errorf("fit: %w", err)
	}
	env.printf("Treinamento concluído.\n")

	env.printf("Gerando %d novas linhas sintéticas...\n", g.Rows)
	sample, err := s.Sample(g.Rows)
	if err != nil {
		return "", fmt.Errorf("sample: %w", err)
	}
	env.printf("Geração de dados sintéticos concluída.\n")

	out := cfg.Path(ds.Synthetic)
	if err := dataset.WriteCSV(out, sample); err != nil {
		return "", err
	}
	if err := meta.SaveYAML(out + ".metadata.yaml"); err != nil {
		return "", err
	}
	log.Info("synthetic table written", "path", out, "rows", sample.Len(), "columns", sample.Width())
	env.printf("-> Arquivo sintético salvo com sucesso em: '%s'\n", out)
	return out, nil
}
