package tasks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"trafo/pkg/config"
	"trafo/pkg/dataprep"
	"trafo/pkg/dataset"
	"trafo/pkg/loader"
	"trafo/pkg/model"
	"trafo/pkg/plots"
	"trafo/pkg/sampling"
)

const (
	labelReal      = 0
	labelSynthetic = 1
)

var classNames = map[int]string{labelReal: "Real", labelSynthetic: "Sintético"}

// ClassifyOutcome is the verdict for one dataset.
type ClassifyOutcome struct {
	Name          string
	CommonColumns []string
	AUC           float64
	Fidelity      model.Fidelity
	Report        *model.ClassificationReport
	Importances   []plots.Importance
	Plot          string
}

// ClassifyResult holds one outcome per analysed dataset.
type ClassifyResult struct {
	Outcomes []ClassifyOutcome
	Skipped  []string
}

// Classify trains a random forest to tell real rows from synthetic ones and
// grades each synthetic table by the test-split ROC AUC.
func Classify(ctx context.Context, env *Env) (*ClassifyResult, error) {
	res := &ClassifyResult{}
	for _, ds := range env.Config.DatasetList() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		env.printf("\n%s\n", banner("Processando Conjunto de Dados: "+ds.Name, 20))

		out, err := classifyDataset(ctx, env, ds)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			env.logger().Warn("dataset skipped", "dataset", ds.Name, "error", err)
			res.Skipped = append(res.Skipped, ds.Name)
			continue
		}
		res.Outcomes = append(res.Outcomes, *out)
	}

	env.printf("\n%s\n", banner("Análise Final Concluída", 25))
	return res, nil
}

// loadReported reads path without the row number and reports read failures
// on the console.
func (e *Env) loadReported(path string) (*dataset.Frame, error) {
	f, err := e.load(path, dataset.WithoutRowNumber())
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		e.printf("ERRO: Arquivo não encontrado em '%s'. Pulando.\n", path)
	case err != nil:
		e.printf("ERRO: Falha ao ler o arquivo '%s'. Erro: %v\n", path, err)
	}
	return f, err
}

func classifyDataset(ctx context.Context, env *Env, ds config.Dataset) (*ClassifyOutcome, error) {
	cfg := env.Config
	log := env.logger().With("dataset", ds.Name)

	realRows, realErr := env.loadReported(cfg.Path(ds.Real))
	synthRows, synthErr := env.loadReported(cfg.Path(ds.Synthetic))
	if err := errors.Join(realErr, synthErr); err != nil {
		return nil, err
	}

	common := dataset.CommonColumns(realRows, synthRows)
	env.printf("Analisando %d colunas em comum.\n", len(common))
	if len(common) == 0 {
		return nil, errors.New("no common columns")
	}

	X, y, err := labelledRows(realRows, synthRows, common)
	if err != nil {
		return nil, err
	}
	if X.HasNaN() {
		env.printf("Atenção: Valores nulos detectados. Preenchendo com a média da coluna.\n")
		log.Debug("imputed missing cells", "count", dataprep.ImputeMean(X))
	}

	split, err := loader.StratifiedSplit(X.Rows(), y, cfg.Classify.TestSize, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}

	env.printf("Distribuição original de classes no treino: \n%s\n", formatCounts(loader.ClassCounts(split.YTrain)))
	smote := sampling.NewSMOTE(
		sampling.WithKNeighbors(cfg.Classify.SMOTENeighbors),
		sampling.WithRandomState(cfg.Seed),
	)
	XTrain, yTrain, err := smote.FitResample(split.XTrain, split.YTrain)
	if err != nil {
		return nil, fmt.Errorf("smote: %w", err)
	}
	env.printf("\nDistribuição de classes após SMOTE: \n%s\n", formatCounts(loader.ClassCounts(yTrain)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := cfg.Classify
	rf := model.NewRandomForest(
		model.WithNEstimators(c.NEstimators),
		model.WithForestCriterion(c.Criterion),
		model.WithForestMaxDepth(c.MaxDepth),
		model.WithForestMaxFeatures(c.MaxFeatures),
		model.WithForestMinSamplesLeaf(c.MinSamplesLeaf),
		model.WithBootstrap(c.Bootstrap),
		model.WithForestRandomState(cfg.Seed),
		model.WithNJobs(runtime.GOMAXPROCS(0)),
	)
	if err := rf.Fit(XTrain, yTrain); err != nil {
		return nil, fmt.Errorf("random forest: %w", err)
	}

	yPred := rf.Predict(split.XTest)
	report := model.NewClassificationReport(split.YTest, yPred, classNames)
	env.printf("\n--- Relatório de Classificação Final: %s ---\n", ds.Name)
	env.printf("%s\n", report)

	auc, err := model.ROCAUC(split.YTest, rf.PositiveProba(split.XTest, labelSynthetic), labelSynthetic)
	if err != nil {
		return nil, err
	}
	fidelity := model.FidelityFromAUC(auc)
	env.printf("--> Pontuação AUC ROC: %.4f\n", auc)
	env.printf("--> Interpretação: %s\n", fidelity.Interpretation())

	importances, err := plots.SortedImportances(common, rf.FeatureImportances())
	if err != nil {
		return nil, err
	}
	chart, err := plots.ImportanceChart(importances, fmt.Sprintf("Importância das Features (%s) para Distinguir Real vs. Sintético", ds.Name))
	if err != nil {
		return nil, err
	}
	plotPath := cfg.Path(fmt.Sprintf("importancia_features_%s.png", ds.Name))
	if err := plots.Save(chart, plots.ImportanceSize, cfg.Classify.DPI, plotPath); err != nil {
		return nil, err
	}
	env.printf("--> Gráfico de importância salvo em: %s\n", plotPath)

	log.Info("classification finished", "auc", auc, "fidelity", fidelity.String(), "accuracy", report.Accuracy)
	return &ClassifyOutcome{
		Name:          ds.Name,
		CommonColumns: common,
		AUC:           auc,
		Fidelity:      fidelity,
		Report:        report,
		Importances:   importances,
		Plot:          plotPath,
	}, nil
}

// labelledRows stacks real over synthetic on the common columns and labels
// the rows 0 and 1.
func labelledRows(realRows, synthRows *dataset.Frame, common []string) (*dataset.Frame, []int, error) {
	r, err := realRows.Select(common)
	if err != nil {
		return nil, nil, err
	}
	s, err := synthRows.Select(common)
	if err != nil {
		return nil, nil, err
	}
	X, err := r.Concat(s)
	if err != nil {
		return nil, nil, err
	}
	y := make([]int, X.Len())
	for i := r.Len(); i < len(y); i++ {
		y[i] = labelSynthetic
	}
	return X, y, nil
}
