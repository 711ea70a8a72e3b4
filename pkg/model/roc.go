package model

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ErrSingleClass is returned by ROCAUC when yTrue holds only one label.
var ErrSingleClass = errors.New("model: roc auc needs both classes")

// ROCAUC is the area under the ROC curve of scores against yTrue, where
// positive marks the positive label. Tied scores count as half.
func ROCAUC(yTrue []int, scores []float64, positive int) (float64, error) {
	if len(yTrue) != len(scores) {
		return 0, errors.New("model: yTrue and scores length mismatch")
	}
	y := make([]float64, len(scores))
	copy(y, scores)
	classes := make([]bool, len(yTrue))
	pos := 0
	for i, v := range yTrue {
		classes[i] = v == positive
		if classes[i] {
			pos++
		}
	}
	if pos == 0 || pos == len(yTrue) {
		return math.NaN(), ErrSingleClass
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// Fidelity grades synthetic data by how close a real-vs-synthetic AUC is to 0.5.
type Fidelity int

const (
	FidelityExcellent Fidelity = iota
	FidelityGood
	FidelityPoor
)

// FidelityFromAUC bands |auc-0.5|: below 0.15 is excellent, below 0.25 good.
func FidelityFromAUC(auc float64) Fidelity {
	d := math.Abs(auc - 0.5)
	switch {
	case d < 0.15:
		return FidelityExcellent
	case d < 0.25:
		return FidelityGood
	default:
		return FidelityPoor
	}
}

func (f Fidelity) String() string {
	switch f {
	case FidelityExcellent:
		return "excellent"
	case FidelityGood:
		return "good"
	default:
		return "poor"
	}
}

// Interpretation is the operator-facing sentence for a band.
func (f Fidelity) Interpretation() string {
	switch f {
	case FidelityExcellent:
		return "Excelente! O modelo tem dificuldade em distinguir os dados, sugerindo alta qualidade dos dados sintéticos."
	case FidelityGood:
		return "Bom. Os dados são muito semelhantes, embora o modelo tenha alguma capacidade de distingui-los."
	default:
		return "Atenção. O modelo consegue distinguir os dados, indicando que podem não ser uma boa imitação dos reais."
	}
}
