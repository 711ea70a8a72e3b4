package model

import (
	"fmt"
	"strings"
)

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// PrecisionRecallF1 treats positive as the positive label.
func PrecisionRecallF1(yTrue []int, yPred []int, positive int) (prec, rec, f1 float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		switch {
		case yPred[i] == positive && yTrue[i] == positive:
			tp++
		case yPred[i] == positive:
			fp++
		case yTrue[i] == positive:
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// ClassScores holds the per-label rows of a classification report.
type ClassScores struct {
	Label     int
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassificationReport summarises predictions per label plus macro and
// support-weighted averages.
type ClassificationReport struct {
	Classes     []ClassScores
	Accuracy    float64
	MacroAvg    ClassScores
	WeightedAvg ClassScores
}

// NewClassificationReport scores yPred against yTrue. names maps labels to the
// text shown in String; labels without a name print as numbers.
func NewClassificationReport(yTrue, yPred []int, names map[int]string) *ClassificationReport {
	r := &ClassificationReport{Accuracy: Accuracy(yTrue, yPred)}
	labels := uniqueSorted(append(append([]int{}, yTrue...), yPred...))

	total := 0
	for _, label := range labels {
		p, rc, f := PrecisionRecallF1(yTrue, yPred, label)
		support := 0
		for _, v := range yTrue {
			if v == label {
				support++
			}
		}
		name, ok := names[label]
		if !ok {
			name = fmt.Sprint(label)
		}
		r.Classes = append(r.Classes, ClassScores{
			Label: label, Name: name, Precision: p, Recall: rc, F1: f, Support: support,
		})
		total += support
	}

	r.MacroAvg = ClassScores{Name: "macro avg", Support: total}
	r.WeightedAvg = ClassScores{Name: "weighted avg", Support: total}
	if len(r.Classes) == 0 {
		return r
	}
	for _, c := range r.Classes {
		r.MacroAvg.Precision += c.Precision / float64(len(r.Classes))
		r.MacroAvg.Recall += c.Recall / float64(len(r.Classes))
		r.MacroAvg.F1 += c.F1 / float64(len(r.Classes))
		if total > 0 {
			w := float64(c.Support) / float64(total)
			r.WeightedAvg.Precision += c.Precision * w
			r.WeightedAvg.Recall += c.Recall * w
			r.WeightedAvg.F1 += c.F1 * w
		}
	}
	return r
}

// String renders the report as a fixed-width table.
func (r *ClassificationReport) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len([]rune(c.Name)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(c ClassScores) {
		pad := width - len([]rune(c.Name)) + len(c.Name)
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", pad, c.Name, c.Precision, c.Recall, c.F1, c.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.MacroAvg.Support)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}
