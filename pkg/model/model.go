package model

// Classifier is a supervised model over integer labels.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) [][]float64 // columns follow Classes()
	Classes() []int
}

// Clusterer is for unsupervised clustering.
type Clusterer interface {
	Fit(X [][]float64) error
	Predict(X [][]float64) ([]int, error) // cluster assignments
}

var (
	_ Classifier = (*DecisionTreeClassifier)(nil)
	_ Classifier = (*RandomForest)(nil)
	_ Clusterer  = (*KMeans)(nil)
)
