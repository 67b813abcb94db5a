// Package model provides the reference learners shipped with the toolkit:
// logistic regression, a depth-1 decision stump, k-nearest-neighbours, and
// a small feed-forward network. They exist so the ensembles have real
// learners to aggregate; none of them aims to be a production classifier.
package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// LogisticRegression is a binary classifier trained by full-batch gradient
// descent on the sigmoid cross-entropy objective. No regularization, no
// early stopping: a fixed number of epochs at a fixed learning rate.
//
// It serves both as a base learner and as the linear meta-learner for
// stacking. Fields are exported for JSON persistence.
type LogisticRegression struct {
	Epochs       int       `json:"epochs"`
	LearningRate float64   `json:"learningRate"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	IsFitted     bool      `json:"fitted"`
}

var _ learner.Classifier = (*LogisticRegression)(nil)

// NewLogisticRegression creates an unfitted model. Non-positive epochs or
// learning rate fall back to 200 and 0.1.
func NewLogisticRegression(epochs int, learningRate float64) *LogisticRegression {
	if epochs < 1 {
		epochs = 200
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}
	return &LogisticRegression{Epochs: epochs, LearningRate: learningRate}
}

func (m *LogisticRegression) Fitted() bool { return m.IsFitted }

// Fit trains on dense rows X with labels y in {0, 1}. Every epoch uses the
// full training set: gradient = Xᵀ(σ(Xw + b) − y) / n.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	n, d, err := checkTrainingSet(X, y)
	if err != nil {
		return fmt.Errorf("logreg: %w", err)
	}

	xm := mat.NewDense(n, d, nil)
	yv := mat.NewVecDense(n, nil)
	for i, row := range X {
		xm.SetRow(i, row)
		if y[i] != 0 && y[i] != 1 {
			return fmt.Errorf("logreg: label %d at row %d is not binary", y[i], i)
		}
		yv.SetVec(i, float64(y[i]))
	}

	w := mat.NewVecDense(d, nil)
	bias := 0.0
	probs := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)

	for epoch := 0; epoch < m.Epochs; epoch++ {
		probs.MulVec(xm, w)
		gradBias := 0.0
		for i := 0; i < n; i++ {
			p := sigmoid(probs.AtVec(i) + bias)
			diff := p - yv.AtVec(i)
			probs.SetVec(i, diff)
			gradBias += diff
		}
		grad.MulVec(xm.T(), probs)

		scale := m.LearningRate / float64(n)
		w.AddScaledVec(w, -scale, grad)
		bias -= scale * gradBias
	}

	m.Weights = make([]float64, d)
	copy(m.Weights, w.RawVector().Data)
	m.Bias = bias
	m.IsFitted = true
	return nil
}

// Predict returns the class (0 or 1) for each row.
func (m *LogisticRegression) Predict(X [][]float64) ([]int, error) {
	if !m.IsFitted {
		return nil, learner.ErrUnfitted
	}
	out := make([]int, len(X))
	for i, row := range X {
		if err := learner.CheckWidth(len(m.Weights), len(row)); err != nil {
			return nil, fmt.Errorf("logreg: row %d: %w", i, err)
		}
		s := m.Bias
		for j, v := range row {
			s += m.Weights[j] * v
		}
		if sigmoid(s) >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// checkTrainingSet validates a dense training set and returns its shape.
func checkTrainingSet(X [][]float64, y []int) (n, d int, err error) {
	if len(X) == 0 {
		return 0, 0, fmt.Errorf("empty training set")
	}
	if len(X) != len(y) {
		return 0, 0, fmt.Errorf("%d rows but %d labels", len(X), len(y))
	}
	d = len(X[0])
	if d == 0 {
		return 0, 0, fmt.Errorf("rows have no features")
	}
	for _, row := range X {
		if len(row) != d {
			return 0, 0, &learner.ShapeError{Want: d, Got: len(row)}
		}
	}
	return len(X), d, nil
}
