package model

import (
	"errors"
	"testing"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// separable returns a linearly separable binary set: class 0 around -2,
// class 1 around +2 on both features.
func separable() ([][]float64, []int) {
	X := [][]float64{
		{-2.0, -1.8}, {-2.2, -2.1}, {-1.7, -2.3}, {-2.5, -1.9},
		{2.0, 1.8}, {2.2, 2.1}, {1.7, 2.3}, {2.5, 1.9},
	}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return X, y
}

func TestLogisticRegression_LearnsSeparableData(t *testing.T) {
	t.Parallel()

	X, y := separable()
	m := NewLogisticRegression(500, 0.5)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !m.Fitted() {
		t.Fatal("model reports unfitted after Fit")
	}

	preds, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i, p := range preds {
		if p != y[i] {
			t.Errorf("row %d: expected %d, got %d", i, y[i], p)
		}
	}
}

func TestLogisticRegression_PredictBeforeFit(t *testing.T) {
	t.Parallel()

	m := NewLogisticRegression(100, 0.1)
	_, err := m.Predict([][]float64{{1, 2}})
	if !errors.Is(err, learner.ErrUnfitted) {
		t.Errorf("expected ErrUnfitted, got %v", err)
	}
}

func TestLogisticRegression_RejectsNonBinaryLabels(t *testing.T) {
	t.Parallel()

	m := NewLogisticRegression(100, 0.1)
	err := m.Fit([][]float64{{1}, {2}}, []int{0, 2})
	if err == nil {
		t.Error("expected error for non-binary label")
	}
}

func TestLogisticRegression_RejectsBadShapes(t *testing.T) {
	t.Parallel()

	m := NewLogisticRegression(100, 0.1)
	if err := m.Fit(nil, nil); err == nil {
		t.Error("expected error for empty training set")
	}
	if err := m.Fit([][]float64{{1}}, []int{0, 1}); err == nil {
		t.Error("expected error for row/label count mismatch")
	}
	if err := m.Fit([][]float64{{1, 2}, {3}}, []int{0, 1}); err == nil {
		t.Error("expected error for ragged rows")
	}

	X, y := separable()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	_, err := m.Predict([][]float64{{1, 2, 3}})
	var shapeErr *learner.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError on wide input, got %v", err)
	}
}
