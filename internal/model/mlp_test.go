package model

import (
	"errors"
	"testing"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

func TestMLP_LearnsSeparableData(t *testing.T) {
	t.Parallel()

	X, y := separable()
	m := NewMLP(MLPConfig{Hidden: []int{8}, Epochs: 300, LearningRate: 0.1, Seed: 1})
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
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

func TestMLP_LossDecreasesOverall(t *testing.T) {
	t.Parallel()

	X, y := separable()
	m := NewMLP(MLPConfig{Hidden: []int{8}, Epochs: 200, LearningRate: 0.1, Seed: 2})
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if len(m.Losses) != 200 {
		t.Fatalf("expected one loss per epoch, got %d", len(m.Losses))
	}
	// Loss is not guaranteed monotonic per epoch, but over the whole run on
	// separable data it must come down.
	if m.Losses[len(m.Losses)-1] >= m.Losses[0] {
		t.Errorf("final loss %.4f not below initial %.4f",
			m.Losses[len(m.Losses)-1], m.Losses[0])
	}
}

func TestMLP_SameSeedSameFit(t *testing.T) {
	t.Parallel()

	X, y := separable()
	cfg := MLPConfig{Hidden: []int{4}, Epochs: 50, LearningRate: 0.1, Seed: 9}

	a := NewMLP(cfg)
	b := NewMLP(cfg)
	if err := a.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for l := range a.Weights {
		for j := range a.Weights[l] {
			for k := range a.Weights[l][j] {
				if a.Weights[l][j][k] != b.Weights[l][j][k] {
					t.Fatalf("same seed produced different weights at [%d][%d][%d]", l, j, k)
				}
			}
		}
	}
}

func TestMLP_PredictBeforeFit(t *testing.T) {
	t.Parallel()

	m := NewMLP(MLPConfig{Seed: 1})
	_, err := m.Predict([][]float64{{1, 2}})
	if !errors.Is(err, learner.ErrUnfitted) {
		t.Errorf("expected ErrUnfitted, got %v", err)
	}
}

func TestMLP_RejectsNegativeLabels(t *testing.T) {
	t.Parallel()

	m := NewMLP(MLPConfig{Seed: 1})
	if err := m.Fit([][]float64{{1}, {2}}, []int{0, -1}); err == nil {
		t.Error("expected error for negative label")
	}
}

func TestMLP_ShapeCheckedAtInference(t *testing.T) {
	t.Parallel()

	X, y := separable()
	m := NewMLP(MLPConfig{Hidden: []int{4}, Epochs: 20, LearningRate: 0.1, Seed: 1})
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	_, err := m.Predict([][]float64{{1, 2, 3}})
	var shapeErr *learner.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}
