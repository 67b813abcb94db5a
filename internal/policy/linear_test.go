package policy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

func TestLinear_DeterministicArgmax(t *testing.T) {
	t.Parallel()

	p := NewLinear(2, 3, 1)
	// Weight action 2 to always score highest on positive inputs.
	p.Weights[2] = []float64{5, 5}

	for i := 0; i < 10; i++ {
		action, err := p.Act([]float64{1, 1}, true)
		if err != nil {
			t.Fatalf("Act failed: %v", err)
		}
		if action != 2 {
			t.Errorf("expected argmax action 2, got %d", action)
		}
	}
}

func TestLinear_ZeroPolicyPrefersFirstAction(t *testing.T) {
	t.Parallel()

	// All scores equal: argmax keeps the first action.
	p := NewLinear(4, 2, 1)
	action, err := p.Act([]float64{1, 2, 3, 4}, true)
	if err != nil {
		t.Fatalf("Act failed: %v", err)
	}
	if action != 0 {
		t.Errorf("expected action 0 for uniform scores, got %d", action)
	}
}

func TestLinear_StochasticSamplesValidActions(t *testing.T) {
	t.Parallel()

	p := NewLinear(2, 4, 7)
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		action, err := p.Act([]float64{0.1, -0.2}, false)
		if err != nil {
			t.Fatalf("Act failed: %v", err)
		}
		if action < 0 || action >= 4 {
			t.Fatalf("sampled invalid action %d", action)
		}
		seen[action] = true
	}
	if len(seen) < 2 {
		t.Error("uniform policy sampled only one action in 200 draws")
	}
}

func TestLinear_ShapeChecked(t *testing.T) {
	t.Parallel()

	p := NewLinear(4, 2, 1)
	_, err := p.Act([]float64{1, 2}, true)
	var shapeErr *learner.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}

func TestLinear_StochasticActAfterJSONRestore(t *testing.T) {
	t.Parallel()

	// A policy restored from a JSON snapshot has no RNG; stochastic
	// sampling and cloning must still work.
	data, err := json.Marshal(NewLinear(2, 3, 7))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored := &Linear{}
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		action, err := restored.Act([]float64{0.5, -0.5}, false)
		if err != nil {
			t.Fatalf("stochastic Act on restored policy failed: %v", err)
		}
		if action < 0 || action >= 3 {
			t.Fatalf("sampled invalid action %d", action)
		}
	}

	c := restored.Clone()
	if _, err := c.Act([]float64{0.5, -0.5}, false); err != nil {
		t.Fatalf("stochastic Act on restored clone failed: %v", err)
	}
}

func TestLinear_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	p := NewLinear(2, 2, 1)
	p.Weights[0] = []float64{1, 2}
	c := p.Clone()

	c.Weights[0][0] = 99
	c.Biases[1] = -5

	if p.Weights[0][0] != 1 {
		t.Error("mutating the clone changed the original weights")
	}
	if p.Biases[1] != 0 {
		t.Error("mutating the clone changed the original biases")
	}
}
