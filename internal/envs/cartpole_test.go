package envs

import (
	"math"
	"testing"
)

func TestCartPole_ResetRange(t *testing.T) {
	t.Parallel()

	env := NewCartPole(1, 500)
	obs := env.Reset()
	if len(obs) != env.ObservationSize() {
		t.Fatalf("expected %d observation values, got %d", env.ObservationSize(), len(obs))
	}
	for i, v := range obs {
		if math.Abs(v) > 0.05 {
			t.Errorf("initial state component %d out of range: %f", i, v)
		}
	}
}

func TestCartPole_StepBeforeReset(t *testing.T) {
	t.Parallel()

	env := NewCartPole(1, 500)
	if _, _, _, err := env.Step(0); err == nil {
		t.Error("expected error for Step before Reset")
	}
}

func TestCartPole_InvalidAction(t *testing.T) {
	t.Parallel()

	env := NewCartPole(1, 500)
	env.Reset()
	if _, _, _, err := env.Step(2); err == nil {
		t.Error("expected error for out-of-range action")
	}
	if _, _, _, err := env.Step(-1); err == nil {
		t.Error("expected error for negative action")
	}
}

func TestCartPole_EpisodeTerminates(t *testing.T) {
	t.Parallel()

	// Always pushing right must topple the pole well before the step cap.
	env := NewCartPole(1, 10000)
	env.Reset()
	steps := 0
	for {
		_, reward, done, err := env.Step(1)
		if err != nil {
			t.Fatalf("Step failed: %v", err)
		}
		if reward != 1.0 {
			t.Fatalf("expected reward 1 per step, got %f", reward)
		}
		steps++
		if done {
			break
		}
		if steps > 1000 {
			t.Fatal("episode did not terminate under constant force")
		}
	}
	if steps < 2 {
		t.Errorf("episode ended suspiciously early: %d steps", steps)
	}

	// Stepping past the end is an error.
	if _, _, _, err := env.Step(1); err == nil {
		t.Error("expected error for Step after episode end")
	}
}

func TestCartPole_StepCap(t *testing.T) {
	t.Parallel()

	env := NewCartPole(1, 3)
	env.Reset()
	var done bool
	var err error
	for i := 0; i < 3; i++ {
		// Alternate pushes to keep the pole up for the few capped steps.
		_, _, done, err = env.Step(i % 2)
		if err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	if !done {
		t.Error("expected episode to end at the step cap")
	}
}

func TestCartPole_SameSeedSameTrajectory(t *testing.T) {
	t.Parallel()

	a := NewCartPole(42, 500)
	b := NewCartPole(42, 500)

	obsA := a.Reset()
	obsB := b.Reset()
	for i := range obsA {
		if obsA[i] != obsB[i] {
			t.Fatalf("same seed produced different initial states: %v vs %v", obsA, obsB)
		}
	}

	for step := 0; step < 20; step++ {
		nextA, _, doneA, errA := a.Step(step % 2)
		nextB, _, doneB, errB := b.Step(step % 2)
		if errA != nil || errB != nil {
			t.Fatalf("Step failed: %v %v", errA, errB)
		}
		if doneA != doneB {
			t.Fatal("same seed diverged in termination")
		}
		for i := range nextA {
			if nextA[i] != nextB[i] {
				t.Fatalf("same seed diverged at step %d", step)
			}
		}
		if doneA {
			break
		}
	}
}
