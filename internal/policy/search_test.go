package policy

import (
	"context"
	"testing"

	"github.com/amobash2/useful-ml-functionalities/internal/envs"
)

func TestRandomSearch_ReturnsUsablePolicy(t *testing.T) {
	t.Parallel()

	env := envs.NewCartPole(3, 200)
	cfg := SearchConfig{Iterations: 10, NoiseScale: 0.5, Episodes: 2, Seed: 3}

	p, err := RandomSearch(context.Background(), env, cfg)
	if err != nil {
		t.Fatalf("RandomSearch failed: %v", err)
	}
	if p.ObservationSize() != env.ObservationSize() {
		t.Errorf("expected observation size %d, got %d", env.ObservationSize(), p.ObservationSize())
	}

	obs := env.Reset()
	action, err := p.Act(obs, true)
	if err != nil {
		t.Fatalf("trained policy Act failed: %v", err)
	}
	if action < 0 || action >= env.ActionCount() {
		t.Errorf("trained policy returned invalid action %d", action)
	}
}

func TestRandomSearch_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	env := envs.NewCartPole(1, 100)
	if _, err := RandomSearch(context.Background(), env, SearchConfig{Iterations: 0}); err == nil {
		t.Error("expected error for zero iterations")
	}
}

func TestRandomSearch_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := envs.NewCartPole(1, 100)
	_, err := RandomSearch(ctx, env, SearchConfig{Iterations: 50, NoiseScale: 0.5, Episodes: 1, Seed: 1})
	if err == nil {
		t.Error("expected error from canceled context")
	}
}
