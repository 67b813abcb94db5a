package policy

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/amobash2/useful-ml-functionalities/internal/envs"
)

// SearchConfig holds the hyperparameters for one random-search run. The
// voting pipeline sweeps these per candidate so the resulting policies are
// genuinely different learners.
type SearchConfig struct {
	Iterations int     `yaml:"iterations"`
	NoiseScale float64 `yaml:"noiseScale"`
	Episodes   int     `yaml:"episodes"` // episodes averaged per evaluation
	Seed       int64   `yaml:"seed"`
}

// RandomSearch trains a linear policy by hill climbing: perturb the current
// best weights with Gaussian noise, keep the perturbation when it scores a
// higher mean reward. Training runs to completion or until ctx is canceled.
func RandomSearch(ctx context.Context, env envs.Env, cfg SearchConfig) (*Linear, error) {
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("policy: search iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.Episodes < 1 {
		cfg.Episodes = 5
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	best := NewLinear(env.ObservationSize(), env.ActionCount(), rng.Int63())
	bestScore, err := meanReward(env, best, cfg.Episodes)
	if err != nil {
		return nil, fmt.Errorf("policy: initial evaluation: %w", err)
	}

	for it := 0; it < cfg.Iterations; it++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		cand := best.Clone()
		for a := range cand.Weights {
			for i := range cand.Weights[a] {
				cand.Weights[a][i] += rng.NormFloat64() * cfg.NoiseScale
			}
			cand.Biases[a] += rng.NormFloat64() * cfg.NoiseScale
		}

		score, err := meanReward(env, cand, cfg.Episodes)
		if err != nil {
			return nil, fmt.Errorf("policy: candidate evaluation: %w", err)
		}
		if score > bestScore {
			best, bestScore = cand, score
			log.Debug().
				Int("iteration", it).
				Float64("score", score).
				Msg("random search improved")
		}
	}

	log.Info().
		Float64("score", bestScore).
		Int("iterations", cfg.Iterations).
		Msg("random search finished")
	return best, nil
}

func meanReward(env envs.Env, p *Linear, episodes int) (float64, error) {
	total := 0.0
	for e := 0; e < episodes; e++ {
		obs := env.Reset()
		for {
			action, err := p.Act(obs, true)
			if err != nil {
				return 0, err
			}
			next, reward, done, err := env.Step(action)
			if err != nil {
				return 0, err
			}
			total += reward
			if done {
				break
			}
			obs = next
		}
	}
	return total / float64(episodes), nil
}
