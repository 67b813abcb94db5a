package ensemble

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/amobash2/useful-ml-functionalities/internal/envs"
	"github.com/amobash2/useful-ml-functionalities/internal/learner"
)

// EvalTracker receives evaluation telemetry; a nil tracker disables it.
type EvalTracker interface {
	EpisodesEvaluatedInc()
	EpisodeRewardObserve(float64)
}

// Evaluator runs the fixed evaluation protocol: a configured number of full
// episodes, total reward per episode, mean and standard deviation over the
// run. The same protocol scores single policies and voting ensembles, which
// is what makes threshold filtering and ensemble-vs-member comparisons
// meaningful.
type Evaluator struct {
	Episodes      int
	Deterministic bool
	Tracker       EvalTracker

	// OnEpisode, when set, is called after each episode with its index and
	// total reward. The dashboard uses this to stream live progress.
	OnEpisode func(episode int, reward float64)
}

// Result holds the outcome of one evaluation run.
type Result struct {
	Mean     float64
	Std      float64
	Episodes int
	Rewards  []float64
}

// Run evaluates the policy on env. It stops between episodes when ctx is
// canceled and propagates policy and environment errors unchanged.
func (e *Evaluator) Run(ctx context.Context, env envs.Env, p learner.Policy) (Result, error) {
	if e.Episodes < 1 {
		return Result{}, fmt.Errorf("ensemble: evaluation needs at least 1 episode, got %d", e.Episodes)
	}

	rewards := make([]float64, 0, e.Episodes)
	for ep := 0; ep < e.Episodes; ep++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		total, err := e.episode(env, p)
		if err != nil {
			return Result{}, fmt.Errorf("episode %d: %w", ep, err)
		}
		rewards = append(rewards, total)

		if e.Tracker != nil {
			e.Tracker.EpisodesEvaluatedInc()
			e.Tracker.EpisodeRewardObserve(total)
		}
		if e.OnEpisode != nil {
			e.OnEpisode(ep, total)
		}
	}

	mean, std := stat.MeanStdDev(rewards, nil)
	if len(rewards) < 2 {
		std = 0
	}
	return Result{Mean: mean, Std: std, Episodes: e.Episodes, Rewards: rewards}, nil
}

func (e *Evaluator) episode(env envs.Env, p learner.Policy) (float64, error) {
	obs := env.Reset()
	total := 0.0
	for {
		action, err := p.Act(obs, e.Deterministic)
		if err != nil {
			return 0, err
		}
		next, reward, done, err := env.Step(action)
		if err != nil {
			return 0, err
		}
		total += reward
		if done {
			return total, nil
		}
		obs = next
	}
}
