// Command votebench trains a sweep of candidate policies on cart-pole,
// filters them by evaluated mean reward, and compares the surviving
// majority-vote ensemble against its members.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/amobash2/useful-ml-functionalities/internal/cfg"
	"github.com/amobash2/useful-ml-functionalities/internal/dashboard"
	"github.com/amobash2/useful-ml-functionalities/internal/ensemble"
	"github.com/amobash2/useful-ml-functionalities/internal/envs"
	"github.com/amobash2/useful-ml-functionalities/internal/learner"
	"github.com/amobash2/useful-ml-functionalities/internal/metrics"
	"github.com/amobash2/useful-ml-functionalities/internal/policy"
	"github.com/amobash2/useful-ml-functionalities/internal/storage"
)

func main() {
	var (
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		candidates = flag.Int("candidates", 0, "Number of candidate policies (overrides config)")
		minScore   = flag.Float64("min-score", -1, "Selection threshold on mean reward (overrides config)")
		episodes   = flag.Int("episodes", 0, "Evaluation episodes per policy (overrides config)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *candidates > 0 {
		config.Candidates = *candidates
	}
	if *minScore >= 0 {
		config.MinScore = *minScore
	}
	if *episodes > 0 {
		config.EvalEpisodes = *episodes
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	mw := metrics.NewWrapper(m)
	startMetricsServer(config.MetricsPort)

	var store *storage.Store
	if config.DataPath != "" {
		store, err = storage.New(config.DataPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open storage")
		}
		defer store.Close()
	}

	var dash *dashboard.Dashboard
	if config.DashboardPort != 0 {
		dash = dashboard.New(config.DashboardPort)
		if err := dash.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start dashboard")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			dash.Stop(shutdownCtx)
		}()
	}

	if err := run(ctx, config, mw, store, dash); err != nil {
		log.Fatal().Err(err).Msg("voting pipeline failed")
	}
}

func run(ctx context.Context, config cfg.Settings, mw *metrics.Wrapper, store *storage.Store, dash *dashboard.Dashboard) error {
	env := envs.NewCartPole(config.Seed, config.MaxEpisodeSteps)

	// Train the candidate sweep. Each candidate gets its own seed and noise
	// scale so the resulting policies differ in more than initialization.
	var pool []ensemble.Candidate
	for i := 0; i < config.Candidates; i++ {
		name := fmt.Sprintf("policy-%d", i)
		searchCfg := policy.SearchConfig{
			Iterations: config.SearchIterations,
			NoiseScale: config.SearchNoise * (0.5 + 0.5*float64(i)),
			Episodes:   config.TrainEpisodes,
			Seed:       config.Seed + int64(i)*1000,
		}
		log.Info().
			Str("candidate", name).
			Float64("noise", searchCfg.NoiseScale).
			Msg("training candidate")

		trained, err := policy.RandomSearch(ctx, env, searchCfg)
		if err != nil {
			return fmt.Errorf("train %s: %w", name, err)
		}

		result, err := evaluate(ctx, config, name, trained, mw, dash)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", name, err)
		}
		log.Info().
			Str("candidate", name).
			Float64("mean", result.Mean).
			Float64("std", result.Std).
			Msg("candidate evaluated")

		if store != nil {
			if err := store.SaveModel(name, trained); err != nil {
				return fmt.Errorf("save %s: %w", name, err)
			}
			if err := store.RecordEvaluation(record(name, result)); err != nil {
				return fmt.Errorf("record %s: %w", name, err)
			}
		}
		pool = append(pool, ensemble.Candidate{Name: name, Policy: trained, Score: result.Mean})
	}

	voting, err := ensemble.BuildFiltered(pool, config.MinScore, mw)
	if err != nil {
		return err
	}
	mw.EnsembleSizeSet(float64(voting.Size()))
	log.Info().
		Int("members", voting.Size()).
		Int("candidates", len(pool)).
		Float64("minScore", config.MinScore).
		Msg("voting ensemble built")

	result, err := evaluate(ctx, config, "voting-ensemble", voting, mw, dash)
	if err != nil {
		return fmt.Errorf("evaluate ensemble: %w", err)
	}
	if store != nil {
		if err := store.RecordEvaluation(record("voting-ensemble", result)); err != nil {
			return fmt.Errorf("record ensemble: %w", err)
		}
	}

	fmt.Println("=== Voting Ensemble Results ===")
	for _, c := range pool {
		fmt.Printf("%-16s mean reward %.1f\n", c.Name, c.Score)
	}
	fmt.Printf("%-16s mean reward %.1f (std %.1f, %d members)\n",
		"ensemble", result.Mean, result.Std, voting.Size())
	return nil
}

// evaluate scores a policy over the configured episode count on a freshly
// seeded environment, so every candidate and the final ensemble face the
// identical episode sequence.
func evaluate(ctx context.Context, config cfg.Settings, name string, p learner.Policy, mw *metrics.Wrapper, dash *dashboard.Dashboard) (ensemble.Result, error) {
	env := envs.NewCartPole(config.Seed, config.MaxEpisodeSteps)
	total := 0.0
	ev := &ensemble.Evaluator{
		Episodes:      config.EvalEpisodes,
		Deterministic: true,
		Tracker:       mw,
	}
	if dash != nil {
		ev.OnEpisode = func(episode int, reward float64) {
			total += reward
			dash.Publish(dashboard.Snapshot{
				Name:    name,
				Episode: episode,
				Reward:  reward,
				Mean:    total / float64(episode+1),
			})
		}
	}

	result, err := ev.Run(ctx, env, p)
	if err != nil {
		return ensemble.Result{}, err
	}
	if dash != nil {
		dash.Publish(dashboard.Snapshot{
			Name:    name,
			Episode: result.Episodes - 1,
			Reward:  result.Rewards[result.Episodes-1],
			Mean:    result.Mean,
			Final:   true,
		})
	}
	return result, nil
}

func record(name string, r ensemble.Result) storage.EvalRecord {
	return storage.EvalRecord{
		Name:          name,
		Mean:          r.Mean,
		Std:           r.Std,
		Episodes:      r.Episodes,
		Deterministic: true,
		Ts:            time.Now(),
	}
}

func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info().Str("address", addr).Msg("starting metrics server")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
