// Command stackbench fits a set of base classifiers and a stacked ensemble
// on a binary classification dataset, then compares their held-out test
// accuracy.
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
	"github.com/amobash2/useful-ml-functionalities/internal/dataset"
	"github.com/amobash2/useful-ml-functionalities/internal/learner"
	"github.com/amobash2/useful-ml-functionalities/internal/metrics"
	"github.com/amobash2/useful-ml-functionalities/internal/model"
	"github.com/amobash2/useful-ml-functionalities/internal/stacking"
	"github.com/amobash2/useful-ml-functionalities/internal/storage"
)

func main() {
	var (
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		metaLearner = flag.String("meta", "", "Meta-learner: linear or mlp (overrides config)")
		datasetPath = flag.String("dataset", "", "CSV dataset path (overrides config)")
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
	if *metaLearner != "" {
		config.MetaLearner = *metaLearner
	}
	if *datasetPath != "" {
		config.DatasetPath = *datasetPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	mw := metrics.NewWrapper(m)
	startMetricsServer(config.MetricsPort)

	if err := run(ctx, config, mw); err != nil {
		log.Fatal().Err(err).Msg("stacking pipeline failed")
	}
}

func run(ctx context.Context, config cfg.Settings, mw *metrics.Wrapper) error {
	ds, err := loadDataset(ctx, config)
	if err != nil {
		return err
	}
	train, test, err := dataset.Split(ds, config.TestRatio, config.Seed)
	if err != nil {
		return err
	}
	log.Info().
		Int("train", train.Len()).
		Int("test", test.Len()).
		Int("features", ds.Features()).
		Msg("dataset ready")

	bases := []learner.Classifier{
		model.NewLogisticRegression(config.Epochs, config.LearningRate),
		model.NewStump(),
		model.NewKNN(config.KNeighbours),
	}
	baseNames := []string{"logreg", "stump", "knn"}

	meta, err := buildMetaLearner(config)
	if err != nil {
		return err
	}

	stacked, err := stacking.NewStacked(bases, meta, mw)
	if err != nil {
		return err
	}

	fitStart := time.Now()
	if err := stacked.Fit(train.X, train.Y); err != nil {
		return fmt.Errorf("fit stacked ensemble: %w", err)
	}
	mw.FitDurationObserve(time.Since(fitStart).Seconds())
	log.Info().
		Dur("duration", time.Since(fitStart)).
		Int("metaWidth", stacked.MetaWidth()).
		Msg("stacked ensemble fitted")

	fmt.Println("=== Stacked Ensemble Results ===")
	for i, base := range bases {
		preds, err := base.Predict(test.X)
		if err != nil {
			return fmt.Errorf("predict %s: %w", baseNames[i], err)
		}
		acc, err := dataset.Accuracy(preds, test.Y)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s test accuracy %.3f\n", baseNames[i], acc)
	}

	preds, err := stacked.Predict(test.X)
	if err != nil {
		return fmt.Errorf("predict stacked ensemble: %w", err)
	}
	acc, err := dataset.Accuracy(preds, test.Y)
	if err != nil {
		return err
	}
	mw.TestAccuracySet(acc)
	fmt.Printf("%-10s test accuracy %.3f (meta=%s, width=%d)\n",
		"stacked", acc, config.MetaLearner, stacked.MetaWidth())

	if config.DataPath != "" {
		if err := persistModels(config, bases, baseNames, meta); err != nil {
			return err
		}
	}
	return nil
}

func loadDataset(ctx context.Context, config cfg.Settings) (*dataset.Dataset, error) {
	switch {
	case config.DatasetPath != "":
		log.Info().Str("path", config.DatasetPath).Msg("loading dataset from file")
		return dataset.LoadCSV(config.DatasetPath)
	case config.DatasetURL != "":
		log.Info().Str("url", config.DatasetURL).Msg("fetching dataset")
		return dataset.FetchCSV(ctx, config.DatasetURL)
	default:
		log.Info().
			Int("rows", config.SyntheticRows).
			Int("features", config.SyntheticFeatures).
			Msg("generating synthetic dataset")
		return dataset.Synthetic(config.SyntheticRows, config.SyntheticFeatures, config.Seed)
	}
}

func buildMetaLearner(config cfg.Settings) (learner.Classifier, error) {
	switch config.MetaLearner {
	case "linear":
		return model.NewLogisticRegression(config.Epochs, config.LearningRate), nil
	case "mlp":
		return model.NewMLP(model.MLPConfig{
			Hidden:       config.Hidden,
			Epochs:       config.Epochs,
			LearningRate: config.LearningRate,
			Seed:         config.Seed,
		}), nil
	default:
		return nil, fmt.Errorf("unknown meta learner %q", config.MetaLearner)
	}
}

func persistModels(config cfg.Settings, bases []learner.Classifier, baseNames []string, meta learner.Classifier) error {
	store, err := storage.New(config.DataPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	for i, base := range bases {
		if err := store.SaveModel("base-"+baseNames[i], base); err != nil {
			return err
		}
	}
	if err := store.SaveModel("meta-"+config.MetaLearner, meta); err != nil {
		return err
	}
	log.Info().Str("path", config.DataPath).Msg("models persisted")
	return nil
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
