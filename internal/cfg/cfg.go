// Package cfg loads the toolkit configuration. A YAML file selected by
// CONFIG_FILE takes precedence; otherwise everything comes from environment
// variables, with a .env file honored when present. Every tunable has a
// default so both binaries run with no configuration at all.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the resolved, validated configuration for both pipelines.
type Settings struct {
	// Voting pipeline
	Candidates       int     // number of policies trained in the sweep
	SearchIterations int     // hill-climb iterations per candidate
	SearchNoise      float64 // base perturbation scale, swept per candidate
	TrainEpisodes    int     // episodes averaged per search step
	EvalEpisodes     int     // episodes in the selection/final evaluation
	MinScore         float64 // mean-reward threshold for ensemble admission
	MaxEpisodeSteps  int     // episode cap for cart-pole
	Seed             int64

	// Stacking pipeline
	DatasetPath       string // CSV file, empty = use URL or synthetic
	DatasetURL        string // remote CSV, empty = use synthetic
	SyntheticRows     int
	SyntheticFeatures int
	TestRatio         float64
	MetaLearner       string // "linear" or "mlp"
	Epochs            int
	LearningRate      float64
	Hidden            []int
	KNeighbours       int

	// System
	DataPath      string // BoltDB directory, empty disables persistence
	MetricsPort   int
	DashboardPort int // 0 disables the dashboard
}

// ConfigFile mirrors the YAML layout.
type ConfigFile struct {
	Voting struct {
		Candidates       int     `yaml:"candidates"`
		SearchIterations int     `yaml:"searchIterations"`
		SearchNoise      float64 `yaml:"searchNoise"`
		TrainEpisodes    int     `yaml:"trainEpisodes"`
		EvalEpisodes     int     `yaml:"evalEpisodes"`
		MinScore         float64 `yaml:"minScore"`
		MaxEpisodeSteps  int     `yaml:"maxEpisodeSteps"`
		Seed             int64   `yaml:"seed"`
	} `yaml:"voting"`

	Stacking struct {
		DatasetPath       string  `yaml:"datasetPath"`
		DatasetURL        string  `yaml:"datasetURL"`
		SyntheticRows     int     `yaml:"syntheticRows"`
		SyntheticFeatures int     `yaml:"syntheticFeatures"`
		TestRatio         float64 `yaml:"testRatio"`
		MetaLearner       string  `yaml:"metaLearner"`
		Epochs            int     `yaml:"epochs"`
		LearningRate      float64 `yaml:"learningRate"`
		Hidden            []int   `yaml:"hidden"`
		KNeighbours       int     `yaml:"kNeighbours"`
	} `yaml:"stacking"`

	System struct {
		DataPath      string `yaml:"dataPath"`
		MetricsPort   int    `yaml:"metricsPort"`
		DashboardPort int    `yaml:"dashboardPort"`
	} `yaml:"system"`
}

// Load resolves the configuration. Environment variables override YAML
// values field by field.
func Load() (Settings, error) {
	// A .env file is optional; ignore a missing one.
	_ = godotenv.Load()

	settings := defaults()

	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		if err := applyYAML(configPath, &settings); err != nil {
			return Settings{}, err
		}
	}
	applyEnv(&settings)

	if err := validate(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func defaults() Settings {
	return Settings{
		Candidates:       5,
		SearchIterations: 60,
		SearchNoise:      0.5,
		TrainEpisodes:    5,
		EvalEpisodes:     20,
		MinScore:         150,
		MaxEpisodeSteps:  500,
		Seed:             1,

		SyntheticRows:     600,
		SyntheticFeatures: 10,
		TestRatio:         0.25,
		MetaLearner:       "linear",
		Epochs:            200,
		LearningRate:      0.1,
		Hidden:            []int{16},
		KNeighbours:       5,

		MetricsPort:   8080,
		DashboardPort: 0,
	}
}

func applyYAML(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setInt(&s.Candidates, config.Voting.Candidates)
	setInt(&s.SearchIterations, config.Voting.SearchIterations)
	setFloat(&s.SearchNoise, config.Voting.SearchNoise)
	setInt(&s.TrainEpisodes, config.Voting.TrainEpisodes)
	setInt(&s.EvalEpisodes, config.Voting.EvalEpisodes)
	if config.Voting.MinScore != 0 {
		s.MinScore = config.Voting.MinScore
	}
	setInt(&s.MaxEpisodeSteps, config.Voting.MaxEpisodeSteps)
	if config.Voting.Seed != 0 {
		s.Seed = config.Voting.Seed
	}

	setString(&s.DatasetPath, config.Stacking.DatasetPath)
	setString(&s.DatasetURL, config.Stacking.DatasetURL)
	setInt(&s.SyntheticRows, config.Stacking.SyntheticRows)
	setInt(&s.SyntheticFeatures, config.Stacking.SyntheticFeatures)
	setFloat(&s.TestRatio, config.Stacking.TestRatio)
	setString(&s.MetaLearner, config.Stacking.MetaLearner)
	setInt(&s.Epochs, config.Stacking.Epochs)
	setFloat(&s.LearningRate, config.Stacking.LearningRate)
	if len(config.Stacking.Hidden) > 0 {
		s.Hidden = config.Stacking.Hidden
	}
	setInt(&s.KNeighbours, config.Stacking.KNeighbours)

	setString(&s.DataPath, config.System.DataPath)
	setInt(&s.MetricsPort, config.System.MetricsPort)
	setInt(&s.DashboardPort, config.System.DashboardPort)
	return nil
}

func applyEnv(s *Settings) {
	s.Candidates = getIntOrDefault("CANDIDATES", s.Candidates)
	s.SearchIterations = getIntOrDefault("SEARCH_ITERATIONS", s.SearchIterations)
	s.SearchNoise = getFloatOrDefault("SEARCH_NOISE", s.SearchNoise)
	s.TrainEpisodes = getIntOrDefault("TRAIN_EPISODES", s.TrainEpisodes)
	s.EvalEpisodes = getIntOrDefault("EVAL_EPISODES", s.EvalEpisodes)
	s.MinScore = getFloatOrDefault("MIN_SCORE", s.MinScore)
	s.MaxEpisodeSteps = getIntOrDefault("MAX_EPISODE_STEPS", s.MaxEpisodeSteps)
	s.Seed = int64(getIntOrDefault("SEED", int(s.Seed)))

	s.DatasetPath = getEnvOrDefault("DATASET_PATH", s.DatasetPath)
	s.DatasetURL = getEnvOrDefault("DATASET_URL", s.DatasetURL)
	s.SyntheticRows = getIntOrDefault("SYNTHETIC_ROWS", s.SyntheticRows)
	s.SyntheticFeatures = getIntOrDefault("SYNTHETIC_FEATURES", s.SyntheticFeatures)
	s.TestRatio = getFloatOrDefault("TEST_RATIO", s.TestRatio)
	s.MetaLearner = getEnvOrDefault("META_LEARNER", s.MetaLearner)
	s.Epochs = getIntOrDefault("EPOCHS", s.Epochs)
	s.LearningRate = getFloatOrDefault("LEARNING_RATE", s.LearningRate)
	if v := os.Getenv("HIDDEN_SIZES"); v != "" {
		if sizes, err := parseIntList(v); err == nil {
			s.Hidden = sizes
		}
	}
	s.KNeighbours = getIntOrDefault("K_NEIGHBOURS", s.KNeighbours)

	s.DataPath = getEnvOrDefault("DATA_PATH", s.DataPath)
	s.MetricsPort = getIntOrDefault("METRICS_PORT", s.MetricsPort)
	s.DashboardPort = getIntOrDefault("DASHBOARD_PORT", s.DashboardPort)
}

func validate(s *Settings) error {
	if s.Candidates < 1 || s.Candidates > 100 {
		return fmt.Errorf("candidates must be between 1 and 100, got %d", s.Candidates)
	}
	if s.SearchIterations < 1 {
		return fmt.Errorf("search iterations must be positive, got %d", s.SearchIterations)
	}
	if s.SearchNoise <= 0 {
		return fmt.Errorf("search noise must be positive, got %f", s.SearchNoise)
	}
	if s.TrainEpisodes < 1 || s.EvalEpisodes < 1 {
		return fmt.Errorf("episode counts must be positive, got train=%d eval=%d", s.TrainEpisodes, s.EvalEpisodes)
	}
	if s.MaxEpisodeSteps < 1 {
		return fmt.Errorf("max episode steps must be positive, got %d", s.MaxEpisodeSteps)
	}

	if s.TestRatio <= 0 || s.TestRatio >= 1 {
		return fmt.Errorf("test ratio must be in (0, 1), got %f", s.TestRatio)
	}
	if s.MetaLearner != "linear" && s.MetaLearner != "mlp" {
		return fmt.Errorf("meta learner must be \"linear\" or \"mlp\", got %q", s.MetaLearner)
	}
	if s.Epochs < 1 {
		return fmt.Errorf("epochs must be positive, got %d", s.Epochs)
	}
	if s.LearningRate <= 0 || s.LearningRate > 10 {
		return fmt.Errorf("learning rate must be in (0, 10], got %f", s.LearningRate)
	}
	for _, h := range s.Hidden {
		if h < 1 {
			return fmt.Errorf("hidden layer sizes must be positive, got %v", s.Hidden)
		}
	}
	if s.KNeighbours < 1 {
		return fmt.Errorf("k neighbours must be positive, got %d", s.KNeighbours)
	}
	if s.SyntheticRows < 4 || s.SyntheticFeatures < 1 {
		return fmt.Errorf("synthetic dataset must have at least 4 rows and 1 feature, got %dx%d",
			s.SyntheticRows, s.SyntheticFeatures)
	}

	if s.MetricsPort < 1024 || s.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", s.MetricsPort)
	}
	if s.DashboardPort != 0 && (s.DashboardPort < 1024 || s.DashboardPort > 65535) {
		return fmt.Errorf("dashboard port must be 0 or between 1024 and 65535, got %d", s.DashboardPort)
	}
	return nil
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseIntList(v string) ([]int, error) {
	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}
