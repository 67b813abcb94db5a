package cfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, s.Candidates)
	assert.Equal(t, 60, s.SearchIterations)
	assert.InDelta(t, 0.5, s.SearchNoise, 1e-12)
	assert.Equal(t, 20, s.EvalEpisodes)
	assert.InDelta(t, 150.0, s.MinScore, 1e-12)
	assert.Equal(t, 500, s.MaxEpisodeSteps)
	assert.Equal(t, int64(1), s.Seed)

	assert.Equal(t, 600, s.SyntheticRows)
	assert.Equal(t, "linear", s.MetaLearner)
	assert.Equal(t, []int{16}, s.Hidden)
	assert.Equal(t, 5, s.KNeighbours)

	assert.Equal(t, "", s.DataPath)
	assert.Equal(t, 8080, s.MetricsPort)
	assert.Equal(t, 0, s.DashboardPort)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CANDIDATES", "7")
	t.Setenv("MIN_SCORE", "42.5")
	t.Setenv("META_LEARNER", "mlp")
	t.Setenv("HIDDEN_SIZES", "32, 16, 8")
	t.Setenv("DATA_PATH", "/tmp/models")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, s.Candidates)
	assert.InDelta(t, 42.5, s.MinScore, 1e-12)
	assert.Equal(t, "mlp", s.MetaLearner)
	assert.Equal(t, []int{32, 16, 8}, s.Hidden)
	assert.Equal(t, "/tmp/models", s.DataPath)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `voting:
  candidates: 3
  minScore: 100
  seed: 99
stacking:
  metaLearner: mlp
  hidden: [64, 32]
system:
  metricsPort: 9100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, s.Candidates)
	assert.InDelta(t, 100.0, s.MinScore, 1e-12)
	assert.Equal(t, int64(99), s.Seed)
	assert.Equal(t, "mlp", s.MetaLearner)
	assert.Equal(t, []int{64, 32}, s.Hidden)
	assert.Equal(t, 9100, s.MetricsPort)
	// Untouched fields keep their defaults.
	assert.Equal(t, 60, s.SearchIterations)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("voting:\n  candidates: 3\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CANDIDATES", "9")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, s.Candidates)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"too many candidates", "CANDIDATES", "500"},
		{"zero search iterations", "SEARCH_ITERATIONS", "-1"},
		{"bad test ratio", "TEST_RATIO", "1.5"},
		{"unknown meta learner", "META_LEARNER", "boosted"},
		{"huge learning rate", "LEARNING_RATE", "50"},
		{"privileged metrics port", "METRICS_PORT", "80"},
		{"bad dashboard port", "DASHBOARD_PORT", "70000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseIntList(t *testing.T) {
	t.Parallel()

	sizes, err := parseIntList("8,4, 2")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 4, 2}, sizes)

	_, err = parseIntList("8,x")
	assert.Error(t, err)
}
