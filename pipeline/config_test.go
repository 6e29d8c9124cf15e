package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/tune"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Data.Path)
	assert.Equal(t, "death_from_cancer", cfg.Data.OutcomeColumn)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "logs", cfg.Output.LogDir)
	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, 0.8, cfg.TrainFraction)
	assert.Equal(t, 0, cfg.Workers)
	assert.True(t, cfg.Explore.Enabled)
	assert.Equal(t, 2, cfg.Explore.Components)

	base := boost.DefaultParams()
	assert.Equal(t, base.NumRounds, cfg.Baseline.NumRounds)
	assert.Equal(t, base.LearningRate, cfg.Baseline.LearningRate)
	assert.Equal(t, base.NumLeaves, cfg.Baseline.NumLeaves)
	assert.Equal(t, base.MinChildSamples, cfg.Baseline.MinChildSamples)
	assert.Equal(t, base.Lambda, cfg.Baseline.Lambda)
	assert.Equal(t, base.Subsample, cfg.Baseline.Subsample)

	assert.Equal(t, tune.MethodRepeatedCV, cfg.Search.Plan.Method)
	assert.Equal(t, 5, cfg.Search.Plan.Folds)
	assert.Equal(t, 3, cfg.Search.Plan.Repeats)
	assert.Equal(t, []int{50, 100, 150}, cfg.Search.Grid.NumRounds)
	assert.Equal(t, []int{2, 3}, cfg.Search.Grid.MaxDepth)
	assert.Equal(t, []float64{0.05, 0.1}, cfg.Search.Grid.LearningRate)
	assert.Equal(t, []int{10}, cfg.Search.Grid.MinChildSamples)
	assert.Nil(t, cfg.Search.Grid.Subsample)
	assert.Nil(t, cfg.Search.Grid.Lambda)
}

func TestValidateRequiresDataPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "data.path", verr.ParamName)

	cfg.Data.Path = "metabric.csv"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
data:
  path: /data/metabric.csv
seed: 99
train_fraction: 0.75
workers: 2
explore:
  enabled: false
baseline:
  num_rounds: 40
  learning_rate: 0.2
search:
  plan:
    method: repeatedcv
    folds: 4
    repeats: 2
  grid:
    num_rounds: [20, 40]
    max_depth: [3]
    learning_rate: [0.1]
    min_child_samples: [5]
`
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/metabric.csv", cfg.Data.Path)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 0.75, cfg.TrainFraction)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.Explore.Enabled)
	assert.Equal(t, 40, cfg.Baseline.NumRounds)
	assert.Equal(t, 0.2, cfg.Baseline.LearningRate)
	assert.Equal(t, 4, cfg.Search.Plan.Folds)
	assert.Equal(t, 2, cfg.Search.Plan.Repeats)
	assert.Equal(t, []int{20, 40}, cfg.Search.Grid.NumRounds)

	// Keys the file never mentions keep their defaults.
	assert.Equal(t, "death_from_cancer", cfg.Data.OutcomeColumn)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, boost.DefaultParams().NumLeaves, cfg.Baseline.NumLeaves)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("METABOOST_SEED", "77")
	t.Setenv("METABOOST_DATA_PATH", "/tmp/clinical.csv")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, int64(77), cfg.Seed)
	assert.Equal(t, "/tmp/clinical.csv", cfg.Data.Path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Data.Path = "metabric.csv"
	return cfg
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"zero fraction", func(c *Config) { c.TrainFraction = 0 }, "train_fraction"},
		{"full fraction", func(c *Config) { c.TrainFraction = 1 }, "train_fraction"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"one component", func(c *Config) { c.Explore.Components = 1 }, "explore.components"},
		{"no outcome column", func(c *Config) { c.Data.OutcomeColumn = "" }, "data.outcome_column"},
		{"no output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir"},
		{"no log dir", func(c *Config) { c.Output.LogDir = "" }, "output.log_dir"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.param, verr.ParamName)
		})
	}
}

func TestValidateComponentsIgnoredWhenDisabled(t *testing.T) {
	cfg := validConfig(t)
	cfg.Explore.Enabled = false
	cfg.Explore.Components = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidateWrapsSectionErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Baseline.LearningRate = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline")

	cfg = validConfig(t)
	cfg.Search.Plan.Method = "bootstrap"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.plan")

	cfg = validConfig(t)
	cfg.Search.Grid.Lambda = []float64{}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.grid")
}

func TestParamsConfigParams(t *testing.T) {
	pc := ParamsConfig{
		NumRounds:       30,
		LearningRate:    0.2,
		NumLeaves:       15,
		MaxDepth:        4,
		MinChildSamples: 5,
		MinSplitGain:    0.01,
		Lambda:          0.5,
		Alpha:           0.1,
		Subsample:       0.9,
		SubsampleFreq:   2,
		Colsample:       0.8,
	}
	p := pc.Params(7, 3)

	assert.Equal(t, 30, p.NumRounds)
	assert.Equal(t, 0.2, p.LearningRate)
	assert.Equal(t, 15, p.NumLeaves)
	assert.Equal(t, 4, p.MaxDepth)
	assert.Equal(t, 5, p.MinChildSamples)
	assert.Equal(t, 0.01, p.MinSplitGain)
	assert.Equal(t, 0.5, p.Lambda)
	assert.Equal(t, 0.1, p.Alpha)
	assert.Equal(t, 0.9, p.Subsample)
	assert.Equal(t, 2, p.SubsampleFreq)
	assert.Equal(t, 0.8, p.Colsample)
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, 3, p.NumWorkers)
	assert.True(t, p.Deterministic)
}
