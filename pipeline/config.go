// Package pipeline sequences the full survival analysis: load, explore,
// split, baseline fit, tuned grid search, and importance-driven feature
// reduction, with every artifact written under one output directory.
package pipeline

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/tune"
)

// Config is the YAML run description. Every key has a default except
// the data path.
type Config struct {
	Data          DataConfig    `mapstructure:"data"`
	Output        OutputConfig  `mapstructure:"output"`
	Seed          int64         `mapstructure:"seed"`
	TrainFraction float64       `mapstructure:"train_fraction"`
	Workers       int           `mapstructure:"workers"`
	Explore       ExploreConfig `mapstructure:"explore"`
	Baseline      ParamsConfig  `mapstructure:"baseline"`
	Search        SearchConfig  `mapstructure:"search"`
}

// DataConfig locates the input CSV and its outcome column.
type DataConfig struct {
	Path          string `mapstructure:"path"`
	OutcomeColumn string `mapstructure:"outcome_column"`
}

// OutputConfig names the artifact and log directories.
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	LogDir string `mapstructure:"log_dir"`
}

// ExploreConfig toggles the diagnostic stage.
type ExploreConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Components int  `mapstructure:"components"`
}

// ParamsConfig carries the baseline hyperparameters. The run-level seed
// and worker override are injected when it becomes a boost.Params.
type ParamsConfig struct {
	NumRounds       int     `mapstructure:"num_rounds"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	NumLeaves       int     `mapstructure:"num_leaves"`
	MaxDepth        int     `mapstructure:"max_depth"`
	MinChildSamples int     `mapstructure:"min_child_samples"`
	MinSplitGain    float64 `mapstructure:"min_split_gain"`
	Lambda          float64 `mapstructure:"lambda"`
	Alpha           float64 `mapstructure:"alpha"`
	Subsample       float64 `mapstructure:"subsample"`
	SubsampleFreq   int     `mapstructure:"subsample_freq"`
	Colsample       float64 `mapstructure:"colsample"`
}

// Params assembles the full training parameters for this run.
func (p ParamsConfig) Params(seed int64, workers int) boost.Params {
	return boost.Params{
		NumRounds:       p.NumRounds,
		LearningRate:    p.LearningRate,
		NumLeaves:       p.NumLeaves,
		MaxDepth:        p.MaxDepth,
		MinChildSamples: p.MinChildSamples,
		MinSplitGain:    p.MinSplitGain,
		Lambda:          p.Lambda,
		Alpha:           p.Alpha,
		Subsample:       p.Subsample,
		SubsampleFreq:   p.SubsampleFreq,
		Colsample:       p.Colsample,
		Seed:            seed,
		Deterministic:   true,
		NumWorkers:      workers,
	}
}

// SearchConfig pairs the resampling plan with the hyperparameter grid.
type SearchConfig struct {
	Plan tune.Plan `mapstructure:"plan"`
	Grid tune.Grid `mapstructure:"grid"`
}

// LoadConfig reads a YAML run description. An empty path loads pure
// defaults; a named file must exist and parse. Environment variables
// prefixed METABOOST_ override file values (METABOOST_DATA_PATH for
// data.path). Validation is separate: call Validate before running.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("METABOOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "pipeline.LoadConfig: %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "pipeline.LoadConfig")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	base := boost.DefaultParams()

	// The empty path default registers the key so an environment
	// override reaches Unmarshal; Validate still rejects it.
	v.SetDefault("data.path", "")
	v.SetDefault("data.outcome_column", "death_from_cancer")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.log_dir", "logs")
	v.SetDefault("seed", 1234)
	v.SetDefault("train_fraction", 0.8)
	v.SetDefault("workers", 0)

	v.SetDefault("explore.enabled", true)
	v.SetDefault("explore.components", 2)

	v.SetDefault("baseline.num_rounds", base.NumRounds)
	v.SetDefault("baseline.learning_rate", base.LearningRate)
	v.SetDefault("baseline.num_leaves", base.NumLeaves)
	v.SetDefault("baseline.max_depth", base.MaxDepth)
	v.SetDefault("baseline.min_child_samples", base.MinChildSamples)
	v.SetDefault("baseline.min_split_gain", base.MinSplitGain)
	v.SetDefault("baseline.lambda", base.Lambda)
	v.SetDefault("baseline.alpha", base.Alpha)
	v.SetDefault("baseline.subsample", base.Subsample)
	v.SetDefault("baseline.subsample_freq", base.SubsampleFreq)
	v.SetDefault("baseline.colsample", base.Colsample)

	v.SetDefault("search.plan.method", tune.MethodRepeatedCV)
	v.SetDefault("search.plan.folds", 5)
	v.SetDefault("search.plan.repeats", 3)
	v.SetDefault("search.grid.num_rounds", []int{50, 100, 150})
	v.SetDefault("search.grid.max_depth", []int{2, 3})
	v.SetDefault("search.grid.learning_rate", []float64{0.05, 0.1})
	v.SetDefault("search.grid.min_child_samples", []int{10})
}

// Validate rejects a config the pipeline cannot run. Reported problems
// are fatal before any stage starts.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return errors.NewValidationError("data.path", "input CSV path is required", c.Data.Path)
	}
	if c.Data.OutcomeColumn == "" {
		return errors.NewValidationError("data.outcome_column", "outcome column name is required", c.Data.OutcomeColumn)
	}
	if c.Output.Dir == "" {
		return errors.NewValidationError("output.dir", "output directory is required", c.Output.Dir)
	}
	if c.Output.LogDir == "" {
		return errors.NewValidationError("output.log_dir", "log directory is required", c.Output.LogDir)
	}
	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		return errors.NewValidationError("train_fraction", "must be strictly between 0 and 1", c.TrainFraction)
	}
	if c.Workers < 0 {
		return errors.NewValidationError("workers", "must be non-negative", c.Workers)
	}
	if c.Explore.Enabled && c.Explore.Components < 2 {
		return errors.NewValidationError("explore.components", "plots need at least 2 components", c.Explore.Components)
	}

	base := c.Baseline.Params(c.Seed, c.Workers)
	if err := base.Validate(); err != nil {
		return errors.Wrap(err, "baseline")
	}
	if err := c.Search.Plan.Validate(); err != nil {
		return errors.Wrap(err, "search.plan")
	}
	if _, err := c.Search.Grid.Configurations(base); err != nil {
		return errors.Wrap(err, "search.grid")
	}
	return nil
}
