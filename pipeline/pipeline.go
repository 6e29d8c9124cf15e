package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/dataset"
	"github.com/oncodata/metaboost/evaluate"
	"github.com/oncodata/metaboost/explore"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
	"github.com/oncodata/metaboost/split"
	"github.com/oncodata/metaboost/tune"
)

// Artifact names written under Config.Output.Dir.
const (
	TrainSplitCSV   = "train_split.csv"
	TestSplitCSV    = "test_split.csv"
	ReducedTrainGob = "reduced_train.gob"
	ReducedTestGob  = "reduced_test.gob"
	BaselineModel   = "model_baseline.gob"
	TunedModel      = "model_tuned.gob"
	ReducedModel    = "model_tuned_reduced.gob"
	PlotsDir        = "plots"
)

// importanceTableRows caps the rendered importance table. The full
// ranking still drives the reduction.
const importanceTableRows = 20

// Run executes the whole pipeline described by cfg, writing reports to
// stdout and artifacts under cfg.Output.Dir. Any stage error aborts the
// run and is returned as-is.
func Run(ctx context.Context, cfg *Config, logger log.Logger) error {
	return run(ctx, cfg, logger, os.Stdout)
}

func run(ctx context.Context, cfg *Config, logger log.Logger, out io.Writer) error {
	if logger == nil {
		logger = log.GetLoggerWithName("pipeline")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "pipeline: creating %s", cfg.Output.Dir)
	}

	start := time.Now()
	logger.Info("pipeline started",
		log.RandomSeedKey, cfg.Seed,
		log.WorkersKey, cfg.Workers)

	ds, err := loadStage(cfg, logger)
	if err != nil {
		return err
	}
	if cfg.Explore.Enabled {
		if err := exploreStage(cfg, ds, logger); err != nil {
			return err
		}
	}
	train, test, err := splitStage(cfg, ds, logger)
	if err != nil {
		return err
	}

	base := cfg.Baseline.Params(cfg.Seed, cfg.Workers)
	if err := baselineStage(ctx, cfg, train, test, base, logger, out); err != nil {
		return err
	}
	tuned, err := tuneStage(ctx, cfg, train, test, base, logger, out)
	if err != nil {
		return err
	}
	if err := reduceStage(ctx, cfg, ds, tuned, logger, out); err != nil {
		return err
	}

	logger.Info("pipeline finished",
		log.DurationSecondsKey, time.Since(start).Seconds())
	return nil
}

func loadStage(cfg *Config, logger log.Logger) (*dataset.Dataset, error) {
	ds, err := dataset.Load(cfg.Data.Path, cfg.Data.OutcomeColumn)
	if err != nil {
		return nil, err
	}
	logger.Info("stage finished",
		log.StageKey, log.StageLoad,
		log.SamplesKey, ds.NumSamples(),
		log.FeaturesKey, ds.NumFeatures(),
		log.ClassesKey, len(ds.ClassNames))
	return ds, nil
}

func exploreStage(cfg *Config, ds *dataset.Dataset, logger log.Logger) error {
	result, err := explore.PCA(ds, cfg.Explore.Components)
	if err != nil {
		return err
	}
	if err := explore.SavePlots(filepath.Join(cfg.Output.Dir, PlotsDir), ds, result); err != nil {
		return err
	}
	logger.Info("stage finished",
		log.StageKey, log.StageExplore,
		"pca.components", result.NumComponents,
		"pca.leading_variance", result.VarianceRatios[0])
	return nil
}

func splitStage(cfg *Config, ds *dataset.Dataset, logger log.Logger) (*dataset.Dataset, *dataset.Dataset, error) {
	splitter := split.StratifiedSplitter{TrainFraction: cfg.TrainFraction, Seed: cfg.Seed}
	train, test, err := splitter.Split(ds)
	if err != nil {
		return nil, nil, err
	}
	if err := writeCSVArtifact(train, filepath.Join(cfg.Output.Dir, TrainSplitCSV), logger); err != nil {
		return nil, nil, err
	}
	if err := writeCSVArtifact(test, filepath.Join(cfg.Output.Dir, TestSplitCSV), logger); err != nil {
		return nil, nil, err
	}
	logger.Info("stage finished",
		log.StageKey, log.StageSplit,
		log.SamplesKey, train.NumSamples(),
		"data.test_samples", test.NumSamples())
	return train, test, nil
}

func baselineStage(ctx context.Context, cfg *Config, train, test *dataset.Dataset, base boost.Params, logger log.Logger, out io.Writer) error {
	result, err := tune.Search(ctx, train, tune.SinglePoint(base), tune.Plan{Method: tune.MethodNone}, base, logger)
	if err != nil {
		return errors.Wrap(err, "pipeline: baseline fit")
	}

	section(out, "Baseline model")
	report, err := renderEvaluation(result.Model, test, out)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Output.Dir, BaselineModel)
	if err := boost.SaveModel(result.Model, path); err != nil {
		return err
	}
	logger.Info("stage finished",
		log.StageKey, log.StageTrain,
		log.EstimatorIDKey, "baseline",
		log.AccuracyKey, report.Accuracy,
		log.ArtifactKey, path)
	return nil
}

func tuneStage(ctx context.Context, cfg *Config, train, test *dataset.Dataset, base boost.Params, logger log.Logger, out io.Writer) (*tune.Result, error) {
	result, err := tune.Search(ctx, train, cfg.Search.Grid, cfg.Search.Plan, base, logger)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: grid search")
	}

	section(out, "Tuned model")
	if !math.IsNaN(result.BestScore) {
		fmt.Fprintf(out, "Best of %d configurations, cross-validated accuracy %.4f\n\n",
			len(result.Candidates), result.BestScore)
	}
	report, err := renderEvaluation(result.Model, test, out)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cfg.Output.Dir, TunedModel)
	if err := boost.SaveModel(result.Model, path); err != nil {
		return nil, err
	}
	logger.Info("stage finished",
		log.StageKey, log.StageTrain,
		log.EstimatorIDKey, "tuned",
		log.HyperParamsKey, result.BestParams,
		log.AccuracyKey, report.Accuracy,
		log.ArtifactKey, path)
	return result, nil
}

// reduceStage keeps the features the tuned model actually used, rebuilds
// both splits from the reduced dataset with the run seed, and refits the
// best configuration on them.
func reduceStage(ctx context.Context, cfg *Config, ds *dataset.Dataset, tuned *tune.Result, logger log.Logger, out io.Writer) error {
	ranking, err := boost.ImportanceRanking(tuned.Model, "gain")
	if err != nil {
		return err
	}
	section(out, "Variable importance")
	if err := evaluate.RenderImportance(out, ranking, importanceTableRows); err != nil {
		return err
	}

	kept := keepPositive(ds.FeatureNames, ranking)
	if len(kept) == 0 {
		return errors.NewValueError("pipeline.reduce", "no feature carries positive importance")
	}
	logger.Info("features reduced",
		log.StageKey, log.StageReduce,
		log.FeaturesKey, len(kept),
		log.DroppedKey, ds.NumFeatures()-len(kept))

	reduced, err := ds.Select(kept)
	if err != nil {
		return err
	}
	splitter := split.StratifiedSplitter{TrainFraction: cfg.TrainFraction, Seed: cfg.Seed}
	redTrain, redTest, err := splitter.Split(reduced)
	if err != nil {
		return err
	}
	if err := writeSnapshotArtifact(redTrain, filepath.Join(cfg.Output.Dir, ReducedTrainGob), logger); err != nil {
		return err
	}
	if err := writeSnapshotArtifact(redTest, filepath.Join(cfg.Output.Dir, ReducedTestGob), logger); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := boost.Train(redTrain.X, redTrain.Labels, tuned.BestParams, logger)
	if err != nil {
		return errors.Wrap(err, "pipeline: reduced fit")
	}
	m.FeatureNames = append([]string(nil), redTrain.FeatureNames...)

	section(out, "Tuned model on reduced features")
	report, err := renderEvaluation(m, redTest, out)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Output.Dir, ReducedModel)
	if err := boost.SaveModel(m, path); err != nil {
		return err
	}
	logger.Info("stage finished",
		log.StageKey, log.StageReduce,
		log.FeaturesKey, len(kept),
		log.AccuracyKey, report.Accuracy,
		log.ArtifactKey, path)
	return nil
}

// keepPositive filters featureNames down to those with a positive
// importance score, preserving the original column order.
func keepPositive(featureNames []string, ranking []boost.FeatureScore) []string {
	positive := make(map[string]bool, len(ranking))
	for _, fs := range ranking {
		if fs.Score > 0 {
			positive[fs.Feature] = true
		}
	}
	kept := make([]string, 0, len(positive))
	for _, name := range featureNames {
		if positive[name] {
			kept = append(kept, name)
		}
	}
	return kept
}

func renderEvaluation(m *boost.Model, test *dataset.Dataset, out io.Writer) (*evaluate.Report, error) {
	report, err := evaluate.Evaluate(m, test)
	if err != nil {
		return nil, err
	}
	if err := report.Render(out); err != nil {
		return nil, err
	}
	return report, nil
}

func writeCSVArtifact(ds *dataset.Dataset, path string, logger log.Logger) error {
	if err := dataset.WriteCSV(ds, path); err != nil {
		return err
	}
	logger.Info("artifact written", log.ArtifactKey, path)
	return nil
}

func writeSnapshotArtifact(ds *dataset.Dataset, path string, logger log.Logger) error {
	if err := dataset.SaveSnapshot(ds, path); err != nil {
		return err
	}
	logger.Info("artifact written", log.ArtifactKey, path)
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n=== %s ===\n\n", title)
}
