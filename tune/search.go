package tune

import (
	"context"
	"math"
	"sort"

	"github.com/sourcegraph/conc"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/core/parallel"
	"github.com/oncodata/metaboost/dataset"
	"github.com/oncodata/metaboost/metrics"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
	"github.com/oncodata/metaboost/split"
)

// Resampling methods accepted by Plan.
const (
	MethodNone       = "none"
	MethodRepeatedCV = "repeatedcv"
)

// Plan describes how candidate configurations are scored. MethodNone
// fits the single grid point directly with no internal resampling;
// MethodRepeatedCV runs Repeats rounds of stratified Folds-fold
// cross-validation.
type Plan struct {
	Method  string `mapstructure:"method"`
	Folds   int    `mapstructure:"folds"`
	Repeats int    `mapstructure:"repeats"`
}

// Validate rejects unknown methods and degenerate fold counts.
func (p Plan) Validate() error {
	switch p.Method {
	case MethodNone:
		return nil
	case MethodRepeatedCV:
		if p.Folds < 2 {
			return errors.NewValidationError("folds", "repeated cross-validation needs at least 2 folds", p.Folds)
		}
		if p.Repeats < 1 {
			return errors.NewValidationError("repeats", "must be at least 1", p.Repeats)
		}
		return nil
	default:
		return errors.NewValidationError("method", "must be none or repeatedcv", p.Method)
	}
}

// FoldScore records one cross-validation fit: which candidate, repeat,
// and fold it covered, and either the held-out accuracy or the error
// that kept the fit from finishing.
type FoldScore struct {
	Candidate int
	Repeat    int
	Fold      int
	Accuracy  float64
	Err       error
}

// CandidateScore aggregates a candidate's successful folds.
type CandidateScore struct {
	Index  int
	Params boost.Params
	Mean   float64
	Std    float64
	Folds  int
}

// Usable reports whether at least one fold fit succeeded.
func (c CandidateScore) Usable() bool {
	return c.Folds > 0
}

// Result is the outcome of a search: the winning configuration, the
// model refit on the full training set with it, and the per-candidate
// and per-fold records behind the choice. BestScore is the winner's mean
// cross-validated accuracy and is NaN when the plan skipped resampling.
type Result struct {
	BestIndex  int
	BestParams boost.Params
	BestScore  float64
	Model      *boost.Model
	Candidates []CandidateScore
	FoldScores []FoldScore
}

// cvJob is one unit of pool work: fit one candidate on one fold of one
// repeat. Each job subsets its own copy of the data, so jobs share
// nothing mutable.
type cvJob struct {
	candidate int
	repeat    int
	fold      int
	params    boost.Params
	trainIdx  []int
	testIdx   []int
}

// Search expands the grid over base and returns the best configuration
// refit on all of train. Validation of the plan and every expanded
// configuration happens before any fitting. Under MethodRepeatedCV the
// fold fits run concurrently on a bounded worker pool; a failed fold is
// recorded and skipped, a candidate with no surviving folds is unusable,
// and the search fails only if every candidate is unusable. Ties on mean
// accuracy resolve to the earlier candidate in grid order. Cancelling
// ctx stops job dispatch and returns ctx.Err().
func Search(ctx context.Context, train *dataset.Dataset, grid Grid, plan Plan, base boost.Params, logger log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.GetLoggerWithName("tune")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	configs, err := grid.Configurations(base)
	if err != nil {
		return nil, err
	}
	if train == nil || train.NumSamples() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "tune.Search")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if plan.Method == MethodNone {
		if len(configs) != 1 {
			return nil, errors.NewValueError("tune.Search",
				"resampling method none requires exactly one configuration, grid expands to more")
		}
		model, err := fitFull(train, configs[0], logger)
		if err != nil {
			return nil, err
		}
		return &Result{
			BestIndex:  0,
			BestParams: configs[0],
			BestScore:  math.NaN(),
			Model:      model,
			Candidates: []CandidateScore{{Index: 0, Params: configs[0]}},
		}, nil
	}

	// Fold assignments are drawn once per repeat and shared by every
	// candidate, so candidates compete on identical partitions.
	folds := make([][]split.Fold, plan.Repeats)
	for r := 0; r < plan.Repeats; r++ {
		kf := split.StratifiedKFold{
			NumFolds: plan.Folds,
			Shuffle:  true,
			Seed:     base.Seed + int64(r),
		}
		repeatFolds, err := kf.Split(train.Labels)
		if err != nil {
			return nil, errors.Wrapf(err, "tune.Search: repeat %d", r)
		}
		folds[r] = repeatFolds
	}

	jobs := make([]cvJob, 0, len(configs)*plan.Repeats*plan.Folds)
	for c, params := range configs {
		for r := 0; r < plan.Repeats; r++ {
			for f, fold := range folds[r] {
				jobs = append(jobs, cvJob{
					candidate: c,
					repeat:    r,
					fold:      f,
					params:    params,
					trainIdx:  fold.TrainIndices,
					testIdx:   fold.TestIndices,
				})
			}
		}
	}

	workers := parallel.PoolSize()
	if base.NumWorkers > 0 {
		workers = base.NumWorkers
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	logger.Info("grid search started",
		log.CandidatesKey, len(configs),
		log.WorkersKey, workers,
		log.SamplesKey, train.NumSamples(),
		log.RandomSeedKey, base.Seed,
	)

	scores := runPool(ctx, train, jobs, workers, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Candidate != scores[j].Candidate {
			return scores[i].Candidate < scores[j].Candidate
		}
		if scores[i].Repeat != scores[j].Repeat {
			return scores[i].Repeat < scores[j].Repeat
		}
		return scores[i].Fold < scores[j].Fold
	})

	candidates := summarize(scores, configs)
	bestIndex := -1
	for _, cand := range candidates {
		if !cand.Usable() {
			continue
		}
		if bestIndex < 0 || cand.Mean > candidates[bestIndex].Mean {
			bestIndex = cand.Index
		}
	}
	if bestIndex < 0 {
		return nil, errors.Newf("tune.Search: all %d configurations failed cross-validation", len(configs))
	}

	best := candidates[bestIndex]
	logger.Info("grid search finished",
		log.CandidateKey, best.Index,
		log.AccuracyKey, best.Mean,
		log.HyperParamsKey, best.Params,
	)

	model, err := fitFull(train, best.Params, logger)
	if err != nil {
		return nil, errors.Wrap(err, "tune.Search: refit of winning configuration")
	}

	return &Result{
		BestIndex:  best.Index,
		BestParams: best.Params,
		BestScore:  best.Mean,
		Model:      model,
		Candidates: candidates,
		FoldScores: scores,
	}, nil
}

// runPool fans the jobs out to a fixed set of workers and collects one
// FoldScore per job. Cancellation drains dispatch without waiting for
// unstarted jobs.
func runPool(ctx context.Context, train *dataset.Dataset, jobs []cvJob, workers int, logger log.Logger) []FoldScore {
	queue := make(chan cvJob, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	results := make(chan FoldScore, len(jobs))
	var wg conc.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-queue:
					if !ok {
						return
					}
					results <- runJob(train, job, logger)
				}
			}
		})
	}
	wg.Wait()
	close(results)

	scores := make([]FoldScore, 0, len(jobs))
	for score := range results {
		scores = append(scores, score)
	}
	return scores
}

// runJob fits one candidate on one fold. Panics inside the fit surface
// as errors on the FoldScore rather than killing the pool.
func runJob(train *dataset.Dataset, job cvJob, logger log.Logger) FoldScore {
	score := FoldScore{Candidate: job.candidate, Repeat: job.repeat, Fold: job.fold}
	score.Err = errors.SafeExecute("tune.foldFit", func() error {
		trainFold, err := train.Subset(job.trainIdx)
		if err != nil {
			return err
		}
		testFold, err := train.Subset(job.testIdx)
		if err != nil {
			return err
		}

		model, err := boost.Train(trainFold.X, trainFold.Labels, job.params, logger)
		if err != nil {
			return err
		}
		predicted, err := model.PredictLabels(testFold.X)
		if err != nil {
			return err
		}

		accuracy, err := labelAccuracy(testFold.Labels, predicted)
		if err != nil {
			return err
		}
		score.Accuracy = accuracy
		return nil
	})

	if score.Err != nil {
		logger.Warn("fold fit failed",
			log.CandidateKey, job.candidate,
			log.RepeatKey, job.repeat,
			log.FoldKey, job.fold,
			"error", score.Err.Error(),
		)
	} else {
		logger.Debug("fold fit finished",
			log.CandidateKey, job.candidate,
			log.RepeatKey, job.repeat,
			log.FoldKey, job.fold,
			log.AccuracyKey, score.Accuracy,
		)
	}
	return score
}

// summarize folds the sorted per-fold scores into per-candidate means
// and standard deviations over the successful folds only.
func summarize(scores []FoldScore, configs []boost.Params) []CandidateScore {
	perCandidate := make([][]float64, len(configs))
	for _, s := range scores {
		if s.Err != nil {
			continue
		}
		perCandidate[s.Candidate] = append(perCandidate[s.Candidate], s.Accuracy)
	}

	candidates := make([]CandidateScore, len(configs))
	for i, accuracies := range perCandidate {
		cand := CandidateScore{Index: i, Params: configs[i], Folds: len(accuracies)}
		if len(accuracies) > 0 {
			cand.Mean = stat.Mean(accuracies, nil)
		}
		if len(accuracies) > 1 {
			cand.Std = stat.StdDev(accuracies, nil)
		}
		candidates[i] = cand
	}
	return candidates
}

// fitFull trains one configuration on the whole training set and stamps
// the dataset's feature names onto the model.
func fitFull(train *dataset.Dataset, params boost.Params, logger log.Logger) (*boost.Model, error) {
	model, err := boost.Train(train.X, train.Labels, params, logger)
	if err != nil {
		return nil, err
	}
	model.FeatureNames = append([]string(nil), train.FeatureNames...)
	return model, nil
}

// labelAccuracy is the share of matching labels, delegated to the
// metrics package so every accuracy in the repo is the same definition.
func labelAccuracy(actual, predicted []int) (float64, error) {
	if len(actual) == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "tune.labelAccuracy")
	}
	yTrue := mat.NewVecDense(len(actual), nil)
	yPred := mat.NewVecDense(len(predicted), nil)
	for i := range actual {
		yTrue.SetVec(i, float64(actual[i]))
		yPred.SetVec(i, float64(predicted[i]))
	}
	return metrics.Accuracy(yTrue, yPred)
}
