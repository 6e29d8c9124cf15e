package boost

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/oncodata/metaboost/core/model"
	"github.com/oncodata/metaboost/metrics"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
)

// Classifier is a scikit-learn style estimator around Train. The zero
// value is not usable; construct with NewClassifier and adjust
// hyperparameters through the With methods before calling Fit.
//
// Example:
//
//	clf := boost.NewClassifier().
//	    WithNumRounds(200).
//	    WithLearningRate(0.05).
//	    WithSeed(42)
//	if err := clf.Fit(X, y); err != nil {
//	    return err
//	}
//	labels, err := clf.Predict(XTest)
type Classifier struct {
	state model.StateManager

	// Params holds the training hyperparameters applied on Fit.
	Params Params

	// FeatureNames optionally names the columns of X. When set, the
	// fitted model carries them and importance rankings report them.
	FeatureNames []string

	ensemble *Model
	classes_ []int

	logger log.Logger
	mu     sync.RWMutex
}

var (
	_ model.Classifier  = (*Classifier)(nil)
	_ model.Persistable = (*Classifier)(nil)
)

// NewClassifier returns a classifier with default hyperparameters.
func NewClassifier() *Classifier {
	return &Classifier{
		Params: DefaultParams(),
		logger: log.GetLoggerWithName("boost.classifier"),
	}
}

// WithNumRounds sets the number of boosting rounds.
func (c *Classifier) WithNumRounds(n int) *Classifier {
	c.Params.NumRounds = n
	return c
}

// WithLearningRate sets the shrinkage applied to every tree.
func (c *Classifier) WithLearningRate(rate float64) *Classifier {
	c.Params.LearningRate = rate
	return c
}

// WithNumLeaves sets the maximum number of leaves per tree.
func (c *Classifier) WithNumLeaves(n int) *Classifier {
	c.Params.NumLeaves = n
	return c
}

// WithMaxDepth sets the maximum tree depth. -1 leaves depth unbounded.
func (c *Classifier) WithMaxDepth(depth int) *Classifier {
	c.Params.MaxDepth = depth
	return c
}

// WithMinChildSamples sets the minimum number of samples per leaf.
func (c *Classifier) WithMinChildSamples(n int) *Classifier {
	c.Params.MinChildSamples = n
	return c
}

// WithMinSplitGain sets the minimum gain required to keep a split.
func (c *Classifier) WithMinSplitGain(gain float64) *Classifier {
	c.Params.MinSplitGain = gain
	return c
}

// WithRegularization sets the L2 (lambda) and L1 (alpha) penalties.
func (c *Classifier) WithRegularization(lambda, alpha float64) *Classifier {
	c.Params.Lambda = lambda
	c.Params.Alpha = alpha
	return c
}

// WithSubsample enables row bagging: fraction of rows per sample, drawn
// fresh every freq rounds.
func (c *Classifier) WithSubsample(fraction float64, freq int) *Classifier {
	c.Params.Subsample = fraction
	c.Params.SubsampleFreq = freq
	return c
}

// WithColsample sets the fraction of features sampled per tree.
func (c *Classifier) WithColsample(fraction float64) *Classifier {
	c.Params.Colsample = fraction
	return c
}

// WithSeed sets the seed for row and feature sampling.
func (c *Classifier) WithSeed(seed int64) *Classifier {
	c.Params.Seed = seed
	return c
}

// WithDeterministic records the deterministic flag on the fitted model.
func (c *Classifier) WithDeterministic(deterministic bool) *Classifier {
	c.Params.Deterministic = deterministic
	return c
}

// WithFeatureNames names the feature columns for importance reporting.
func (c *Classifier) WithFeatureNames(names []string) *Classifier {
	c.FeatureNames = append([]string(nil), names...)
	return c
}

// Fit trains the classifier on X and 0/1 labels y.
func (c *Classifier) Fit(X mat.Matrix, y []int) (err error) {
	defer errors.Recover(&err, "Classifier.Fit")

	rows, cols := X.Dims()
	if len(c.FeatureNames) > 0 && len(c.FeatureNames) != cols {
		return errors.NewDimensionError("Classifier.Fit", len(c.FeatureNames), cols, 1)
	}

	ensemble, err := Train(X, y, c.Params, c.logger)
	if err != nil {
		return err
	}
	ensemble.FeatureNames = append([]string(nil), c.FeatureNames...)

	c.mu.Lock()
	c.ensemble = ensemble
	c.classes_ = []int{0, 1}
	c.mu.Unlock()

	c.state.SetDimensions(cols, rows)
	c.state.SetFitted()

	c.logger.Info("classifier fitted",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.IterationKey, ensemble.NumRounds,
	)
	return nil
}

// Predict returns the 0/1 label for every row of X.
func (c *Classifier) Predict(X mat.Matrix) ([]int, error) {
	ensemble, err := c.fittedEnsemble("Predict")
	if err != nil {
		return nil, err
	}
	return ensemble.PredictLabels(X)
}

// PredictProba returns the positive-class probability for every row of X.
func (c *Classifier) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	ensemble, err := c.fittedEnsemble("PredictProba")
	if err != nil {
		return nil, err
	}
	return ensemble.PredictProba(X)
}

// Score returns the accuracy of the classifier on X against labels y.
func (c *Classifier) Score(X mat.Matrix, y []int) (float64, error) {
	predicted, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	if len(y) != len(predicted) {
		return 0, errors.NewDimensionError("Classifier.Score", len(predicted), len(y), 0)
	}

	yTrue := mat.NewVecDense(len(y), nil)
	yPred := mat.NewVecDense(len(y), nil)
	for i := range y {
		yTrue.SetVec(i, float64(y[i]))
		yPred.SetVec(i, float64(predicted[i]))
	}
	return metrics.Accuracy(yTrue, yPred)
}

// Classes returns the class labels the classifier predicts.
func (c *Classifier) Classes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int(nil), c.classes_...)
}

// Ensemble returns the fitted model, or nil before Fit.
func (c *Classifier) Ensemble() *Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ensemble
}

// FeatureImportance ranks the trained features by gain.
func (c *Classifier) FeatureImportance() ([]FeatureScore, error) {
	ensemble, err := c.fittedEnsemble("FeatureImportance")
	if err != nil {
		return nil, err
	}
	return ImportanceRanking(ensemble, "gain")
}

// IsFitted reports whether Fit has completed successfully.
func (c *Classifier) IsFitted() bool {
	return c.state.IsFitted()
}

// SaveModel persists the wrapped ensemble to path.
func (c *Classifier) SaveModel(path string) error {
	ensemble, err := c.fittedEnsemble("SaveModel")
	if err != nil {
		return err
	}
	return SaveModel(ensemble, path)
}

// LoadModel restores a previously saved ensemble and marks the
// classifier fitted.
func (c *Classifier) LoadModel(path string) error {
	ensemble, err := LoadModel(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ensemble = ensemble
	c.classes_ = []int{0, 1}
	c.FeatureNames = append([]string(nil), ensemble.FeatureNames...)
	c.mu.Unlock()

	c.state.SetDimensions(ensemble.NumFeatures, 0)
	c.state.SetFitted()
	return nil
}

func (c *Classifier) fittedEnsemble(method string) (*Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.state.IsFitted() || c.ensemble == nil {
		return nil, errors.NewNotFittedError("Classifier", method)
	}
	return c.ensemble, nil
}
