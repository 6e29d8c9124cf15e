// Package boost implements gradient-boosted decision trees for binary
// classification: a deterministic seeded trainer, the tree ensemble model
// with gob persistence, feature-importance rankings, and an estimator
// wrapper with a scikit-learn style Fit/Predict surface.
package boost

import (
	"github.com/oncodata/metaboost/pkg/errors"
)

// Params collects every training hyperparameter. The zero value is not
// usable; start from DefaultParams.
type Params struct {
	NumRounds       int     // Number of boosting rounds
	LearningRate    float64 // Shrinkage applied to each tree
	NumLeaves       int     // Maximum leaves per tree
	MaxDepth        int     // Maximum tree depth, -1 or 0 for unlimited
	MinChildSamples int     // Minimum samples in a leaf
	MinSplitGain    float64 // Minimum gain to accept a split
	Lambda          float64 // L2 regularization on leaf values
	Alpha           float64 // L1 regularization on leaf values
	Subsample       float64 // Row sampling fraction per bagging round
	SubsampleFreq   int     // Re-draw the row sample every this many rounds, 0 disables
	Colsample       float64 // Feature sampling fraction per tree
	Seed            int64   // Seed for row and feature sampling
	Deterministic   bool    // Recorded on the model for reproducibility audits
	NumWorkers      int     // Worker override for concurrent candidate fits, 0 for automatic
}

// DefaultParams returns the baseline configuration.
func DefaultParams() Params {
	return Params{
		NumRounds:       100,
		LearningRate:    0.1,
		NumLeaves:       31,
		MaxDepth:        -1,
		MinChildSamples: 20,
		MinSplitGain:    0.0,
		Lambda:          0.0,
		Alpha:           0.0,
		Subsample:       1.0,
		SubsampleFreq:   0,
		Colsample:       1.0,
		Seed:            42,
	}
}

// Validate rejects out-of-range hyperparameters before any training work.
func (p Params) Validate() error {
	if p.NumRounds < 1 {
		return errors.NewValidationError("num_rounds", "must be at least 1", p.NumRounds)
	}
	if p.LearningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", p.LearningRate)
	}
	if p.NumLeaves < 2 {
		return errors.NewValidationError("num_leaves", "must be at least 2", p.NumLeaves)
	}
	if p.MaxDepth < -1 {
		return errors.NewValidationError("max_depth", "must be -1 (unlimited) or non-negative", p.MaxDepth)
	}
	if p.MinChildSamples < 1 {
		return errors.NewValidationError("min_child_samples", "must be at least 1", p.MinChildSamples)
	}
	if p.MinSplitGain < 0 {
		return errors.NewValidationError("min_split_gain", "must be non-negative", p.MinSplitGain)
	}
	if p.Lambda < 0 {
		return errors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	}
	if p.Alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", p.Alpha)
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		return errors.NewValidationError("subsample", "must be inside (0, 1]", p.Subsample)
	}
	if p.SubsampleFreq < 0 {
		return errors.NewValidationError("subsample_freq", "must be non-negative", p.SubsampleFreq)
	}
	if p.Colsample <= 0 || p.Colsample > 1 {
		return errors.NewValidationError("colsample", "must be inside (0, 1]", p.Colsample)
	}
	if p.NumWorkers < 0 {
		return errors.NewValidationError("num_workers", "must be non-negative", p.NumWorkers)
	}
	return nil
}
