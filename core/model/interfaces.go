// Package model provides shared interfaces, fitted-state management and
// gob persistence for the estimators in this module.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the minimal interface implemented by every model.
type Estimator interface {
	// IsFitted reports whether the model has been fitted.
	IsFitted() bool
}

// Classifier is the interface satisfied by classification estimators.
// X is always a design matrix; labels travel as an int slice encoded
// 0/1 in dataset order.
type Classifier interface {
	Estimator

	// Fit trains the model on X and the encoded labels.
	Fit(X mat.Matrix, y []int) error

	// Predict returns the predicted label for each row of X.
	Predict(X mat.Matrix) ([]int, error)

	// PredictProba returns the positive-class probability for each row
	// of X as an n-by-1 matrix.
	PredictProba(X mat.Matrix) (*mat.Dense, error)

	// Score returns the accuracy of Predict(X) against y.
	Score(X mat.Matrix, y []int) (float64, error)

	// Classes returns the encoded classes seen during fitting.
	Classes() []int
}

// Persistable is the interface for models that round-trip through a
// file on disk.
type Persistable interface {
	// SaveModel saves the model to a file.
	SaveModel(path string) error

	// LoadModel loads the model from a file.
	LoadModel(path string) error
}
