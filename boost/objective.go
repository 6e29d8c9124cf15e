package boost

import (
	"math"

	"github.com/oncodata/metaboost/pkg/errors"
)

// binaryObjective is the binary logistic loss on raw (pre-sigmoid) scores.
// Gradient and hessian are taken with respect to the raw score: with
// p = sigmoid(score), gradient = p - y and hessian = p(1-p).
type binaryObjective struct{}

func (binaryObjective) Gradient(rawScore, label float64) float64 {
	return sigmoid(rawScore) - label
}

func (binaryObjective) Hessian(rawScore, _ float64) float64 {
	p := sigmoid(rawScore)
	h := p * (1 - p)
	// A vanishing hessian would blow up leaf values on saturated scores
	if h < 1e-16 {
		h = 1e-16
	}
	return h
}

func (binaryObjective) Loss(rawScore, label float64) float64 {
	p := sigmoid(rawScore)
	if label == 1 {
		return -errors.StabilizeLog(p)
	}
	return -errors.StabilizeLog(1 - p)
}

// InitScore returns the log-odds of the positive rate, the constant score
// that minimizes the loss before any tree is added.
func (binaryObjective) InitScore(labels []float64) float64 {
	if len(labels) == 0 {
		return 0
	}
	sum := 0.0
	for _, y := range labels {
		sum += y
	}
	p := sum / float64(len(labels))
	p = errors.ClipValue(p, 1e-15, 1-1e-15)
	return math.Log(p / (1 - p))
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-x))
}
