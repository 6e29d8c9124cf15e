// Package evaluate scores a trained model on a held-out dataset and
// renders the resulting report as terminal tables.
package evaluate

import (
	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/dataset"
	"github.com/oncodata/metaboost/metrics"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
)

// Report collects every figure of a held-out evaluation. Building it is
// deterministic: the same model and test set always produce the same
// report.
type Report struct {
	Predictions []int
	Confusion   *metrics.ConfusionMatrix
	Accuracy    float64

	// Sensitivity and Specificity are indexed by class label.
	Sensitivity []float64
	Specificity []float64

	NoInformationRate float64

	ClassNames  []string
	TestSamples int
}

// Evaluate predicts labels for every row of test and derives the
// confusion matrix and the summary rates from them.
func Evaluate(model *boost.Model, test *dataset.Dataset) (*Report, error) {
	if model == nil {
		return nil, errors.NewValueError("evaluate.Evaluate", "model is nil")
	}
	if test == nil || test.NumSamples() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "evaluate.Evaluate")
	}

	predicted, err := model.PredictLabels(test.X)
	if err != nil {
		return nil, err
	}

	confusion, err := metrics.NewConfusionMatrix(test.Labels, predicted, test.ClassNames)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Predictions:       predicted,
		Confusion:         confusion,
		Accuracy:          confusion.Accuracy(),
		Sensitivity:       make([]float64, len(test.ClassNames)),
		Specificity:       make([]float64, len(test.ClassNames)),
		NoInformationRate: confusion.NoInformationRate(),
		ClassNames:        append([]string(nil), test.ClassNames...),
		TestSamples:       test.NumSamples(),
	}
	for class := range test.ClassNames {
		report.Sensitivity[class] = confusion.Sensitivity(class)
		report.Specificity[class] = confusion.Specificity(class)
	}

	log.GetLoggerWithName("evaluate").Info("held-out evaluation finished",
		log.SamplesKey, report.TestSamples,
		log.AccuracyKey, report.Accuracy,
	)
	return report, nil
}
