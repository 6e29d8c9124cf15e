package evaluate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/dataset"
	"github.com/oncodata/metaboost/pkg/errors"
)

// stumpModel predicts class 1 for positive feature 0.
func stumpModel() *boost.Model {
	return &boost.Model{
		NumFeatures:  1,
		FeatureNames: []string{"signal"},
		Trees: []boost.Tree{
			{
				NumLeaves:     2,
				MaxDepth:      1,
				ShrinkageRate: 1.0,
				Nodes: []boost.Node{
					{NodeID: 0, ParentID: -1, LeftChild: 1, RightChild: 2, SplitFeature: 0, Threshold: 0, Gain: 5},
					{NodeID: 1, ParentID: 0, LeftChild: -1, RightChild: -1, LeafValue: -30},
					{NodeID: 2, ParentID: 0, LeftChild: -1, RightChild: -1, LeafValue: 30},
				},
			},
		},
	}
}

// mixedTest has 10 rows where the stump gets 6 right: two class-0 rows
// sit above the threshold and two class-1 rows below it.
func mixedTest() *dataset.Dataset {
	values := []float64{-2, -1, -3, 1, 2, -4, 3, 4, 5, -5}
	labels := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	X := mat.NewDense(len(values), 1, values)
	return &dataset.Dataset{
		X:            X,
		Labels:       labels,
		FeatureNames: []string{"signal"},
		ClassNames:   []string{"Died", "Survived"},
		OutcomeName:  "death_from_cancer",
	}
}

func TestEvaluate(t *testing.T) {
	report, err := Evaluate(stumpModel(), mixedTest())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 1, 1, 0, 1, 1, 1, 0}, report.Predictions)
	assert.Equal(t, 10, report.TestSamples)
	assert.Equal(t, []string{"Died", "Survived"}, report.ClassNames)

	// Actual Died: 3 predicted Died, 2 predicted Survived.
	// Actual Survived: 2 predicted Died, 3 predicted Survived.
	assert.Equal(t, 3, report.Confusion.At(0, 0))
	assert.Equal(t, 2, report.Confusion.At(0, 1))
	assert.Equal(t, 2, report.Confusion.At(1, 0))
	assert.Equal(t, 3, report.Confusion.At(1, 1))

	assert.InDelta(t, 0.6, report.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, report.NoInformationRate, 1e-12)
	assert.InDelta(t, 0.6, report.Sensitivity[0], 1e-12)
	assert.InDelta(t, 0.6, report.Sensitivity[1], 1e-12)
	assert.InDelta(t, 0.6, report.Specificity[0], 1e-12)
	assert.InDelta(t, 0.6, report.Specificity[1], 1e-12)
}

func TestEvaluateDeterministic(t *testing.T) {
	first, err := Evaluate(stumpModel(), mixedTest())
	require.NoError(t, err)
	second, err := Evaluate(stumpModel(), mixedTest())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluateErrors(t *testing.T) {
	_, err := Evaluate(nil, mixedTest())
	require.Error(t, err)

	_, err = Evaluate(stumpModel(), nil)
	require.ErrorIs(t, err, errors.ErrEmptyData)

	wide := mixedTest()
	wide.X = mat.NewDense(2, 3, nil)
	wide.Labels = []int{0, 1}
	_, err = Evaluate(stumpModel(), wide)
	var dimErr *errors.DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestReportRender(t *testing.T) {
	report, err := Evaluate(stumpModel(), mixedTest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "Confusion matrix")
	assert.Contains(t, out, "Died")
	assert.Contains(t, out, "Survived")
	assert.Contains(t, out, "No information rate")
	assert.Contains(t, out, "0.6000")
	assert.Contains(t, out, "0.5000")

	// All four confusion cells appear: 3, 2, 2, 3.
	assert.GreaterOrEqual(t, strings.Count(out, " 3 "), 2)
	assert.GreaterOrEqual(t, strings.Count(out, " 2 "), 2)
}

func TestRenderImportance(t *testing.T) {
	ranking := []boost.FeatureScore{
		{Feature: "signal", Score: 100},
		{Feature: "grade", Score: 42.5},
		{Feature: "noise", Score: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderImportance(&buf, ranking, 2))
	out := buf.String()

	assert.Contains(t, out, "Variable importance")
	assert.Contains(t, out, "signal")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "grade")
	assert.NotContains(t, out, "noise")

	buf.Reset()
	require.NoError(t, RenderImportance(&buf, ranking, 0))
	assert.Contains(t, buf.String(), "noise")
}
