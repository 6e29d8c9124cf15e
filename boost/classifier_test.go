package boost

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodata/metaboost/pkg/errors"
)

func TestClassifierFitPredict(t *testing.T) {
	X, y := separableData(40)

	clf := NewClassifier().
		WithNumRounds(20).
		WithLearningRate(0.3).
		WithMinChildSamples(2).
		WithSeed(1).
		WithFeatureNames([]string{"signal", "noise"})

	require.False(t, clf.IsFitted())
	require.NoError(t, clf.Fit(X, y))
	require.True(t, clf.IsFitted())
	require.True(t, clf.state.IsFitted())

	labels, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, labels)

	score, err := clf.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	rows, cols := proba.Dims()
	assert.Equal(t, len(y), rows)
	assert.Equal(t, 1, cols)

	assert.Equal(t, []int{0, 1}, clf.Classes())

	ensemble := clf.Ensemble()
	require.NotNil(t, ensemble)
	assert.Equal(t, []string{"signal", "noise"}, ensemble.FeatureNames)
	assert.Equal(t, 20, ensemble.NumRounds)
}

func TestClassifierNotFitted(t *testing.T) {
	clf := NewClassifier()
	X, _ := separableData(10)

	var notFitted *errors.NotFittedError

	_, err := clf.Predict(X)
	require.ErrorAs(t, err, &notFitted)

	_, err = clf.PredictProba(X)
	require.ErrorAs(t, err, &notFitted)

	_, err = clf.FeatureImportance()
	require.ErrorAs(t, err, &notFitted)

	err = clf.SaveModel(filepath.Join(t.TempDir(), "model.gob"))
	require.ErrorAs(t, err, &notFitted)

	assert.Nil(t, clf.Ensemble())
	assert.Empty(t, clf.Classes())
}

func TestClassifierOptionChain(t *testing.T) {
	clf := NewClassifier().
		WithNumRounds(250).
		WithLearningRate(0.05).
		WithNumLeaves(15).
		WithMaxDepth(4).
		WithMinChildSamples(10).
		WithMinSplitGain(0.1).
		WithRegularization(1.5, 0.5).
		WithSubsample(0.8, 3).
		WithColsample(0.9).
		WithSeed(99).
		WithDeterministic(true)

	assert.Equal(t, 250, clf.Params.NumRounds)
	assert.Equal(t, 0.05, clf.Params.LearningRate)
	assert.Equal(t, 15, clf.Params.NumLeaves)
	assert.Equal(t, 4, clf.Params.MaxDepth)
	assert.Equal(t, 10, clf.Params.MinChildSamples)
	assert.Equal(t, 0.1, clf.Params.MinSplitGain)
	assert.Equal(t, 1.5, clf.Params.Lambda)
	assert.Equal(t, 0.5, clf.Params.Alpha)
	assert.Equal(t, 0.8, clf.Params.Subsample)
	assert.Equal(t, 3, clf.Params.SubsampleFreq)
	assert.Equal(t, 0.9, clf.Params.Colsample)
	assert.Equal(t, int64(99), clf.Params.Seed)
	assert.True(t, clf.Params.Deterministic)
}

func TestClassifierFeatureNameMismatch(t *testing.T) {
	X, y := separableData(10)

	clf := NewClassifier().WithFeatureNames([]string{"only_one"})
	err := clf.Fit(X, y)
	var dimErr *errors.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.False(t, clf.IsFitted())
}

func TestClassifierFitInvalidLabels(t *testing.T) {
	X, y := separableData(10)
	y[2] = 7

	clf := NewClassifier()
	err := clf.Fit(X, y)
	require.Error(t, err)
	assert.False(t, clf.IsFitted())
}

func TestClassifierSaveLoad(t *testing.T) {
	X, y := separableData(40)

	clf := NewClassifier().
		WithNumRounds(10).
		WithMinChildSamples(2).
		WithFeatureNames([]string{"signal", "noise"})
	require.NoError(t, clf.Fit(X, y))

	path := filepath.Join(t.TempDir(), "classifier.gob")
	require.NoError(t, clf.SaveModel(path))

	restored := NewClassifier()
	require.NoError(t, restored.LoadModel(path))
	require.True(t, restored.IsFitted())
	assert.Equal(t, []string{"signal", "noise"}, restored.FeatureNames)

	want, err := clf.Predict(X)
	require.NoError(t, err)
	got, err := restored.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClassifierScoreImperfect(t *testing.T) {
	X, y := separableData(20)

	clf := NewClassifier().WithNumRounds(5).WithMinChildSamples(2)
	require.NoError(t, clf.Fit(X, y))

	flipped := append([]int(nil), y...)
	flipped[0] = 1 - flipped[0]
	flipped[1] = 1 - flipped[1]

	score, err := clf.Score(X, flipped)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, score, 1e-12)
}

func TestClassifierFeatureImportance(t *testing.T) {
	X, y := separableData(40)

	clf := NewClassifier().
		WithNumRounds(10).
		WithMinChildSamples(2).
		WithFeatureNames([]string{"signal", "noise"})
	require.NoError(t, clf.Fit(X, y))

	ranking, err := clf.FeatureImportance()
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "signal", ranking[0].Feature)
	assert.InDelta(t, 100.0, ranking[0].Score, 1e-12)
}
