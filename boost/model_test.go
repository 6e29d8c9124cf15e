package boost

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/oncodata/metaboost/pkg/errors"
)

// stumpTree returns a one-split tree on feature 0 at the given threshold.
func stumpTree(threshold, leftValue, rightValue, shrinkage float64) Tree {
	return Tree{
		NumLeaves:     2,
		MaxDepth:      1,
		ShrinkageRate: shrinkage,
		Nodes: []Node{
			{NodeID: 0, ParentID: -1, LeftChild: 1, RightChild: 2, SplitFeature: 0, Threshold: threshold, Gain: 4},
			{NodeID: 1, ParentID: 0, LeftChild: -1, RightChild: -1, LeafValue: leftValue, LeafCount: 5},
			{NodeID: 2, ParentID: 0, LeftChild: -1, RightChild: -1, LeafValue: rightValue, LeafCount: 5},
		},
	}
}

func TestTreePredict(t *testing.T) {
	tree := stumpTree(0.5, -1, 2, 0.1)

	assert.InDelta(t, -0.1, tree.Predict([]float64{0.2}), 1e-12)
	assert.InDelta(t, -0.1, tree.Predict([]float64{0.5}), 1e-12)
	assert.InDelta(t, 0.2, tree.Predict([]float64{0.7}), 1e-12)
}

func TestTreePredictSingleLeaf(t *testing.T) {
	tree := Tree{
		NumLeaves:     1,
		ShrinkageRate: 0.1,
		Nodes: []Node{
			{NodeID: 0, ParentID: -1, LeftChild: -1, RightChild: -1, LeafValue: 5, LeafCount: 10},
		},
	}
	assert.InDelta(t, 0.5, tree.Predict([]float64{42}), 1e-12)
}

func TestModelRawScore(t *testing.T) {
	m := &Model{
		InitScore:   0.3,
		NumFeatures: 1,
		Trees: []Tree{
			stumpTree(0.5, -1, 2, 0.1),
			{
				NumLeaves:     1,
				ShrinkageRate: 0.1,
				Nodes: []Node{
					{NodeID: 0, ParentID: -1, LeftChild: -1, RightChild: -1, LeafValue: 5},
				},
			},
		},
	}

	assert.InDelta(t, 0.3-0.1+0.5, m.RawScore([]float64{0.2}), 1e-12)
	assert.InDelta(t, 0.3+0.2+0.5, m.RawScore([]float64{0.7}), 1e-12)
}

func TestModelPredict(t *testing.T) {
	m := &Model{
		NumFeatures: 1,
		Trees:       []Tree{stumpTree(0, -30, 30, 1.0)},
	}

	X := mat.NewDense(2, 1, []float64{-1, 1})

	proba, err := m.PredictProba(X)
	require.NoError(t, err)
	assert.Less(t, proba.At(0, 0), 1e-6)
	assert.Greater(t, proba.At(1, 0), 1.0-1e-6)

	predicted, err := m.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, predicted.At(0, 0))
	assert.Equal(t, 1.0, predicted.At(1, 0))

	labels, err := m.PredictLabels(X)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)
}

func TestModelPredictDimensionMismatch(t *testing.T) {
	m := &Model{NumFeatures: 1, Trees: []Tree{stumpTree(0, -1, 1, 1.0)}}

	X := mat.NewDense(2, 3, nil)
	_, err := m.PredictProba(X)
	var dimErr *errors.DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestModelGobRoundTrip(t *testing.T) {
	X, y := separableData(30)

	params := DefaultParams()
	params.NumRounds = 5
	params.MinChildSamples = 2

	m, err := Train(X, y, params, nil)
	require.NoError(t, err)
	m.FeatureNames = []string{"signal", "noise"}

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, SaveModel(m, path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	require.Equal(t, m, loaded)

	wantProba, err := m.PredictProba(X)
	require.NoError(t, err)
	gotProba, err := loaded.PredictProba(X)
	require.NoError(t, err)
	assert.Equal(t, wantProba.RawMatrix().Data, gotProba.RawMatrix().Data)
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "absent.gob"))
	require.Error(t, err)
}

func TestModelFeatureImportance(t *testing.T) {
	// Tree 1 splits feature 0 (gain 8) then feature 1 (gain 2); tree 2
	// splits feature 0 again (gain 4).
	m := &Model{
		NumFeatures: 3,
		Trees: []Tree{
			{
				NumLeaves:     3,
				ShrinkageRate: 0.1,
				Nodes: []Node{
					{NodeID: 0, ParentID: -1, LeftChild: 1, RightChild: 2, SplitFeature: 0, Threshold: 0, Gain: 8},
					{NodeID: 1, ParentID: 0, LeftChild: -1, RightChild: -1, LeafValue: -1},
					{NodeID: 2, ParentID: 0, LeftChild: 3, RightChild: 4, SplitFeature: 1, Threshold: 1, Gain: 2},
					{NodeID: 3, ParentID: 2, LeftChild: -1, RightChild: -1, LeafValue: 1},
					{NodeID: 4, ParentID: 2, LeftChild: -1, RightChild: -1, LeafValue: 2},
				},
			},
			stumpTree(0, -1, 1, 0.1),
		},
	}
	m.Trees[1].Nodes[0].Gain = 4

	gain, err := m.FeatureImportance("gain")
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 2, 0}, gain)

	splits, err := m.FeatureImportance("split")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 0}, splits)

	_, err = m.FeatureImportance("cover")
	var valueErr *errors.ValueError
	require.ErrorAs(t, err, &valueErr)
}

func TestModelFeatureName(t *testing.T) {
	named := &Model{NumFeatures: 2, FeatureNames: []string{"age", "size"}}
	assert.Equal(t, "age", named.FeatureName(0))
	assert.Equal(t, "size", named.FeatureName(1))

	unnamed := &Model{NumFeatures: 2}
	assert.Equal(t, "feature_0", unnamed.FeatureName(0))
	assert.Equal(t, "feature_1", unnamed.FeatureName(1))
}
