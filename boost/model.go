package boost

import (
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/oncodata/metaboost/core/model"
	"github.com/oncodata/metaboost/core/parallel"
	"github.com/oncodata/metaboost/pkg/errors"
)

// ModelType identifies boosted ensembles inside the gob envelope.
const ModelType = "boost.Model"

func init() {
	gob.Register(&Model{})
}

// Node is a single node in a decision tree. Child indices of -1 mark a leaf.
type Node struct {
	NodeID     int
	ParentID   int
	LeftChild  int
	RightChild int

	// Split information, meaningful on internal nodes
	SplitFeature int
	Threshold    float64
	Gain         float64

	// Leaf information
	LeafValue float64
	LeafCount int
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree is one regression tree of the ensemble. Nodes are stored in build
// order with the root at index 0.
type Tree struct {
	TreeIndex     int
	NumLeaves     int
	MaxDepth      int
	ShrinkageRate float64
	Nodes         []Node
}

// Predict walks the tree for one sample and returns the shrunken leaf value.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0
	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.LeafValue * t.ShrinkageRate
		}
		if features[node.SplitFeature] <= node.Threshold {
			nodeID = node.LeftChild
		} else {
			nodeID = node.RightChild
		}
	}
	return 0.0
}

// Model is a trained binary-classification ensemble: an init score plus
// shrunken regression trees summed into a raw score that sigmoid maps to
// the positive-class probability. Immutable after training; all fields are
// public for gob encoding.
type Model struct {
	Trees []Tree

	NumFeatures  int
	FeatureNames []string

	NumRounds    int
	LearningRate float64
	NumLeaves    int
	MaxDepth     int
	InitScore    float64

	Seed          int64
	Deterministic bool
}

// RawScore sums the init score and every tree's contribution for one sample.
func (m *Model) RawScore(features []float64) float64 {
	score := m.InitScore
	for i := range m.Trees {
		score += m.Trees[i].Predict(features)
	}
	return score
}

// PredictProba returns an n×1 matrix of positive-class probabilities.
// Rows are scored in parallel chunks.
func (m *Model) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures {
		return nil, errors.NewDimensionError("Model.PredictProba", m.NumFeatures, cols, 1)
	}
	if rows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Model.PredictProba")
	}

	probs := mat.NewDense(rows, 1, nil)
	parallel.Parallelize(rows, func(start, end int) {
		features := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(features, i, X)
			probs.Set(i, 0, sigmoid(m.RawScore(features)))
		}
	})

	return probs, nil
}

// Predict returns an n×1 matrix of 0/1 labels at the 0.5 threshold.
func (m *Model) Predict(X mat.Matrix) (*mat.Dense, error) {
	probs, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}

	rows, _ := probs.Dims()
	labels := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		if probs.At(i, 0) > 0.5 {
			labels.Set(i, 0, 1)
		}
	}
	return labels, nil
}

// PredictLabels is Predict flattened into an int slice.
func (m *Model) PredictLabels(X mat.Matrix) ([]int, error) {
	predicted, err := m.Predict(X)
	if err != nil {
		return nil, err
	}
	rows, _ := predicted.Dims()
	labels := make([]int, rows)
	for i := range labels {
		labels[i] = int(predicted.At(i, 0))
	}
	return labels, nil
}

// FeatureImportance returns per-feature totals over all trees: summed split
// gain for kind "gain", split usage counts for kind "split".
func (m *Model) FeatureImportance(kind string) ([]float64, error) {
	if kind != "gain" && kind != "split" {
		return nil, errors.NewValueError("Model.FeatureImportance", fmt.Sprintf("unknown importance kind %q", kind))
	}

	importance := make([]float64, m.NumFeatures)
	for _, tree := range m.Trees {
		for i := range tree.Nodes {
			node := &tree.Nodes[i]
			if node.IsLeaf() {
				continue
			}
			switch kind {
			case "gain":
				importance[node.SplitFeature] += node.Gain
			case "split":
				importance[node.SplitFeature]++
			}
		}
	}
	return importance, nil
}

// FeatureName returns the stored name of a feature column, synthesizing
// one when the model was trained without names.
func (m *Model) FeatureName(i int) string {
	if i < len(m.FeatureNames) {
		return m.FeatureNames[i]
	}
	return fmt.Sprintf("feature_%d", i)
}

// SaveModel persists the ensemble as a gob envelope.
func SaveModel(m *Model, path string) error {
	return model.SaveModel(m, ModelType, path)
}

// LoadModel restores an ensemble written by SaveModel.
func LoadModel(path string) (*Model, error) {
	loaded, err := model.LoadModel(ModelType, path)
	if err != nil {
		return nil, err
	}
	m, ok := loaded.(*Model)
	if !ok {
		return nil, errors.Newf("boost.LoadModel: unexpected payload type %T", loaded)
	}
	return m, nil
}
