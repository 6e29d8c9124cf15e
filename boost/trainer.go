package boost

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
)

// trainer holds the mutable state of one training run.
type trainer struct {
	params Params
	X      *mat.Dense
	y      []float64
	logger log.Logger
	obj    binaryObjective

	gradients []float64
	hessians  []float64
	rawScores []float64

	trees     []Tree
	initScore float64

	rng        *rand.Rand
	baggedRows []int
}

// splitCandidate describes the best split found for one node.
type splitCandidate struct {
	Feature    int
	Threshold  float64
	Gain       float64
	LeftCount  int
	RightCount int
}

// Train fits a boosted binary-logloss ensemble on X and 0/1 labels y.
// Training is deterministic for identical data, params, and seed. The
// labels must contain both classes. A nil logger falls back to the
// package default.
func Train(X mat.Matrix, y []int, params Params, logger log.Logger) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.GetLoggerWithName("boost.trainer")
	}

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "boost.Train")
	}
	if len(y) != rows {
		return nil, errors.NewDimensionError("boost.Train", rows, len(y), 0)
	}

	targets := make([]float64, rows)
	var positives int
	for i, label := range y {
		switch label {
		case 0:
		case 1:
			positives++
		default:
			return nil, errors.NewValueError("boost.Train", fmt.Sprintf("label %d at row %d is not 0 or 1", label, i))
		}
		targets[i] = float64(label)
	}
	if positives == 0 || positives == rows {
		return nil, errors.NewValueError("boost.Train", "training labels contain a single class")
	}

	t := &trainer{
		params: params,
		X:      toDense(X),
		y:      targets,
		logger: logger,
		rng:    rand.New(rand.NewPCG(uint64(params.Seed), uint64(params.Seed))),
	}
	return t.run()
}

func toDense(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	rows, cols := X.Dims()
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, X.At(i, j))
		}
	}
	return d
}

func (t *trainer) run() (*Model, error) {
	rows, cols := t.X.Dims()

	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)
	t.initScore = t.obj.InitScore(t.y)
	t.rawScores = make([]float64, rows)
	for i := range t.rawScores {
		t.rawScores[i] = t.initScore
	}

	t.logger.Debug("boosting started",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.RandomSeedKey, t.params.Seed,
	)

	for round := 0; round < t.params.NumRounds; round++ {
		t.updateGradients()

		tree, err := t.buildTree(round, t.sampleRows(round), t.sampleFeatures(cols))
		if err != nil {
			return nil, errors.Wrapf(err, "boost.Train: round %d", round)
		}
		t.trees = append(t.trees, tree)
		t.applyTree(&tree)

		if (round+1)%10 == 0 || round == t.params.NumRounds-1 {
			t.logger.Debug("boosting progress",
				log.IterationKey, round+1,
				log.LossKey, t.currentLoss(),
			)
		}
	}

	return &Model{
		Trees:         t.trees,
		NumFeatures:   cols,
		NumRounds:     len(t.trees),
		LearningRate:  t.params.LearningRate,
		NumLeaves:     t.params.NumLeaves,
		MaxDepth:      t.params.MaxDepth,
		InitScore:     t.initScore,
		Seed:          t.params.Seed,
		Deterministic: t.params.Deterministic,
	}, nil
}

// updateGradients recomputes per-sample gradient and hessian from the
// current raw scores.
func (t *trainer) updateGradients() {
	for i := range t.y {
		t.gradients[i] = t.obj.Gradient(t.rawScores[i], t.y[i])
		t.hessians[i] = t.obj.Hessian(t.rawScores[i], t.y[i])
	}
}

// sampleRows returns the training rows for this round. Bagging draws a
// fresh seeded sample every SubsampleFreq rounds and reuses it in between.
func (t *trainer) sampleRows(round int) []int {
	rows := len(t.y)
	if t.params.Subsample >= 1 || t.params.SubsampleFreq <= 0 {
		if t.baggedRows == nil {
			t.baggedRows = sequence(rows)
		}
		return t.baggedRows
	}

	if t.baggedRows == nil || round%t.params.SubsampleFreq == 0 {
		k := int(t.params.Subsample * float64(rows))
		if k < 1 {
			k = 1
		}
		perm := t.rng.Perm(rows)
		sampled := append([]int(nil), perm[:k]...)
		sort.Ints(sampled)
		t.baggedRows = sampled
	}
	return t.baggedRows
}

// sampleFeatures returns the feature subset for the next tree.
func (t *trainer) sampleFeatures(cols int) []int {
	if t.params.Colsample >= 1 {
		return sequence(cols)
	}

	k := int(t.params.Colsample * float64(cols))
	if k < 1 {
		k = 1
	}
	perm := t.rng.Perm(cols)
	sampled := append([]int(nil), perm[:k]...)
	sort.Ints(sampled)
	return sampled
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// applyTree folds a finished tree into the cached raw scores of all rows.
func (t *trainer) applyTree(tree *Tree) {
	rows, cols := t.X.Dims()
	features := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(features, i, t.X)
		t.rawScores[i] += tree.Predict(features)
	}
}

// currentLoss is the mean training logloss at the current raw scores.
func (t *trainer) currentLoss() float64 {
	loss := 0.0
	for i := range t.y {
		loss += t.obj.Loss(t.rawScores[i], t.y[i])
	}
	return loss / float64(len(t.y))
}

// treeBuilder grows one tree depth-first under a shared leaf budget, so
// the finished tree has at most NumLeaves leaves.
type treeBuilder struct {
	t         *trainer
	tree      *Tree
	features  []int
	numSplits int
	maxDepth  int
	numLeaves int
}

func (t *trainer) buildTree(round int, rows, features []int) (Tree, error) {
	if len(rows) == 0 {
		return Tree{}, errors.Wrap(errors.ErrEmptyData, "buildTree")
	}

	tree := Tree{
		TreeIndex:     round,
		ShrinkageRate: t.params.LearningRate,
	}
	b := &treeBuilder{t: t, tree: &tree, features: features}
	b.buildNode(rows, -1, 0)

	tree.NumLeaves = b.numLeaves
	tree.MaxDepth = b.maxDepth
	return tree, nil
}

// buildNode appends the subtree for the given rows and returns its root
// node index.
func (b *treeBuilder) buildNode(indices []int, parent, depth int) int {
	p := b.t.params
	nodeID := len(b.tree.Nodes)

	atDepthLimit := p.MaxDepth > 0 && depth >= p.MaxDepth
	tooSmall := len(indices) < 2*p.MinChildSamples
	outOfLeaves := b.numSplits >= p.NumLeaves-1

	var best splitCandidate
	if !atDepthLimit && !tooSmall && !outOfLeaves {
		best = b.findBestSplit(indices)
	}
	if atDepthLimit || tooSmall || outOfLeaves || best.LeftCount == 0 || best.Gain <= p.MinSplitGain {
		b.appendLeaf(nodeID, parent, depth, indices)
		return nodeID
	}

	b.numSplits++
	b.tree.Nodes = append(b.tree.Nodes, Node{
		NodeID:       nodeID,
		ParentID:     parent,
		LeftChild:    -1,
		RightChild:   -1,
		SplitFeature: best.Feature,
		Threshold:    best.Threshold,
		Gain:         best.Gain,
	})

	left, right := b.partition(indices, best.Feature, best.Threshold)
	leftChild := b.buildNode(left, nodeID, depth+1)
	rightChild := b.buildNode(right, nodeID, depth+1)
	b.tree.Nodes[nodeID].LeftChild = leftChild
	b.tree.Nodes[nodeID].RightChild = rightChild
	return nodeID
}

func (b *treeBuilder) appendLeaf(nodeID, parent, depth int, indices []int) {
	b.tree.Nodes = append(b.tree.Nodes, Node{
		NodeID:     nodeID,
		ParentID:   parent,
		LeftChild:  -1,
		RightChild: -1,
		LeafValue:  b.leafValue(indices),
		LeafCount:  len(indices),
	})
	b.numLeaves++
	if depth > b.maxDepth {
		b.maxDepth = depth
	}
}

// leafValue is the regularized optimum -G/(H+lambda), with L1
// soft-thresholding of the gradient sum when alpha is set.
func (b *treeBuilder) leafValue(indices []int) float64 {
	sumGrad, sumHess := 0.0, 0.0
	for _, idx := range indices {
		sumGrad += b.t.gradients[idx]
		sumHess += b.t.hessians[idx]
	}

	if alpha := b.t.params.Alpha; alpha > 0 {
		switch {
		case sumGrad > alpha:
			sumGrad -= alpha
		case sumGrad < -alpha:
			sumGrad += alpha
		default:
			sumGrad = 0
		}
	}

	const epsilon = 1e-10
	if math.Abs(sumHess) < epsilon {
		sumHess = epsilon
	}
	return -sumGrad / (sumHess + b.t.params.Lambda + epsilon)
}

// findBestSplit scans the sampled features and keeps the highest gain.
// Earlier features win ties, which keeps tree growth deterministic.
func (b *treeBuilder) findBestSplit(indices []int) splitCandidate {
	best := splitCandidate{Gain: -math.MaxFloat64}
	for _, feature := range b.features {
		if candidate := b.findSplitForFeature(indices, feature); candidate.Gain > best.Gain {
			best = candidate
		}
	}
	if best.LeftCount == 0 {
		return splitCandidate{}
	}
	return best
}

// findSplitForFeature orders the node's rows by one feature value and
// prefix-scans gradient sums over every distinct threshold.
func (b *treeBuilder) findSplitForFeature(indices []int, feature int) splitCandidate {
	type rowValue struct {
		value float64
		idx   int
	}
	values := make([]rowValue, len(indices))
	for i, idx := range indices {
		values[i] = rowValue{value: b.t.X.At(idx, feature), idx: idx}
	}
	sort.Slice(values, func(i, j int) bool { return values[i].value < values[j].value })

	totalGrad, totalHess := 0.0, 0.0
	for _, idx := range indices {
		totalGrad += b.t.gradients[idx]
		totalHess += b.t.hessians[idx]
	}

	p := b.t.params
	best := splitCandidate{Feature: feature, Gain: -math.MaxFloat64}

	leftGrad, leftHess := 0.0, 0.0
	leftCount := 0
	for i := 0; i < len(values)-1; i++ {
		leftGrad += b.t.gradients[values[i].idx]
		leftHess += b.t.hessians[values[i].idx]
		leftCount++

		if values[i].value == values[i+1].value {
			continue
		}

		rightCount := len(indices) - leftCount
		if leftCount < p.MinChildSamples || rightCount < p.MinChildSamples {
			continue
		}

		gain := splitGain(leftGrad, leftHess, totalGrad-leftGrad, totalHess-leftHess, totalGrad, totalHess, p.Lambda)
		if gain > best.Gain {
			best.Gain = gain
			best.Threshold = (values[i].value + values[i+1].value) / 2
			best.LeftCount = leftCount
			best.RightCount = rightCount
		}
	}

	return best
}

// splitGain is the loss reduction of a split under L2 regularization.
func splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess, lambda float64) float64 {
	leftScore := leftGrad * leftGrad / (leftHess + lambda)
	rightScore := rightGrad * rightGrad / (rightHess + lambda)
	totalScore := totalGrad * totalGrad / (totalHess + lambda)
	return 0.5 * (leftScore + rightScore - totalScore)
}

// partition splits the rows on a threshold, preserving their order.
func (b *treeBuilder) partition(indices []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, idx := range indices {
		if b.t.X.At(idx, feature) <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}
