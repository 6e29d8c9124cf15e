package split

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatLabels(counts []int) []int {
	var labels []int
	for class, n := range counts {
		for i := 0; i < n; i++ {
			labels = append(labels, class)
		}
	}
	return labels
}

// TestKFoldProportions tests per-fold class balance
func TestKFoldProportions(t *testing.T) {
	labels := repeatLabels([]int{8, 4})
	folds, err := StratifiedKFold{NumFolds: 4}.Split(labels)
	require.NoError(t, err)
	require.Len(t, folds, 4)

	for f, fold := range folds {
		assert.Len(t, fold.TestIndices, 3, "fold %d", f)
		assert.Len(t, fold.TrainIndices, 9, "fold %d", f)

		classCounts := make([]int, 2)
		for _, idx := range fold.TestIndices {
			classCounts[labels[idx]]++
		}
		assert.Equal(t, []int{2, 1}, classCounts, "fold %d", f)
	}
}

// TestKFoldDisjointCover tests that test sets tile the rows exactly once
func TestKFoldDisjointCover(t *testing.T) {
	labels := repeatLabels([]int{17, 9})
	folds, err := StratifiedKFold{NumFolds: 5, Shuffle: true, Seed: 11}.Split(labels)
	require.NoError(t, err)

	var all []int
	for _, fold := range folds {
		all = append(all, fold.TestIndices...)

		// Train is the exact complement
		seen := make(map[int]bool)
		for _, idx := range fold.TestIndices {
			seen[idx] = true
		}
		for _, idx := range fold.TrainIndices {
			assert.False(t, seen[idx])
			seen[idx] = true
		}
		assert.Len(t, seen, len(labels))
	}

	sort.Ints(all)
	require.Len(t, all, len(labels))
	for i, idx := range all {
		assert.Equal(t, i, idx)
	}
}

// TestKFoldDeterminism tests seeded shuffle reproducibility
func TestKFoldDeterminism(t *testing.T) {
	labels := repeatLabels([]int{20, 12})

	f1, err := StratifiedKFold{NumFolds: 4, Shuffle: true, Seed: 99}.Split(labels)
	require.NoError(t, err)
	f2, err := StratifiedKFold{NumFolds: 4, Shuffle: true, Seed: 99}.Split(labels)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	f3, err := StratifiedKFold{NumFolds: 4, Shuffle: true, Seed: 100}.Split(labels)
	require.NoError(t, err)
	assert.NotEqual(t, f1, f3)
}

// TestKFoldNoShuffle tests the order-preserving assignment
func TestKFoldNoShuffle(t *testing.T) {
	labels := repeatLabels([]int{4, 2})
	folds, err := StratifiedKFold{NumFolds: 2}.Split(labels)
	require.NoError(t, err)

	// Class 0 rows 0..3 split in halves, class 1 rows 4..5 one each
	assert.ElementsMatch(t, []int{0, 1, 4}, folds[0].TestIndices)
	assert.ElementsMatch(t, []int{2, 3, 5}, folds[1].TestIndices)
}

// TestKFoldClassSmallerThanFolds tests the minimum class size check
func TestKFoldClassSmallerThanFolds(t *testing.T) {
	labels := repeatLabels([]int{10, 3})

	_, err := StratifiedKFold{NumFolds: 4}.Split(labels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class 1")
}

// TestKFoldValidation tests fold count and empty input checks
func TestKFoldValidation(t *testing.T) {
	_, err := StratifiedKFold{NumFolds: 1}.Split(repeatLabels([]int{4, 4}))
	assert.Error(t, err)

	_, err = StratifiedKFold{NumFolds: 2}.Split(nil)
	assert.Error(t, err)
}
