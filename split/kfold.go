package split

import (
	"fmt"
	"math/rand/v2"

	"github.com/oncodata/metaboost/pkg/errors"
)

// Fold is one cross-validation fold as index sets into the source rows.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// StratifiedKFold assigns rows to NumFolds folds so that every fold's test
// set approximates the class proportions of the whole. With Shuffle set,
// assignment order within each class is randomized by Seed; otherwise rows
// go to folds in their original order.
type StratifiedKFold struct {
	NumFolds int
	Shuffle  bool
	Seed     int64
}

// Split returns the fold index pairs for the given label vector.
// Every class must have at least NumFolds samples so each test set sees
// every class.
func (s StratifiedKFold) Split(labels []int) ([]Fold, error) {
	if s.NumFolds < 2 {
		return nil, errors.NewValidationError("num_folds", "must be at least 2", s.NumFolds)
	}
	if len(labels) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "split.StratifiedKFold")
	}

	numClasses := 0
	for _, label := range labels {
		if label < 0 {
			return nil, errors.NewValueError("split.StratifiedKFold", fmt.Sprintf("negative label %d", label))
		}
		if label+1 > numClasses {
			numClasses = label + 1
		}
	}

	byClass := groupByClass(labels, numClasses)
	for c, indices := range byClass {
		if len(indices) < s.NumFolds {
			return nil, errors.NewValueError("split.StratifiedKFold",
				fmt.Sprintf("class %d has %d samples, fewer than %d folds", c, len(indices), s.NumFolds))
		}
	}

	var rng *rand.Rand
	if s.Shuffle {
		rng = rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)))
	}

	folds := make([]Fold, s.NumFolds)

	// Distribute each class across folds, front folds absorbing the remainder
	for _, indices := range byClass {
		assigned := indices
		if rng != nil {
			assigned = append([]int(nil), indices...)
			rng.Shuffle(len(assigned), func(i, j int) {
				assigned[i], assigned[j] = assigned[j], assigned[i]
			})
		}

		foldSize := len(assigned) / s.NumFolds
		remainder := len(assigned) % s.NumFolds

		cursor := 0
		for f := 0; f < s.NumFolds; f++ {
			take := foldSize
			if f < remainder {
				take++
			}
			folds[f].TestIndices = append(folds[f].TestIndices, assigned[cursor:cursor+take]...)
			cursor += take
		}
	}

	// Train sets are the complements, in source row order
	for f := range folds {
		inTest := make(map[int]bool, len(folds[f].TestIndices))
		for _, idx := range folds[f].TestIndices {
			inTest[idx] = true
		}
		train := make([]int, 0, len(labels)-len(folds[f].TestIndices))
		for i := range labels {
			if !inTest[i] {
				train = append(train, i)
			}
		}
		folds[f].TrainIndices = train
	}

	return folds, nil
}
