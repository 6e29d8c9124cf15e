// Package split partitions a dataset into class-balanced subsets: a seeded
// train/test split for the pipeline and stratified k-folds for the tuner.
package split

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/oncodata/metaboost/dataset"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
)

// StratifiedSplitter draws a train/test partition that preserves the class
// proportions of the source. The same TrainFraction and Seed always produce
// the same partition.
type StratifiedSplitter struct {
	TrainFraction float64
	Seed          int64
}

// Split shuffles each class's row indices with a seeded generator and moves
// round(TrainFraction * classSize) of them into Train, the rest into Test.
// Both sides keep at least one sample of every class, so any class with
// fewer than 2 samples is an error, as is a fraction outside (0, 1).
func (s StratifiedSplitter) Split(ds *dataset.Dataset) (*dataset.Dataset, *dataset.Dataset, error) {
	if s.TrainFraction <= 0 || s.TrainFraction >= 1 {
		return nil, nil, errors.NewValidationError("train_fraction", "must be inside (0, 1)", s.TrainFraction)
	}

	byClass := groupByClass(ds.Labels, len(ds.ClassNames))
	for c, indices := range byClass {
		if len(indices) < 2 {
			return nil, nil, errors.NewValueError("split.Split",
				fmt.Sprintf("class %q has %d samples, cannot place one on each side", ds.ClassNames[c], len(indices)))
		}
	}

	rng := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)))

	var trainIdx, testIdx []int
	for _, indices := range byClass {
		shuffled := append([]int(nil), indices...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		k := int(math.Round(s.TrainFraction * float64(len(shuffled))))
		if k < 1 {
			k = 1
		}
		if k > len(shuffled)-1 {
			k = len(shuffled) - 1
		}

		trainIdx = append(trainIdx, shuffled[:k]...)
		testIdx = append(testIdx, shuffled[k:]...)
	}

	// Keep the source row order inside each side
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	train, err := ds.Subset(trainIdx)
	if err != nil {
		return nil, nil, err
	}
	test, err := ds.Subset(testIdx)
	if err != nil {
		return nil, nil, err
	}

	log.GetLoggerWithName("split").Debug("stratified split drawn",
		"train_samples", train.NumSamples(),
		"test_samples", test.NumSamples(),
		log.RandomSeedKey, s.Seed,
	)
	return train, test, nil
}

// groupByClass collects row indices per encoded label, in row order.
func groupByClass(labels []int, numClasses int) [][]int {
	byClass := make([][]int, numClasses)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}
	return byClass
}
