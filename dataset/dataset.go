// Package dataset loads the clinical expression CSV into a numeric design
// matrix with an encoded binary outcome, and provides the row and column
// views (Subset, Select) the splitter and the reduction pass operate on.
package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/oncodata/metaboost/pkg/errors"
)

// Dataset is an ordered feature matrix with a parallel label vector.
// Labels are encoded 0/1 in the order their classes first appear in the
// source; ClassNames maps the encoded value back to the canonical name.
// All fields are public for gob encoding.
type Dataset struct {
	X            *mat.Dense
	Labels       []int
	FeatureNames []string
	ClassNames   []string
	OutcomeName  string
}

// NumSamples returns the number of rows in the feature matrix.
func (ds *Dataset) NumSamples() int {
	if ds.X == nil {
		return 0
	}
	r, _ := ds.X.Dims()
	return r
}

// NumFeatures returns the number of feature columns.
func (ds *Dataset) NumFeatures() int {
	if ds.X == nil {
		return 0
	}
	_, c := ds.X.Dims()
	return c
}

// ClassCounts returns the number of samples per encoded class, indexed
// like ClassNames.
func (ds *Dataset) ClassCounts() []int {
	counts := make([]int, len(ds.ClassNames))
	for _, label := range ds.Labels {
		counts[label]++
	}
	return counts
}

// Select returns a new Dataset restricted to the named feature columns,
// in the given order. Labels and class names are copied so the result is
// independent of the receiver. An unknown feature name is an error.
func (ds *Dataset) Select(features []string) (*Dataset, error) {
	if len(features) == 0 {
		return nil, errors.NewValueError("dataset.Select", "no features requested")
	}

	colIndex := make(map[string]int, len(ds.FeatureNames))
	for j, name := range ds.FeatureNames {
		colIndex[name] = j
	}

	cols := make([]int, len(features))
	for i, name := range features {
		j, ok := colIndex[name]
		if !ok {
			return nil, errors.NewValueError("dataset.Select", fmt.Sprintf("unknown feature %q", name))
		}
		cols[i] = j
	}

	r := ds.NumSamples()
	selected := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for k, j := range cols {
			selected.Set(i, k, ds.X.At(i, j))
		}
	}

	return &Dataset{
		X:            selected,
		Labels:       append([]int(nil), ds.Labels...),
		FeatureNames: append([]string(nil), features...),
		ClassNames:   append([]string(nil), ds.ClassNames...),
		OutcomeName:  ds.OutcomeName,
	}, nil
}

// Subset returns a new Dataset containing the given rows, in the given
// order. Row indices outside [0, NumSamples) are an error.
func (ds *Dataset) Subset(indices []int) (*Dataset, error) {
	r, c := ds.X.Dims()
	sub := mat.NewDense(len(indices), c, nil)
	labels := make([]int, len(indices))

	for i, idx := range indices {
		if idx < 0 || idx >= r {
			return nil, errors.NewValueError("dataset.Subset", fmt.Sprintf("row index %d out of range [0, %d)", idx, r))
		}
		sub.SetRow(i, mat.Row(nil, idx, ds.X))
		labels[i] = ds.Labels[idx]
	}

	return &Dataset{
		X:            sub,
		Labels:       labels,
		FeatureNames: append([]string(nil), ds.FeatureNames...),
		ClassNames:   append([]string(nil), ds.ClassNames...),
		OutcomeName:  ds.OutcomeName,
	}, nil
}
