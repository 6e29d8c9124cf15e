// Package explore renders the diagnostic view of a loaded dataset:
// class balance, a PCA projection of the feature block, and the
// variance explained per component. Nothing downstream consumes its
// output; the pipeline behaves identically with exploration disabled.
package explore

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/oncodata/metaboost/dataset"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
)

// Result is a PCA projection of the dataset's feature block.
type Result struct {
	// Projection holds one row per sample and one column per requested
	// component, ordered by decreasing explained variance.
	Projection *mat.Dense

	// VarianceRatios is the share of total variance each requested
	// component explains, descending. The shares of all possible
	// components sum to 1, so any prefix sums to at most 1.
	VarianceRatios []float64

	NumComponents int
}

// PCA projects the feature block of ds onto its leading nComponents
// principal components. Labels never enter the projection.
func PCA(ds *dataset.Dataset, nComponents int) (*Result, error) {
	if ds == nil || ds.NumSamples() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "explore.PCA")
	}
	rows := ds.NumSamples()
	cols := ds.NumFeatures()
	if rows < 2 {
		return nil, errors.NewValueError("explore.PCA", "need at least 2 samples")
	}
	if cols == 0 {
		return nil, errors.NewValueError("explore.PCA", "dataset has no feature columns")
	}
	maxComponents := rows
	if cols < maxComponents {
		maxComponents = cols
	}
	if nComponents < 1 || nComponents > maxComponents {
		return nil, errors.NewValidationError("n_components",
			"must be between 1 and min(samples, features)", nComponents)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(ds.X, nil); !ok {
		return nil, errors.NewValueError("explore.PCA", "principal component factorization failed")
	}

	variances := pc.VarsTo(nil)
	total := 0.0
	for _, v := range variances {
		total += v
	}
	if total <= 0 {
		return nil, errors.NewValueError("explore.PCA", "feature block carries no variance")
	}

	ratios := make([]float64, nComponents)
	for i := 0; i < nComponents; i++ {
		ratios[i] = variances[i] / total
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	components := vectors.Slice(0, cols, 0, nComponents)

	centered := centerColumns(ds.X)
	projection := mat.NewDense(rows, nComponents, nil)
	projection.Mul(centered, components)

	log.GetLoggerWithName("explore").Debug("pca computed",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"components", nComponents,
		"leading_ratio", ratios[0],
	)

	return &Result{
		Projection:     projection,
		VarianceRatios: ratios,
		NumComponents:  nComponents,
	}, nil
}

// centerColumns subtracts each column's mean, which aligns the
// projection with the component vectors of the centered analysis.
func centerColumns(X *mat.Dense) *mat.Dense {
	rows, cols := X.Dims()
	centered := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, X)
		mean := stat.Mean(col, nil)
		for i := 0; i < rows; i++ {
			centered.Set(i, j, X.At(i, j)-mean)
		}
	}
	return centered
}
