package dataset

import (
	"encoding/csv"
	"encoding/gob"
	"os"
	"strconv"

	"github.com/oncodata/metaboost/core/model"
	"github.com/oncodata/metaboost/pkg/errors"
)

// SnapshotType identifies Dataset snapshots inside the gob envelope.
const SnapshotType = "dataset.Dataset"

func init() {
	gob.Register(&Dataset{})
}

// WriteCSV writes the dataset back out as a canonical CSV: feature columns
// in order, then the outcome column carrying the canonical class names.
func WriteCSV(ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "dataset.WriteCSV: creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append(append([]string(nil), ds.FeatureNames...), ds.OutcomeName)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "dataset.WriteCSV: writing header")
	}

	r, c := ds.X.Dims()
	record := make([]string, c+1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			record[j] = strconv.FormatFloat(ds.X.At(i, j), 'g', -1, 64)
		}
		record[c] = ds.ClassNames[ds.Labels[i]]
		if err := w.Write(record); err != nil {
			return errors.Wrapf(err, "dataset.WriteCSV: writing row %d", i+1)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "dataset.WriteCSV: flushing")
	}
	return nil
}

// SaveSnapshot persists the dataset as a gob envelope. Used for the
// post-reduction split snapshots, which carry fewer columns than the
// source CSV and would lose their provenance in plain text.
func SaveSnapshot(ds *Dataset, path string) error {
	return model.SaveModel(ds, SnapshotType, path)
}

// LoadSnapshot restores a dataset written by SaveSnapshot.
func LoadSnapshot(path string) (*Dataset, error) {
	loaded, err := model.LoadModel(SnapshotType, path)
	if err != nil {
		return nil, err
	}
	ds, ok := loaded.(*Dataset)
	if !ok {
		return nil, errors.Newf("dataset.LoadSnapshot: unexpected payload type %T", loaded)
	}
	return ds, nil
}
