package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
)

// canonicalOutcomes maps the raw survival annotations to the two canonical
// classes. The two death causes collapse into a single class. The canonical
// names map to themselves so a CSV written by WriteCSV loads back.
var canonicalOutcomes = map[string]string{
	"Died of Disease":      "Died",
	"Died of Other Causes": "Died",
	"Living":               "Survived",
	"Died":                 "Died",
	"Survived":             "Survived",
}

// Load reads a CSV with a header row, locates the outcome column by name,
// converts every other column to float64 and encodes the outcome into 0/1
// labels. Rows whose outcome cell is empty are dropped. An outcome value
// outside the known annotations is an error, as is ending up with anything
// other than exactly two classes.
func Load(path, outcomeCol string) (*Dataset, error) {
	logger := log.GetLoggerWithName("dataset")

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load: opening %s", path)
	}
	defer f.Close()

	ds, dropped, err := read(f, outcomeCol)
	if err != nil {
		return nil, err
	}

	if dropped > 0 {
		logger.Debug("rows with empty outcome dropped",
			log.DroppedKey, dropped,
		)
	}
	logger.Info("dataset loaded",
		log.SamplesKey, ds.NumSamples(),
		log.FeaturesKey, ds.NumFeatures(),
		log.ClassesKey, ds.ClassNames,
	)
	return ds, nil
}

func read(r io.Reader, outcomeCol string) (*Dataset, int, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, 0, errors.Wrap(err, "dataset.Load: reading header")
	}

	outcomeIdx := -1
	for j, name := range header {
		if name == outcomeCol {
			outcomeIdx = j
			break
		}
	}
	if outcomeIdx == -1 {
		return nil, 0, errors.NewValueError("dataset.Load", fmt.Sprintf("outcome column %q not found in header", outcomeCol))
	}

	featureNames := make([]string, 0, len(header)-1)
	seen := make(map[string]bool, len(header))
	for j, name := range header {
		if j == outcomeIdx {
			continue
		}
		if seen[name] {
			return nil, 0, errors.NewValueError("dataset.Load", fmt.Sprintf("duplicate feature column %q", name))
		}
		seen[name] = true
		featureNames = append(featureNames, name)
	}
	if len(featureNames) == 0 {
		return nil, 0, errors.NewValueError("dataset.Load", "no feature columns besides the outcome")
	}

	var (
		flat       []float64
		labels     []int
		classNames []string
		classIndex = make(map[string]int, 2)
		dropped    int
		row        = 1
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrapf(err, "dataset.Load: row %d", row+1)
		}
		row++

		raw := strings.TrimSpace(record[outcomeIdx])
		if raw == "" {
			dropped++
			continue
		}

		canonical, ok := canonicalOutcomes[raw]
		if !ok {
			return nil, 0, errors.NewLabelError("dataset.Load", outcomeCol,
				fmt.Sprintf("unrecognized outcome value in row %d", row), []string{raw})
		}
		label, ok := classIndex[canonical]
		if !ok {
			label = len(classNames)
			classIndex[canonical] = label
			classNames = append(classNames, canonical)
		}

		for j, cell := range record {
			if j == outcomeIdx {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, 0, errors.NewValueError("dataset.Load",
					fmt.Sprintf("row %d, column %q: cannot parse %q as a number", row, header[j], cell))
			}
			flat = append(flat, v)
		}
		labels = append(labels, label)
	}

	if len(labels) == 0 {
		return nil, 0, errors.Wrap(errors.ErrEmptyData, "dataset.Load: no usable rows")
	}
	if len(classNames) != 2 {
		return nil, 0, errors.Wrapf(errors.ErrNonBinaryOutcome,
			"dataset.Load: outcome column %q yielded classes %v", outcomeCol, classNames)
	}

	return &Dataset{
		X:            mat.NewDense(len(labels), len(featureNames), flat),
		Labels:       labels,
		FeatureNames: featureNames,
		ClassNames:   classNames,
		OutcomeName:  outcomeCol,
	}, dropped, nil
}
