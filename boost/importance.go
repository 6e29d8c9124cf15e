package boost

import (
	"sort"

	"github.com/oncodata/metaboost/pkg/errors"
)

// FeatureScore pairs a feature name with its scaled importance.
type FeatureScore struct {
	Feature string
	Score   float64
}

// ImportanceRanking ranks every model feature by importance, scaled so
// the strongest feature scores 100. Features the trees never split on
// score 0. Ties keep the original column order.
func ImportanceRanking(m *Model, kind string) ([]FeatureScore, error) {
	if m == nil {
		return nil, errors.NewValueError("boost.ImportanceRanking", "model is nil")
	}
	totals, err := m.FeatureImportance(kind)
	if err != nil {
		return nil, err
	}

	maxTotal := 0.0
	for _, v := range totals {
		if v > maxTotal {
			maxTotal = v
		}
	}

	scores := make([]FeatureScore, len(totals))
	for i, v := range totals {
		score := 0.0
		if maxTotal > 0 {
			score = 100 * v / maxTotal
		}
		scores[i] = FeatureScore{Feature: m.FeatureName(i), Score: score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores, nil
}
