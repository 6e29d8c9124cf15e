package metrics

import (
	"fmt"

	"github.com/oncodata/metaboost/pkg/errors"
)

// ConfusionMatrix は (実測クラス, 予測クラス) で添字付けられた件数表
// 生成後は読み取り専用として扱う
type ConfusionMatrix struct {
	Counts     [][]int
	ClassNames []string
	Total      int
}

// NewConfusionMatrix は実測・予測ラベル列から混同行列を構築する
// ラベルは [0, len(classNames)) に収まっていなければならない
func NewConfusionMatrix(actual, predicted []int, classNames []string) (*ConfusionMatrix, error) {
	if len(actual) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "metrics.NewConfusionMatrix")
	}
	if len(actual) != len(predicted) {
		return nil, errors.NewDimensionError("metrics.NewConfusionMatrix", len(actual), len(predicted), 0)
	}
	if len(classNames) < 2 {
		return nil, errors.NewValueError("metrics.NewConfusionMatrix", "need at least two class names")
	}

	k := len(classNames)
	counts := make([][]int, k)
	for i := range counts {
		counts[i] = make([]int, k)
	}

	for i := range actual {
		a, p := actual[i], predicted[i]
		if a < 0 || a >= k {
			return nil, errors.NewValueError("metrics.NewConfusionMatrix",
				fmt.Sprintf("actual label %d out of range [0, %d) at row %d", a, k, i))
		}
		if p < 0 || p >= k {
			return nil, errors.NewValueError("metrics.NewConfusionMatrix",
				fmt.Sprintf("predicted label %d out of range [0, %d) at row %d", p, k, i))
		}
		counts[a][p]++
	}

	return &ConfusionMatrix{
		Counts:     counts,
		ClassNames: classNames,
		Total:      len(actual),
	}, nil
}

// At は実測クラス actual を予測クラス predicted と判定した件数を返す
func (cm *ConfusionMatrix) At(actual, predicted int) int {
	return cm.Counts[actual][predicted]
}

// Accuracy は対角成分の合計を全件数で割った正解率を返す
func (cm *ConfusionMatrix) Accuracy() float64 {
	diag := 0
	for i := range cm.Counts {
		diag += cm.Counts[i][i]
	}
	return float64(diag) / float64(cm.Total)
}

// Sensitivity は指定クラスを陽性とみなした再現率 TP/(TP+FN) を返す
// 該当クラスの実測サンプルが無い場合は0を返す
func (cm *ConfusionMatrix) Sensitivity(class int) float64 {
	actualTotal := 0
	for p := range cm.Counts[class] {
		actualTotal += cm.Counts[class][p]
	}
	if actualTotal == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("sensitivity", "no samples of the class", 0))
		return 0
	}
	return float64(cm.Counts[class][class]) / float64(actualTotal)
}

// Specificity は指定クラス以外を正しく棄却した割合 TN/(TN+FP) を返す
// 他クラスの実測サンプルが無い場合は0を返す
func (cm *ConfusionMatrix) Specificity(class int) float64 {
	tn, negatives := 0, 0
	for a := range cm.Counts {
		if a == class {
			continue
		}
		for p := range cm.Counts[a] {
			negatives += cm.Counts[a][p]
			if p != class {
				tn += cm.Counts[a][p]
			}
		}
	}
	if negatives == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("specificity", "no samples outside the class", 0))
		return 0
	}
	return float64(tn) / float64(negatives)
}

// NoInformationRate は多数派クラスの割合（常に多数派を予測した場合の正解率）を返す
func (cm *ConfusionMatrix) NoInformationRate() float64 {
	largest := 0
	for a := range cm.Counts {
		rowTotal := 0
		for p := range cm.Counts[a] {
			rowTotal += cm.Counts[a][p]
		}
		if rowTotal > largest {
			largest = rowTotal
		}
	}
	return float64(largest) / float64(cm.Total)
}
