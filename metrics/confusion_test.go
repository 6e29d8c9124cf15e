package metrics

import (
	"math"
	"testing"
)

var twoClasses = []string{"Died", "Survived"}

func TestNewConfusionMatrix(t *testing.T) {
	actual := []int{0, 0, 0, 1, 1, 0, 1, 1, 1, 0}
	predicted := []int{0, 0, 1, 1, 1, 0, 0, 1, 1, 0}

	cm, err := NewConfusionMatrix(actual, predicted, twoClasses)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}

	if got := cm.At(0, 0); got != 4 {
		t.Errorf("At(0,0) = %d, want 4", got)
	}
	if got := cm.At(0, 1); got != 1 {
		t.Errorf("At(0,1) = %d, want 1", got)
	}
	if got := cm.At(1, 0); got != 1 {
		t.Errorf("At(1,0) = %d, want 1", got)
	}
	if got := cm.At(1, 1); got != 4 {
		t.Errorf("At(1,1) = %d, want 4", got)
	}

	// Counts sum to the number of samples
	sum := 0
	for a := range cm.Counts {
		for p := range cm.Counts[a] {
			sum += cm.Counts[a][p]
		}
	}
	if sum != len(actual) || cm.Total != len(actual) {
		t.Errorf("counts sum to %d (Total %d), want %d", sum, cm.Total, len(actual))
	}
}

func TestNewConfusionMatrixErrors(t *testing.T) {
	tests := []struct {
		name      string
		actual    []int
		predicted []int
		classes   []string
	}{
		{name: "empty", actual: nil, predicted: nil, classes: twoClasses},
		{name: "length mismatch", actual: []int{0, 1}, predicted: []int{0}, classes: twoClasses},
		{name: "actual out of range", actual: []int{0, 2}, predicted: []int{0, 1}, classes: twoClasses},
		{name: "predicted negative", actual: []int{0, 1}, predicted: []int{0, -1}, classes: twoClasses},
		{name: "single class name", actual: []int{0, 0}, predicted: []int{0, 0}, classes: []string{"Died"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConfusionMatrix(tt.actual, tt.predicted, tt.classes); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestConfusionMatrixRates(t *testing.T) {
	// 6 Died (5 recalled), 4 Survived (2 recalled)
	actual := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	predicted := []int{0, 0, 0, 0, 0, 1, 1, 1, 0, 0}

	cm, err := NewConfusionMatrix(actual, predicted, twoClasses)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"accuracy", cm.Accuracy(), 0.7},
		{"sensitivity class 0", cm.Sensitivity(0), 5.0 / 6.0},
		{"sensitivity class 1", cm.Sensitivity(1), 0.5},
		{"specificity class 0", cm.Specificity(0), 0.5},
		{"specificity class 1", cm.Specificity(1), 5.0 / 6.0},
		{"no information rate", cm.NoInformationRate(), 0.6},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestConfusionMatrixZeroDenominators(t *testing.T) {
	// Every sample belongs to class 0, so class 1 rates are undefined
	cm, err := NewConfusionMatrix([]int{0, 0, 0}, []int{0, 0, 1}, twoClasses)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}

	if got := cm.Sensitivity(1); got != 0 {
		t.Errorf("Sensitivity(1) = %v, want 0", got)
	}
	if got := cm.Specificity(0); got != 0 {
		t.Errorf("Specificity(0) = %v, want 0", got)
	}
	if got := cm.NoInformationRate(); got != 1 {
		t.Errorf("NoInformationRate() = %v, want 1", got)
	}
}
