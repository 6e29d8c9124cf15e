// Package tune selects gradient-boosting hyperparameters by expanding a
// Cartesian grid of candidate configurations and scoring each one with
// repeated stratified cross-validation on a bounded worker pool.
package tune

import (
	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/pkg/errors"
)

// Grid declares the hyperparameter axes to search. A nil axis keeps the
// base value; a set axis contributes every listed value to the Cartesian
// product. An axis that is set but empty is a configuration mistake and
// fails expansion.
type Grid struct {
	NumRounds       []int     `mapstructure:"num_rounds"`
	MaxDepth        []int     `mapstructure:"max_depth"`
	LearningRate    []float64 `mapstructure:"learning_rate"`
	MinSplitGain    []float64 `mapstructure:"min_split_gain"`
	MinChildSamples []int     `mapstructure:"min_child_samples"`
	Subsample       []float64 `mapstructure:"subsample"`
	Colsample       []float64 `mapstructure:"colsample"`
	Lambda          []float64 `mapstructure:"lambda"`
}

// SinglePoint builds a grid whose only configuration is p. Expanding it
// yields exactly one candidate, which is what a resampling-free fit needs.
func SinglePoint(p boost.Params) Grid {
	return Grid{
		NumRounds:       []int{p.NumRounds},
		MaxDepth:        []int{p.MaxDepth},
		LearningRate:    []float64{p.LearningRate},
		MinSplitGain:    []float64{p.MinSplitGain},
		MinChildSamples: []int{p.MinChildSamples},
		Subsample:       []float64{p.Subsample},
		Colsample:       []float64{p.Colsample},
		Lambda:          []float64{p.Lambda},
	}
}

// Size returns the number of configurations the grid expands to, without
// validating them. Unset axes count as one.
func (g *Grid) Size() int {
	size := 1
	for _, n := range g.axisLengths() {
		if n > 0 {
			size *= n
		}
	}
	return size
}

func (g *Grid) axisLengths() []int {
	return []int{
		len(g.NumRounds),
		len(g.MaxDepth),
		len(g.LearningRate),
		len(g.MinSplitGain),
		len(g.MinChildSamples),
		len(g.Subsample),
		len(g.Colsample),
		len(g.Lambda),
	}
}

// Configurations expands the grid over a base Params. Axis order is
// fixed, so the result is stable: the first axis varies slowest. Every
// expanded configuration is validated before any of them is fit; the
// first invalid value fails the whole expansion.
func (g *Grid) Configurations(base boost.Params) ([]boost.Params, error) {
	type axis struct {
		name   string
		length int
		set    bool
		apply  func(*boost.Params, int)
	}
	axes := []axis{
		{"num_rounds", len(g.NumRounds), g.NumRounds != nil, func(p *boost.Params, i int) { p.NumRounds = g.NumRounds[i] }},
		{"max_depth", len(g.MaxDepth), g.MaxDepth != nil, func(p *boost.Params, i int) { p.MaxDepth = g.MaxDepth[i] }},
		{"learning_rate", len(g.LearningRate), g.LearningRate != nil, func(p *boost.Params, i int) { p.LearningRate = g.LearningRate[i] }},
		{"min_split_gain", len(g.MinSplitGain), g.MinSplitGain != nil, func(p *boost.Params, i int) { p.MinSplitGain = g.MinSplitGain[i] }},
		{"min_child_samples", len(g.MinChildSamples), g.MinChildSamples != nil, func(p *boost.Params, i int) { p.MinChildSamples = g.MinChildSamples[i] }},
		{"subsample", len(g.Subsample), g.Subsample != nil, func(p *boost.Params, i int) { p.Subsample = g.Subsample[i] }},
		{"colsample", len(g.Colsample), g.Colsample != nil, func(p *boost.Params, i int) { p.Colsample = g.Colsample[i] }},
		{"lambda", len(g.Lambda), g.Lambda != nil, func(p *boost.Params, i int) { p.Lambda = g.Lambda[i] }},
	}

	anySet := false
	for _, a := range axes {
		if !a.set {
			continue
		}
		anySet = true
		if a.length == 0 {
			return nil, errors.NewValueError("tune.Grid", "axis "+a.name+" is empty")
		}
	}
	if !anySet {
		return nil, errors.NewValueError("tune.Grid", "no axes set")
	}

	configs := []boost.Params{base}
	for _, a := range axes {
		if !a.set {
			continue
		}
		next := make([]boost.Params, 0, len(configs)*a.length)
		for _, cfg := range configs {
			for i := 0; i < a.length; i++ {
				candidate := cfg
				a.apply(&candidate, i)
				next = append(next, candidate)
			}
		}
		configs = next
	}

	for i, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrapf(err, "tune.Grid: configuration %d", i)
		}
	}
	return configs, nil
}
