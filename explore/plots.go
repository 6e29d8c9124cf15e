package explore

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/oncodata/metaboost/dataset"
	"github.com/oncodata/metaboost/pkg/errors"
	"github.com/oncodata/metaboost/pkg/log"
)

// Plot file names written by SavePlots.
const (
	ClassBalancePlot = "class_balance.png"
	PCAScatterPlot   = "pca_scatter.png"
	PCAVariancePlot  = "pca_variance.png"
)

var classColors = []color.RGBA{
	{R: 200, G: 30, B: 30, A: 220},
	{R: 20, G: 80, B: 200, A: 220},
}

// SavePlots renders the three diagnostic PNGs into dir: the class
// balance bar chart, the first-two-components scatter colored by class,
// and the cumulative variance-explained curve. The scatter needs at
// least two projected components.
func SavePlots(dir string, ds *dataset.Dataset, result *Result) error {
	if ds == nil || result == nil {
		return errors.NewValueError("explore.SavePlots", "dataset and PCA result are required")
	}
	if result.NumComponents < 2 {
		return errors.NewValueError("explore.SavePlots", "component scatter needs at least 2 components")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "explore.SavePlots")
	}

	logger := log.GetLoggerWithName("explore")
	renderers := []struct {
		name   string
		render func(string) error
	}{
		{ClassBalancePlot, func(path string) error { return plotClassBalance(path, ds) }},
		{PCAScatterPlot, func(path string) error { return plotScatter(path, ds, result) }},
		{PCAVariancePlot, func(path string) error { return plotVariance(path, result) }},
	}
	for _, r := range renderers {
		path := filepath.Join(dir, r.name)
		if err := r.render(path); err != nil {
			return errors.Wrapf(err, "explore.SavePlots: %s", r.name)
		}
		logger.Info("plot written", log.ArtifactKey, path)
	}
	return nil
}

func plotClassBalance(path string, ds *dataset.Dataset) error {
	counts := ds.ClassCounts()
	values := make(plotter.Values, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}

	p := plot.New()
	p.Title.Text = "Class balance"
	p.Y.Label.Text = "patients"

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 90, G: 120, B: 190, A: 255}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(ds.ClassNames...)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func plotScatter(path string, ds *dataset.Dataset, result *Result) error {
	p := plot.New()
	p.Title.Text = "PCA projection"
	p.X.Label.Text = "component 1"
	p.Y.Label.Text = "component 2"

	for class, name := range ds.ClassNames {
		var xys plotter.XYs
		for i, label := range ds.Labels {
			if label != class {
				continue
			}
			xys = append(xys, plotter.XY{
				X: result.Projection.At(i, 0),
				Y: result.Projection.At(i, 1),
			})
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = classColors[class%len(classColors)]
		scatter.GlyphStyle.Radius = vg.Points(2.2)
		p.Add(scatter)
		p.Legend.Add(name, scatter)
	}

	p.Add(plotter.NewGrid())
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

func plotVariance(path string, result *Result) error {
	p := plot.New()
	p.Title.Text = "Cumulative variance explained"
	p.X.Label.Text = "components"
	p.Y.Label.Text = "share of variance"
	p.Y.Min = 0
	p.Y.Max = 1.05

	xys := make(plotter.XYs, len(result.VarianceRatios))
	cumulative := 0.0
	for i, ratio := range result.VarianceRatios {
		cumulative += ratio
		xys[i] = plotter.XY{X: float64(i + 1), Y: cumulative}
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	line.Width = vg.Points(1.2)
	points.GlyphStyle.Color = line.Color
	points.GlyphStyle.Radius = vg.Points(2.4)
	p.Add(line, points)
	p.Add(plotter.NewGrid())

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
