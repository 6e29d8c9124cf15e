package evaluate

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/oncodata/metaboost/boost"
	"github.com/oncodata/metaboost/pkg/errors"
)

// Render writes the confusion matrix and the summary statistics as two
// tables.
func (r *Report) Render(w io.Writer) error {
	if r.Confusion == nil {
		return errors.NewValueError("Report.Render", "report has no confusion matrix")
	}

	confusion := table.NewWriter()
	confusion.SetTitle("Confusion matrix")

	header := table.Row{"actual \\ predicted"}
	for _, name := range r.ClassNames {
		header = append(header, name)
	}
	confusion.AppendHeader(header)
	for actual, name := range r.ClassNames {
		row := table.Row{name}
		for predicted := range r.ClassNames {
			row = append(row, r.Confusion.At(actual, predicted))
		}
		confusion.AppendRow(row)
	}

	summary := table.NewWriter()
	summary.SetTitle("Summary")
	summary.AppendHeader(table.Row{"statistic", "value"})
	summary.AppendRow(table.Row{"Accuracy", formatRate(r.Accuracy)})
	summary.AppendRow(table.Row{"No information rate", formatRate(r.NoInformationRate)})
	summary.AppendSeparator()
	for class, name := range r.ClassNames {
		summary.AppendRow(table.Row{fmt.Sprintf("Sensitivity (%s)", name), formatRate(r.Sensitivity[class])})
		summary.AppendRow(table.Row{fmt.Sprintf("Specificity (%s)", name), formatRate(r.Specificity[class])})
	}
	summary.AppendFooter(table.Row{"test samples", r.TestSamples})

	for _, t := range []table.Writer{confusion, summary} {
		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return errors.Wrap(err, "Report.Render")
		}
	}
	return nil
}

// RenderImportance writes the top rows of a variable importance ranking
// as a table. A non-positive topN, or one past the end, renders the
// whole ranking.
func RenderImportance(w io.Writer, ranking []boost.FeatureScore, topN int) error {
	if topN <= 0 || topN > len(ranking) {
		topN = len(ranking)
	}

	t := table.NewWriter()
	t.SetTitle("Variable importance")
	t.AppendHeader(table.Row{"#", "feature", "score"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "score", Align: text.AlignRight},
	})
	for i := 0; i < topN; i++ {
		t.AppendRow(table.Row{i + 1, ranking[i].Feature, fmt.Sprintf("%.2f", ranking[i].Score)})
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return errors.Wrap(err, "evaluate.RenderImportance")
	}
	return nil
}

func formatRate(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
