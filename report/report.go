// Package report formats a run for the console.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/salaryforest/datasets"
	"github.com/YuminosukeSato/salaryforest/metrics"
	"github.com/YuminosukeSato/salaryforest/pkg/errors"
)

// Currency prefixes MAE and MSE.
const Currency = "₹"

// WriteHead prints the first k rows of the encoded frame.
func WriteHead(w io.Writer, f *datasets.EncodedFrame, k int) error {
	if k <= 0 {
		return nil
	}
	return writeFrame(w, "Head of Data:", f.Head(k))
}

// WriteTail prints the last k rows of the encoded frame.
func WriteTail(w io.Writer, f *datasets.EncodedFrame, k int) error {
	if k <= 0 {
		return nil
	}
	return writeFrame(w, "Tail of Data:", f.Tail(k))
}

func writeFrame(w io.Writer, title string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return errors.Wrap(df.Err, title)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", title, df.String())
	return err
}

// MetricLines renders R² as a percentage and MAE, MSE as currency, each
// rounded to two decimals.
func MetricLines(r metrics.Report) []string {
	return []string{
		fmt.Sprintf("R² Score: %.2f%%", r.R2*100),
		fmt.Sprintf("MAE: %s%.2f", Currency, r.MAE),
		fmt.Sprintf("MSE: %s%.2f", Currency, r.MSE),
	}
}

// WriteMetrics prints MetricLines, one per line.
func WriteMetrics(w io.Writer, r metrics.Report) error {
	for _, line := range MetricLines(r) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ImportanceFrame tabulates feature importances, largest first.
func ImportanceFrame(names []string, importances []float64) (dataframe.DataFrame, error) {
	if len(names) != len(importances) {
		return dataframe.DataFrame{}, errors.NewDimensionError("ImportanceFrame", len(names), len(importances), 0)
	}
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return importances[order[a]] > importances[order[b]] })

	sortedNames := make([]string, len(order))
	sortedVals := make([]float64, len(order))
	for i, j := range order {
		sortedNames[i] = names[j]
		sortedVals[i] = importances[j]
	}
	df := dataframe.New(
		series.New(sortedNames, series.String, "Feature"),
		series.New(sortedVals, series.Float, "Importance"),
	)
	return df, df.Err
}

// WriteImportances prints the importance table.
func WriteImportances(w io.Writer, names []string, importances []float64) error {
	df, err := ImportanceFrame(names, importances)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Feature Importance:\n%s\n", df.String())
	return err
}
