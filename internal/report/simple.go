package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/benchdist/internal/model"
)

// barWidth is the width of the longest histogram bar in characters.
const barWidth = 30

// SimpleWriter outputs human-readable tables for terminal display.
// One summary table is followed by a histogram per metric and series.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...Option) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output, opts)}
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(series []*model.Series) (int, error) {
	c := w.compare(series)

	var sb strings.Builder
	if len(c.Distributions) == 0 {
		sb.WriteString("No score series to report.\n")
		return w.writeString(sb.String())
	}

	sb.WriteString(summaryTable(c))
	sb.WriteString("\n")

	for _, m := range Metrics {
		for _, d := range c.Distributions {
			fmt.Fprintf(&sb, "\n%s %s distribution (%d samples)\n", d.Name, m, d.Samples)
			sb.WriteString(histogramTable(d.HistogramOf(m), d.Samples))
			sb.WriteString("\n")
		}
	}

	return w.writeString(sb.String())
}

// summaryTable renders one row per series and metric.
func summaryTable(c *Comparison) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Samples", "Metric", "Min", "Median", "Mean", "Max", "Std Dev"})
	for _, d := range c.Distributions {
		for _, m := range Metrics {
			s := d.SummaryOf(m)
			t.AppendRow(table.Row{
				d.Name, d.Samples, string(m),
				s.Min, formatFloat(s.Median), formatFloat(s.Mean), s.Max, formatFloat(s.StdDev),
			})
		}
		t.AppendSeparator()
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	return t.Render()
}

// histogramTable renders bins as rows with a proportional bar.
func histogramTable(h Histogram, samples int) string {
	if samples == 0 {
		return "  (no samples)"
	}

	peak := h.MaxCount()
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Range", "Count", ""})
	for _, b := range h.Bins {
		t.AppendRow(table.Row{
			fmt.Sprintf("%.0f - %.0f", b.Lower, b.Upper),
			b.Count,
			bar(b.Count, peak),
		})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// bar returns a bar of count scaled to peak.
func bar(count, peak int) string {
	if count == 0 || peak == 0 {
		return ""
	}
	return strings.Repeat("█", max(1, count*barWidth/peak))
}

// formatFloat formats a statistic with one decimal place.
func formatFloat(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
