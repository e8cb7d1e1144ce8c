package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/benchdist/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...Option) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output, opts)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(series []*model.Series) (int, error) {
	c := w.compare(series)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, c)
	w.writeSummary(md, c)
	for _, m := range Metrics {
		w.writeHistogram(md, c, m)
	}

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, c *Comparison) {
	md.H1("Benchmark Score Distributions")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", c.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Identifiers", strconv.Itoa(len(c.Distributions))},
			{"Samples", strconv.Itoa(c.TotalSamples())},
			{"Histogram Bins", strconv.Itoa(c.Bins)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the statistics table and the sample share chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, c *Comparison) {
	md.H2("Summary")
	md.PlainText("")

	if len(c.Distributions) == 0 {
		md.Note("No score series to report.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(c.Distributions)*len(Metrics))
	for _, d := range c.Distributions {
		for _, m := range Metrics {
			s := d.SummaryOf(m)
			rows = append(rows, []string{
				d.Name,
				strconv.Itoa(d.Samples),
				string(m),
				strconv.FormatUint(uint64(s.Min), 10),
				formatFloat(s.Median),
				formatFloat(s.Mean),
				strconv.FormatUint(uint64(s.Max), 10),
				formatFloat(s.StdDev),
			})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Samples", "Metric", "Min", "Median", "Mean", "Max", "Std Dev"},
		Rows:   rows,
	})
	md.PlainText("")

	if c.TotalSamples() > 0 {
		w.writePieChart(md, c)
	}

	for _, d := range c.Distributions {
		if d.Samples == 0 {
			md.Warningf("%s has no samples in the cache.", d.Name)
			md.PlainText("")
		}
	}
}

// writePieChart writes a mermaid pie chart of the samples per series.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, c *Comparison) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Samples per Identifier"),
		piechart.WithShowData(true),
	)

	for _, d := range c.Distributions {
		if d.Samples > 0 {
			chart.LabelAndIntValue(d.Name, uint64(d.Samples))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeHistogram writes one table for metric m with a density column per
// series. All series share the bin ranges.
func (w *MarkdownWriter) writeHistogram(md *markdown.Markdown, c *Comparison, m Metric) {
	if len(c.Distributions) == 0 {
		return
	}

	md.H2(fmt.Sprintf("Histogram: %s", m))
	md.PlainText("")

	header := []string{"Range"}
	for _, d := range c.Distributions {
		header = append(header, d.Name)
	}

	bins := c.Distributions[0].HistogramOf(m).Bins
	rows := make([][]string, len(bins))
	for i, b := range bins {
		row := []string{fmt.Sprintf("%.0f - %.0f", b.Lower, b.Upper)}
		for _, d := range c.Distributions {
			hb := d.HistogramOf(m).Bins[i]
			row = append(row, fmt.Sprintf("%d (%.5f)", hb.Count, hb.Density))
		}
		rows[i] = row
	}

	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}
