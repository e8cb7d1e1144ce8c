// Package report renders the score series of a run.
//
// NewComparison computes per-series summary statistics and histograms of the
// single-core and multi-core scores; the histograms of one metric share a
// value range across all series so their bins line up. Three writers render
// the result:
//   - SimpleWriter: go-pretty tables for terminal display
//   - MarkdownWriter: Markdown with a mermaid chart of samples per series
//   - JSONWriter: statistics plus raw score pairs for tool integration
//
// Writers implement the Writer interface and are selected with NewWriter.
package report
