package report

import (
	"fmt"
	"io"
	"time"

	"github.com/nao1215/benchdist/internal/model"
)

// DefaultBins is the histogram bin count used when none is configured.
const DefaultBins = 20

// Writer defines the interface for report output.
// Implementations render the score distributions of a run.
//
// Design decision: writers receive the acquired series rather than
// precomputed statistics, so the caller does not depend on how a format
// summarizes them.
type Writer interface {
	// Write renders series to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(series []*model.Series) (int, error)
}

// Format selects a report format.
type Format string

const (
	// FormatText is the terminal table format.
	FormatText Format = "text"

	// FormatMarkdown is the Markdown format.
	FormatMarkdown Format = "markdown"

	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// Option configures a writer.
type Option func(*baseWriter)

// WithBins sets the number of histogram bins. Values below 1 are ignored.
func WithBins(n int) Option {
	return func(w *baseWriter) {
		if n > 0 {
			w.bins = n
		}
	}
}

// WithClock sets the function reporting the generation time.
func WithClock(now func() time.Time) Option {
	return func(w *baseWriter) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWriter returns the writer for format.
func NewWriter(format Format, output io.Writer, opts ...Option) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewSimpleWriter(output, opts...), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output, opts...), nil
	case FormatJSON:
		return NewJSONWriter(output, opts...), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	bins   int
	now    func() time.Time
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer, opts []Option) baseWriter {
	w := baseWriter{
		output: output,
		bins:   DefaultBins,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// compare computes the statistics of series with the writer's settings.
func (w *baseWriter) compare(series []*model.Series) *Comparison {
	return NewComparison(series, w.bins, w.now())
}

// writeString writes s to the output destination.
func (w *baseWriter) writeString(s string) (int, error) {
	return io.WriteString(w.output, s)
}
