package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/benchdist/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because it is sufficient for a handful of plain structs.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...Option) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output, opts)}
}

// jsonReport is the document written by JSONWriter.
type jsonReport struct {
	*Comparison

	// Series holds the raw score pairs behind the statistics.
	Series []*model.Series `json:"series"`
}

// Write outputs the statistics and the raw series as indented JSON.
func (w *JSONWriter) Write(series []*model.Series) (int, error) {
	if series == nil {
		series = make([]*model.Series, 0)
	}

	data, err := json.MarshalIndent(jsonReport{
		Comparison: w.compare(series),
		Series:     series,
	}, "", "  ")
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
