package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/shopaudit/internal/model"
)

// JSONWriter renders the AuditResult wire form, so a written document
// decodes back into an identical result.
type JSONWriter struct {
	baseWriter
	pretty bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested values by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) { w.pretty = true }
}

// NewJSONWriter returns a compact JSON writer unless options say otherwise.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, apply := range opts {
		apply(w)
	}
	return w
}

// Write encodes one audit result.
func (w *JSONWriter) Write(result *model.AuditResult) (int, error) {
	return w.WriteValue(result)
}

// WriteValue encodes any value, such as stored audit rows or a comparison.
// The document ends with a newline. Page copy is not HTML-escaped.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
