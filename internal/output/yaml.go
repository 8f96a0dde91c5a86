package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter buffers items and writes a YAML document on Flush.
type YAMLWriter struct {
	w     *bufio.Writer
	array bool
	items []any
	done  bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer, array bool) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		array: array,
		items: make([]any, 0),
	}
}

// Write buffers a single item.
func (w *YAMLWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// WriteAll buffers multiple items.
func (w *YAMLWriter) WriteAll(data []any) error {
	w.items = append(w.items, data...)
	return nil
}

// Flush writes the buffered items. Subsequent calls are no-ops.
func (w *YAMLWriter) Flush() error {
	if w.done {
		return nil
	}
	w.done = true

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	var value any = w.items
	if len(w.items) == 1 && !w.array {
		value = w.items[0]
	}
	if err := encoder.Encode(value); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
