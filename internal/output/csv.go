package output

import (
	"encoding/csv"
	"io"
)

// CSVWriter renders Records as CSV with a single header row. Items are
// buffered so that every column seen in the batch gets a header.
type CSVWriter struct {
	w     io.Writer
	table tableBuffer
	done  bool
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// Write buffers a single Record.
func (w *CSVWriter) Write(data any) error {
	return w.table.add(data)
}

// WriteAll buffers multiple Records.
func (w *CSVWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the header and rows. Missing values are empty cells.
// Nothing is written when no records were buffered.
func (w *CSVWriter) Flush() error {
	if w.done || len(w.table.header) == 0 {
		return nil
	}
	w.done = true

	cw := csv.NewWriter(w.w)
	if err := cw.Write(w.table.header); err != nil {
		return err
	}
	for _, row := range w.table.aligned() {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellString(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Close flushes the writer.
func (w *CSVWriter) Close() error {
	return w.Flush()
}
