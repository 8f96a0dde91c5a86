package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter renders Records into a single worksheet. Numbers are written
// as numeric cells and missing values as blank cells.
type XLSXWriter struct {
	w     io.Writer
	sheet string
	table tableBuffer
	done  bool
}

// NewXLSXWriter creates an XLSX writer for the named sheet.
func NewXLSXWriter(w io.Writer, sheet string) *XLSXWriter {
	if sheet == "" {
		sheet = "data"
	}
	return &XLSXWriter{w: w, sheet: sheet}
}

// Write buffers a single Record.
func (w *XLSXWriter) Write(data any) error {
	return w.table.add(data)
}

// WriteAll buffers multiple Records.
func (w *XLSXWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush builds the workbook and writes it out. A workbook with only the
// sheet is written when no records were buffered.
func (w *XLSXWriter) Flush() error {
	if w.done {
		return nil
	}
	w.done = true

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(w.sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	if len(w.table.header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		header := make([]any, len(w.table.header))
		for i, h := range w.table.header {
			header[i] = excelize.Cell{StyleID: bold, Value: h}
		}
		if err := sw.SetRow("A1", header); err != nil {
			return err
		}

		for i, row := range w.table.aligned() {
			cells := make([]any, len(row))
			for j, v := range row {
				cells[j] = xlsxValue(v)
			}
			addr, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := sw.SetRow(addr, cells); err != nil {
				return err
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w.w)
	return err
}

// Close flushes the writer.
func (w *XLSXWriter) Close() error {
	return w.Flush()
}

func xlsxValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	case string, float64:
		return v
	default:
		return cellString(v)
	}
}
