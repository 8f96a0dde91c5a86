package output

import (
	"fmt"
	"strconv"
)

// tableBuffer collects Records into a header and aligned rows. The header
// is taken from the first record; columns introduced by later records are
// appended in the order they appear.
type tableBuffer struct {
	header []string
	index  map[string]int
	rows   [][]any
}

func (t *tableBuffer) add(data any) error {
	rec, ok := data.(Record)
	if !ok {
		return fmt.Errorf("tabular output needs a Record, got %T", data)
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}

	cols := rec.Header()
	vals := rec.Row()
	if len(cols) != len(vals) {
		return fmt.Errorf("record has %d columns but %d values", len(cols), len(vals))
	}

	for _, c := range cols {
		if _, seen := t.index[c]; !seen {
			t.index[c] = len(t.header)
			t.header = append(t.header, c)
		}
	}

	row := make([]any, len(t.header))
	for i, c := range cols {
		row[t.index[c]] = vals[i]
	}
	t.rows = append(t.rows, row)
	return nil
}

// aligned returns every row padded to the final header width.
func (t *tableBuffer) aligned() [][]any {
	out := make([][]any, len(t.rows))
	for i, r := range t.rows {
		if len(r) < len(t.header) {
			padded := make([]any, len(t.header))
			copy(padded, r)
			r = padded
		}
		out[i] = r
	}
	return out
}

// cellString formats a Record value for text output.
func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case *float64:
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
