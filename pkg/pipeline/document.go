package pipeline

import (
	"slices"
	"strconv"
	"time"
)

// Document is the sink shape of a WideRecord. Values holds every table
// column keyed by year; years the record has no value for are nil.
type Document struct {
	GroupKey  `json:",inline" yaml:",inline" bson:",inline"`
	Values    map[string]*float64 `json:"values" yaml:"values" bson:"values"`
	RunID     string              `json:"run_id" yaml:"run_id" bson:"run_id"`
	FetchedAt time.Time           `json:"fetched_at" yaml:"fetched_at" bson:"fetched_at"`
}

// Years returns the year columns of the document in ascending order.
func (d Document) Years() []string {
	years := make([]string, 0, len(d.Values))
	for y := range d.Values {
		years = append(years, y)
	}
	slices.SortFunc(years, compareYear)
	return years
}

// Header returns the key columns followed by the year columns.
func (d Document) Header() []string {
	return append(slices.Clone(KeyColumns), d.Years()...)
}

// Row returns the key fields followed by the year values, nil when missing.
func (d Document) Row() []any {
	fields := d.Fields()
	years := d.Years()
	row := make([]any, 0, len(fields)+len(years))
	for _, f := range fields {
		row = append(row, f)
	}
	for _, y := range years {
		if v := d.Values[y]; v != nil {
			row = append(row, *v)
		} else {
			row = append(row, nil)
		}
	}
	return row
}

// ToDocuments converts a table into documents stamped with the run metadata.
func ToDocuments(t Table, runID string, fetchedAt time.Time) Documents {
	docs := make(Documents, 0, len(t.Records))
	for i, r := range t.Records {
		values := make(map[string]*float64, len(t.Years))
		for _, y := range t.Years {
			if v, ok := t.Cell(i, y); ok {
				values[strconv.Itoa(y)] = &v
			} else {
				values[strconv.Itoa(y)] = nil
			}
		}
		docs = append(docs, Document{
			GroupKey:  r.GroupKey,
			Values:    values,
			RunID:     runID,
			FetchedAt: fetchedAt.UTC(),
		})
	}
	return docs
}

// Documents is a batch of documents.
type Documents []Document

// Items returns the batch as a slice of any for the output writers.
func (d Documents) Items() []any {
	items := make([]any, len(d))
	for i, doc := range d {
		items[i] = doc
	}
	return items
}

func compareYear(a, b string) int {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	}
	return ai - bi
}
