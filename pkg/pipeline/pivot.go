package pipeline

import (
	"cmp"
	"slices"
)

// GroupKey identifies one row of the wide table.
type GroupKey struct {
	Country     string `json:"country" yaml:"country" bson:"country"`
	CountryCode string `json:"country_code" yaml:"country_code" bson:"country_code"`
	Metric      string `json:"metric" yaml:"metric" bson:"metric"`
	Unit        string `json:"unit" yaml:"unit" bson:"unit"`
	Sector      string `json:"sector" yaml:"sector" bson:"sector"`
	SubSector   string `json:"sub_sector" yaml:"sub_sector" bson:"sub_sector"`
	Source      string `json:"source" yaml:"source" bson:"source"`
	SourceLink  string `json:"source_link" yaml:"source_link" bson:"source_link"`
}

// KeyColumns are the column names of the key fields, in order.
var KeyColumns = []string{
	"country", "country_code", "metric", "unit",
	"sector", "sub_sector", "source", "source_link",
}

// Fields returns the key fields in KeyColumns order.
func (k GroupKey) Fields() []string {
	return []string{
		k.Country, k.CountryCode, k.Metric, k.Unit,
		k.Sector, k.SubSector, k.Source, k.SourceLink,
	}
}

// Compare orders keys lexicographically field by field.
func (k GroupKey) Compare(other GroupKey) int {
	a, b := k.Fields(), other.Fields()
	for i := range a {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// WideRecord is one (country, metric) row with a value per year.
// Years without a value are absent from Values.
type WideRecord struct {
	GroupKey
	Values map[int]float64
}

// Table is the pivoted result.
type Table struct {
	// Years are the columns, ascending.
	Years   []int
	Records []WideRecord
}

// Cell returns the value of record i for year.
func (t Table) Cell(i, year int) (float64, bool) {
	if i < 0 || i >= len(t.Records) {
		return 0, false
	}
	v, ok := t.Records[i].Values[year]
	return v, ok
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

// Pivot groups observations by key with one column per year present.
// Observations without a value are ignored. When two observations share a
// key and year the later one wins. Records are sorted by key.
func Pivot(obs []Observation) Table {
	index := make(map[GroupKey]int)
	seenYears := make(map[int]struct{})
	var records []WideRecord

	for _, o := range obs {
		if o.Value == nil {
			continue
		}
		k := o.Key()
		i, ok := index[k]
		if !ok {
			i = len(records)
			index[k] = i
			records = append(records, WideRecord{GroupKey: k, Values: make(map[int]float64)})
		}
		records[i].Values[o.Year] = *o.Value
		seenYears[o.Year] = struct{}{}
	}

	years := make([]int, 0, len(seenYears))
	for y := range seenYears {
		years = append(years, y)
	}
	slices.Sort(years)

	slices.SortFunc(records, func(a, b WideRecord) int {
		return a.GroupKey.Compare(b.GroupKey)
	})

	return Table{Years: years, Records: records}
}

// AggregateStats counts the rows through the aggregate stages.
type AggregateStats struct {
	Input   int
	Missing int
	Kept    int
}

// Aggregate coerces, filters and pivots the observations of a whole run.
func Aggregate(obs []Observation) (Table, AggregateStats) {
	coerced, missing := Coerce(obs)
	kept := DropMissing(coerced)
	return Pivot(kept), AggregateStats{
		Input:   len(obs),
		Missing: missing,
		Kept:    len(kept),
	}
}

// Countries returns the number of distinct countries in the table.
func (t Table) Countries() int {
	return t.distinct(func(k GroupKey) string { return k.Country })
}

// Metrics returns the number of distinct metrics in the table.
func (t Table) Metrics() int {
	return t.distinct(func(k GroupKey) string { return k.Metric })
}

func (t Table) distinct(field func(GroupKey) string) int {
	seen := make(map[string]struct{})
	for _, r := range t.Records {
		seen[field(r.GroupKey)] = struct{}{}
	}
	return len(seen)
}
