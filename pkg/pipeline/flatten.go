// Package pipeline turns portal responses into the wide per-country,
// per-metric table that is written to a sink.
//
// The stages are pure functions (Flatten, Coerce, DropMissing, Pivot) wired
// together by Runner.
package pipeline

import (
	"strconv"
	"strings"

	"github.com/energydata/aep/pkg/catalog"
	"github.com/energydata/aep/pkg/fetcher"
)

// Observation is one (indicator, country, year) data point.
type Observation struct {
	Country     string
	CountryCode string
	Metric      string
	Unit        string
	Sector      string
	SubSector   string
	Source      string
	SourceLink  string
	Year        int
	// Raw is the score exactly as received, empty when absent.
	Raw string
	// Value is nil until Coerce runs, and nil afterwards when Raw is not a number.
	Value *float64
}

// Key returns the grouping key of the observation.
func (o Observation) Key() GroupKey {
	return GroupKey{
		Country:     o.Country,
		CountryCode: o.CountryCode,
		Metric:      o.Metric,
		Unit:        o.Unit,
		Sector:      o.Sector,
		SubSector:   o.SubSector,
		Source:      o.Source,
		SourceLink:  o.SourceLink,
	}
}

// FlattenStats counts what Flatten produced and discarded.
type FlattenStats struct {
	Entries       int
	Observations  int
	RejectedYears int
}

// Flatten converts one fetch response into observations.
//
// Every entry becomes one Observation carrying the indicator's sector and
// sub-sector and the metric object's identifier. Entries whose year is
// absent, not an integer or outside years are dropped; no year is guessed.
// Scores are copied verbatim and left for Coerce.
func Flatten(spec catalog.IndicatorSpec, objs []fetcher.MetricObject, base string, years catalog.YearRange) ([]Observation, FlattenStats) {
	var stats FlattenStats
	out := make([]Observation, 0, fetcher.CountEntries(objs))

	for _, obj := range objs {
		metric := strings.TrimSpace(string(obj.ID))
		if metric == "" {
			metric = spec.IndicatorName
		}

		for _, e := range obj.Data {
			stats.Entries++

			year, ok := parseYear(string(e.Year))
			if !ok || !years.Contains(year) {
				stats.RejectedYears++
				continue
			}

			out = append(out, Observation{
				Country:     strings.TrimSpace(e.Country),
				CountryCode: strings.TrimSpace(string(e.CountryCode)),
				Metric:      metric,
				Unit:        strings.TrimSpace(e.Unit),
				Sector:      spec.Sector,
				SubSector:   spec.SubSector,
				Source:      strings.TrimSpace(e.Source),
				SourceLink:  fetcher.ResolveLink(base, strings.TrimSpace(e.URL)),
				Year:        year,
				Raw:         string(e.Score),
			})
		}
	}

	stats.Observations = len(out)
	return out, stats
}

// parseYear accepts "2015" and numeric forms such as "2015.0".
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
