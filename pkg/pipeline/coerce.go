package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// Placeholders the portal uses for "no value".
var missingMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"-":    {},
	"--":   {},
	"..":   {},
	"n/a":  {},
	"na":   {},
}

// ParseValue converts a raw score into a number. ok is false for
// placeholders, unparseable text, NaN and infinities.
func ParseValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if _, missing := missingMarkers[strings.ToLower(s)]; missing {
		return 0, false
	}

	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Coerce sets Value on every observation from its Raw score.
// It returns a new slice and the number of values that became missing.
func Coerce(obs []Observation) ([]Observation, int) {
	out := make([]Observation, len(obs))
	missing := 0
	for i, o := range obs {
		o.Value = nil
		if v, ok := ParseValue(o.Raw); ok {
			o.Value = &v
		} else {
			missing++
		}
		out[i] = o
	}
	return out, missing
}

// DropMissing removes observations without a value. Applying it twice
// yields the same result as applying it once.
func DropMissing(obs []Observation) []Observation {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.Value != nil {
			out = append(out, o)
		}
	}
	return out
}
