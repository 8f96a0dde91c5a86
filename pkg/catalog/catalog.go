// Package catalog defines the indicator taxonomy requested from the portal:
// sector → sub-sector → indicator names, plus the country list and year range.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IndicatorSpec identifies a single indicator request.
type IndicatorSpec struct {
	Sector        string `json:"sector" yaml:"sector"`
	SubSector     string `json:"sub_sector" yaml:"sub_sector"`
	IndicatorName string `json:"indicator_name" yaml:"indicator_name"`
}

// String returns "sector/sub_sector/indicator".
func (s IndicatorSpec) String() string {
	return s.Sector + "/" + s.SubSector + "/" + s.IndicatorName
}

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	From int `json:"from" yaml:"from" validate:"gte=1900,lte=2100"`
	To   int `json:"to" yaml:"to" validate:"gtefield=From,lte=2100"`
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// List returns every year in the range in ascending order.
func (r YearRange) List() []int {
	if r.To < r.From {
		return nil
	}
	years := make([]int, 0, r.To-r.From+1)
	for y := r.From; y <= r.To; y++ {
		years = append(years, y)
	}
	return years
}

// SubSector groups indicator names under a sector.
type SubSector struct {
	Name       string   `json:"name" yaml:"name" validate:"required"`
	Indicators []string `json:"indicators" yaml:"indicators" validate:"required,min=1,unique,dive,required"`
}

// Sector is the top level of the taxonomy (the portal's "mainGroup").
type Sector struct {
	Name       string      `json:"name" yaml:"name" validate:"required"`
	SubSectors []SubSector `json:"sub_sectors" yaml:"sub_sectors" validate:"required,min=1,dive"`
}

// Catalog is the full request plan for a run.
type Catalog struct {
	Countries []string  `json:"countries" yaml:"countries" validate:"required,min=1,unique,dive,required"`
	Years     YearRange `json:"years" yaml:"years"`
	Sectors   []Sector  `json:"sectors" yaml:"sectors" validate:"required,min=1,dive"`
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid catalog")

var validate = validator.New()

// Validate checks the catalog for empty or duplicated entries.
func (c Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	seen := make(map[IndicatorSpec]bool)
	for _, spec := range c.Indicators() {
		if seen[spec] {
			return fmt.Errorf("%w: duplicate indicator %s", ErrInvalid, spec)
		}
		seen[spec] = true
	}
	return nil
}

// Indicators enumerates every (sector, sub-sector, indicator) triple in
// declaration order.
func (c Catalog) Indicators() []IndicatorSpec {
	var specs []IndicatorSpec
	for _, sector := range c.Sectors {
		for _, sub := range sector.SubSectors {
			for _, name := range sub.Indicators {
				specs = append(specs, IndicatorSpec{
					Sector:        sector.Name,
					SubSector:     sub.Name,
					IndicatorName: name,
				})
			}
		}
	}
	return specs
}

// Contains reports whether spec is part of the catalog.
func (c Catalog) Contains(spec IndicatorSpec) bool {
	for _, s := range c.Indicators() {
		if s == spec {
			return true
		}
	}
	return false
}

// Filter returns a copy restricted to the named sector and sub-sector.
// Empty arguments match everything. Matching is case-insensitive.
func (c Catalog) Filter(sector, subSector string) Catalog {
	out := Catalog{
		Countries: append([]string(nil), c.Countries...),
		Years:     c.Years,
	}
	for _, s := range c.Sectors {
		if sector != "" && !strings.EqualFold(s.Name, sector) {
			continue
		}
		kept := Sector{Name: s.Name}
		for _, sub := range s.SubSectors {
			if subSector != "" && !strings.EqualFold(sub.Name, subSector) {
				continue
			}
			kept.SubSectors = append(kept.SubSectors, SubSector{
				Name:       sub.Name,
				Indicators: append([]string(nil), sub.Indicators...),
			})
		}
		if len(kept.SubSectors) > 0 {
			out.Sectors = append(out.Sectors, kept)
		}
	}
	return out
}
