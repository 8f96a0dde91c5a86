package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default catalog should validate: %v", err)
	}

	if len(c.Countries) != 54 {
		t.Errorf("expected 54 countries, got %d", len(c.Countries))
	}
	if got := len(c.Indicators()); got != 34 {
		t.Errorf("expected 34 indicators, got %d", got)
	}
}

func TestDefault_ReturnsCopy(t *testing.T) {
	a := Default()
	a.Countries[0] = "Atlantis"
	a.Sectors[0].SubSectors[0].Indicators[0] = "changed"

	b := Default()
	if b.Countries[0] != "Algeria" {
		t.Errorf("Default() countries were shared: %q", b.Countries[0])
	}
	if b.Sectors[0].SubSectors[0].Indicators[0] == "changed" {
		t.Error("Default() indicators were shared")
	}
}

func TestYearRange_List(t *testing.T) {
	years := DefaultYears.List()
	if len(years) != 23 {
		t.Fatalf("expected 23 years, got %d", len(years))
	}
	if years[0] != 2000 || years[22] != 2022 {
		t.Errorf("unexpected bounds %d..%d", years[0], years[22])
	}

	if (YearRange{From: 2010, To: 2005}).List() != nil {
		t.Error("inverted range should be empty")
	}
}

func TestYearRange_Contains(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{1999, false},
		{2000, true},
		{2011, true},
		{2022, true},
		{2023, false},
	}
	for _, tt := range tests {
		if got := DefaultYears.Contains(tt.year); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestIndicators_DeclarationOrder(t *testing.T) {
	c := Catalog{
		Countries: []string{"Kenya"},
		Years:     DefaultYears,
		Sectors: []Sector{
			{Name: "Electricity", SubSectors: []SubSector{
				{Name: "Generation", Indicators: []string{"A", "B"}},
				{Name: "Access", Indicators: []string{"C"}},
			}},
		},
	}

	specs := c.Indicators()
	want := []IndicatorSpec{
		{"Electricity", "Generation", "A"},
		{"Electricity", "Generation", "B"},
		{"Electricity", "Access", "C"},
	}
	if len(specs) != len(want) {
		t.Fatalf("expected %d specs, got %d", len(want), len(specs))
	}
	for i := range want {
		if specs[i] != want[i] {
			t.Errorf("spec[%d] = %v, want %v", i, specs[i], want[i])
		}
	}

	if !c.Contains(IndicatorSpec{"Electricity", "Access", "C"}) {
		t.Error("Contains() should find declared indicator")
	}
	if c.Contains(IndicatorSpec{"Electricity", "Access", "A"}) {
		t.Error("Contains() should not match indicator under wrong sub-sector")
	}
}

func TestValidate_Rejects(t *testing.T) {
	base := func() Catalog {
		return Catalog{
			Countries: []string{"Kenya"},
			Years:     DefaultYears,
			Sectors: []Sector{{Name: "Electricity", SubSectors: []SubSector{
				{Name: "Generation", Indicators: []string{"Electricity generation, Total (GWh)"}},
			}}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Catalog)
	}{
		{"no countries", func(c *Catalog) { c.Countries = nil }},
		{"blank country", func(c *Catalog) { c.Countries = []string{""} }},
		{"duplicate country", func(c *Catalog) { c.Countries = []string{"Kenya", "Kenya"} }},
		{"zero years", func(c *Catalog) { c.Years = YearRange{} }},
		{"inverted years", func(c *Catalog) { c.Years = YearRange{From: 2020, To: 2010} }},
		{"no sectors", func(c *Catalog) { c.Sectors = nil }},
		{"blank sector", func(c *Catalog) { c.Sectors[0].Name = "" }},
		{"no indicators", func(c *Catalog) { c.Sectors[0].SubSectors[0].Indicators = nil }},
		{"duplicate indicator", func(c *Catalog) {
			c.Sectors[0].SubSectors[0].Indicators = []string{"X", "X"}
		}},
		{"duplicate sub-sector entry", func(c *Catalog) {
			c.Sectors[0].SubSectors = append(c.Sectors[0].SubSectors, c.Sectors[0].SubSectors[0])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("base catalog should validate: %v", err)
	}
}

func TestFilter(t *testing.T) {
	c := Default()

	access := c.Filter("electricity", "ACCESS")
	if len(access.Sectors) != 1 || len(access.Sectors[0].SubSectors) != 1 {
		t.Fatalf("unexpected filter result: %+v", access.Sectors)
	}
	if access.Sectors[0].SubSectors[0].Name != "Access" {
		t.Errorf("expected Access, got %s", access.Sectors[0].SubSectors[0].Name)
	}
	if len(access.Countries) != len(c.Countries) {
		t.Error("filter should keep countries")
	}

	if got := c.Filter("", ""); len(got.Indicators()) != len(c.Indicators()) {
		t.Error("empty filter should keep everything")
	}

	if got := c.Filter("Oil", ""); len(got.Sectors) != 0 {
		t.Error("unknown sector should produce empty catalog")
	}
}

func TestFromYAML_FillsDefaults(t *testing.T) {
	data := []byte(`
sectors:
  - name: Electricity
    sub_sectors:
      - name: Generation
        indicators:
          - Electricity generation, Total (GWh)
`)
	c, err := FromYAML(data)
	if err != nil {
		t.Fatalf("FromYAML() error = %v", err)
	}
	if len(c.Countries) != len(DefaultCountries) {
		t.Errorf("expected default countries, got %d", len(c.Countries))
	}
	if c.Years != DefaultYears {
		t.Errorf("expected default years, got %+v", c.Years)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("loaded catalog should validate: %v", err)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "catalog.json")
	jsonData := `{"countries":["Kenya","Ghana"],"years":{"from":2015,"to":2020},
"sectors":[{"name":"Electricity","sub_sectors":[{"name":"Supply","indicators":["Electricity import (GWh)"]}]}]}`
	if err := os.WriteFile(jsonPath, []byte(jsonData), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := FromFile(jsonPath)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if len(c.Countries) != 2 || c.Years.From != 2015 || c.Years.To != 2020 {
		t.Errorf("unexpected catalog: %+v", c)
	}

	txtPath := filepath.Join(dir, "catalog.txt")
	if err := os.WriteFile(txtPath, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := FromFile(txtPath); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}

	if _, err := FromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
