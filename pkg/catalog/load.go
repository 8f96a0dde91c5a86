package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads a catalog from a JSON or YAML file. Fields the file leaves
// empty (countries, years) are filled from the defaults.
func FromFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI reads a user-supplied catalog
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FromJSON(data)
	case ".yaml", ".yml":
		return FromYAML(data)
	default:
		return Catalog{}, fmt.Errorf("unsupported catalog file format: %s", ext)
	}
}

// FromJSON parses a catalog from JSON.
func FromJSON(data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse JSON catalog: %w", err)
	}
	return withDefaults(c), nil
}

// FromYAML parses a catalog from YAML.
func FromYAML(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse YAML catalog: %w", err)
	}
	return withDefaults(c), nil
}

func withDefaults(c Catalog) Catalog {
	if len(c.Countries) == 0 {
		c.Countries = append([]string(nil), DefaultCountries...)
	}
	if c.Years == (YearRange{}) {
		c.Years = DefaultYears
	}
	return c
}
