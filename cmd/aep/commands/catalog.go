package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/energydata/aep/internal/output"
	"github.com/energydata/aep/pkg/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the indicator catalog",
	Long: `Print the indicators that a run would request, grouped by sector and
sub-sector, together with the country list and year range.

Examples:
  aep catalog
  aep catalog --sub-sector Access
  aep catalog --format yaml > catalog.yaml   # editable starting point for --catalog`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	flags := catalogCmd.Flags()
	flags.String("catalog", "", "catalog file (YAML or JSON) to print instead of the built-in one")
	flags.String("sector", "", "only show this sector")
	flags.String("sub-sector", "", "only show this sub-sector")
	flags.String("format", "table", "output format: table, json, yaml")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	initLogger()

	flags := cmd.Flags()
	file, _ := flags.GetString("catalog")
	sector, _ := flags.GetString("sector")
	subSector, _ := flags.GetString("sub-sector")
	format, _ := flags.GetString("format")

	s := settings{CatalogFile: file, Sector: sector, SubSector: subSector}
	c, err := s.loadCatalog()
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	return writeCatalog(cmd.OutOrStdout(), c, format)
}

func writeCatalog(w io.Writer, c catalog.Catalog, format string) error {
	if strings.EqualFold(format, "table") {
		renderCatalog(w, c)
		return nil
	}

	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	if f != output.FormatJSON && f != output.FormatYAML {
		return fmt.Errorf("catalog can only be printed as table, json or yaml")
	}
	ow, err := output.NewWriter(w, f)
	if err != nil {
		return err
	}
	if err := ow.Write(c); err != nil {
		return err
	}
	return ow.Close()
}

func renderCatalog(w io.Writer, c catalog.Catalog) {
	t := newTable(w)
	t.SetTitle("%d indicators, %d countries, %d-%d", len(c.Indicators()), len(c.Countries), c.Years.From, c.Years.To)
	t.AppendHeader(table.Row{"#", "Sector", "Sub-sector", "Indicator"})
	for i, spec := range c.Indicators() {
		t.AppendRow(table.Row{i + 1, spec.Sector, spec.SubSector, spec.IndicatorName})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, AutoMerge: true},
		{Number: 3, AutoMerge: true},
	})
	t.Render()
}
