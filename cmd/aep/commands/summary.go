package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/energydata/aep/pkg/pipeline"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// printSummary renders the run summary and any failed indicators.
func printSummary(w io.Writer, s *pipeline.Summary) {
	t := newTable(w)
	t.SetTitle("Run " + s.RunID)
	t.AppendRows([]table.Row{
		{"Indicators", fmt.Sprintf("%s (%s failed)", humanize.Comma(int64(s.Indicators)), humanize.Comma(int64(len(s.Failed))))},
		{"Observations", humanize.Comma(int64(s.Observations))},
		{"Missing values", humanize.Comma(int64(s.Missing))},
		{"Rejected years", humanize.Comma(int64(s.RejectedYears))},
		{"Rows", humanize.Comma(int64(s.Rows))},
		{"Countries", humanize.Comma(int64(s.Countries))},
		{"Years", humanize.Comma(int64(s.Years))},
		{"Metrics", humanize.Comma(int64(s.Metrics))},
	})
	if s.Sink != "" {
		t.AppendRow(table.Row{"Inserted", fmt.Sprintf("%s into %s", humanize.Comma(int64(s.Inserted)), s.Sink)})
	}
	if s.Spilled > 0 {
		t.AppendRow(table.Row{"Spilled", humanize.Comma(int64(s.Spilled))})
	}
	t.AppendRow(table.Row{"Duration", s.Duration.Round(time.Millisecond).String()})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	if len(s.Failed) == 0 {
		return
	}
	ft := newTable(w)
	ft.SetTitle("Failed indicators")
	ft.AppendHeader(table.Row{"Sub-sector", "Indicator", "Error"})
	for _, f := range s.Failed {
		ft.AppendRow(table.Row{f.Indicator.SubSector, f.Indicator.IndicatorName, f.Error})
	}
	ft.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 60}})
	ft.Render()
}

// printPreview renders up to limit documents as a wide table.
func printPreview(w io.Writer, docs pipeline.Documents, limit int) {
	if len(docs) == 0 || limit <= 0 {
		return
	}
	if limit > len(docs) {
		limit = len(docs)
	}

	years := docs[0].Years()
	header := table.Row{"Country", "Metric", "Unit"}
	for _, y := range years {
		header = append(header, y)
	}

	t := newTable(w)
	t.AppendHeader(header)
	for _, d := range docs[:limit] {
		row := table.Row{d.Country, d.Metric, d.Unit}
		for _, y := range years {
			if v := d.Values[y]; v != nil {
				row = append(row, strconv.FormatFloat(*v, 'g', 6, 64))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	if limit < len(docs) {
		t.AppendFooter(table.Row{fmt.Sprintf("%d of %d rows", limit, len(docs))})
	}
	t.Render()
}
