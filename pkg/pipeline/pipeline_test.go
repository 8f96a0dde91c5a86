package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/energydata/aep/pkg/catalog"
	"github.com/energydata/aep/pkg/fetcher"
)

type fakeFetcher struct {
	responses map[string][]fetcher.MetricObject
	errs      map[string]error
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, spec catalog.IndicatorSpec, _ []string, _ []int) ([]fetcher.MetricObject, error) {
	f.calls = append(f.calls, spec.IndicatorName)
	if err, ok := f.errs[spec.IndicatorName]; ok {
		return nil, err
	}
	return f.responses[spec.IndicatorName], nil
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return "fake" }

type memorySink struct {
	name string
	err  error
	docs []Document
}

func (s *memorySink) BulkInsert(_ context.Context, docs []Document) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.docs = append(s.docs, docs...)
	return len(docs), nil
}

func (s *memorySink) Close(context.Context) error { return nil }
func (s *memorySink) Name() string                { return s.name }

func singleIndicatorCatalog(indicators ...string) catalog.Catalog {
	return catalog.Catalog{
		Countries: []string{"Kenya", "Ghana"},
		Years:     catalog.DefaultYears,
		Sectors: []catalog.Sector{{Name: "Electricity", SubSectors: []catalog.SubSector{
			{Name: "Generation", Indicators: indicators},
		}}},
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestRunner_KenyaEndToEnd(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]fetcher.MetricObject{
		generation.IndicatorName: {{
			ID: fetcher.Scalar(generation.IndicatorName),
			Data: []fetcher.Entry{
				entry("Kenya", "KEN", "2020", "1500"),
				entry("Kenya", "KEN", "2021", "N/A"),
			},
		}},
	}}
	sink := &memorySink{name: "memory"}

	r := &Runner{
		Catalog: singleIndicatorCatalog(generation.IndicatorName),
		Fetcher: f,
		Sink:    sink,
		Clock:   fixedClock(),
	}
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Rows != 1 || summary.Inserted != 1 || len(sink.docs) != 1 {
		t.Fatalf("expected one record, got rows=%d inserted=%d docs=%d", summary.Rows, summary.Inserted, len(sink.docs))
	}

	doc := sink.docs[0]
	if doc.Country != "Kenya" || doc.Metric != generation.IndicatorName || doc.Sector != "Electricity" {
		t.Errorf("unexpected key: %+v", doc.GroupKey)
	}
	if v := doc.Values["2020"]; v == nil || *v != 1500 {
		t.Errorf("2020 = %v, want 1500", v)
	}
	if _, ok := doc.Values["2021"]; ok {
		t.Error("2021 column should not exist")
	}
	if len(doc.Values) != 1 {
		t.Errorf("expected exactly one year column, got %v", doc.Values)
	}
	if doc.RunID == "" || doc.RunID != summary.RunID {
		t.Errorf("run id not stamped: %q vs %q", doc.RunID, summary.RunID)
	}
	if !doc.FetchedAt.Equal(fixedClock()()) {
		t.Errorf("fetched_at = %v", doc.FetchedAt)
	}
	if summary.Observations != 2 || summary.Missing != 1 || summary.Countries != 1 || summary.Years != 1 || summary.Metrics != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRunner_KenyaMissingCellWhenOtherGroupHasYear(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]fetcher.MetricObject{
		generation.IndicatorName: {{
			ID: fetcher.Scalar(generation.IndicatorName),
			Data: []fetcher.Entry{
				entry("Kenya", "KEN", "2020", "1500"),
				entry("Kenya", "KEN", "2021", "N/A"),
				entry("Ghana", "GHA", "2021", "900"),
			},
		}},
	}}
	sink := &memorySink{name: "memory"}

	r := &Runner{Catalog: singleIndicatorCatalog(generation.IndicatorName), Fetcher: f, Sink: sink}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sink.docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(sink.docs))
	}
	kenya := sink.docs[1]
	if kenya.Country != "Kenya" {
		t.Fatalf("expected Kenya second, got %s", kenya.Country)
	}
	v, ok := kenya.Values["2021"]
	if !ok {
		t.Fatal("2021 column should exist")
	}
	if v != nil {
		t.Errorf("Kenya 2021 should be missing, got %v", *v)
	}
}

func TestRunner_SkipsFailedIndicator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	portal, err := fetcher.NewPortal(fetcher.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewPortal() error = %v", err)
	}

	sink := &memorySink{name: "memory"}
	r := &Runner{
		Catalog: singleIndicatorCatalog(generation.IndicatorName, "Electricity import (GWh)"),
		Fetcher: portal,
		BaseURL: srv.URL,
		Sink:    sink,
	}

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() should not fail on indicator errors: %v", err)
	}
	if len(summary.Failed) != 2 {
		t.Errorf("expected 2 failed indicators, got %d", len(summary.Failed))
	}
	for _, f := range summary.Failed {
		if f.Error == "" {
			t.Error("failed indicator should carry the error")
		}
	}
	if summary.Observations != 0 || summary.Inserted != 0 {
		t.Errorf("expected no data, got %+v", summary)
	}
}

func TestRunner_ContinuesAfterError(t *testing.T) {
	f := &fakeFetcher{
		errs: map[string]error{"A": fetcher.ErrEmpty},
		responses: map[string][]fetcher.MetricObject{
			"B": {{ID: "B", Data: []fetcher.Entry{entry("Kenya", "KEN", "2010", "7")}}},
		},
	}
	sink := &memorySink{name: "memory"}

	r := &Runner{Catalog: singleIndicatorCatalog("A", "B"), Fetcher: f, Sink: sink}
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(f.calls) != 2 || f.calls[0] != "A" || f.calls[1] != "B" {
		t.Errorf("expected sequential calls A, B; got %v", f.calls)
	}
	if len(summary.Failed) != 1 || summary.Failed[0].Indicator.IndicatorName != "A" {
		t.Errorf("unexpected failures: %+v", summary.Failed)
	}
	if summary.Inserted != 1 {
		t.Errorf("expected 1 inserted, got %d", summary.Inserted)
	}
}

func TestRunner_InvalidCatalog(t *testing.T) {
	f := &fakeFetcher{}
	r := &Runner{Catalog: catalog.Catalog{}, Fetcher: f}

	_, err := r.Run(context.Background())
	if !errors.Is(err, ErrCatalog) {
		t.Fatalf("expected ErrCatalog, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("no fetch should happen, got %v", f.calls)
	}
}

func TestRunner_SinkFailureSpills(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]fetcher.MetricObject{
		"A": {{ID: "A", Data: []fetcher.Entry{entry("Kenya", "KEN", "2010", "7")}}},
	}}
	primary := &memorySink{name: "mongo", err: errors.New("connection reset")}
	spill := &memorySink{name: "spill"}

	r := &Runner{Catalog: singleIndicatorCatalog("A"), Fetcher: f, Sink: primary, Spill: spill}
	summary, err := r.Run(context.Background())
	if !errors.Is(err, ErrSink) {
		t.Fatalf("expected ErrSink, got %v", err)
	}
	if summary == nil {
		t.Fatal("summary should be returned on sink failure")
	}
	if len(spill.docs) != 1 || summary.Spilled != 1 {
		t.Errorf("expected documents spilled, got %d (%d)", len(spill.docs), summary.Spilled)
	}
}

func TestRunner_SinkFailureWithoutSpill(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]fetcher.MetricObject{
		"A": {{ID: "A", Data: []fetcher.Entry{entry("Kenya", "KEN", "2010", "7")}}},
	}}
	primary := &memorySink{name: "mongo", err: errors.New("auth failed")}

	r := &Runner{Catalog: singleIndicatorCatalog("A"), Fetcher: f, Sink: primary}
	summary, err := r.Run(context.Background())
	if !errors.Is(err, ErrSink) {
		t.Fatalf("expected ErrSink, got %v", err)
	}
	if len(summary.Documents) != 1 {
		t.Errorf("documents should be kept on the summary, got %d", len(summary.Documents))
	}
}

func TestRunner_NoSinkIsDryRun(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]fetcher.MetricObject{
		"A": {{ID: "A", Data: []fetcher.Entry{entry("Kenya", "KEN", "2010", "7")}}},
	}}
	r := &Runner{Catalog: singleIndicatorCatalog("A"), Fetcher: f}

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Rows != 1 || summary.Inserted != 0 || summary.Sink != "" {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	f := &fakeFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Catalog: singleIndicatorCatalog("A"), Fetcher: f, Sink: &memorySink{name: "memory"}}
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("expected no fetches, got %v", f.calls)
	}
}

func TestDocument_HeaderAndRow(t *testing.T) {
	table := Pivot([]Observation{
		obsFor("Kenya", "gen", 2020, 1500),
		obsFor("Ghana", "gen", 2009, 0.25),
	})
	docs := ToDocuments(table, "run", time.Now())
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	for _, doc := range docs {
		header := doc.Header()
		if len(header) != len(KeyColumns)+2 {
			t.Fatalf("unexpected header %v", header)
		}
		if header[0] != "country" || header[8] != "2009" || header[9] != "2020" {
			t.Errorf("unexpected column order %v", header)
		}
		if len(doc.Row()) != len(header) {
			t.Errorf("row and header lengths differ for %s", doc.Country)
		}
	}

	ghana := docs[0].Row()
	if ghana[0] != "Ghana" || ghana[8] != 0.25 || ghana[9] != nil {
		t.Errorf("unexpected Ghana row %v", ghana)
	}
	kenya := docs[1].Row()
	if kenya[0] != "Kenya" || kenya[8] != nil || kenya[9] != 1500.0 {
		t.Errorf("unexpected Kenya row %v", kenya)
	}

	if items := docs.Items(); len(items) != 2 {
		t.Errorf("Items() returned %d items", len(items))
	}
}
