package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/energydata/aep/internal/logger"
	"github.com/energydata/aep/pkg/catalog"
	"github.com/energydata/aep/pkg/fetcher"
)

var (
	// ErrCatalog is returned when the catalog fails validation.
	ErrCatalog = errors.New("catalog error")
	// ErrSink is returned when the bulk write fails.
	ErrSink = errors.New("sink error")
)

// Sink receives the documents of a run in a single bulk write.
// Implementations must treat an empty batch as a no-op.
type Sink interface {
	BulkInsert(ctx context.Context, docs []Document) (int, error)
	Close(ctx context.Context) error
	Name() string
}

// Runner executes one pipeline run.
type Runner struct {
	Catalog catalog.Catalog
	Fetcher fetcher.Fetcher
	// BaseURL resolves relative source links.
	BaseURL string
	// Sink is optional. Without one the run stops after the pivot.
	Sink Sink
	// Spill receives the documents when Sink fails.
	Spill Sink
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// FailedIndicator records an indicator that contributed nothing.
type FailedIndicator struct {
	Indicator catalog.IndicatorSpec `json:"indicator" yaml:"indicator"`
	Error     string                `json:"error" yaml:"error"`
}

// Summary describes a completed run.
type Summary struct {
	RunID         string            `json:"run_id" yaml:"run_id"`
	Indicators    int               `json:"indicators" yaml:"indicators"`
	Failed        []FailedIndicator `json:"failed,omitempty" yaml:"failed,omitempty"`
	Observations  int               `json:"observations" yaml:"observations"`
	RejectedYears int               `json:"rejected_years" yaml:"rejected_years"`
	Missing       int               `json:"missing" yaml:"missing"`
	Rows          int               `json:"rows" yaml:"rows"`
	Countries     int               `json:"countries" yaml:"countries"`
	Years         int               `json:"years" yaml:"years"`
	Metrics       int               `json:"metrics" yaml:"metrics"`
	Inserted      int               `json:"inserted" yaml:"inserted"`
	Spilled       int               `json:"spilled,omitempty" yaml:"spilled,omitempty"`
	Sink          string            `json:"sink,omitempty" yaml:"sink,omitempty"`
	Duration      time.Duration     `json:"duration" yaml:"duration"`

	// Documents holds what was (or would have been) written.
	Documents Documents `json:"-" yaml:"-"`
}

// Run fetches every catalog indicator in order, pivots the results and
// writes them to the sink. A failing indicator is logged and skipped. The
// returned summary is non-nil whenever the fetch stage completed, even if
// the sink failed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.Fetcher == nil {
		return nil, errors.New("runner has no fetcher")
	}
	if err := r.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}

	now := r.Clock
	if now == nil {
		now = time.Now
	}
	start := now()

	summary := &Summary{RunID: uuid.NewString()}
	log := logger.With("run_id", summary.RunID)

	specs := r.Catalog.Indicators()
	countries := r.Catalog.Countries
	years := r.Catalog.Years.List()
	summary.Indicators = len(specs)

	log.Info("run starting",
		"indicators", len(specs),
		"countries", len(countries),
		"years", len(years),
		"fetcher", r.Fetcher.Type())

	var all []Observation
	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled after %d of %d indicators: %w", i, len(specs), err)
		}

		objs, err := r.Fetcher.Fetch(ctx, spec, countries, years)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("run cancelled after %d of %d indicators: %w", i, len(specs), ctxErr)
			}
			log.Warn("indicator skipped",
				"index", i+1,
				"total", len(specs),
				"indicator", spec.IndicatorName,
				"sub_sector", spec.SubSector,
				"error", err)
			summary.Failed = append(summary.Failed, FailedIndicator{Indicator: spec, Error: err.Error()})
			continue
		}

		obs, stats := Flatten(spec, objs, r.BaseURL, r.Catalog.Years)
		all = append(all, obs...)
		summary.RejectedYears += stats.RejectedYears

		log.Info("indicator fetched",
			"index", i+1,
			"total", len(specs),
			"indicator", spec.IndicatorName,
			"observations", stats.Observations,
			"rejected_years", stats.RejectedYears)
	}

	table, agg := Aggregate(all)
	summary.Observations = agg.Input
	summary.Missing = agg.Missing
	summary.Rows = table.Len()
	summary.Countries = table.Countries()
	summary.Years = len(table.Years)
	summary.Metrics = table.Metrics()
	summary.Documents = ToDocuments(table, summary.RunID, start)

	log.Info("pivot complete",
		"observations", agg.Input,
		"missing", agg.Missing,
		"rows", summary.Rows,
		"countries", summary.Countries,
		"years", summary.Years,
		"metrics", summary.Metrics)

	if r.Sink == nil {
		summary.Duration = now().Sub(start)
		return summary, nil
	}

	summary.Sink = r.Sink.Name()
	inserted, err := r.Sink.BulkInsert(ctx, summary.Documents)
	summary.Inserted = inserted
	if err != nil {
		log.Error("bulk write failed", "sink", r.Sink.Name(), "documents", len(summary.Documents), "error", err)
		sinkErr := fmt.Errorf("%w: %s: %w", ErrSink, r.Sink.Name(), err)

		if r.Spill != nil {
			spilled, spillErr := r.Spill.BulkInsert(ctx, summary.Documents)
			summary.Spilled = spilled
			if spillErr != nil {
				log.Error("spill failed", "sink", r.Spill.Name(), "error", spillErr)
				sinkErr = errors.Join(sinkErr, fmt.Errorf("spill to %s: %w", r.Spill.Name(), spillErr))
			} else {
				log.Warn("documents spilled", "sink", r.Spill.Name(), "documents", spilled)
			}
		}

		summary.Duration = now().Sub(start)
		return summary, sinkErr
	}

	summary.Duration = now().Sub(start)
	log.Info("run complete", "inserted", inserted, "sink", r.Sink.Name(), "duration", summary.Duration)
	return summary, nil
}
