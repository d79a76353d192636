package ingest

import (
	"context"
	"log/slog"
	"sync"
)

// SourceResult is the outcome of one source within a run. A nil Err with zero
// items means nothing matched the window; a non-nil Err means the source
// failed outright — callers can tell the two apart.
type SourceResult struct {
	Items []Item
	Err   error
}

// Runner orchestrates the configured sources: every source gets the same
// window, failures stay local to their source, and results are aggregated by
// source name.
type Runner struct {
	sources []Source
	store   *ItemStore // optional persistence
}

// NewRunner builds a runner over the given sources.
func NewRunner(sources ...Source) *Runner {
	return &Runner{sources: sources}
}

// WithStore attaches an item store; harvested items are persisted after each
// successful source run.
func (r *Runner) WithStore(s *ItemStore) *Runner {
	r.store = s
	return r
}

// Run executes all sources concurrently against the same window. A source
// failure is recorded in its result and logged; it never blocks the others.
// No automatic retry — a failed source yields zero items for this run.
func (r *Runner) Run(ctx context.Context, w Window) map[string]SourceResult {
	slog.Info("ingestion run started",
		slog.Time("cutoff", w.Cutoff),
		slog.Int("sources", len(r.sources)))

	results := make(map[string]SourceResult, len(r.sources))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, src := range r.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			res := r.runSource(ctx, src, w)
			mu.Lock()
			results[src.Name()] = res
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	total := 0
	for name, res := range results {
		if res.Err != nil {
			slog.Warn("source failed", slog.String("source", name), slog.Any("error", res.Err))
			continue
		}
		slog.Info("source done", slog.String("source", name), slog.Int("items", len(res.Items)))
		total += len(res.Items)
	}
	slog.Info("ingestion run finished", slog.Int("total_items", total))
	return results
}

func (r *Runner) runSource(ctx context.Context, src Source, w Window) SourceResult {
	items, err := src.FetchItems(ctx, w)
	if err != nil {
		metrics.SourceFailures.Add(1)
		return SourceResult{Err: &ListingError{Source: src.Name(), Err: err}}
	}

	if e, ok := src.(Enricher); ok {
		enrichAll(ctx, e, src.Name(), items)
	}

	if r.store != nil {
		if err := r.store.UpsertItems(items); err != nil {
			slog.Warn("store upsert failed", slog.String("source", src.Name()), slog.Any("error", err))
		}
	}
	return SourceResult{Items: items}
}

// enrichAll runs per-item enrichment under a bounded worker pool. Failures
// are item-local: the item keeps an empty Body and the run continues.
func enrichAll(ctx context.Context, e Enricher, name string, items []Item) {
	sem := make(chan struct{}, cfg.EnrichWorkers)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(item *Item) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := e.Enrich(ctx, item); err != nil {
				metrics.EnrichErrors.Add(1)
				slog.Warn("enrichment failed, content unavailable",
					slog.String("source", name),
					slog.String("url", item.URL),
					slog.Any("error", err))
			}
		}(&items[i])
	}
	wg.Wait()
}
