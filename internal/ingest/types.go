package ingest

import (
	"context"
	"fmt"
	"time"
)

// Item is the common normalized record every source produces.
// ExternalID is unique within a single source's result set, never across
// sources. Published, when set, is always UTC so cross-source comparison is
// valid; nil means the item is legitimately undated.
type Item struct {
	SourceName string
	Title      string
	URL        string
	ExternalID string     // feed guid, or URL fallback
	Published  *time.Time // nil = undated
	Summary    string
	Body       string // transcript or markdown article text, set by enrichment
	Tags       []string
}

// Window bounds which items a run retains. The cutoff is computed once per
// run so every source filters against the same instant regardless of when it
// actually executes.
type Window struct {
	Cutoff time.Time
}

// NewWindow builds a window reaching hoursBack hours into the past from now.
func NewWindow(hoursBack int) Window {
	if hoursBack <= 0 {
		hoursBack = cfg.HoursBack
	}
	return Window{Cutoff: time.Now().UTC().Add(-time.Duration(hoursBack) * time.Hour)}
}

// Includes reports whether an item with the given publish time passes the
// window. Undated items pass only when the source's policy keeps them.
func (w Window) Includes(published *time.Time, keepUndated bool) bool {
	if published == nil {
		return keepUndated
	}
	return !published.Before(w.Cutoff)
}

// Source is one pluggable content origin. FetchItems returns the listed,
// window-filtered items; enrichment is a separate optional capability.
type Source interface {
	Name() string
	FetchItems(ctx context.Context, w Window) ([]Item, error)
}

// Enricher is implemented by sources that can attach full text (article
// markdown, transcript) to an already-listed item. An Enrich error is
// item-local: the item is kept with an empty Body.
type Enricher interface {
	Enrich(ctx context.Context, item *Item) error
}

// ListingError marks a source-local listing failure: the source could not
// retrieve or parse its item listing. It never crosses the source boundary.
type ListingError struct {
	Source string
	Err    error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("source %s: listing failed: %v", e.Source, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }
