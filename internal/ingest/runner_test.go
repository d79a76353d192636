package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSource struct {
	name  string
	items []Item
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchItems(ctx context.Context, w Window) ([]Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakeEnricher struct {
	fakeSource
	failURL string
	calls   atomic.Int64
}

func (f *fakeEnricher) Enrich(ctx context.Context, item *Item) error {
	f.calls.Add(1)
	if item.URL == f.failURL {
		return errors.New("fetch failed")
	}
	item.Body = "enriched: " + item.Title
	return nil
}

func TestRunIsolatesFailures(t *testing.T) {
	testInit(t, false)

	broken := &fakeSource{name: "broken", err: errors.New("listing unreachable")}
	healthy := &fakeSource{name: "healthy", items: []Item{
		{SourceName: "healthy", Title: "one", URL: "https://example.com/1"},
		{SourceName: "healthy", Title: "two", URL: "https://example.com/2"},
	}}

	results := NewRunner(broken, healthy).Run(context.Background(), NewWindow(24))

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results["broken"].Err == nil {
		t.Error("broken source should carry an error")
	}
	var le *ListingError
	if !errors.As(results["broken"].Err, &le) {
		t.Errorf("broken source error %T, want *ListingError", results["broken"].Err)
	} else if le.Source != "broken" {
		t.Errorf("ListingError.Source = %q, want %q", le.Source, "broken")
	}
	if results["healthy"].Err != nil {
		t.Errorf("healthy source affected by neighbor failure: %v", results["healthy"].Err)
	}
	if len(results["healthy"].Items) != 2 {
		t.Errorf("healthy source returned %d items, want 2", len(results["healthy"].Items))
	}
}

func TestRunEmptyVersusFailed(t *testing.T) {
	testInit(t, false)

	empty := &fakeSource{name: "empty"}
	results := NewRunner(empty).Run(context.Background(), NewWindow(24))

	res := results["empty"]
	if res.Err != nil {
		t.Errorf("empty source reported error: %v", res.Err)
	}
	if len(res.Items) != 0 {
		t.Errorf("empty source returned %d items", len(res.Items))
	}
}

func TestRunEnrichmentFailureKeepsItem(t *testing.T) {
	testInit(t, false)

	src := &fakeEnricher{
		fakeSource: fakeSource{name: "mixed", items: []Item{
			{SourceName: "mixed", Title: "good", URL: "https://example.com/good"},
			{SourceName: "mixed", Title: "bad", URL: "https://example.com/bad"},
		}},
		failURL: "https://example.com/bad",
	}

	results := NewRunner(src).Run(context.Background(), NewWindow(24))

	res := results["mixed"]
	if res.Err != nil {
		t.Fatalf("item-local enrichment failure escalated to source failure: %v", res.Err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}
	if src.calls.Load() != 2 {
		t.Errorf("Enrich called %d times, want 2", src.calls.Load())
	}
	for _, item := range res.Items {
		switch item.Title {
		case "good":
			if !strings.HasPrefix(item.Body, "enriched:") {
				t.Errorf("good item not enriched: %q", item.Body)
			}
		case "bad":
			if item.Body != "" {
				t.Errorf("failed item has body %q, want empty", item.Body)
			}
		}
	}
}

func TestRunEnrichmentBounded(t *testing.T) {
	Init(Config{EnrichWorkers: 2})

	var inflight, peak atomic.Int64
	items := make([]Item, 8)
	for i := range items {
		items[i] = Item{Title: fmt.Sprintf("item %d", i), URL: fmt.Sprintf("https://example.com/%d", i)}
	}
	e := &countingEnricher{inflight: &inflight, peak: &peak}

	enrichAll(context.Background(), e, "counting", items)

	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrent enrichments = %d, want <= 2", p)
	}
	for _, item := range items {
		if item.Body == "" {
			t.Errorf("item %q not enriched", item.Title)
		}
	}
}

type countingEnricher struct {
	inflight *atomic.Int64
	peak     *atomic.Int64
}

func (c *countingEnricher) Enrich(ctx context.Context, item *Item) error {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	item.Body = "done"
	return nil
}

func TestWindowIncludes(t *testing.T) {
	cutoff := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	w := Window{Cutoff: cutoff}
	after := cutoff.Add(time.Hour)
	before := cutoff.Add(-time.Hour)

	tests := []struct {
		name        string
		published   *time.Time
		keepUndated bool
		want        bool
	}{
		{"inside window", &after, false, true},
		{"outside window", &before, false, false},
		{"exactly at cutoff", &cutoff, false, true},
		{"undated dropped", nil, false, false},
		{"undated kept", nil, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Includes(tt.published, tt.keepUndated); got != tt.want {
				t.Errorf("Includes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListingErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	le := &ListingError{Source: "feed", Err: inner}
	if !errors.Is(le, inner) {
		t.Error("ListingError does not unwrap to inner error")
	}
	if !strings.Contains(le.Error(), "feed") {
		t.Errorf("Error() = %q, missing source name", le.Error())
	}
}
