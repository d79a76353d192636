package sources

import (
	"context"
	"testing"
	"time"

	"github.com/avoronov/go_news/internal/ingest"
)

func seedAnthropicFeeds(t *testing.T, news, engineering, research string) {
	t.Helper()
	for _, f := range anthropicFeeds {
		switch f.kind {
		case "news":
			ingest.CacheSet(f.url, "xml", news)
		case "engineering":
			ingest.CacheSet(f.url, "xml", engineering)
		case "research":
			ingest.CacheSet(f.url, "xml", research)
		}
	}
}

func TestAnthropicFetchItems(t *testing.T) {
	initTestPipeline(t)

	now := time.Now().UTC()
	h1 := now.Add(-1 * time.Hour)
	h2 := now.Add(-2 * time.Hour)
	h5 := now.Add(-5 * time.Hour)
	stale := now.Add(-48 * time.Hour)

	seedAnthropicFeeds(t,
		rssDoc(
			rssItem("News post", "https://www.anthropic.com/news/a", "news-a", &h2)+
				rssItem("Stale news post", "https://www.anthropic.com/news/b", "news-b", &stale)+
				rssItem("Undated news post", "https://www.anthropic.com/news/c", "news-c", nil)),
		rssDoc(
			rssItem("Engineering post", "https://www.anthropic.com/engineering/a", "eng-a", &h5)),
		rssDoc(
			rssItem("Research post", "https://www.anthropic.com/research/a", "res-a", &h1)+
				rssItem("Undated research post", "https://www.anthropic.com/research/b", "res-b", nil)))

	src := NewAnthropicSource()
	items, err := src.FetchItems(context.Background(), ingest.NewWindow(24))
	if err != nil {
		t.Fatalf("FetchItems: %v", err)
	}

	// dated items newest first, undated research item last; news feed drops
	// its undated entry while the research feed keeps it
	wantTitles := []string{"Research post", "News post", "Engineering post", "Undated research post"}
	if len(items) != len(wantTitles) {
		t.Fatalf("got %d items, want %d", len(items), len(wantTitles))
	}
	for i, want := range wantTitles {
		if items[i].Title != want {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Title, want)
		}
	}
	if items[3].Published != nil {
		t.Error("undated research item acquired a publish time")
	}
	if len(items[0].Tags) == 0 || items[0].Tags[0] != "research" {
		t.Errorf("research item tags = %v, want feed kind first", items[0].Tags)
	}
	for _, item := range items {
		if item.SourceName != "anthropic" {
			t.Errorf("source = %q, want anthropic", item.SourceName)
		}
	}
}

func TestAnthropicFeedFailureFailsSource(t *testing.T) {
	initTestPipeline(t)

	now := time.Now().UTC().Add(-time.Hour)
	seedAnthropicFeeds(t,
		rssDoc(rssItem("News post", "https://www.anthropic.com/news/a", "news-a", &now)),
		"not a feed",
		rssDoc(""))

	src := NewAnthropicSource()
	if _, err := src.FetchItems(context.Background(), ingest.NewWindow(24)); err == nil {
		t.Fatal("expected source failure when one feed is malformed")
	}
}
