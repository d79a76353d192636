package ingest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func rssDoc(items string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>test feed</title>
<link>https://example.com</link>
%s
</channel></rss>`, items)
}

func TestFetchFeedFromCache(t *testing.T) {
	testInit(t, true)

	feedURL := "https://example.com/feed.xml"
	pub := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	CacheSet(feedURL, "xml", rssDoc(fmt.Sprintf(`<item>
<title>First post</title>
<link>https://example.com/posts/first</link>
<guid>post-1</guid>
<pubDate>%s</pubDate>
</item>`, pub.Format(time.RFC1123Z))))

	before := GetMetrics()["feed_requests"]
	feed, err := FetchFeed(context.Background(), feedURL)
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if got := GetMetrics()["feed_requests"] - before; got != 1 {
		t.Errorf("feed_requests delta = %d, want 1", got)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(feed.Items))
	}
	item := feed.Items[0]
	if item.Title != "First post" {
		t.Errorf("title = %q", item.Title)
	}
	if got := EntryID(item); got != "post-1" {
		t.Errorf("EntryID = %q, want post-1", got)
	}
	got := EntryPublished(item)
	if got == nil || !got.Equal(pub) {
		t.Errorf("EntryPublished = %v, want %v", got, pub)
	}
}

func TestFetchFeedMalformed(t *testing.T) {
	testInit(t, true)

	feedURL := "https://example.com/broken.xml"
	CacheSet(feedURL, "xml", "this is not a feed")

	if _, err := FetchFeed(context.Background(), feedURL); err == nil {
		t.Fatal("expected error for malformed feed")
	}
}

func TestEntryID(t *testing.T) {
	withGUID := &gofeed.Item{GUID: "guid-1", Link: "https://example.com/a"}
	if got := EntryID(withGUID); got != "guid-1" {
		t.Errorf("EntryID = %q, want guid-1", got)
	}
	linkOnly := &gofeed.Item{Link: "https://example.com/b"}
	if got := EntryID(linkOnly); got != "https://example.com/b" {
		t.Errorf("EntryID = %q, want link fallback", got)
	}
}

func TestEntryPublished(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	pub := time.Date(2024, 6, 15, 10, 0, 0, 0, loc)
	upd := time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC)

	t.Run("published preferred", func(t *testing.T) {
		got := EntryPublished(&gofeed.Item{PublishedParsed: &pub, UpdatedParsed: &upd})
		if got == nil || !got.Equal(pub) {
			t.Errorf("got %v, want %v", got, pub)
		}
		if got.Location() != time.UTC {
			t.Errorf("location = %v, want UTC", got.Location())
		}
	})

	t.Run("updated fallback", func(t *testing.T) {
		got := EntryPublished(&gofeed.Item{UpdatedParsed: &upd})
		if got == nil || !got.Equal(upd) {
			t.Errorf("got %v, want %v", got, upd)
		}
	})

	t.Run("undated", func(t *testing.T) {
		if got := EntryPublished(&gofeed.Item{}); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}
