package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// FetchFeed retrieves a feed URL through the content cache and parses it.
// A malformed feed is a listing failure for the calling source.
func FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	IncrFeedRequests()

	raw, err := FetchText(ctx, feedURL, feedURL, "xml")
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	feed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return feed, nil
}

// EntryID returns the dedup key for a feed entry: guid when present, link
// otherwise.
func EntryID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// EntryPublished returns the entry's publish time in UTC, or nil when the
// feed carries no machine-readable timestamp.
func EntryPublished(item *gofeed.Item) *time.Time {
	parsed := item.PublishedParsed
	if parsed == nil {
		parsed = item.UpdatedParsed
	}
	if parsed == nil {
		return nil
	}
	t := parsed.UTC()
	return &t
}
