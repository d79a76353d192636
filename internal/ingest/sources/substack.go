package sources

import (
	"context"

	"github.com/avoronov/go_news/internal/ingest"
)

// SubstackSource is the plain feed variant: the feed already carries the full
// post body inline (content:encoded), so there is no enrichment step.
type SubstackSource struct {
	SourceName string
	FeedURL    string
}

// NewSubstackSource builds a source over one Substack feed URL.
func NewSubstackSource(name, feedURL string) *SubstackSource {
	return &SubstackSource{SourceName: name, FeedURL: feedURL}
}

func (s *SubstackSource) Name() string {
	if s.SourceName != "" {
		return s.SourceName
	}
	return "substack"
}

// FetchItems lists window-matching posts. Undated entries are dropped.
func (s *SubstackSource) FetchItems(ctx context.Context, w ingest.Window) ([]ingest.Item, error) {
	feed, err := ingest.FetchFeed(ctx, s.FeedURL)
	if err != nil {
		return nil, err
	}

	var items []ingest.Item
	for _, entry := range feed.Items {
		published := ingest.EntryPublished(entry)
		if !w.Includes(published, false) {
			continue
		}

		body := entry.Content
		if body == "" {
			body = entry.Description
		}

		items = append(items, ingest.Item{
			SourceName: s.Name(),
			Title:      entry.Title,
			URL:        entry.Link,
			ExternalID: ingest.EntryID(entry),
			Published:  published,
			Summary:    ingest.CleanHTML(entry.Description),
			Body:       body,
			Tags:       entry.Categories,
		})
	}
	return items, nil
}
