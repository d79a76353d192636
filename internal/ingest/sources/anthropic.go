package sources

import (
	"context"
	"fmt"
	"sort"

	"github.com/avoronov/go_news/internal/ingest"
)

// Anthropic blog source: three fixed feeds mirrored on raw GitHub. News and
// engineering entries carry publish dates; research posts frequently do not,
// so that feed retains undated items — the asymmetry is deliberate per-feed
// policy, not inferred behavior.

type anthropicFeed struct {
	kind           string
	url            string
	includeUndated bool
}

var anthropicFeeds = []anthropicFeed{
	{"news", "https://raw.githubusercontent.com/Olshansk/rss-feeds/main/feeds/feed_anthropic_news.xml", false},
	{"engineering", "https://raw.githubusercontent.com/Olshansk/rss-feeds/main/feeds/feed_anthropic_engineering.xml", false},
	{"research", "https://raw.githubusercontent.com/Olshansk/rss-feeds/main/feeds/feed_anthropic_research.xml", true},
}

// AnthropicSource lists articles from the Anthropic news, engineering and
// research feeds and enriches each with rendered article markdown.
type AnthropicSource struct {
	feeds []anthropicFeed
}

// NewAnthropicSource builds the source over all three feeds.
func NewAnthropicSource() *AnthropicSource {
	return &AnthropicSource{feeds: anthropicFeeds}
}

func (s *AnthropicSource) Name() string { return "anthropic" }

// FetchItems lists window-matching articles across all feeds, newest first
// with undated research items last. Any single feed failing fails the source.
func (s *AnthropicSource) FetchItems(ctx context.Context, w ingest.Window) ([]ingest.Item, error) {
	var items []ingest.Item
	for _, feed := range s.feeds {
		feedItems, err := s.fetchFeed(ctx, feed, w)
		if err != nil {
			return nil, fmt.Errorf("%s feed: %w", feed.kind, err)
		}
		items = append(items, feedItems...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Published, items[j].Published
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
	return items, nil
}

func (s *AnthropicSource) fetchFeed(ctx context.Context, af anthropicFeed, w ingest.Window) ([]ingest.Item, error) {
	feed, err := ingest.FetchFeed(ctx, af.url)
	if err != nil {
		return nil, err
	}

	var items []ingest.Item
	for _, entry := range feed.Items {
		published := ingest.EntryPublished(entry)
		if !w.Includes(published, af.includeUndated) {
			continue
		}
		tags := []string{af.kind}
		tags = append(tags, entry.Categories...)
		items = append(items, ingest.Item{
			SourceName: s.Name(),
			Title:      entry.Title,
			URL:        entry.Link,
			ExternalID: ingest.EntryID(entry),
			Published:  published,
			Summary:    ingest.CleanHTML(entry.Description),
			Tags:       tags,
		})
	}
	return items, nil
}

// Enrich attaches the rendered article content as markdown.
func (s *AnthropicSource) Enrich(ctx context.Context, item *ingest.Item) error {
	md, err := ingest.ArticleMarkdown(ctx, item.URL)
	if err != nil {
		return err
	}
	item.Body = md
	return nil
}
