package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/avoronov/go_news/internal/ingest"
)

// YouTube channel source: lists recent videos per channel via the public RSS
// feed, then enriches each video with its caption transcript.

const ytFeedBase = "https://www.youtube.com/feeds/videos.xml?channel_id="

var videoIDRe = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format.
func ExtractVideoID(rawURL string) string {
	m := videoIDRe.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// ChannelFeedURL builds the RSS feed URL for a channel ID.
func ChannelFeedURL(channelID string) string {
	return ytFeedBase + channelID
}

// YouTubeSource lists videos from a fixed set of channels.
type YouTubeSource struct {
	Channels []string // channel IDs, e.g. "UC_x5XG1OV2P6uZZ5FSM9Ttw"
	Langs    []string // preferred caption languages, defaults to config
}

// NewYouTubeSource builds a source over the given channel IDs.
func NewYouTubeSource(channels ...string) *YouTubeSource {
	return &YouTubeSource{Channels: channels}
}

func (s *YouTubeSource) Name() string { return "youtube" }

// FetchItems lists videos from every configured channel. A single channel's
// feed failure is logged and skipped; the source as a whole fails only when
// every channel does.
func (s *YouTubeSource) FetchItems(ctx context.Context, w ingest.Window) ([]ingest.Item, error) {
	if len(s.Channels) == 0 {
		return nil, errors.New("no channels configured")
	}

	var items []ingest.Item
	var lastErr error
	failed := 0
	for _, channelID := range s.Channels {
		channelItems, err := s.fetchChannel(ctx, channelID, w)
		if err != nil {
			failed++
			lastErr = err
			slog.Warn("youtube: channel fetch failed",
				slog.String("channel", channelID), slog.Any("error", err))
			continue
		}
		items = append(items, channelItems...)
	}
	if failed == len(s.Channels) {
		return nil, fmt.Errorf("all %d channels failed: %w", failed, lastErr)
	}
	return items, nil
}

func (s *YouTubeSource) fetchChannel(ctx context.Context, channelID string, w ingest.Window) ([]ingest.Item, error) {
	feed, err := ingest.FetchFeed(ctx, ChannelFeedURL(channelID))
	if err != nil {
		return nil, err
	}

	var items []ingest.Item
	for _, entry := range feed.Items {
		published := ingest.EntryPublished(entry)
		if !w.Includes(published, false) {
			continue
		}
		videoID := ExtractVideoID(entry.Link)
		if videoID == "" {
			continue
		}
		items = append(items, ingest.Item{
			SourceName: s.Name(),
			Title:      entry.Title,
			URL:        entry.Link,
			ExternalID: ingest.EntryID(entry),
			Published:  published,
			Summary:    ingest.CleanHTML(entry.Description),
			Tags:       []string{"channel:" + channelID},
		})
	}
	return items, nil
}

// Enrich fetches the video's caption payload and attaches the parsed
// transcript. Failure leaves the item without a body.
func (s *YouTubeSource) Enrich(ctx context.Context, item *ingest.Item) error {
	videoID := ExtractVideoID(item.URL)
	if videoID == "" {
		return fmt.Errorf("no video id in %s", item.URL)
	}
	langs := s.Langs
	if len(langs) == 0 {
		langs = ingest.Cfg.TranscriptLangs
	}

	payload, err := FetchCaptions(ctx, videoID, langs)
	if err != nil {
		return fmt.Errorf("captions for %s: %w", videoID, err)
	}
	text := ingest.ParseTranscript(payload)
	if text == "" {
		return fmt.Errorf("empty transcript for %s", videoID)
	}
	item.Body = text
	return nil
}
