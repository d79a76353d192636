package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/avoronov/go_news/internal/ingest"
)

// Caption payload fetching: scrape the watch page, pull the caption track
// list out of ytInitialPlayerResponse, pick the best track for the preferred
// languages and download its raw payload. The payload encoding (JSON3 or
// WebVTT) depends on which track YouTube serves; ParseTranscript auto-detects.

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// FetchCaptions returns the raw caption payload for a video, preferring the
// given languages, falling back to any available track, then auto-generated
// captions. Payloads are cached per video; track URLs themselves carry
// volatile signatures and are useless as cache keys.
func FetchCaptions(ctx context.Context, videoID string, langs []string) (string, error) {
	ingest.IncrCaptionRequests()

	// kind is payload-neutral: the served track may be JSON3 or WebVTT and
	// ParseTranscript auto-detects either
	cacheKey := "transcript_" + videoID
	if cached, ok := ingest.CacheGet(cacheKey, "captions"); ok {
		return cached, nil
	}

	track, err := findCaptionTrack(ctx, videoID, langs)
	if err != nil {
		return "", err
	}

	trackURL := track.BaseURL
	if !strings.Contains(trackURL, "fmt=") {
		trackURL += "&fmt=json3"
	}
	payload, err := ingest.FetchBody(ctx, trackURL, map[string]string{
		"User-Agent": ingest.UserAgentChrome,
	})
	if err != nil {
		return "", fmt.Errorf("fetch caption track: %w", err)
	}

	ingest.CacheSet(cacheKey, "captions", payload)
	return payload, nil
}

// findCaptionTrack scrapes the watch page and picks a usable caption track.
func findCaptionTrack(ctx context.Context, videoID string, langs []string) (captionTrack, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID

	body, err := ingest.FetchBody(ctx, watchURL, map[string]string{
		"User-Agent":      ingest.UserAgentChrome,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if err != nil {
		return captionTrack{}, fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(body, playerResponseMarker)
	if idx < 0 {
		return captionTrack{}, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON([]byte(body[idx+len(playerResponseMarker):]))
	if jsonData == nil {
		return captionTrack{}, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var resp playerResponse
	if err := json.Unmarshal(jsonData, &resp); err != nil {
		return captionTrack{}, fmt.Errorf("decode player response: %w", err)
	}
	if resp.Captions == nil {
		if resp.PlayabilityStatus != nil && resp.PlayabilityStatus.Reason != "" {
			return captionTrack{}, fmt.Errorf("captions unavailable: %s", resp.PlayabilityStatus.Reason)
		}
		return captionTrack{}, errors.New("no captions in player response")
	}
	tracks := resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, errors.New("no caption tracks")
	}

	track, ok := pickTrack(tracks, langs)
	if !ok {
		return captionTrack{}, errors.New("all caption tracks require a browser session")
	}
	return track, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken
// (browser-only). Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the best usable caption track for the language
// preferences: manual track in a preferred language, then any track (incl.
// auto-generated) in a preferred language, then any English track, then the
// first usable track.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
