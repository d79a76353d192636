package ingest

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Caption payloads arrive in one of two encodings depending on which track
// YouTube serves: JSON3 (timed events with text segments) or WebVTT (cue
// text). The format is auto-detected from the content, never declared by the
// caller. Output is a single flattened string — timing and speaker structure
// is discarded, only readable text matters downstream.

type json3Transcript struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

var (
	cueTimingRe    = regexp.MustCompile(`-->`)
	speakerLabelRe = regexp.MustCompile(`^[A-Z\s]+\d+:\d+:\d+`)
)

// ParseTranscript converts a raw caption payload into cleaned transcript text.
// Pure: no network, no cache, deterministic for a given payload.
func ParseTranscript(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		if text, ok := parseJSON3(trimmed); ok {
			return text
		}
		// malformed JSON3 — fall through to cue-text parsing
	}
	return parseVTT(trimmed)
}

// parseJSON3 extracts segment text from YouTube's native JSON3 subtitle format.
func parseJSON3(raw string) (string, bool) {
	var t json3Transcript
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return "", false
	}
	var sb strings.Builder
	for _, event := range t.Events {
		for _, seg := range event.Segs {
			if seg.UTF8 != "" && seg.UTF8 != "\n" {
				sb.WriteString(seg.UTF8)
			}
		}
	}
	return CollapseSpace(sb.String()), true
}

// parseVTT extracts cue text from a WebVTT payload: header, timing and blank
// lines are dropped, inline markup and speaker-label prefixes stripped,
// remaining lines joined with single spaces.
func parseVTT(raw string) string {
	var textLines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if cueTimingRe.MatchString(trimmed) {
			continue
		}
		if strings.HasPrefix(trimmed, "WEBVTT") ||
			strings.HasPrefix(trimmed, "NOTE") ||
			strings.HasPrefix(trimmed, "Kind:") ||
			strings.HasPrefix(trimmed, "Language:") {
			continue
		}
		cleaned := htmlTagRe.ReplaceAllString(trimmed, "")
		cleaned = speakerLabelRe.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned != "" {
			textLines = append(textLines, cleaned)
		}
	}
	return strings.Join(textLines, " ")
}
