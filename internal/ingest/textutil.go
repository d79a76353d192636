package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "go_news/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// CollapseSpace collapses any run of whitespace to a single space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Truncate returns at most n bytes of s, never splitting a multi-byte rune:
// the cut backs off to the nearest rune boundary so the result is valid UTF-8.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// TruncateEllipsis caps s at limit bytes on a rune boundary, appending "..."
// if truncated.
func TruncateEllipsis(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return Truncate(s, limit) + "..."
}
