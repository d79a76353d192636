package sources

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/avoronov/go_news/internal/ingest"
)

// OpenAI news source: no usable feed, so the listing comes from the rendered
// news page. Article anchors link under /index/; everything else on the page
// (product tiles, section navigation) is noise filtered out by text
// heuristics.

const openaiNewsURL = "https://openai.com/news"

// minTitleLen drops navigation items that masquerade as article links.
const minTitleLen = 15

var (
	openaiDateRe = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4}`)

	// category labels appended to the link text after the title
	openaiCategoryRe = regexp.MustCompile(`(?i)(Research|Company|Safety|Product|API|ChatGPT|Announcements?)\s*$`)

	// product names and section headers that are never articles
	openaiExcludeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^gpt-?[0-9.]+$`),
		regexp.MustCompile(`(?i)^o[0-9](-mini)?$`),
		regexp.MustCompile(`(?i)^sora\s*[0-9]*$`),
		regexp.MustCompile(`(?i)^dall-?e\s*[0-9]*$`),
		regexp.MustCompile(`(?i)^whisper$`),
		regexp.MustCompile(`(?i)^codex$`),
		regexp.MustCompile(`(?i)^research$`),
		regexp.MustCompile(`(?i)^api$`),
		regexp.MustCompile(`(?i)^chatgpt$`),
		regexp.MustCompile(`(?i)^safety$`),
		regexp.MustCompile(`(?i)^products?$`),
	}
)

// OpenAISource lists articles scraped from the rendered OpenAI news page.
type OpenAISource struct {
	URL string // defaults to the news page
}

// NewOpenAISource builds the source against the default news page.
func NewOpenAISource() *OpenAISource {
	return &OpenAISource{URL: openaiNewsURL}
}

func (s *OpenAISource) Name() string { return "openai" }

func (s *OpenAISource) pageURL() string {
	if s.URL != "" {
		return s.URL
	}
	return openaiNewsURL
}

// FetchItems renders the news page and extracts window-matching articles.
// Items whose date cannot be resolved are dropped: without a date the window
// cannot be applied.
func (s *OpenAISource) FetchItems(ctx context.Context, w ingest.Window) ([]ingest.Item, error) {
	html, err := ingest.RenderPage(ctx, s.pageURL())
	if err != nil {
		return nil, fmt.Errorf("news page: %w", err)
	}
	return s.extractItems(html, w)
}

func (s *OpenAISource) extractItems(html string, w ingest.Window) ([]ingest.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse news page: %w", err)
	}

	var items []ingest.Item
	seen := make(map[string]bool)

	doc.Find(`a[href*="/index/"]`).Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || seen[href] {
			return
		}
		// section index pages, not articles
		if strings.HasSuffix(href, "/index/") || strings.HasSuffix(href, "/index") {
			return
		}
		seen[href] = true

		fullText := strings.TrimSpace(sel.Text())
		dateStr := openaiDateRe.FindString(fullText)

		title := fullText
		if dateStr != "" {
			title = fullText[:strings.Index(fullText, dateStr)]
			title = strings.TrimSpace(openaiCategoryRe.ReplaceAllString(title, ""))
		}
		if len(title) < minTitleLen {
			return
		}
		for _, re := range openaiExcludeRes {
			if re.MatchString(title) {
				return
			}
		}

		published, ok := ingest.ParseDate(dateStr)
		if !ok {
			return
		}
		if !w.Includes(&published, false) {
			return
		}

		description := ""
		if container := sel.Closest(`article, [class*="card"], [class*="item"], div`); container.Length() > 0 {
			description = strings.TrimSpace(container.Find("p").First().Text())
		}

		articleURL := href
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = "https://openai.com" + articleURL
		}

		items = append(items, ingest.Item{
			SourceName: s.Name(),
			Title:      ingest.Truncate(title, 200),
			URL:        articleURL,
			ExternalID: articleURL,
			Published:  &published,
			Summary:    ingest.Truncate(description, 500),
		})
	})

	return items, nil
}

// Enrich attaches the rendered article content as markdown.
func (s *OpenAISource) Enrich(ctx context.Context, item *ingest.Item) error {
	md, err := ingest.ArticleMarkdown(ctx, item.URL)
	if err != nil {
		return err
	}
	item.Body = md
	return nil
}
