package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "codeberg.org/readeck/go-readability/v2"
)

// RenderPage returns the fully rendered HTML for a URL, via cache then the
// browser-profile client. Pages behind bot protection need the Chrome TLS
// fingerprint; plain net/http gets challenged.
func RenderPage(ctx context.Context, rawURL string) (string, error) {
	if cached, ok := CacheGet(rawURL, "html"); ok {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if cfg.Browser == nil {
		return "", ErrNoBrowser
	}

	metrics.RenderRequests.Add(1)
	body, status, err := cfg.Browser.Get(rawURL, ChromeHeaders())
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rawURL, err)
	}
	if status >= http.StatusBadRequest {
		return "", fmt.Errorf("render %s: status %d", rawURL, status)
	}

	html := string(body)
	CacheSet(rawURL, "html", html)
	return html, nil
}

// ArticleMarkdown fetches a URL as a rendered page and converts the main
// article content to markdown. Falls back to goquery extraction when
// readability cannot find an article body.
func ArticleMarkdown(ctx context.Context, rawURL string) (string, error) {
	html, err := RenderPage(ctx, rawURL)
	if err != nil {
		return "", err
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return extractWithGoquery(html)
	}

	var htmlBuf strings.Builder
	_ = article.RenderHTML(&htmlBuf)

	md, err := htmltomarkdown.ConvertString(htmlBuf.String())
	if err != nil {
		var textBuf strings.Builder
		_ = article.RenderText(&textBuf)
		md = textBuf.String()
	}
	text := strings.TrimSpace(md)
	if text == "" {
		return extractWithGoquery(html)
	}
	return TruncateEllipsis(text, cfg.MaxContentChars), nil
}

// extractWithGoquery pulls readable text out of raw HTML when readability
// fails: strips script/nav/chrome elements, then takes the most article-like
// container.
func extractWithGoquery(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	removeSelectors := []string{
		"script", "style", "noscript", "iframe", "svg",
		"header", "footer", "nav", "aside",
		"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}
	doc.Find(strings.Join(removeSelectors, ", ")).Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	contentSel := doc.Find("article, main, .content, .post-content, .article-content, #content").First()
	if contentSel.Length() == 0 {
		contentSel = doc.Find("body")
	}

	content := CollapseSpace(contentSel.Text())
	if content == "" {
		return "", fmt.Errorf("no extractable content")
	}
	return TruncateEllipsis(content, cfg.MaxContentChars), nil
}
