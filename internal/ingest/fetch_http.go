package ingest

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Plain-HTTP fetch layer with bounded timeouts and exponential backoff.
// Used for feeds, caption payloads and other endpoints that do not sit
// behind bot protection; rendered pages go through BrowserClient instead.

// fetchWithRetry performs an HTTP GET with retry on transient failures.
// Extra headers override the defaults.
func fetchWithRetry(ctx context.Context, fetchURL string, headers map[string]string) (*http.Response, error) {
	operation := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		req.Header.Set("User-Agent", UserAgentBot)
		req.Header.Set("Accept", "text/html,application/xml,text/plain,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := cfg.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
}

// isRetryableStatus reports whether an HTTP status code is worth retrying.
func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(resp.Body)
}

// FetchBody fetches a URL as text with the default timeout. No caching.
func FetchBody(ctx context.Context, rawURL string, headers map[string]string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := fetchWithRetry(ctx, rawURL, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchText fetches rawURL as text through the content cache, storing the
// payload under (cacheKey, kind). cacheKey is usually the URL itself; caption
// fetches key by video instead since track URLs carry volatile signatures.
func FetchText(ctx context.Context, rawURL, cacheKey, kind string) (string, error) {
	if cached, ok := CacheGet(cacheKey, kind); ok {
		return cached, nil
	}
	text, err := FetchBody(ctx, rawURL, nil)
	if err != nil {
		return "", err
	}
	CacheSet(cacheKey, kind, text)
	return text, nil
}

// ErrNoBrowser is returned when a rendered-page fetch is attempted without a
// configured BrowserClient.
var ErrNoBrowser = errors.New("browser client not configured")
