// go_news — multi-source content ingestion pipeline.
//
// Harvests recently published videos and articles from a configured set of
// sources (YouTube channels, Anthropic feeds, the OpenAI news page, Substack
// feeds), normalizes them into a common record, enriches each with full text
// (transcript or article markdown) and prints a per-source summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/avoronov/go_news/internal/config"
	"github.com/avoronov/go_news/internal/ingest"
	"github.com/avoronov/go_news/internal/ingest/sources"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	hoursBack := flag.Int("hours", 0, "override the time window in hours")
	clearCache := flag.Bool("clear-cache", false, "clear the content cache and exit")
	showMetrics := flag.Bool("metrics", false, "print pipeline metrics after the run")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	if *hoursBack > 0 {
		cfg.HoursBack = *hoursBack
	}

	initPipeline(cfg)

	if *clearCache {
		count, err := ingest.CacheClear()
		if err != nil {
			slog.Error("cache clear failed", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("removed %d cached files\n", count)
		return
	}

	runner, closeFn, err := buildRunner(cfg)
	if err != nil {
		slog.Error("setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeFn()

	window := ingest.NewWindow(cfg.HoursBack)
	results := runner.Run(context.Background(), window)
	printSummary(cfg.HoursBack, results)

	if *showMetrics {
		fmt.Print(ingest.FormatMetrics())
	}
}

func initPipeline(cfg *config.Config) {
	c := ingest.Config{
		CacheEnabled:    cfg.Cache.Enabled,
		CacheDir:        cfg.Cache.Dir,
		HoursBack:       cfg.HoursBack,
		FetchTimeout:    cfg.FetchTimeoutDuration(),
		EnrichWorkers:   cfg.EnrichWorkers,
		TranscriptLangs: cfg.TranscriptLangs,
		HTTPClient: &http.Client{
			Timeout: cfg.FetchTimeoutDuration(),
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	browser, err := ingest.NewBrowserClient(int(cfg.FetchTimeoutDuration() / time.Second))
	if err != nil {
		slog.Warn("browser client init failed, rendered sources disabled", slog.Any("error", err))
	} else {
		c.Browser = browser
	}

	ingest.Init(c)
}

// buildRunner constructs sources from config. Multiple youtube entries fold
// into one source polling all their channels.
func buildRunner(cfg *config.Config) (*ingest.Runner, func(), error) {
	var srcs []ingest.Source
	var channels []string

	for _, sc := range cfg.EnabledSources() {
		switch sc.Type {
		case "youtube":
			channels = append(channels, sc.ChannelID)
		case "anthropic":
			srcs = append(srcs, sources.NewAnthropicSource())
		case "openai":
			srcs = append(srcs, sources.NewOpenAISource())
		case "substack":
			srcs = append(srcs, sources.NewSubstackSource(sc.Name, sc.URL))
		}
	}
	if len(channels) > 0 {
		srcs = append(srcs, sources.NewYouTubeSource(channels...))
	}

	runner := ingest.NewRunner(srcs...)
	closeFn := func() {}

	if cfg.Database != "" {
		store, err := ingest.OpenStore(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		runner = runner.WithStore(store)
		closeFn = func() { store.Close() }
	}
	return runner, closeFn, nil
}

func printSummary(hoursBack int, results map[string]ingest.SourceResult) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("ingestion summary (last %d hours)\n", hoursBack)
	total := 0
	for _, name := range names {
		res := results[name]
		if res.Err != nil {
			fmt.Printf("  %-12s FAILED: %v\n", name, res.Err)
			continue
		}
		fmt.Printf("  %-12s %d items\n", name, len(res.Items))
		total += len(res.Items)
	}
	fmt.Printf("  %-12s %d items\n", "total", total)
}
