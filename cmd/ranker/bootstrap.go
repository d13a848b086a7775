package main

import (
	"context"
	"fmt"

	"signal-fusion-ranker/internal/archive"
	"signal-fusion-ranker/internal/engine"
	"signal-fusion-ranker/internal/engine/engineobs"
	"signal-fusion-ranker/internal/interfaces"
	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/news"
	"signal-fusion-ranker/internal/output"
	"signal-fusion-ranker/internal/prices"
	"signal-fusion-ranker/internal/recorder"
	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/universe"

	"github.com/joho/godotenv"
)

// mockBars is roughly one trading year.
const mockBars = 260

// initializeSystem loads .env and starts the logger, which also starts the
// tracer when LOG_TRACING_ENABLED is set.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

func initializeUniverse(ctx context.Context, cfg *store.Config) interfaces.UniverseProvider {
	if cfg.Universe.Source == "STATIC" {
		logger.Info(ctx, "Using static universe", "count", len(cfg.Universe.Static))
		return universe.NewStaticProvider(cfg.Universe.Static)
	}
	client := prices.NewHTTPClient(cfg.Proxy, cfg.Prices.Timeout)
	logger.Info(ctx, "Using constituents page universe", "url", cfg.Universe.URL)
	return universe.NewWikipediaProvider(cfg.Universe.URL, cfg.Prices.Timeout, client.Transport)
}

func initializePrices(ctx context.Context, cfg *store.Config) interfaces.PriceProvider {
	if cfg.Prices.Source == "MOCK" {
		logger.Warn(ctx, "Using MOCK price data")
		return prices.NewMockProvider(mockBars)
	}
	logger.Info(ctx, "Using Yahoo chart data", "range", cfg.Prices.Range)
	return prices.NewYahooProvider(
		prices.WithBaseURL(cfg.Prices.BaseURL),
		prices.WithHTTPClient(prices.NewHTTPClient(cfg.Proxy, cfg.Prices.Timeout)),
		prices.WithRange(cfg.Prices.Range),
		prices.WithRateLimit(cfg.Prices.RatePerSec),
	)
}

// initializeNews returns the cached GDELT provider. A disabled service returns
// no headlines, so escalated candidates get a zero news score.
func initializeNews(ctx context.Context, cfg *store.Config) *news.Service {
	gdelt := news.NewGDELTProvider(cfg.News.Domains, cfg.NewsScoring.Keywords,
		news.WithGDELTBaseURL(cfg.News.BaseURL),
		news.WithGDELTHTTPClient(prices.NewHTTPClient(cfg.Proxy, cfg.News.Timeout)),
		news.WithGDELTRateLimit(cfg.News.RatePerSec),
	)
	if cfg.News.Disabled {
		logger.Warn(ctx, "News escalation disabled - news scores will be 0")
	}
	return news.NewService(gdelt, news.ServiceConfig{
		CacheDuration: cfg.News.CacheTTL,
		Enabled:       !cfg.News.Disabled,
	})
}

func initializeEngine(cfg *store.Config, px interfaces.PriceProvider, nw interfaces.NewsProvider) interfaces.Ranker {
	eng := engine.New(engine.ConfigFrom(cfg), px, nw)
	return engineobs.Wrap(eng)
}

// initializeSinks returns the snapshot destinations. DRY_RUN writes nothing.
func initializeSinks(ctx context.Context, cfg *store.Config) interfaces.SnapshotSink {
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - snapshot will not be written")
		return output.MultiSink{}
	}
	sinks := output.MultiSink{output.NewJSONSink(cfg.Output.Path)}
	if cfg.Output.CSVPath != "" {
		sinks = append(sinks, output.NewCSVSink(cfg.Output.CSVPath))
	}
	if cfg.Archive.Dir != "" {
		sinks = append(sinks, archive.New(cfg.Archive.Dir, cfg.Archive.RetentionDays))
	}
	return sinks
}

func initializeRecorder(ctx context.Context, cfg *store.Config) recorder.Recorder {
	if cfg.Recorder.SQLitePath == "" || cfg.Mode == "DRY_RUN" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath)
	if err != nil {
		logger.Warn(ctx, "Init sqlite recorder failed, using noop", "error", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}
