package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "LIVE", cfg.Mode)
	assert.Equal(t, "WIKIPEDIA", cfg.Universe.Source)
	assert.Equal(t, 80, cfg.Engine.TopNews)
	assert.Equal(t, 3, cfg.Engine.NewsDays)
	assert.Equal(t, 25, cfg.Engine.MaxHeadlines)
	assert.Equal(t, DefaultScoringConfig(), cfg.Scoring)
	assert.Equal(t, DefaultFeatureConfig(), cfg.Features)
	assert.Equal(t, "docs/data.json", cfg.Output.Path)
	assert.Equal(t, []string{"cnn.com", "foxnews.com"}, cfg.News.Domains)
}

func TestLoadConfig_FileValues(t *testing.T) {
	p := writeConfig(t, `
mode: DRY_RUN
universe:
  source: STATIC
  static:
    - {symbol: AAPL, company: Apple Inc., sector: Information Technology}
prices:
  source: MOCK
  timeout: 5s
engine:
  top_news: 3
news:
  cache_ttl: 10m
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "DRY_RUN", cfg.Mode)
	require.Len(t, cfg.Universe.Static, 1)
	assert.Equal(t, "Apple Inc.", cfg.Universe.Static[0].Company)
	assert.Equal(t, 5*time.Second, cfg.Prices.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.News.CacheTTL)
	assert.Equal(t, 3, cfg.Engine.TopNews)
	assert.Equal(t, 3, cfg.Engine.NewsDays, "unset fields keep defaults")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RANKER_TOP_NEWS", "0")
	t.Setenv("RANKER_NEWS_DAYS", "5")
	t.Setenv("RANKER_OUTPUT", "/tmp/out.json")
	t.Setenv("RANKER_SQLITE_PATH", "/tmp/runs.db")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Engine.TopNews)
	assert.Equal(t, 5, cfg.Engine.NewsDays)
	assert.Equal(t, "/tmp/out.json", cfg.Output.Path)
	assert.Equal(t, "/tmp/runs.db", cfg.Recorder.SQLitePath)
}

func TestLoadConfig_ParseError(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "mode: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"bad mode", func(c *Config) { c.Mode = "PAPER" }, "invalid mode"},
		{"bad universe", func(c *Config) { c.Universe.Source = "CSV" }, "universe.source"},
		{"empty static", func(c *Config) { c.Universe.Source = "STATIC" }, "universe.static"},
		{"bad prices", func(c *Config) { c.Prices.Source = "BLOOMBERG" }, "prices.source"},
		{"negative top news", func(c *Config) { c.Engine.TopNews = -1 }, "top_news"},
		{"zero news days", func(c *Config) { c.Engine.NewsDays = 0 }, "news_days"},
		{"zero headlines", func(c *Config) { c.Engine.MaxHeadlines = 0 }, "max_headlines"},
		{"short history", func(c *Config) { c.Features.MinHistory = 100 }, "min_history"},
		{"zero window", func(c *Config) { c.Features.VolWindow = 0 }, "vol_window"},
		{"vol span", func(c *Config) { c.Scoring.VolSpan = 0 }, "vol_span"},
		{"max hits", func(c *Config) { c.NewsScoring.MaxHits = 0 }, "max_hits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_PartialSectionsMergeWithDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "scoring:\n  base: 40\n  vol_span: 0.5\n"))
	require.NoError(t, err)

	want := DefaultScoringConfig()
	want.Base = 40
	want.VolSpan = 0.5
	assert.Equal(t, want, cfg.Scoring)
}

func TestLoadConfig_ExplicitZerosAreKept(t *testing.T) {
	p := writeConfig(t, `
engine:
  top_news: 0
features:
  rsi_zero_loss: 0
  rsi_flat: 0
scoring:
  trend_points: 0
  rsi_else_score: 0
news_scoring:
  bump_per_item: 0
prices:
  rate_per_sec: 0
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Engine.TopNews)
	assert.Equal(t, 3, cfg.Engine.NewsDays)
	assert.Equal(t, 0.0, cfg.Features.RSIZeroLoss)
	assert.Equal(t, 0.0, cfg.Features.RSIFlat)
	assert.Equal(t, 14, cfg.Features.RSIPeriod)
	assert.Equal(t, 0.0, cfg.Scoring.TrendPoints)
	assert.Equal(t, 0.0, cfg.Scoring.RSIElseScore)
	assert.Equal(t, 50.0, cfg.Scoring.Base)
	assert.Equal(t, 0.0, cfg.NewsScoring.BumpPerItem)
	assert.Equal(t, 2.0, cfg.NewsScoring.BumpMax)
	assert.Equal(t, 0.0, cfg.Prices.RatePerSec)
}

func TestLoadConfig_ZeroWindowRejected(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "features:\n  fast_ma: 0\n"))
	assert.ErrorContains(t, err, "features.fast_ma must be positive")
}
