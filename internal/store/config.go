package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode  string `yaml:"mode"`
	Proxy string `yaml:"proxy"`

	Universe struct {
		Source string           `yaml:"source"` // WIKIPEDIA or STATIC
		URL    string           `yaml:"url"`
		Static []StaticSecurity `yaml:"static"`
	} `yaml:"universe"`
	Prices struct {
		Source      string        `yaml:"source"` // YAHOO or MOCK
		BaseURL     string        `yaml:"base_url"`
		Range       string        `yaml:"range"`
		ChunkSize   int           `yaml:"chunk_size"`
		Concurrency int           `yaml:"concurrency"`
		RatePerSec  float64       `yaml:"rate_per_sec"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"prices"`
	News struct {
		Disabled    bool          `yaml:"disabled"`
		BaseURL     string        `yaml:"base_url"`
		Domains     []string      `yaml:"domains"`
		RatePerSec  float64       `yaml:"rate_per_sec"`
		Timeout     time.Duration `yaml:"timeout"`
		CacheTTL    time.Duration `yaml:"cache_ttl"`
		Concurrency int           `yaml:"concurrency"`
	} `yaml:"news"`
	Features    FeatureConfig     `yaml:"features"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	NewsScoring NewsScoringConfig `yaml:"news_scoring"`
	Engine      EngineConfig      `yaml:"engine"`
	Output      struct {
		Path    string `yaml:"path"`
		CSVPath string `yaml:"csv_path"`
	} `yaml:"output"`
	Archive struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"archive"`
	Recorder struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"recorder"`
	Schedule struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"schedule"`
}

type StaticSecurity struct {
	Symbol  string `yaml:"symbol"`
	Company string `yaml:"company"`
	Sector  string `yaml:"sector"`
}

// FeatureConfig holds the look-back windows used by feature extraction.
type FeatureConfig struct {
	MinHistory  int     `yaml:"min_history"`
	ShortReturn int     `yaml:"short_return"`
	LongReturn  int     `yaml:"long_return"`
	FastMA      int     `yaml:"fast_ma"`
	SlowMA      int     `yaml:"slow_ma"`
	RSIPeriod   int     `yaml:"rsi_period"`
	VolWindow   int     `yaml:"vol_window"`
	RSIZeroLoss float64 `yaml:"rsi_zero_loss"` // RSI when the window has gains and no losses
	RSIFlat     float64 `yaml:"rsi_flat"`      // RSI when the window has neither
}

// ScoringConfig parameterises the price score formula.
type ScoringConfig struct {
	Base          float64 `yaml:"base"`
	MomentumScale float64 `yaml:"momentum_scale"`
	MomentumCap   float64 `yaml:"momentum_cap"`
	ShortWeight   float64 `yaml:"short_weight"`
	TrendPoints   float64 `yaml:"trend_points"`

	RSISweetLow   float64 `yaml:"rsi_sweet_low"`
	RSISweetHigh  float64 `yaml:"rsi_sweet_high"`
	RSIWarmLow    float64 `yaml:"rsi_warm_low"`
	RSIHotHigh    float64 `yaml:"rsi_hot_high"`
	RSISweetScore float64 `yaml:"rsi_sweet_score"`
	RSIWarmScore  float64 `yaml:"rsi_warm_score"`
	RSIHotScore   float64 `yaml:"rsi_hot_score"`
	RSIElseScore  float64 `yaml:"rsi_else_score"`

	VolFloor   float64 `yaml:"vol_floor"`
	VolSpan    float64 `yaml:"vol_span"`
	VolPenalty float64 `yaml:"vol_penalty"`
}

// NewsScoringConfig parameterises relevance filtering and sentiment aggregation.
type NewsScoringConfig struct {
	Keywords    []string `yaml:"keywords"`
	MaxHits     int      `yaml:"max_hits"`
	Scale       float64  `yaml:"scale"`
	Cap         float64  `yaml:"cap"`
	BumpPerItem float64  `yaml:"bump_per_item"`
	BumpMax     float64  `yaml:"bump_max"`
}

type EngineConfig struct {
	TopNews      int `yaml:"top_news"`
	NewsDays     int `yaml:"news_days"`
	MaxHeadlines int `yaml:"max_headlines"`
}

// DefaultKeywords is the market-relevance keyword group, in match order.
var DefaultKeywords = []string{
	"earnings", "guidance", "forecast", "revenue", "profit", "margin",
	"acquisition", "acquire", "merger", "buyout", "takeover",
	"SEC", "DOJ", "FTC", "lawsuit", "settlement",
	"FDA", "approval", "clinical", "trial",
	"upgrade", "downgrade", "price target", "rating",
	"buyback", "share repurchase", "dividend",
	"IPO", "spin-off", "spinoff", "layoffs", "restructuring",
	"contract", "partnership", "deal",
}

func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		MinHistory:  210,
		ShortReturn: 20,
		LongReturn:  60,
		FastMA:      50,
		SlowMA:      200,
		RSIPeriod:   14,
		VolWindow:   20,
		RSIZeroLoss: 100,
		RSIFlat:     50,
	}
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Base:          50,
		MomentumScale: 50,
		MomentumCap:   0.5,
		ShortWeight:   2,
		TrendPoints:   10,
		RSISweetLow:   50,
		RSISweetHigh:  70,
		RSIWarmLow:    40,
		RSIHotHigh:    80,
		RSISweetScore: 15,
		RSIWarmScore:  7,
		RSIHotScore:   6,
		RSIElseScore:  -8,
		VolFloor:      0.02,
		VolSpan:       0.05,
		VolPenalty:    20,
	}
}

func DefaultNewsScoringConfig() NewsScoringConfig {
	kw := make([]string, len(DefaultKeywords))
	copy(kw, DefaultKeywords)
	return NewsScoringConfig{
		Keywords:    kw,
		MaxHits:     6,
		Scale:       10,
		Cap:         10,
		BumpPerItem: 0.4,
		BumpMax:     2,
	}
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{TopNews: 80, NewsDays: 3, MaxHeadlines: 25}
}

// Default returns a fully populated configuration. LoadConfig decodes the
// file over it, so keys present in the file win, zero values included.
func Default() *Config {
	c := &Config{
		Mode:        "LIVE",
		Features:    DefaultFeatureConfig(),
		Scoring:     DefaultScoringConfig(),
		NewsScoring: DefaultNewsScoringConfig(),
		Engine:      DefaultEngineConfig(),
	}

	c.Universe.Source = "WIKIPEDIA"
	c.Universe.URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

	c.Prices.Source = "YAHOO"
	c.Prices.BaseURL = "https://query1.finance.yahoo.com"
	c.Prices.Range = "1y"
	c.Prices.ChunkSize = 100
	c.Prices.Concurrency = 8
	c.Prices.RatePerSec = 5
	c.Prices.Timeout = 30 * time.Second

	c.News.BaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	c.News.Domains = []string{"cnn.com", "foxnews.com"}
	c.News.RatePerSec = 1
	c.News.Timeout = 25 * time.Second
	c.News.CacheTTL = time.Hour
	c.News.Concurrency = 4

	c.Output.Path = "docs/data.json"
	c.Schedule.Cron = "0 30 22 * * 1-5"
	return c
}

// applyEnv overrides selected fields from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("RANKER_TOP_NEWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.TopNews = n
		}
	}
	if v := os.Getenv("RANKER_NEWS_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.NewsDays = n
		}
	}
	if v := os.Getenv("RANKER_MAX_HEADLINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.MaxHeadlines = n
		}
	}
	if v := os.Getenv("RANKER_OUTPUT"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv("RANKER_SQLITE_PATH"); v != "" {
		c.Recorder.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Universe.Source != "WIKIPEDIA" && c.Universe.Source != "STATIC" {
		return fmt.Errorf("invalid universe.source '%s': must be 'WIKIPEDIA' or 'STATIC'", c.Universe.Source)
	}
	if c.Universe.Source == "STATIC" && len(c.Universe.Static) == 0 {
		return errors.New("universe.static cannot be empty when universe.source is STATIC")
	}
	if c.Prices.Source != "YAHOO" && c.Prices.Source != "MOCK" {
		return fmt.Errorf("invalid prices.source '%s': must be 'YAHOO' or 'MOCK'", c.Prices.Source)
	}
	if c.Engine.TopNews < 0 {
		return fmt.Errorf("engine.top_news must be >= 0, got %d", c.Engine.TopNews)
	}
	if c.Engine.NewsDays <= 0 {
		return fmt.Errorf("engine.news_days must be positive, got %d", c.Engine.NewsDays)
	}
	if c.Engine.MaxHeadlines <= 0 {
		return fmt.Errorf("engine.max_headlines must be positive, got %d", c.Engine.MaxHeadlines)
	}
	f := c.Features
	for name, w := range map[string]int{
		"short_return": f.ShortReturn,
		"long_return":  f.LongReturn,
		"fast_ma":      f.FastMA,
		"slow_ma":      f.SlowMA,
		"rsi_period":   f.RSIPeriod,
		"vol_window":   f.VolWindow,
	} {
		if w <= 0 {
			return fmt.Errorf("features.%s must be positive, got %d", name, w)
		}
	}
	longest := max(f.LongReturn+1, f.SlowMA, f.RSIPeriod+1, f.VolWindow+1)
	if f.MinHistory < longest {
		return fmt.Errorf("features.min_history (%d) must cover the longest window (%d)", f.MinHistory, longest)
	}
	if c.Scoring.VolSpan <= 0 {
		return fmt.Errorf("scoring.vol_span must be positive, got %.4f", c.Scoring.VolSpan)
	}
	if c.NewsScoring.MaxHits <= 0 {
		return fmt.Errorf("news_scoring.max_hits must be positive, got %d", c.NewsScoring.MaxHits)
	}
	return nil
}

// LoadConfig decodes the YAML file at path over the defaults, applies
// environment overrides, and validates the result. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}
