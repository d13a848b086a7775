package types

import (
	"math"
	"time"
)

// Bar is one daily OHLCV observation.
type Bar struct {
	Date                           time.Time
	Open, High, Low, Close, Volume float64
}

// PriceSeries is a symbol's bars in strictly increasing date order.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

// Closes returns the valid closing observations in date order.
func (p PriceSeries) Closes() []float64 {
	out := make([]float64, 0, len(p.Bars))
	for _, b := range p.Bars {
		if b.Close > 0 && !math.IsNaN(b.Close) && !math.IsInf(b.Close, 0) {
			out = append(out, b.Close)
		}
	}
	return out
}

// FeatureSet holds the technical indicators derived from one price series.
type FeatureSet struct {
	Close    float64 `json:"close"`
	Ret20    float64 `json:"ret_20"`
	Ret60    float64 `json:"ret_60"`
	Above50  float64 `json:"above_50"`
	Above200 float64 `json:"above_200"`
	RSI14    float64 `json:"rsi14"`
	Vol20    float64 `json:"vol20"`
}

// Security is one universe record.
type Security struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
	Sector  string `json:"sector"`
}

type Headline struct {
	Title  string `json:"title"`
	Domain string `json:"domain"`
	SeenAt string `json:"seendate"`
	URL    string `json:"url"`
}

// ScoredHeadline is a market-relevant headline with its sentiment.
type ScoredHeadline struct {
	Headline
	Sentiment   float64  `json:"sentiment"`
	KeywordHits []string `json:"keyword_hits"`
}

// Candidate is one instrument's working record through a ranking run.
type Candidate struct {
	Ticker  string `json:"ticker"`
	Company string `json:"company"`
	Sector  string `json:"sector"`
	FeatureSet
	BaseScore float64          `json:"base_score"`
	NewsScore float64          `json:"news_score"`
	Score     float64          `json:"score"`
	Reasons   []string         `json:"reasons"`
	Headlines []ScoredHeadline `json:"headlines"`
	Escalated bool             `json:"escalated"`

	// Order is the position in the universe, used to break score ties.
	Order int `json:"-"`
}

const SnapshotSchemaVersion = 1

// Snapshot is the complete output of one run.
type Snapshot struct {
	SchemaVersion int         `json:"schema_version"`
	RunID         string      `json:"run_id"`
	UpdatedUTC    string      `json:"updated_utc"`
	Rows          []Candidate `json:"rows"`
}
