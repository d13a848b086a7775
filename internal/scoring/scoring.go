package scoring

import (
	"fmt"

	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/ta"
	"signal-fusion-ranker/internal/types"
)

const InsufficientHistory = "insufficient price history"

// Components is the breakdown of a price score before clipping.
type Components struct {
	Momentum   float64 `json:"momentum"`
	Trend      float64 `json:"trend"`
	RSI        float64 `json:"rsi"`
	VolPenalty float64 `json:"vol_penalty"`
	Raw        float64 `json:"raw"`
}

type Result struct {
	Score      float64
	Reasons    []string
	Components Components
}

// Model turns a FeatureSet into a bounded 0..100 base score.
type Model struct {
	cfg store.ScoringConfig
}

func NewModel(cfg store.ScoringConfig) *Model {
	return &Model{cfg: cfg}
}

// Score computes the composite price score. ok=false marks the empty
// feature set produced for short histories.
func (m *Model) Score(fs types.FeatureSet, ok bool) Result {
	if !ok {
		return Result{Score: 0, Reasons: []string{InsufficientHistory}}
	}
	c := m.cfg

	var comp Components
	comp.Momentum = c.MomentumScale * ta.Clip(fs.Ret20*c.ShortWeight+fs.Ret60, -c.MomentumCap, c.MomentumCap)
	comp.Trend = c.TrendPoints * (fs.Above50 + fs.Above200)
	comp.RSI = RSIComponent(fs.RSI14, c)
	comp.VolPenalty = VolPenalty(fs.Vol20, c)
	comp.Raw = c.Base + comp.Momentum + comp.Trend + comp.RSI + comp.VolPenalty

	return Result{
		Score:      ta.Clip(comp.Raw, 0, 100),
		Reasons:    Reasons(fs),
		Components: comp,
	}
}

// RSIComponent buckets rsi as [SweetLow,SweetHigh], [WarmLow,SweetLow),
// (SweetHigh,HotHigh], anything else.
func RSIComponent(rsi float64, c store.ScoringConfig) float64 {
	switch {
	case rsi >= c.RSISweetLow && rsi <= c.RSISweetHigh:
		return c.RSISweetScore
	case rsi >= c.RSIWarmLow && rsi < c.RSISweetLow:
		return c.RSIWarmScore
	case rsi > c.RSISweetHigh && rsi <= c.RSIHotHigh:
		return c.RSIHotScore
	default:
		return c.RSIElseScore
	}
}

func VolPenalty(vol float64, c store.ScoringConfig) float64 {
	return -c.VolPenalty * ta.Clip((vol-c.VolFloor)/c.VolSpan, 0, 1)
}

func Reasons(fs types.FeatureSet) []string {
	return []string{
		fmt.Sprintf("20d return: %.1f%%", fs.Ret20*100),
		fmt.Sprintf("60d return: %.1f%%", fs.Ret60*100),
		fmt.Sprintf("Above MA50: %s; MA200: %s", yesNo(fs.Above50), yesNo(fs.Above200)),
		fmt.Sprintf("RSI(14): %.1f", fs.RSI14),
		fmt.Sprintf("Vol(20d): %.2f%%", fs.Vol20*100),
	}
}

func yesNo(v float64) string {
	if v != 0 {
		return "yes"
	}
	return "no"
}
