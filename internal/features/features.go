package features

import (
	"math"

	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/ta"
	"signal-fusion-ranker/internal/types"
)

// Extract derives the technical feature set for one series. It reports false
// when the series holds fewer than cfg.MinHistory valid closes.
func Extract(series types.PriceSeries, cfg store.FeatureConfig) (types.FeatureSet, bool) {
	closes := series.Closes()
	if len(closes) < cfg.MinHistory {
		return types.FeatureSet{}, false
	}

	last := closes[len(closes)-1]
	fs := types.FeatureSet{
		Close: last,
		Ret20: ta.TrailingReturn(closes, cfg.ShortReturn),
		Ret60: ta.TrailingReturn(closes, cfg.LongReturn),
		RSI14: ta.RSI(closes, cfg.RSIPeriod, ta.RSIPolicy{ZeroLoss: cfg.RSIZeroLoss, Flat: cfg.RSIFlat}),
		Vol20: ta.SampleStdDev(ta.PctChange(closes), cfg.VolWindow),
	}
	if last > ta.SMA(closes, cfg.FastMA) {
		fs.Above50 = 1
	}
	if last > ta.SMA(closes, cfg.SlowMA) {
		fs.Above200 = 1
	}

	// windows longer than MinHistory leave NaNs behind
	for _, v := range []float64{fs.Ret20, fs.Ret60, fs.RSI14, fs.Vol20} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.FeatureSet{}, false
		}
	}
	return fs, true
}
