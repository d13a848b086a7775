package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/types"
)

func series(closes []float64) types.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return types.PriceSeries{Symbol: "AAA", Bars: bars}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestExtract_InsufficientHistory(t *testing.T) {
	cfg := store.DefaultFeatureConfig()

	fs, ok := Extract(series(repeat(100, 209)), cfg)
	assert.False(t, ok)
	assert.Equal(t, types.FeatureSet{}, fs)

	// invalid closes do not count towards history
	closes := repeat(100, 211)
	closes[5] = 0
	closes[9] = math.NaN()
	_, ok = Extract(series(closes), cfg)
	assert.False(t, ok)

	closes[9] = 100
	_, ok = Extract(series(closes), cfg)
	assert.True(t, ok)
}

func TestExtract_FlatSeries(t *testing.T) {
	fs, ok := Extract(series(repeat(100, 211)), store.DefaultFeatureConfig())
	require.True(t, ok)

	assert.Equal(t, 100.0, fs.Close)
	assert.InDelta(t, 0, fs.Ret20, 1e-12)
	assert.InDelta(t, 0, fs.Ret60, 1e-12)
	// last == MA is not above
	assert.Equal(t, 0.0, fs.Above50)
	assert.Equal(t, 0.0, fs.Above200)
	assert.Equal(t, 50.0, fs.RSI14)
	assert.InDelta(t, 0, fs.Vol20, 1e-12)
}

func TestExtract_FlatSeriesAtInexactPrices(t *testing.T) {
	for _, price := range []float64{33.3, 0.1, 187.23} {
		fs, ok := Extract(series(repeat(price, 250)), store.DefaultFeatureConfig())
		require.True(t, ok)
		assert.Equal(t, price, fs.Close)
		assert.Equal(t, 0.0, fs.Above50, "price %v", price)
		assert.Equal(t, 0.0, fs.Above200, "price %v", price)
		assert.Equal(t, 50.0, fs.RSI14)
	}
}

func TestExtract_GeometricUptrend(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 * math.Pow(1.01, float64(i))
	}
	fs, ok := Extract(series(closes), store.DefaultFeatureConfig())
	require.True(t, ok)

	assert.InDelta(t, math.Pow(1.01, 20)-1, fs.Ret20, 1e-9)
	assert.InDelta(t, math.Pow(1.01, 60)-1, fs.Ret60, 1e-9)
	assert.Equal(t, 1.0, fs.Above50)
	assert.Equal(t, 1.0, fs.Above200)
	assert.Equal(t, 100.0, fs.RSI14)
	assert.InDelta(t, 0, fs.Vol20, 1e-9)
}

func TestExtract_MixedMoves(t *testing.T) {
	// up 2, down 1, repeated: gains avg over 14 deltas = 7*2/14, losses 7*1/14
	closes := make([]float64, 211)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 2
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	fs, ok := Extract(series(closes), store.DefaultFeatureConfig())
	require.True(t, ok)

	assert.InDelta(t, 100-100.0/3, fs.RSI14, 1e-9)
	assert.Greater(t, fs.Vol20, 0.0)
	assert.Equal(t, 1.0, fs.Above200)
}

func TestExtract_CustomWindows(t *testing.T) {
	cfg := store.DefaultFeatureConfig()
	cfg.MinHistory = 30
	cfg.LongReturn = 25
	cfg.SlowMA = 25
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	fs, ok := Extract(series(closes), cfg)
	require.True(t, ok)
	assert.InDelta(t, 30.0/5.0-1, fs.Ret60, 1e-12)

	// a window longer than the available history is treated as insufficient
	cfg.LongReturn = 40
	_, ok = Extract(series(closes), cfg)
	assert.False(t, ok)
}
