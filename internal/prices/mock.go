package prices

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"signal-fusion-ranker/internal/types"
)

// MockProvider produces deterministic synthetic daily bars per symbol for
// dry runs. Drift and wiggle are derived from a hash of the symbol.
type MockProvider struct {
	Bars int
	End  time.Time
}

func NewMockProvider(bars int) *MockProvider {
	y, m, d := time.Now().UTC().Date()
	return &MockProvider{Bars: bars, End: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (p *MockProvider) History(ctx context.Context, symbol string) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return types.PriceSeries{}, err
	}
	return types.PriceSeries{Symbol: symbol, Bars: generateMockBars(symbol, p.Bars, p.End)}, nil
}

func generateMockBars(symbol string, count int, end time.Time) []types.Bar {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	seed := h.Sum32()

	base := 20 + float64(seed%480)
	drift := (float64(seed%21) - 10) * 0.0004
	amp := 0.005 + float64(seed%7)*0.002
	phase := float64(seed % 13)

	bars := make([]types.Bar, count)
	for i := 0; i < count; i++ {
		x := float64(i)
		p := base * math.Exp(drift*x) * (1 + amp*math.Sin(x/3+phase))
		bars[i] = types.Bar{
			Date:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
