package ta

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
)

// RSIPolicy fixes the RSI value for windows with no losses.
type RSIPolicy struct {
	ZeroLoss float64 // gains but no losses
	Flat     float64 // neither gains nor losses
}

func DefaultRSIPolicy() RSIPolicy {
	return RSIPolicy{ZeroLoss: 100, Flat: 50}
}

// SMA returns the trailing n-period simple moving average, NaN when short.
// A constant window yields exactly that constant.
func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	w := helper.ChanToSlice(helper.Last(helper.SliceToChan(closes), n))
	if len(w) != n {
		return math.NaN()
	}
	if constant(w) {
		return w[0]
	}
	return neumaierSum(w) / float64(n)
}

func constant(w []float64) bool {
	for _, v := range w[1:] {
		if v != w[0] {
			return false
		}
	}
	return true
}

// neumaierSum is a compensated sum, exact to within one rounding.
func neumaierSum(vals []float64) float64 {
	sum, c := 0.0, 0.0
	for _, v := range vals {
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			c += (sum - t) + v
		} else {
			c += (v - t) + sum
		}
		sum = t
	}
	return sum + c
}

// RSI is the simple-average relative strength index over the last period
// deltas. It is never NaN once enough history is present.
func RSI(closes []float64, period int, policy RSIPolicy) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	gain /= float64(period)
	loss /= float64(period)
	if loss == 0 {
		if gain > 0 {
			return policy.ZeroLoss
		}
		return policy.Flat
	}
	rs := gain / loss
	return 100.0 - (100.0 / (1.0 + rs))
}

func PctChange(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// SampleStdDev is the n-1 standard deviation of the last n values.
func SampleStdDev(vals []float64, n int) float64 {
	if len(vals) < n || n < 2 {
		return math.NaN()
	}
	w := vals[len(vals)-n:]
	m := 0.0
	for _, v := range w {
		m += v
	}
	m /= float64(n)
	s := 0.0
	for _, v := range w {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(n-1))
}

// TrailingReturn is last/closes[-(lookback+1)] - 1.
func TrailingReturn(closes []float64, lookback int) float64 {
	if len(closes) < lookback+1 || lookback <= 0 {
		return math.NaN()
	}
	return closes[len(closes)-1]/closes[len(closes)-1-lookback] - 1
}

func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
