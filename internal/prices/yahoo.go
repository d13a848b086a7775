package prices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"signal-fusion-ranker/internal/api"
	"signal-fusion-ranker/internal/types"
)

const DefaultYahooURL = "https://query1.finance.yahoo.com"

var ErrNoData = errors.New("no price data returned")

// APIError is a non-200 response from the chart endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// YahooProvider reads daily bars from the v8 chart API.
type YahooProvider struct {
	baseURL    string
	rng        string
	httpClient *http.Client
	client     *api.Client
	limiter    *rate.Limiter
}

type YahooOption func(*YahooProvider)

func WithBaseURL(u string) YahooOption {
	return func(p *YahooProvider) { p.baseURL = u }
}

func WithHTTPClient(c *http.Client) YahooOption {
	return func(p *YahooProvider) { p.httpClient = c }
}

func WithRange(rng string) YahooOption {
	return func(p *YahooProvider) { p.rng = rng }
}

// WithRateLimit caps outbound requests per second; zero or less disables the cap.
func WithRateLimit(perSecond float64) YahooOption {
	return func(p *YahooProvider) {
		if perSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

func NewYahooProvider(opts ...YahooOption) *YahooProvider {
	p := &YahooProvider{
		baseURL:    DefaultYahooURL,
		rng:        "1y",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = api.NewClient(api.WithHTTPClient(p.httpClient), api.WithHeaders(api.YahooFinanceHeaders()))
	return p
}

// NewHTTPClient returns a client that goes through proxyURL when set.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// History returns daily bars for symbol in ascending date order.
func (p *YahooProvider) History(ctx context.Context, symbol string) (types.PriceSeries, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return types.PriceSeries{}, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", p.baseURL, url.PathEscape(symbol))
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", p.rng)

	resp, err := p.client.GET(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			return types.PriceSeries{}, &APIError{StatusCode: se.StatusCode, Message: se.Body, Endpoint: endpoint}
		}
		return types.PriceSeries{}, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}

	bars, err := ParseChart(resp.Body)
	if err != nil {
		return types.PriceSeries{}, fmt.Errorf("%s: %w", symbol, err)
	}
	return types.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// ParseChart extracts bars from a chart response, skipping bars whose close
// is null and sorting by date. Of rows sharing a timestamp the later one wins.
func ParseChart(body []byte) ([]types.Bar, error) {
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	ts := result.Get("timestamp")
	if !ts.Exists() || !ts.IsArray() || len(ts.Array()) == 0 {
		return nil, ErrNoData
	}
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	at := func(vals []gjson.Result, i int) float64 {
		if i < len(vals) {
			return vals[i].Float()
		}
		return 0
	}

	stamps := ts.Array()
	bars := make([]types.Bar, 0, len(stamps))
	for i, t := range stamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		c := closes[i].Float()
		if c <= 0 {
			continue
		}
		bars = append(bars, types.Bar{
			Date:   time.Unix(t.Int(), 0).UTC(),
			Open:   at(opens, i),
			High:   at(highs, i),
			Low:    at(lows, i),
			Close:  c,
			Volume: at(volumes, i),
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	// drop repeated timestamps, keeping the last
	out := bars[:0]
	for i, b := range bars {
		if i+1 < len(bars) && bars[i+1].Date.Equal(b.Date) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
