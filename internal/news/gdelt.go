package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"signal-fusion-ranker/internal/api"
	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/types"
)

const (
	DefaultGDELTURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	gdeltMaxRecords = 250
	gdeltTimeLayout = "20060102150405"
)

// GDELTProvider fetches headlines from the GDELT DOC 2.0 article list,
// restricted to a set of news domains and a market keyword group.
type GDELTProvider struct {
	baseURL    string
	domains    []string
	keywords   []string
	httpClient *http.Client
	client     *api.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

type GDELTOption func(*GDELTProvider)

func WithGDELTBaseURL(u string) GDELTOption {
	return func(p *GDELTProvider) { p.baseURL = u }
}

func WithGDELTHTTPClient(c *http.Client) GDELTOption {
	return func(p *GDELTProvider) { p.httpClient = c }
}

// WithGDELTRateLimit caps outbound requests per second; zero or less disables the cap.
func WithGDELTRateLimit(perSecond float64) GDELTOption {
	return func(p *GDELTProvider) {
		if perSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

func WithGDELTClock(now func() time.Time) GDELTOption {
	return func(p *GDELTProvider) { p.now = now }
}

func NewGDELTProvider(domains, keywords []string, opts ...GDELTOption) *GDELTProvider {
	p := &GDELTProvider{
		baseURL:    DefaultGDELTURL,
		domains:    domains,
		keywords:   keywords,
		httpClient: &http.Client{Timeout: 25 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = api.NewClient(api.WithHTTPClient(p.httpClient), api.WithHeaders(api.BrowserHeaders()))
	return p
}

// BuildQuery renders ("<company>" OR TICKER) (domain:a OR domain:b) ("kw" OR ...).
func (p *GDELTProvider) BuildQuery(company, symbol string) string {
	parts := []string{fmt.Sprintf("(%q OR %s)", company, symbol)}
	if len(p.domains) > 0 {
		d := make([]string, len(p.domains))
		for i, dom := range p.domains {
			d[i] = "domain:" + dom
		}
		parts = append(parts, "("+strings.Join(d, " OR ")+")")
	}
	if len(p.keywords) > 0 {
		k := make([]string, len(p.keywords))
		for i, kw := range p.keywords {
			k[i] = strconv.Quote(kw)
		}
		parts = append(parts, "("+strings.Join(k, " OR ")+")")
	}
	return strings.Join(parts, " ")
}

// Headlines returns up to maxItems articles seen in the last lookbackDays,
// newest first. A non-200 response yields no headlines and no error.
func (p *GDELTProvider) Headlines(ctx context.Context, company, symbol string, lookbackDays, maxItems int) ([]types.Headline, error) {
	if maxItems <= 0 {
		return nil, nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	end := p.now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)
	params := url.Values{}
	params.Set("query", p.BuildQuery(company, symbol))
	params.Set("mode", "artlist")
	params.Set("format", "json")
	params.Set("sort", "datedesc")
	params.Set("maxrecords", strconv.Itoa(min(maxItems, gdeltMaxRecords)))
	params.Set("startdatetime", start.Format(gdeltTimeLayout))
	params.Set("enddatetime", end.Format(gdeltTimeLayout))

	resp, err := p.client.GET(ctx, p.baseURL+"?"+params.Encode())
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			logger.Warn(ctx, "GDELT returned non-200", "symbol", symbol, "status", se.StatusCode)
			return []types.Headline{}, nil
		}
		return nil, fmt.Errorf("gdelt request for %s: %w", symbol, err)
	}
	return parseArticles(resp.Body, maxItems), nil
}

func parseArticles(body []byte, maxItems int) []types.Headline {
	arts := gjson.GetBytes(body, "articles")
	if !arts.Exists() || !arts.IsArray() {
		return []types.Headline{}
	}
	items := arts.Array()
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	out := make([]types.Headline, 0, len(items))
	for _, a := range items {
		out = append(out, types.Headline{
			Title:  a.Get("title").String(),
			Domain: a.Get("domain").String(),
			SeenAt: a.Get("seendate").String(),
			URL:    a.Get("url").String(),
		})
	}
	return out
}
