package universe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/types"
)

const DefaultWikipediaURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

var ErrNoTable = errors.New("constituents table not found")

// WikipediaProvider scrapes the S&P 500 constituents list.
type WikipediaProvider struct {
	url       string
	timeout   time.Duration
	transport http.RoundTripper
}

func NewWikipediaProvider(url string, timeout time.Duration, transport http.RoundTripper) *WikipediaProvider {
	if url == "" {
		url = DefaultWikipediaURL
	}
	return &WikipediaProvider{url: url, timeout: timeout, transport: transport}
}

func (p *WikipediaProvider) Universe(ctx context.Context) ([]types.Security, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
	)
	if p.timeout > 0 {
		c.SetRequestTimeout(p.timeout)
	}
	if p.transport != nil {
		c.WithTransport(p.transport)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; signal-fusion-ranker/1.0)")
		logger.Debug(ctx, "Fetching universe", "url", r.URL.String())
	})

	var (
		out      []types.Security
		parseErr error
	)
	c.OnResponse(func(r *colly.Response) {
		out, parseErr = ParseConstituents(bytes.NewReader(r.Body))
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("fetch %s (status %d): %w", p.url, r.StatusCode, err)
	})

	if err := c.Visit(p.url); err != nil && visitErr == nil {
		visitErr = fmt.Errorf("fetch %s: %w", p.url, err)
	}
	c.Wait()

	if visitErr != nil {
		return nil, visitErr
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}

// ParseConstituents reads the first table whose header row names Symbol,
// Security and GICS Sector columns. Symbols are converted to the Yahoo form
// (BRK.B becomes BRK-B) and deduplicated, first occurrence wins.
func ParseConstituents(r io.Reader) ([]types.Security, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		out   []types.Security
		found bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		symCol, nameCol, sectorCol := -1, -1, -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			switch strings.TrimSpace(th.Text()) {
			case "Symbol", "Ticker symbol", "Ticker":
				symCol = i
			case "Security", "Company":
				nameCol = i
			case "GICS Sector":
				sectorCol = i
			}
		})
		if symCol < 0 || nameCol < 0 || sectorCol < 0 {
			return true
		}
		found = true

		seen := make(map[string]struct{})
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() <= max(symCol, nameCol, sectorCol) {
				return
			}
			sym := NormalizeSymbol(cells.Eq(symCol).Text())
			if sym == "" {
				return
			}
			if _, dup := seen[sym]; dup {
				return
			}
			seen[sym] = struct{}{}
			out = append(out, types.Security{
				Symbol:  sym,
				Company: strings.TrimSpace(cells.Eq(nameCol).Text()),
				Sector:  strings.TrimSpace(cells.Eq(sectorCol).Text()),
			})
		})
		return false
	})
	if !found {
		return nil, ErrNoTable
	}
	return out, nil
}

func NormalizeSymbol(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ".", "-")
}

// StaticProvider serves a fixed universe from configuration.
type StaticProvider struct {
	securities []types.Security
}

func NewStaticProvider(entries []store.StaticSecurity) *StaticProvider {
	seen := make(map[string]struct{}, len(entries))
	out := make([]types.Security, 0, len(entries))
	for _, e := range entries {
		sym := NormalizeSymbol(e.Symbol)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		company := e.Company
		if company == "" {
			company = sym
		}
		out = append(out, types.Security{Symbol: sym, Company: company, Sector: e.Sector})
	}
	return &StaticProvider{securities: out}
}

func (p *StaticProvider) Universe(ctx context.Context) ([]types.Security, error) {
	out := make([]types.Security, len(p.securities))
	copy(out, p.securities)
	return out, nil
}
