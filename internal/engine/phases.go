package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"signal-fusion-ranker/internal/features"
	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/ta"
	"signal-fusion-ranker/internal/types"
)

// BuildCandidates fetches and base-scores every security. Securities whose
// history is unavailable or too short are skipped; duplicates after the
// first occurrence are dropped. The result keeps universe order.
func (e *Engine) BuildCandidates(ctx context.Context, universe []types.Security) ([]types.Candidate, error) {
	uniq := make([]types.Security, 0, len(universe))
	seen := make(map[string]struct{}, len(universe))
	for _, s := range universe {
		if _, dup := seen[s.Symbol]; dup {
			logger.Skip(ctx, s.Symbol, "duplicate symbol")
			continue
		}
		seen[s.Symbol] = struct{}{}
		uniq = append(uniq, s)
	}

	slots := make([]*types.Candidate, len(uniq))
	chunk := e.cfg.ChunkSize
	if chunk <= 0 {
		chunk = len(uniq)
	}

	for start := 0; start < len(uniq); start += chunk {
		end := min(start+chunk, len(uniq))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(1, e.cfg.PriceConcurrency))
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				slots[i] = e.buildOne(gctx, i, uniq[i])
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("price phase: %w", err)
		}
		logger.Info(ctx, "Price chunk processed", "from", start, "to", end, "total", len(uniq))
	}

	out := make([]types.Candidate, 0, len(uniq))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (e *Engine) buildOne(ctx context.Context, order int, sec types.Security) *types.Candidate {
	if ctx.Err() != nil {
		return nil
	}
	series, err := e.prices.History(ctx, sec.Symbol)
	if err != nil {
		logger.Skip(ctx, sec.Symbol, "price history unavailable", "error", err)
		return nil
	}
	fs, ok := features.Extract(series, e.cfg.Features)
	if !ok {
		logger.Skip(ctx, sec.Symbol, "insufficient price history", "bars", len(series.Bars))
		return nil
	}
	res := e.model.Score(fs, true)

	return &types.Candidate{
		Ticker:     sec.Symbol,
		Company:    sec.Company,
		Sector:     sec.Sector,
		FeatureSet: fs,
		BaseScore:  res.Score,
		NewsScore:  0,
		Score:      res.Score,
		Reasons:    res.Reasons,
		Headlines:  []types.ScoredHeadline{},
		Order:      order,
	}
}

// RankBase orders candidates by base score, highest first.
func (e *Engine) RankBase(cands []types.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].BaseScore != cands[j].BaseScore {
			return cands[i].BaseScore > cands[j].BaseScore
		}
		return cands[i].Order < cands[j].Order
	})
}

// RankFinal orders candidates by fused score, highest first.
func (e *Engine) RankFinal(cands []types.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Order < cands[j].Order
	})
}

// Escalate news-scores the first k candidates of a base-ranked slice in
// place. A failed lookup leaves that candidate with a zero news score.
func (e *Engine) Escalate(ctx context.Context, ranked []types.Candidate, k int) error {
	k = min(max(k, 0), len(ranked))
	if k == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.cfg.NewsConcurrency))
	for i := 0; i < k; i++ {
		i := i
		g.Go(func() error {
			c := &ranked[i]
			headlines := e.lookup(gctx, c)
			ns, used := e.scorer.Score(headlines)

			c.NewsScore = ns
			c.Headlines = used
			c.Score = ta.Clip(c.BaseScore+ns, 0, 100)
			c.Reasons = append(c.Reasons[:len(c.Reasons):len(c.Reasons)], fmt.Sprintf("Market-news score: %+.1f", ns))
			c.Escalated = true
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("news phase: %w", err)
	}
	return nil
}

func (e *Engine) lookup(ctx context.Context, c *types.Candidate) []types.Headline {
	if e.news == nil {
		return nil
	}
	if e.cfg.NewsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.NewsTimeout)
		defer cancel()
	}

	start := time.Now()
	headlines, err := e.news.Headlines(ctx, c.Company, c.Ticker, e.cfg.NewsDays, e.cfg.MaxHeadlines)
	if err != nil {
		logger.Warn(ctx, "News lookup failed, scoring as neutral",
			"ticker", c.Ticker,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}
	if len(headlines) > e.cfg.MaxHeadlines {
		headlines = headlines[:e.cfg.MaxHeadlines]
	}
	return headlines
}
