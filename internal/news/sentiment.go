package news

import (
	"strings"

	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/ta"
	"signal-fusion-ranker/internal/types"
)

// SentimentModel maps a short text to a compound polarity in [-1,1].
type SentimentModel interface {
	Compound(text string) float64
}

// Scorer turns one instrument's headlines into a bounded news adjustment.
type Scorer struct {
	filter *RelevanceFilter
	model  SentimentModel
	cfg    store.NewsScoringConfig
}

func NewScorer(cfg store.NewsScoringConfig, model SentimentModel) *Scorer {
	if model == nil {
		model = NewLexiconModel()
	}
	return &Scorer{
		filter: NewRelevanceFilter(cfg.Keywords, cfg.MaxHits),
		model:  model,
		cfg:    cfg,
	}
}

// Score keeps only market-relevant headlines, averages their compound
// sentiment and returns the clipped, count-bumped score with the headlines
// that contributed to it.
func (s *Scorer) Score(headlines []types.Headline) (float64, []types.ScoredHeadline) {
	used := make([]types.ScoredHeadline, 0, len(headlines))
	total := 0.0
	for _, h := range headlines {
		title := strings.TrimSpace(h.Title)
		if title == "" {
			continue
		}
		hits := s.filter.Hits(title)
		if len(hits) == 0 {
			continue
		}
		c := s.model.Compound(title)
		total += c
		used = append(used, types.ScoredHeadline{Headline: h, Sentiment: c, KeywordHits: hits})
	}
	if len(used) == 0 {
		return 0, used
	}

	avg := total / float64(len(used))
	score := ta.Clip(avg*s.cfg.Scale, -s.cfg.Cap, s.cfg.Cap)
	bump := min(s.cfg.BumpMax, s.cfg.BumpPerItem*float64(len(used)))
	return ta.Clip(score+bump, -s.cfg.Cap, s.cfg.Cap), used
}
