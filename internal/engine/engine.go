package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"signal-fusion-ranker/internal/interfaces"
	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/news"
	"signal-fusion-ranker/internal/scoring"
	"signal-fusion-ranker/internal/store"
	"signal-fusion-ranker/internal/types"
)

var (
	ErrEmptyUniverse = errors.New("universe is empty")
	ErrNoPriceData   = errors.New("no instrument has usable price history")
)

const UpdatedLayout = "2006-01-02 15:04:05"

// PriceModel scores a feature set; ok=false marks insufficient history.
type PriceModel interface {
	Score(fs types.FeatureSet, ok bool) scoring.Result
}

// NewsScorer turns raw headlines into a bounded adjustment.
type NewsScorer interface {
	Score(headlines []types.Headline) (float64, []types.ScoredHeadline)
}

// Config is the subset of the run configuration the engine reads.
type Config struct {
	Features    store.FeatureConfig
	Scoring     store.ScoringConfig
	NewsScoring store.NewsScoringConfig

	TopNews      int
	NewsDays     int
	MaxHeadlines int

	ChunkSize        int
	PriceConcurrency int
	NewsConcurrency  int
	NewsTimeout      time.Duration
}

func ConfigFrom(c *store.Config) Config {
	return Config{
		Features:         c.Features,
		Scoring:          c.Scoring,
		NewsScoring:      c.NewsScoring,
		TopNews:          c.Engine.TopNews,
		NewsDays:         c.Engine.NewsDays,
		MaxHeadlines:     c.Engine.MaxHeadlines,
		ChunkSize:        c.Prices.ChunkSize,
		PriceConcurrency: c.Prices.Concurrency,
		NewsConcurrency:  c.News.Concurrency,
		NewsTimeout:      c.News.Timeout,
	}
}

// DefaultConfig mirrors store.Default.
func DefaultConfig() Config {
	return ConfigFrom(store.Default())
}

// Engine runs the two-phase ranking: price scoring for the whole universe,
// then news escalation for the top of the price ranking.
type Engine struct {
	cfg    Config
	prices interfaces.PriceProvider
	news   interfaces.NewsProvider
	model  PriceModel
	scorer NewsScorer
	now    func() time.Time
	runID  func() string
}

var _ interfaces.Ranker = (*Engine)(nil)

type Option func(*Engine)

func WithPriceModel(m PriceModel) Option {
	return func(e *Engine) { e.model = m }
}

func WithNewsScorer(s NewsScorer) Option {
	return func(e *Engine) { e.scorer = s }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRunID(gen func() string) Option {
	return func(e *Engine) { e.runID = gen }
}

// New builds an engine. news may be nil, in which case escalated
// candidates see no headlines.
func New(cfg Config, prices interfaces.PriceProvider, news interfaces.NewsProvider, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		prices: prices,
		news:   news,
		now:    time.Now,
		runID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.model == nil {
		e.model = scoring.NewModel(cfg.Scoring)
	}
	if e.scorer == nil {
		e.scorer = newsScorer(cfg.NewsScoring)
	}
	return e
}

func newsScorer(cfg store.NewsScoringConfig) NewsScorer {
	return news.NewScorer(cfg, news.NewLexiconModel())
}

// Run executes both phases and returns the ranked snapshot. Only an empty
// universe or a universe with no usable price history is an error.
func (e *Engine) Run(ctx context.Context, universe []types.Security) (*types.Snapshot, error) {
	if len(universe) == 0 {
		return nil, ErrEmptyUniverse
	}
	runID := e.runID()

	cands, err := e.BuildCandidates(ctx, universe)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, ErrNoPriceData
	}
	logger.Info(ctx, "Base scoring complete", "run_id", runID, "universe", len(universe), "rankable", len(cands))

	e.RankBase(cands)

	if err := e.Escalate(ctx, cands, e.cfg.TopNews); err != nil {
		return nil, err
	}
	e.RankFinal(cands)

	for i := 0; i < min(10, len(cands)); i++ {
		c := cands[i]
		logger.Ranking(ctx, i+1, c.Ticker, c.Score, c.BaseScore, c.NewsScore, "run_id", runID)
	}

	return &types.Snapshot{
		SchemaVersion: types.SnapshotSchemaVersion,
		RunID:         runID,
		UpdatedUTC:    e.now().UTC().Format(UpdatedLayout),
		Rows:          cands,
	}, nil
}
