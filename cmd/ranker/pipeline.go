package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signal-fusion-ranker/internal/interfaces"
	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/recorder"

	"github.com/robfig/cron/v3"
)

// headlineCache is the cache surface of news.Service.
type headlineCache interface {
	ClearCache()
	CachedSymbols() []string
}

// pipeline runs one ranking pass: universe, ranker, sinks, recorder.
type pipeline struct {
	universe interfaces.UniverseProvider
	ranker   interfaces.Ranker
	sink     interfaces.SnapshotSink
	recorder recorder.Recorder
	news     headlineCache // optional; emptied before each run
	now      func() time.Time

	mu sync.Mutex // one run at a time
}

func (p *pipeline) Run(ctx context.Context) error {
	if !p.mu.TryLock() {
		logger.Warn(ctx, "Previous run still in progress, skipping")
		return nil
	}
	defer p.mu.Unlock()

	op := logger.StartOperation(ctx, "pipeline.run")
	ctx = op.GetContext()

	started := p.now()
	if p.news != nil {
		p.news.ClearCache()
	}
	secs, err := p.universe.Universe(ctx)
	if err != nil {
		err = fmt.Errorf("fetch universe: %w", err)
		op.EndWithError(err)
		return err
	}

	snap, err := p.ranker.Run(ctx, secs)
	if err != nil {
		op.EndWithError(err)
		return err
	}

	if err := p.sink.Write(ctx, snap); err != nil {
		err = fmt.Errorf("write snapshot: %w", err)
		op.EndWithError(err)
		return err
	}

	meta := recorder.RunMeta{StartedAt: started, Duration: p.now().Sub(started), UniverseSize: len(secs)}
	if err := p.recorder.RecordRun(ctx, snap, meta); err != nil {
		logger.Warn(ctx, "Failed to record run", "run_id", snap.RunID, "error", err)
	}

	fields := []any{
		"run_id", snap.RunID,
		"universe", len(secs),
		"ranked", len(snap.Rows),
		"duration_ms", meta.Duration.Milliseconds(),
	}
	if p.news != nil {
		fields = append(fields, "news_cached", len(p.news.CachedSymbols()))
	}
	logger.Info(ctx, "Run complete", fields...)
	op.End("run_id", snap.RunID)
	return nil
}

// schedule registers the pipeline on a seconds-resolution cron spec.
func schedule(ctx context.Context, spec string, p *pipeline) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(spec, func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorWithErr(ctx, "Scheduled run failed", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("register ranking task: %w", err)
	}
	return c, nil
}
