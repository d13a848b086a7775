package recorder

import (
	"context"
	"time"

	"signal-fusion-ranker/internal/types"
)

// RunMeta describes a ranking run beyond the snapshot itself.
type RunMeta struct {
	StartedAt    time.Time
	Duration     time.Duration
	UniverseSize int
}

// RankingRow is one stored candidate placement.
type RankingRow struct {
	RunID     string
	Rank      int
	Ticker    string
	BaseScore float64
	NewsScore float64
	Score     float64
	Escalated bool
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(ctx context.Context, snap *types.Snapshot, meta RunMeta) error
	Close() error
}

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(context.Context, *types.Snapshot, RunMeta) error { return nil }
func (n *NoopRecorder) Close() error                                             { return nil }
