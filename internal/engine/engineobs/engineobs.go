package engineobs

import (
	"context"
	"time"

	"signal-fusion-ranker/internal/interfaces"
	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/trace"
	"signal-fusion-ranker/internal/types"
)

type observableRanker struct {
	ranker interfaces.Ranker
}

var _ interfaces.Ranker = (*observableRanker)(nil)

func Wrap(r interfaces.Ranker) interfaces.Ranker {
	return &observableRanker{
		ranker: r,
	}
}

func (o *observableRanker) Run(ctx context.Context, universe []types.Security) (*types.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "ranker.Run")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting ranking run",
		"universe", len(universe),
	)

	snap, err := o.ranker.Run(ctx, universe)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Ranking run failed", err,
			"universe", len(universe),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	fields := []any{
		"run_id", snap.RunID,
		"rows", len(snap.Rows),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if len(snap.Rows) > 0 {
		fields = append(fields, "top", snap.Rows[0].Ticker, "top_score", snap.Rows[0].Score)
	}
	logger.InfoSkip(ctx, 1, "Ranking run completed", fields...)

	return snap, nil
}
