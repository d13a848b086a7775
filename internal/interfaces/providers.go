package interfaces

import (
	"context"

	"signal-fusion-ranker/internal/types"
)

// UniverseProvider lists the securities to rank, in a stable order.
type UniverseProvider interface {
	Universe(ctx context.Context) ([]types.Security, error)
}

// PriceProvider returns the daily price history of one symbol.
type PriceProvider interface {
	History(ctx context.Context, symbol string) (types.PriceSeries, error)
}

// NewsProvider returns at most maxItems headlines about a company seen within
// the last lookbackDays.
type NewsProvider interface {
	Headlines(ctx context.Context, company, symbol string, lookbackDays, maxItems int) ([]types.Headline, error)
}

// SnapshotSink persists a finished run, replacing any previous snapshot.
type SnapshotSink interface {
	Write(ctx context.Context, snap *types.Snapshot) error
}
