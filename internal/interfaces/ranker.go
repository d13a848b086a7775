package interfaces

import (
	"context"

	"signal-fusion-ranker/internal/types"
)

type Ranker interface {
	Run(ctx context.Context, universe []types.Security) (*types.Snapshot, error)
}
