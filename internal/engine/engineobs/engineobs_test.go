package engineobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-fusion-ranker/internal/types"
)

type stubRanker struct {
	snap *types.Snapshot
	err  error
	got  int
}

func (s *stubRanker) Run(ctx context.Context, universe []types.Security) (*types.Snapshot, error) {
	s.got = len(universe)
	return s.snap, s.err
}

func TestWrap_PassesThrough(t *testing.T) {
	inner := &stubRanker{snap: &types.Snapshot{RunID: "r1", Rows: []types.Candidate{{Ticker: "AAA", Score: 90}}}}
	snap, err := Wrap(inner).Run(context.Background(), []types.Security{{Symbol: "AAA"}, {Symbol: "BBB"}})
	require.NoError(t, err)
	assert.Equal(t, "r1", snap.RunID)
	assert.Equal(t, 2, inner.got)
}

func TestWrap_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Wrap(&stubRanker{err: boom}).Run(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}
