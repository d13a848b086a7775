package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-fusion-ranker/internal/types"
)

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	snap := &types.Snapshot{
		SchemaVersion: types.SnapshotSchemaVersion,
		RunID:         "run-1",
		UpdatedUTC:    "2025-01-02 03:04:05",
		Rows: []types.Candidate{
			{Ticker: "AAA", BaseScore: 90, NewsScore: 5, Score: 95, Escalated: true, Reasons: []string{"a"}},
			{Ticker: "BBB", BaseScore: 40, Score: 40},
		},
	}
	meta := RunMeta{StartedAt: time.Unix(1700000000, 0), Duration: 1500 * time.Millisecond, UniverseSize: 3}
	require.NoError(t, rec.RecordRun(context.Background(), snap, meta))

	rows, err := rec.Rankings(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RankingRow{RunID: "run-1", Rank: 1, Ticker: "AAA", BaseScore: 90, NewsScore: 5, Score: 95, Escalated: true}, rows[0])
	assert.Equal(t, 2, rows[1].Rank)
	assert.False(t, rows[1].Escalated)

	var ranked, escalated, universe int
	require.NoError(t, rec.db.QueryRow(`SELECT ranked, escalated, universe_size FROM runs WHERE run_id = ?`, "run-1").
		Scan(&ranked, &escalated, &universe))
	assert.Equal(t, 2, ranked)
	assert.Equal(t, 1, escalated)
	assert.Equal(t, 3, universe)

	// a run id can only be recorded once
	assert.Error(t, rec.RecordRun(context.Background(), snap, meta))
}

func TestSQLiteRecorder_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.RecordRun(context.Background(), &types.Snapshot{RunID: "r", Rows: []types.Candidate{{Ticker: "X"}}}, RunMeta{}))
	require.NoError(t, rec.Close())

	rec, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer rec.Close()
	rows, err := rec.Rankings(context.Background(), "r")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(context.Background(), nil, RunMeta{}))
	assert.NoError(t, r.Close())
}
