package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/types"
)

// SQLiteRecorder stores one runs row per run and one rankings row per candidate.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(context.Background(), "SQLite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id         TEXT PRIMARY KEY,
			updated_utc    TEXT NOT NULL,
			started_at     INTEGER NOT NULL,
			duration_ms    INTEGER,
			universe_size  INTEGER,
			ranked         INTEGER,
			escalated      INTEGER,
			schema_version INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS rankings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(run_id),
			rank           INTEGER NOT NULL,
			ticker         TEXT NOT NULL,
			company        TEXT,
			sector         TEXT,
			close          REAL,
			ret_20         REAL,
			ret_60         REAL,
			rsi14          REAL,
			vol20          REAL,
			base_score     REAL,
			news_score     REAL,
			score          REAL,
			escalated      INTEGER,
			headline_count INTEGER,
			reasons        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_run ON rankings(run_id, rank)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_ticker ON rankings(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(ctx context.Context, snap *types.Snapshot, meta RunMeta) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	escalated := 0
	for _, c := range snap.Rows {
		if c.Escalated {
			escalated++
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs
		(run_id, updated_utc, started_at, duration_ms, universe_size, ranked, escalated, schema_version)
		VALUES (?,?,?,?,?,?,?,?)`,
		snap.RunID, snap.UpdatedUTC, meta.StartedAt.Unix(), meta.Duration.Milliseconds(),
		meta.UniverseSize, len(snap.Rows), escalated, snap.SchemaVersion,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rankings
		(run_id, rank, ticker, company, sector, close, ret_20, ret_60, rsi14, vol20,
		 base_score, news_score, score, escalated, headline_count, reasons)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rankings: %w", err)
	}
	defer stmt.Close()

	for i, c := range snap.Rows {
		reasons, _ := json.Marshal(c.Reasons)
		if _, err := stmt.ExecContext(ctx,
			snap.RunID, i+1, c.Ticker, c.Company, c.Sector,
			c.Close, c.Ret20, c.Ret60, c.RSI14, c.Vol20,
			c.BaseScore, c.NewsScore, c.Score, boolInt(c.Escalated), len(c.Headlines), string(reasons),
		); err != nil {
			return fmt.Errorf("insert ranking %s: %w", c.Ticker, err)
		}
	}
	return tx.Commit()
}

// Rankings returns the stored placements for a run in rank order.
func (r *SQLiteRecorder) Rankings(ctx context.Context, runID string) ([]RankingRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT run_id, rank, ticker, base_score, news_score, score, escalated
		FROM rankings WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankingRow
	for rows.Next() {
		var row RankingRow
		var esc int
		if err := rows.Scan(&row.RunID, &row.Rank, &row.Ticker, &row.BaseScore, &row.NewsScore, &row.Score, &esc); err != nil {
			return nil, err
		}
		row.Escalated = esc != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
