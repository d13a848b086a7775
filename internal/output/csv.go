package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"signal-fusion-ranker/internal/interfaces"
	"signal-fusion-ranker/internal/types"
)

var csvHeaders = []string{
	"rank", "ticker", "company", "sector", "score", "base_score", "news_score",
	"close", "ret_20", "ret_60", "rsi14", "vol20", "escalated", "headlines", "reasons",
}

// CSVSink writes a flat ranking table for spreadsheet use.
type CSVSink struct {
	Path string
}

var _ interfaces.SnapshotSink = (*CSVSink)(nil)

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) Write(ctx context.Context, snap *types.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	b, err := MarshalCSV(snap)
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.Path, b)
}

// MarshalCSV renders one row per candidate in rank order. Reasons are joined
// with "; ".
func MarshalCSV(snap *types.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeaders); err != nil {
		return nil, err
	}
	for i, c := range snap.Rows {
		rec := []string{
			strconv.Itoa(i + 1), c.Ticker, c.Company, c.Sector,
			fmt.Sprintf("%.2f", c.Score), fmt.Sprintf("%.2f", c.BaseScore), fmt.Sprintf("%.2f", c.NewsScore),
			fmt.Sprintf("%.4f", c.Close), fmt.Sprintf("%.4f", c.Ret20), fmt.Sprintf("%.4f", c.Ret60),
			fmt.Sprintf("%.2f", c.RSI14), fmt.Sprintf("%.4f", c.Vol20),
			strconv.FormatBool(c.Escalated), strconv.Itoa(len(c.Headlines)),
			strings.Join(c.Reasons, "; "),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
