package archive

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/output"
	"signal-fusion-ranker/internal/types"
)

// Archive keeps one dated copy of each day's snapshot and compresses old ones.
type Archive struct {
	dir           string
	retentionDays int
	now           func() time.Time
	mu            sync.Mutex
}

func New(dir string, retentionDays int) *Archive {
	return &Archive{dir: dir, retentionDays: retentionDays, now: time.Now}
}

func (a *Archive) dailyFilepath(t time.Time) string {
	return filepath.Join(a.dir, t.UTC().Format("2006-01-02")+".json")
}

// Write stores snap as <dir>/YYYY-MM-DD.json, replacing an earlier run from
// the same day, then compresses copies past the retention window.
func (a *Archive) Write(ctx context.Context, snap *types.Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, err := output.Marshal(snap)
	if err != nil {
		return err
	}
	p := a.dailyFilepath(a.now())
	if err := output.WriteFileAtomic(p, b); err != nil {
		return fmt.Errorf("archive snapshot: %w", err)
	}
	n, err := a.compressOlder()
	if err != nil {
		return err
	}
	logger.Debug(ctx, "Snapshot archived", "path", p, "compressed", n)
	return nil
}

// CompressOlder gzips archived snapshots older than the retention window.
func (a *Archive) CompressOlder() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.compressOlder()
}

func (a *Archive) compressOlder() (int, error) {
	if a.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := a.now().AddDate(0, 0, -a.retentionDays)
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(e.Name(), ".json"))
		if err != nil || !day.Before(cutoff) {
			continue
		}
		p := filepath.Join(a.dir, e.Name())
		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			continue
		}
		if err := gzipFile(p, gz); err != nil {
			return n, fmt.Errorf("compress %s: %w", p, err)
		}
		n++
	}
	return n, nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	in.Close()
	return os.Remove(src)
}
