package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"signal-fusion-ranker/internal/interfaces"
	"signal-fusion-ranker/internal/types"
)

// JSONSink replaces the snapshot file at Path on every write.
type JSONSink struct {
	Path string
}

var _ interfaces.SnapshotSink = (*JSONSink)(nil)

func NewJSONSink(path string) *JSONSink {
	return &JSONSink{Path: path}
}

func (s *JSONSink) Write(ctx context.Context, snap *types.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	b, err := Marshal(snap)
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.Path, b)
}

// Marshal renders a snapshot with two-space indentation and a trailing newline.
func Marshal(snap *types.Snapshot) ([]byte, error) {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(b, '\n'), nil
}

// WriteFileAtomic writes to a temp file in the target directory and renames
// it over path, so readers never see a partial document.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// MultiSink writes to every sink in order and joins their errors.
type MultiSink []interfaces.SnapshotSink

func (m MultiSink) Write(ctx context.Context, snap *types.Snapshot) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
