package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

const DEFAULT_CHECKPOINT_DIR = "./mainnet"

// FileConnector keeps every category in <dir>/<category>.json and holds an
// exclusive lock on <dir>/.lock until closed.
type FileConnector struct {
	dir  string
	lock *flock.Flock
}

func NewFileConnector(cfg *config.FileConfig) (*FileConnector, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DEFAULT_CHECKPOINT_DIR
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint dir %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock checkpoint dir %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("checkpoint dir %s is locked by another process", dir)
	}

	log.Debug().Str("dir", dir).Msg("Using file checkpoint storage")
	return &FileConnector{dir: dir, lock: lock}, nil
}

func (f *FileConnector) path(category common.Category) string {
	return filepath.Join(f.dir, string(category)+".json")
}

func (f *FileConnector) Read(ctx context.Context, category common.Category) ([]byte, error) {
	data, err := os.ReadFile(f.path(category))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the category file through a temp file and rename so a crash
// never leaves a truncated file behind.
func (f *FileConnector) Write(ctx context.Context, category common.Category, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, "."+string(category)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", category, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", category, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path(category)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", category, err)
	}
	return nil
}

func (f *FileConnector) Close() error {
	return f.lock.Unlock()
}
