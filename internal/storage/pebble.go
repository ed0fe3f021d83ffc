package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

type PebbleConnector struct {
	db *pebble.DB
}

func NewPebbleConnector(cfg *config.PebbleConfig) (*PebbleConnector, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), "ledger-indexer-pebble")
	}

	cache := pebble.NewCache(8 << 20)
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{
		Cache:      cache,
		DisableWAL: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db: %w", err)
	}
	log.Debug().Str("path", path).Msg("Using pebble checkpoint storage")
	return &PebbleConnector{db: db}, nil
}

func checkpointKey(category common.Category) []byte {
	return []byte("checkpoint:" + string(category))
}

func (p *PebbleConnector) Read(ctx context.Context, category common.Category) ([]byte, error) {
	value, closer, err := p.db.Get(checkpointKey(category))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (p *PebbleConnector) Write(ctx context.Context, category common.Category, data []byte) error {
	return p.db.Set(checkpointKey(category), data, pebble.Sync)
}

func (p *PebbleConnector) Close() error {
	return p.db.Close()
}
