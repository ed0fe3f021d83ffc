package storage

import (
	"context"
	"errors"
	"fmt"

	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

var ErrNotFound = errors.New("checkpoint not found")

// ICheckpointStorage stores one JSON array per category. Write replaces the
// whole array. Read of a category that was never written returns ErrNotFound.
type ICheckpointStorage interface {
	Read(ctx context.Context, category common.Category) ([]byte, error)
	Write(ctx context.Context, category common.Category, data []byte) error
	Close() error
}

// NewCheckpointConnector returns the first configured connector. The file
// connector is the fallback when nothing else is configured.
func NewCheckpointConnector(cfg *config.StorageConnectionConfig) (ICheckpointStorage, error) {
	var conn ICheckpointStorage
	var err error
	switch {
	case cfg.Memory != nil:
		conn, err = NewMemoryConnector(cfg.Memory)
	case cfg.Pebble != nil:
		conn, err = NewPebbleConnector(cfg.Pebble)
	case cfg.Badger != nil:
		conn, err = NewBadgerConnector(cfg.Badger)
	case cfg.Redis != nil:
		conn, err = NewRedisConnector(cfg.Redis)
	case cfg.Postgres != nil:
		conn, err = NewPostgresConnector(cfg.Postgres)
	case cfg.S3 != nil:
		conn, err = NewS3Connector(cfg.S3)
	default:
		fileCfg := cfg.File
		if fileCfg == nil {
			fileCfg = &config.FileConfig{}
		}
		conn, err = NewFileConnector(fileCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint storage: %w", err)
	}
	return conn, nil
}
