package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

type BadgerConnector struct {
	db *badger.DB
}

// NewBadgerConnector opens badger at cfg.Path, or in memory when the path is empty.
func NewBadgerConnector(cfg *config.BadgerConfig) (*BadgerConnector, error) {
	var opts badger.Options
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = true
	}
	opts.Logger = nil // Disable badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	log.Debug().Str("path", cfg.Path).Msg("Using badger checkpoint storage")
	return &BadgerConnector{db: db}, nil
}

func (bc *BadgerConnector) Read(ctx context.Context, category common.Category) ([]byte, error) {
	var out []byte
	err := bc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(checkpointKey(category))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (bc *BadgerConnector) Write(ctx context.Context, category common.Category, data []byte) error {
	return bc.db.Update(func(txn *badger.Txn) error {
		return txn.Set(checkpointKey(category), data)
	})
}

func (bc *BadgerConnector) Close() error {
	return bc.db.Close()
}
