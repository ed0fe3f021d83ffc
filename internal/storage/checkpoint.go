package storage

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/metrics"
)

// Load reads a category as a slice of records. A missing, unreadable or
// unparseable checkpoint yields an empty slice.
func Load[T any](ctx context.Context, s ICheckpointStorage, category common.Category) []T {
	data, err := s.Read(ctx, category)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debug().Str("category", string(category)).Msg("No checkpoint found, starting empty")
		} else {
			log.Error().Err(err).Str("category", string(category)).Msg("Failed to read checkpoint, starting empty")
		}
		return []T{}
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		log.Error().Err(err).Str("category", string(category)).Msg("Failed to parse checkpoint, starting empty")
		return []T{}
	}
	if records == nil {
		records = []T{}
	}
	return records
}

// Save overwrites a category with records. Failed writes are retried
// immediately until they succeed or ctx is done.
func Save[T any](ctx context.Context, s ICheckpointStorage, category common.Category, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	for {
		err := s.Write(ctx, category, data)
		if err == nil {
			metrics.CheckpointWrites.WithLabelValues(string(category), "success").Inc()
			return nil
		}
		metrics.CheckpointWrites.WithLabelValues(string(category), "failure").Inc()
		log.Error().Err(err).Str("category", string(category)).Msg("Failed to write checkpoint, retrying")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

// LoadStreams loads the seven event categories.
func LoadStreams(ctx context.Context, s ICheckpointStorage) *common.Streams {
	return &common.Streams{
		Txs:             Load[common.InternalTxRecord](ctx, s, common.CategoryTxs),
		Transfers:       Load[common.TransferRecord](ctx, s, common.CategoryTransfers),
		Buffers:         Load[common.TransferRecord](ctx, s, common.CategoryBuffers),
		Airdrops:        Load[common.SimpleEventRecord](ctx, s, common.CategoryAirdrops),
		Bonus:           Load[common.SimpleEventRecord](ctx, s, common.CategoryBonus),
		Funds:           Load[common.SimpleEventRecord](ctx, s, common.CategoryFunds),
		GenesisDeposits: Load[common.SimpleEventRecord](ctx, s, common.CategoryGenesisDeposits),
	}
}

// SaveStreams persists the seven event categories in order.
func SaveStreams(ctx context.Context, s ICheckpointStorage, streams *common.Streams) error {
	if err := Save(ctx, s, common.CategoryTxs, streams.Txs); err != nil {
		return err
	}
	if err := Save(ctx, s, common.CategoryTransfers, streams.Transfers); err != nil {
		return err
	}
	if err := Save(ctx, s, common.CategoryBuffers, streams.Buffers); err != nil {
		return err
	}
	if err := Save(ctx, s, common.CategoryAirdrops, streams.Airdrops); err != nil {
		return err
	}
	if err := Save(ctx, s, common.CategoryBonus, streams.Bonus); err != nil {
		return err
	}
	if err := Save(ctx, s, common.CategoryFunds, streams.Funds); err != nil {
		return err
	}
	return Save(ctx, s, common.CategoryGenesisDeposits, streams.GenesisDeposits)
}

// ResumePoint is the greatest of fromBlock and the last block number of every
// non-empty stream.
func ResumePoint(fromBlock *big.Int, streams *common.Streams) *big.Int {
	from := new(big.Int)
	if fromBlock != nil {
		from.Set(fromBlock)
	}
	for _, bn := range streams.LastBlockNumbers() {
		if bn.Cmp(from) > 0 {
			from.Set(bn)
		}
	}
	return from
}
