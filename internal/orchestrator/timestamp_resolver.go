package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/metrics"
	"github.com/thirdweb-dev/ledger-indexer/internal/retry"
	"github.com/thirdweb-dev/ledger-indexer/internal/rpc"
	"github.com/thirdweb-dev/ledger-indexer/internal/storage"
)

// TimestampResolver is the timestamp pass: it records the block timestamp of
// every block referenced by the event streams, once per block.
type TimestampResolver struct {
	rpc     rpc.IRPCClient
	storage storage.ICheckpointStorage
}

func NewTimestampResolver(client rpc.IRPCClient, retrier *retry.Retrier, store storage.ICheckpointStorage) *TimestampResolver {
	return &TimestampResolver{
		rpc:     rpc.NewRetryingClient(client, retrier),
		storage: store,
	}
}

func (r *TimestampResolver) Name() string {
	return "timestamps"
}

func (r *TimestampResolver) Run(ctx context.Context) error {
	head, err := r.rpc.GetLatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block number: %w", err)
	}

	timestamps := storage.Load[common.BlockTimestampRecord](ctx, r.storage, common.CategoryBlockTimestamps)
	known := common.NewSet[string]()
	for _, row := range timestamps {
		if row.BlockNumber != nil {
			known.Add(row.BlockNumber.String())
		}
	}

	streams := storage.LoadStreams(ctx, r.storage)
	pending := missingBlocks(streams.BlockNumbers(), known)
	log.Info().Int("known", known.Size()).Int("pending", len(pending)).Msg("Resolving block timestamps")

	var runErr error
	for _, blockNumber := range pending {
		timestamp, err := r.rpc.GetBlockTimestamp(ctx, blockNumber)
		if err != nil {
			runErr = err
			break
		}
		timestamps = append(timestamps, common.BlockTimestampRecord{
			BlockNumber: blockNumber,
			Timestamp:   timestamp,
		})
		metrics.TimestampsResolved.Inc()
		log.Info().Msgf("#%s => %d / #%s", blockNumber.String(), timestamp, head.String())
	}

	if err := storage.Save(context.WithoutCancel(ctx), r.storage, common.CategoryBlockTimestamps, timestamps); err != nil {
		return fmt.Errorf("failed to persist block timestamps: %w", err)
	}
	return runErr
}

// missingBlocks returns the distinct block numbers not in known, in ascending
// numeric order.
func missingBlocks(blockNumbers []*big.Int, known *common.Set[string]) []*big.Int {
	seen := common.NewSet[string]()
	var out []*big.Int
	for _, bn := range blockNumbers {
		key := bn.String()
		if known.Contains(key) || !seen.Add(key) {
			continue
		}
		out = append(out, new(big.Int).Set(bn))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}
