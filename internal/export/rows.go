package export

import (
	"context"
	"fmt"
	"math/big"

	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/storage"
)

// Row is the flat export schema shared by every category. Columns that do
// not apply to a category are left empty. Position is the index of the
// record in its checkpoint stream; unmerged streams may hold several
// otherwise identical records.
type Row struct {
	Position    uint64 `parquet:"position" ch:"position"`
	BlockNumber uint64 `parquet:"block_number" ch:"block_number"`
	TxHash      string `parquet:"tx_hash" ch:"tx_hash"`
	TxType      string `parquet:"tx_type" ch:"tx_type"`
	Sender      string `parquet:"sender" ch:"sender"`
	Recipient   string `parquet:"recipient" ch:"recipient"`
	Account     string `parquet:"account" ch:"account"`
	Amount      string `parquet:"amount" ch:"amount"`
	TxAmount    string `parquet:"tx_amount" ch:"tx_amount"`
	Timestamp   uint64 `parquet:"timestamp" ch:"timestamp"`
}

// LoadRows reads one category from the checkpoint store and flattens it.
func LoadRows(ctx context.Context, s storage.ICheckpointStorage, category common.Category) ([]Row, error) {
	switch category {
	case common.CategoryTxs:
		return convert(storage.Load[common.InternalTxRecord](ctx, s, category), func(r common.InternalTxRecord) Row {
			return Row{TxHash: r.TxHash, TxType: r.TxType, Sender: r.Sender, Recipient: r.Recipient, Amount: r.Amount.String(), TxAmount: r.TxAmount.String()}
		})
	case common.CategoryTransfers, common.CategoryBuffers:
		return convert(storage.Load[common.TransferRecord](ctx, s, category), func(r common.TransferRecord) Row {
			return Row{TxHash: r.TxHash, Sender: r.Sender, Recipient: r.Recipient, Amount: r.Amount.String()}
		})
	case common.CategoryAirdrops, common.CategoryBonus, common.CategoryFunds, common.CategoryGenesisDeposits:
		return convert(storage.Load[common.SimpleEventRecord](ctx, s, category), func(r common.SimpleEventRecord) Row {
			return Row{TxHash: r.TxHash, Account: r.Account, Amount: r.Amount.String()}
		})
	case common.CategoryBlockTimestamps:
		return convert(storage.Load[common.BlockTimestampRecord](ctx, s, category), func(r common.BlockTimestampRecord) Row {
			return Row{Timestamp: r.Timestamp}
		})
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}

func convert[T common.Record](records []T, fn func(T) Row) ([]Row, error) {
	rows := make([]Row, 0, len(records))
	for i, r := range records {
		bn, err := blockNumber(r.GetBlockNumber())
		if err != nil {
			return nil, err
		}
		row := fn(r)
		row.Position = uint64(i)
		row.BlockNumber = bn
		rows = append(rows, row)
	}
	return rows, nil
}

func blockNumber(bn *big.Int) (uint64, error) {
	if bn == nil {
		return 0, nil
	}
	if !bn.IsUint64() {
		return 0, fmt.Errorf("block number %s does not fit in uint64", bn.String())
	}
	return bn.Uint64(), nil
}
