package publisher

import (
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

type Status string

const (
	StatusNew     Status = "new"
	StatusUpdated Status = "updated"
)

type Change struct {
	Record common.Record
	Status Status
}

// Batch holds the records of one category that changed during a run.
type Batch struct {
	Category common.Category
	Changes  []Change
}

// Snapshot captures the stream lengths at load time, plus copies of the
// trailing records that a keyed merge may still modify.
type Snapshot struct {
	lengths map[common.Category]int
	txs     []common.InternalTxRecord
	buffers []common.TransferRecord
}

func TakeSnapshot(streams *common.Streams, lookback int) Snapshot {
	if lookback < 1 {
		lookback = 1
	}
	return Snapshot{
		lengths: streams.Lengths(),
		txs:     tail(streams.Txs, lookback),
		buffers: tail(streams.Buffers, lookback),
	}
}

// Delta returns, per category, the merged records whose amounts changed since
// the snapshot followed by the records appended after it.
func (s Snapshot) Delta(streams *common.Streams) []Batch {
	var batches []Batch
	add := func(category common.Category, changes []Change) {
		if len(changes) > 0 {
			batches = append(batches, Batch{Category: category, Changes: changes})
		}
	}

	txChanges := updatedRecords(streams.Txs, s.lengths[common.CategoryTxs], s.txs, func(before, after common.InternalTxRecord) bool {
		return before.Amount.Cmp(after.Amount) != 0 || before.TxAmount.Cmp(after.TxAmount) != 0
	})
	add(common.CategoryTxs, append(txChanges, appended(streams.Txs, s.lengths[common.CategoryTxs])...))
	add(common.CategoryTransfers, appended(streams.Transfers, s.lengths[common.CategoryTransfers]))
	bufferChanges := updatedRecords(streams.Buffers, s.lengths[common.CategoryBuffers], s.buffers, func(before, after common.TransferRecord) bool {
		return before.Amount.Cmp(after.Amount) != 0
	})
	add(common.CategoryBuffers, append(bufferChanges, appended(streams.Buffers, s.lengths[common.CategoryBuffers])...))
	add(common.CategoryAirdrops, appended(streams.Airdrops, s.lengths[common.CategoryAirdrops]))
	add(common.CategoryBonus, appended(streams.Bonus, s.lengths[common.CategoryBonus]))
	add(common.CategoryFunds, appended(streams.Funds, s.lengths[common.CategoryFunds]))
	add(common.CategoryGenesisDeposits, appended(streams.GenesisDeposits, s.lengths[common.CategoryGenesisDeposits]))
	return batches
}

func tail[T any](records []T, n int) []T {
	start := len(records) - n
	if start < 0 {
		start = 0
	}
	out := make([]T, len(records)-start)
	copy(out, records[start:])
	return out
}

func appended[T common.Record](records []T, loaded int) []Change {
	if loaded >= len(records) {
		return nil
	}
	changes := make([]Change, 0, len(records)-loaded)
	for _, r := range records[loaded:] {
		changes = append(changes, Change{Record: r, Status: StatusNew})
	}
	return changes
}

// updatedRecords compares the snapshotted tail, which ended at index loaded-1,
// against the same positions now.
func updatedRecords[T common.Record](records []T, loaded int, before []T, changed func(before, after T) bool) []Change {
	var changes []Change
	offset := loaded - len(before)
	for i, old := range before {
		idx := offset + i
		if idx < 0 || idx >= len(records) {
			continue
		}
		if changed(old, records[idx]) {
			changes = append(changes, Change{Record: records[idx], Status: StatusUpdated})
		}
	}
	return changes
}
