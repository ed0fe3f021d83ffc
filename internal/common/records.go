package common

import (
	"math/big"
)

// Category names a checkpoint stream.
type Category string

const (
	CategoryTxs             Category = "txs"
	CategoryTransfers       Category = "transfers"
	CategoryBuffers         Category = "buffers"
	CategoryAirdrops        Category = "airdrops"
	CategoryBonus           Category = "bonus"
	CategoryFunds           Category = "funds"
	CategoryGenesisDeposits Category = "genesisDeposits"
	CategoryBlockTimestamps Category = "blockTimestamps"
)

// EventCategories are the seven streams produced by the ingestion pass, in persist order.
var EventCategories = []Category{
	CategoryTxs,
	CategoryTransfers,
	CategoryBuffers,
	CategoryAirdrops,
	CategoryBonus,
	CategoryFunds,
	CategoryGenesisDeposits,
}

var AllCategories = append(append([]Category{}, EventCategories...), CategoryBlockTimestamps)

type Record interface {
	GetBlockNumber() *big.Int
	GetTxHash() string
}

type TransferRecord struct {
	BlockNumber *big.Int `json:"blockNumber"`
	TxHash      string   `json:"txHash"`
	Sender      string   `json:"sender"`
	Recipient   string   `json:"recipient"`
	Amount      Amount   `json:"amount"`
}

func (r TransferRecord) GetBlockNumber() *big.Int { return r.BlockNumber }
func (r TransferRecord) GetTxHash() string        { return r.TxHash }

type InternalTxRecord struct {
	BlockNumber *big.Int `json:"blockNumber"`
	TxHash      string   `json:"txHash"`
	TxType      string   `json:"txType"`
	Sender      string   `json:"sender"`
	Recipient   string   `json:"recipient"`
	Amount      Amount   `json:"amount"`
	TxAmount    Amount   `json:"txAmount"`
}

func (r InternalTxRecord) GetBlockNumber() *big.Int { return r.BlockNumber }
func (r InternalTxRecord) GetTxHash() string        { return r.TxHash }

// SimpleEventRecord backs airdrops, bonus, funds and genesis deposits.
type SimpleEventRecord struct {
	BlockNumber *big.Int `json:"blockNumber"`
	TxHash      string   `json:"txHash"`
	Account     string   `json:"account"`
	Amount      Amount   `json:"amount"`
}

func (r SimpleEventRecord) GetBlockNumber() *big.Int { return r.BlockNumber }
func (r SimpleEventRecord) GetTxHash() string        { return r.TxHash }

type BlockTimestampRecord struct {
	BlockNumber *big.Int `json:"blockNumber"`
	Timestamp   uint64   `json:"timestamp"`
}

func (r BlockTimestampRecord) GetBlockNumber() *big.Int { return r.BlockNumber }
func (r BlockTimestampRecord) GetTxHash() string        { return "" }

// Streams holds the seven event streams of one ingestion run.
type Streams struct {
	Txs             []InternalTxRecord
	Transfers       []TransferRecord
	Buffers         []TransferRecord
	Airdrops        []SimpleEventRecord
	Bonus           []SimpleEventRecord
	Funds           []SimpleEventRecord
	GenesisDeposits []SimpleEventRecord
}

// Lengths returns the number of records per category.
func (s *Streams) Lengths() map[Category]int {
	return map[Category]int{
		CategoryTxs:             len(s.Txs),
		CategoryTransfers:       len(s.Transfers),
		CategoryBuffers:         len(s.Buffers),
		CategoryAirdrops:        len(s.Airdrops),
		CategoryBonus:           len(s.Bonus),
		CategoryFunds:           len(s.Funds),
		CategoryGenesisDeposits: len(s.GenesisDeposits),
	}
}

// BlockNumbers returns every block number referenced by the streams, including duplicates.
func (s *Streams) BlockNumbers() []*big.Int {
	out := make([]*big.Int, 0, len(s.Txs)+len(s.Transfers)+len(s.Buffers)+len(s.Airdrops)+len(s.Bonus)+len(s.Funds)+len(s.GenesisDeposits))
	out = appendBlockNumbers(out, s.Txs)
	out = appendBlockNumbers(out, s.Transfers)
	out = appendBlockNumbers(out, s.Buffers)
	out = appendBlockNumbers(out, s.Airdrops)
	out = appendBlockNumbers(out, s.Bonus)
	out = appendBlockNumbers(out, s.Funds)
	out = appendBlockNumbers(out, s.GenesisDeposits)
	return out
}

// LastBlockNumbers returns the block number of the last record of every non-empty stream.
func (s *Streams) LastBlockNumbers() []*big.Int {
	out := []*big.Int{}
	out = appendLast(out, s.Txs)
	out = appendLast(out, s.Transfers)
	out = appendLast(out, s.Buffers)
	out = appendLast(out, s.Airdrops)
	out = appendLast(out, s.Bonus)
	out = appendLast(out, s.Funds)
	out = appendLast(out, s.GenesisDeposits)
	return out
}

func appendBlockNumbers[T Record](out []*big.Int, records []T) []*big.Int {
	for _, r := range records {
		if bn := r.GetBlockNumber(); bn != nil {
			out = append(out, bn)
		}
	}
	return out
}

func appendLast[T Record](out []*big.Int, records []T) []*big.Int {
	if len(records) == 0 {
		return out
	}
	if bn := records[len(records)-1].GetBlockNumber(); bn != nil {
		out = append(out, bn)
	}
	return out
}
