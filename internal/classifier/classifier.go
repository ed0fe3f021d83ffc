package classifier

import (
	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/metrics"
)

const DEFAULT_MERGE_LOOKBACK = 1

// Reducer folds one decoded event into the streams.
type Reducer interface {
	Reduce(streams *common.Streams, event common.Event) error
}

type ReducerFunc func(streams *common.Streams, event common.Event) error

func (f ReducerFunc) Reduce(streams *common.Streams, event common.Event) error {
	return f(streams, event)
}

// Classifier dispatches events to the reducer registered for their kind.
// Events of kinds without a reducer are ignored.
type Classifier struct {
	bufferAccount string
	lookback      int
	reducers      map[common.EventKind]Reducer
}

type Option func(*Classifier)

// WithMergeLookback sets how many trailing records of a stream are eligible
// for a keyed merge, scanned newest first. Values below 1 mean 1.
func WithMergeLookback(n int) Option {
	return func(c *Classifier) {
		if n < 1 {
			n = DEFAULT_MERGE_LOOKBACK
		}
		c.lookback = n
	}
}

func WithReducer(kind common.EventKind, r Reducer) Option {
	return func(c *Classifier) {
		c.reducers[kind] = r
	}
}

func NewClassifier(bufferAccount string, opts ...Option) *Classifier {
	c := &Classifier{
		bufferAccount: bufferAccount,
		lookback:      DEFAULT_MERGE_LOOKBACK,
		reducers:      make(map[common.EventKind]Reducer),
	}
	c.reducers[common.EventKindTransfer] = ReducerFunc(c.reduceTransfer)
	c.reducers[common.EventKindTX] = ReducerFunc(c.reduceTX)
	c.reducers[common.EventKindAirdrop] = simpleReducer(func(s *common.Streams) *[]common.SimpleEventRecord { return &s.Airdrops })
	c.reducers[common.EventKindBonus] = simpleReducer(func(s *common.Streams) *[]common.SimpleEventRecord { return &s.Bonus })
	c.reducers[common.EventKindFund] = simpleReducer(func(s *common.Streams) *[]common.SimpleEventRecord { return &s.Funds })
	c.reducers[common.EventKindDeposit] = simpleReducer(func(s *common.Streams) *[]common.SimpleEventRecord { return &s.GenesisDeposits })
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify applies events in order and returns how many were reduced.
// An event that fails to reduce is logged and skipped.
func (c *Classifier) Classify(streams *common.Streams, events []common.Event) int {
	applied := 0
	for _, event := range events {
		log.Debug().Str("block", blockString(event)).Str("event", string(event.Kind)).Msg("Classifying event")
		reducer, ok := c.reducers[event.Kind]
		if !ok {
			log.Debug().Str("event", string(event.Kind)).Str("tx", event.TxHash).Msg("Ignoring event")
			continue
		}
		if err := reducer.Reduce(streams, event); err != nil {
			log.Error().Err(err).Str("event", string(event.Kind)).Str("tx", event.TxHash).Msg("Failed to reduce event")
			continue
		}
		metrics.EventsProcessed.WithLabelValues(string(event.Kind)).Inc()
		applied++
	}
	return applied
}

func (c *Classifier) reduceTransfer(streams *common.Streams, event common.Event) error {
	sender, err := event.AddressArg("from")
	if err != nil {
		return err
	}
	recipient, err := event.AddressArg("to")
	if err != nil {
		return err
	}
	amount, err := event.AmountArg("value")
	if err != nil {
		return err
	}

	record := common.TransferRecord{
		BlockNumber: event.BlockNumber,
		TxHash:      event.TxHash,
		Sender:      sender,
		Recipient:   recipient,
		Amount:      amount,
	}
	streams.Transfers = append(streams.Transfers, record)

	if c.bufferAccount == "" || (sender != c.bufferAccount && recipient != c.bufferAccount) {
		return nil
	}
	merged := mergeInto(streams.Buffers, c.lookback, func(r *common.TransferRecord) bool {
		return r.TxHash == record.TxHash && r.Sender == record.Sender && r.Recipient == record.Recipient
	}, func(r *common.TransferRecord) {
		r.Amount = r.Amount.Add(amount)
	})
	if !merged {
		streams.Buffers = append(streams.Buffers, record)
	}
	return nil
}

func (c *Classifier) reduceTX(streams *common.Streams, event common.Event) error {
	txType, err := event.UintArg("txType")
	if err != nil {
		return err
	}
	sender, err := event.AddressArg("sender")
	if err != nil {
		return err
	}
	recipient, err := event.AddressArg("recipient")
	if err != nil {
		return err
	}
	amount, err := event.AmountArg("amount")
	if err != nil {
		return err
	}
	txAmount, err := event.AmountArg("txAmount")
	if err != nil {
		return err
	}

	merged := mergeInto(streams.Txs, c.lookback, func(r *common.InternalTxRecord) bool {
		return r.TxHash == event.TxHash && r.TxType == txType && r.Sender == sender && r.Recipient == recipient
	}, func(r *common.InternalTxRecord) {
		r.Amount = r.Amount.Add(amount)
		r.TxAmount = r.TxAmount.Add(txAmount)
	})
	if !merged {
		streams.Txs = append(streams.Txs, common.InternalTxRecord{
			BlockNumber: event.BlockNumber,
			TxHash:      event.TxHash,
			TxType:      txType,
			Sender:      sender,
			Recipient:   recipient,
			Amount:      amount,
			TxAmount:    txAmount,
		})
	}
	return nil
}

func simpleReducer(stream func(*common.Streams) *[]common.SimpleEventRecord) Reducer {
	return ReducerFunc(func(streams *common.Streams, event common.Event) error {
		account, err := event.AddressArg("account")
		if err != nil {
			return err
		}
		amount, err := event.AmountArg("amount")
		if err != nil {
			return err
		}
		target := stream(streams)
		*target = append(*target, common.SimpleEventRecord{
			BlockNumber: event.BlockNumber,
			TxHash:      event.TxHash,
			Account:     account,
			Amount:      amount,
		})
		return nil
	})
}

// mergeInto folds into the newest of the last lookback records that matches.
func mergeInto[T any](records []T, lookback int, match func(*T) bool, merge func(*T)) bool {
	stop := len(records) - lookback
	if stop < 0 {
		stop = 0
	}
	for i := len(records) - 1; i >= stop; i-- {
		if match(&records[i]) {
			merge(&records[i])
			return true
		}
	}
	return false
}

func blockString(event common.Event) string {
	if event.BlockNumber == nil {
		return ""
	}
	return event.BlockNumber.String()
}
