package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"time"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/classifier"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/contracts"
	"github.com/thirdweb-dev/ledger-indexer/internal/metrics"
	"github.com/thirdweb-dev/ledger-indexer/internal/publisher"
	"github.com/thirdweb-dev/ledger-indexer/internal/retry"
	"github.com/thirdweb-dev/ledger-indexer/internal/rpc"
	"github.com/thirdweb-dev/ledger-indexer/internal/storage"
)

const DEFAULT_WINDOW_DELAY = 200
const DEFAULT_BUFFER_ACCOUNT_INDEX = 4

const (
	opFetchAllEvents = "fetchAllEvents"
	opFetchIDOEvents = "fetchIDOEvents"
)

// Poller is the ingestion pass: it walks the token contract's logs from the
// resume point to the chain head and folds them into the event streams.
type Poller struct {
	rpc                rpc.IRPCClient
	retrying           *rpc.RetryingClient
	retrier            *retry.Retrier
	storage            storage.ICheckpointStorage
	token              *contracts.Decoder
	ido                *contracts.Decoder
	publisher          publisher.IPublisher
	fromBlock          *big.Int
	idoUntilBlock      *big.Int
	step               int64
	windowDelay        time.Duration
	mergeLookback      int
	bufferAccountIndex int
	sleep              retry.Sleeper
}

type PollerOption func(*Poller)

func WithFromBlock(block *big.Int) PollerOption {
	return func(p *Poller) {
		if block != nil {
			p.fromBlock = new(big.Int).Set(block)
		}
	}
}

func WithIDOUntilBlock(block *big.Int) PollerOption {
	return func(p *Poller) {
		if block != nil {
			p.idoUntilBlock = new(big.Int).Set(block)
		}
	}
}

func WithStep(step int64) PollerOption {
	return func(p *Poller) {
		if step > 0 {
			p.step = step
		}
	}
}

func WithWindowDelay(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.windowDelay = d
	}
}

func WithMergeLookback(n int) PollerOption {
	return func(p *Poller) {
		p.mergeLookback = n
	}
}

func WithBufferAccountIndex(i int) PollerOption {
	return func(p *Poller) {
		p.bufferAccountIndex = i
	}
}

func WithPublisher(pub publisher.IPublisher) PollerOption {
	return func(p *Poller) {
		p.publisher = pub
	}
}

// WithPollerSleeper replaces the inter-window sleep.
func WithPollerSleeper(s retry.Sleeper) PollerOption {
	return func(p *Poller) {
		p.sleep = s
	}
}

// NewPoller reads its defaults from config.Cfg.Ingest and config.Cfg.Contracts.
func NewPoller(client rpc.IRPCClient, retrier *retry.Retrier, store storage.ICheckpointStorage, token *contracts.Decoder, ido *contracts.Decoder, opts ...PollerOption) (*Poller, error) {
	cfg := config.Cfg.Ingest

	fromBlock, err := ParseBlockNumber(cfg.FromBlock)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest.fromBlock: %w", err)
	}
	idoUntilBlock, err := ParseBlockNumber(config.Cfg.Contracts.IDO.UntilBlock)
	if err != nil {
		return nil, fmt.Errorf("invalid contracts.ido.untilBlock: %w", err)
	}

	step := cfg.Step
	if step <= 0 {
		step = DEFAULT_STEP
	}
	// zero is a valid delay and a valid account index
	windowDelay := cfg.WindowDelay
	if windowDelay < 0 {
		windowDelay = DEFAULT_WINDOW_DELAY
	}
	bufferAccountIndex := cfg.BufferAccountIndex
	if bufferAccountIndex < 0 {
		bufferAccountIndex = DEFAULT_BUFFER_ACCOUNT_INDEX
	}

	p := &Poller{
		rpc:                client,
		retrying:           rpc.NewRetryingClient(client, retrier),
		retrier:            retrier,
		storage:            store,
		token:              token,
		ido:                ido,
		fromBlock:          fromBlock,
		idoUntilBlock:      idoUntilBlock,
		step:               step,
		windowDelay:        time.Duration(windowDelay) * time.Millisecond,
		mergeLookback:      cfg.MergeLookback,
		bufferAccountIndex: bufferAccountIndex,
		sleep:              sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Poller) Name() string {
	return "ingestion"
}

// Run processes windows until the head is reached or ctx is cancelled, then
// persists every fully processed window.
func (p *Poller) Run(ctx context.Context) error {
	head, err := p.retrying.GetLatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block number: %w", err)
	}
	metrics.HeadBlock.Set(float64(head.Uint64()))

	metadata, err := p.retrying.GetMetadata(ctx, p.token.Address())
	if err != nil {
		return fmt.Errorf("failed to get token metadata: %w", err)
	}
	bufferAccount, err := metadata.BufferAccount(p.bufferAccountIndex)
	if err != nil {
		return err
	}

	streams := storage.LoadStreams(ctx, p.storage)
	snapshot := publisher.TakeSnapshot(streams, p.mergeLookback)
	from := storage.ResumePoint(p.fromBlock, streams)

	log.Info().
		Str("blockNumber", head.String()).
		Str("buffer", bufferAccount).
		Str("holders", metadata.Holders.String()).
		Str("resumeFrom", from.String()).
		Msg("Starting ingestion")

	cls := classifier.NewClassifier(bufferAccount, classifier.WithMergeLookback(p.mergeLookback))
	scheduler := NewRangeScheduler(from, head, p.step)

	runErr := p.processWindows(ctx, scheduler, cls, streams)

	// completed windows are kept even when the loop was interrupted
	if err := storage.SaveStreams(context.WithoutCancel(ctx), p.storage, streams); err != nil {
		return fmt.Errorf("failed to persist streams: %w", err)
	}
	logCounts(streams)

	if p.publisher != nil {
		if err := p.publisher.Publish(context.WithoutCancel(ctx), snapshot.Delta(streams)); err != nil {
			log.Error().Err(err).Msg("Failed to publish ingested records")
		}
	}

	return runErr
}

func (p *Poller) processWindows(ctx context.Context, scheduler *RangeScheduler, cls *classifier.Classifier, streams *common.Streams) error {
	for !scheduler.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		scheduler.Begin()

		events, err := p.fetchTokenEvents(ctx, scheduler)
		if err != nil {
			return err
		}
		scheduler.ResetStep()

		from, to := scheduler.Window()
		var deposits []common.Event
		if from.Cmp(p.idoUntilBlock) < 0 {
			deposits, err = p.fetchDeposits(ctx, from, to)
			if err != nil {
				return err
			}
		}

		cls.Classify(streams, events)
		cls.Classify(streams, deposits)

		scheduler.Commit()
		metrics.WindowsProcessed.Inc()
		metrics.CursorBlock.Set(float64(to.Uint64()))

		if err := p.sleep(ctx, p.windowDelay); err != nil {
			return err
		}
	}
	return nil
}

// fetchTokenEvents fetches and decodes every log of the token contract in the
// current window. A failure shrinks the window before the retry.
func (p *Poller) fetchTokenEvents(ctx context.Context, scheduler *RangeScheduler) ([]common.Event, error) {
	start := time.Now()
	defer func() {
		metrics.WindowFetchDuration.Observe(time.Since(start).Seconds())
	}()

	return retry.Call(ctx, p.retrier, opFetchAllEvents, func(ctx context.Context) ([]common.Event, error) {
		from, to := scheduler.Window()
		metrics.WindowStep.Set(float64(scheduler.Step().Int64()))
		log.Info().Msgf("fetchAllEvents: #%s - #%s/#%s", from.String(), to.String(), scheduler.Head().String())

		logs, err := p.rpc.GetLogs(ctx, rpc.LogQuery{
			Address:   p.token.Address(),
			FromBlock: from,
			ToBlock:   to,
		})
		if err != nil {
			return nil, err
		}
		return p.token.DecodeLogs(logs)
	}, func(attempt int, err error) {
		scheduler.Shrink()
	})
}

func (p *Poller) fetchDeposits(ctx context.Context, from *big.Int, to *big.Int) ([]common.Event, error) {
	topics, err := p.ido.Topics(string(common.EventKindDeposit))
	if err != nil {
		return nil, err
	}
	return retry.Call(ctx, p.retrier, opFetchIDOEvents, func(ctx context.Context) ([]common.Event, error) {
		log.Info().Msgf("fetchIDOEvents: #%s - #%s", from.String(), to.String())
		logs, err := p.rpc.GetLogs(ctx, rpc.LogQuery{
			Address:   p.ido.Address(),
			Topics:    [][]gethCommon.Hash{topics},
			FromBlock: from,
			ToBlock:   to,
		})
		if err != nil {
			return nil, err
		}
		return p.ido.DecodeLogs(logs)
	})
}

func logCounts(streams *common.Streams) {
	log.Info().
		Int("txs", len(streams.Txs)).
		Int("transfers", len(streams.Transfers)).
		Int("buffers", len(streams.Buffers)).
		Int("airdrops", len(streams.Airdrops)).
		Int("bonus", len(streams.Bonus)).
		Int("funds", len(streams.Funds)).
		Int("genesisDeposits", len(streams.GenesisDeposits)).
		Msg("Ingestion finished")
}

// ParseBlockNumber accepts a decimal or 0x-prefixed block number. Empty means zero.
func ParseBlockNumber(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	n, err := common.ParseUint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid block number %q", s)
	}
	return n, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
