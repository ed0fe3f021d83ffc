package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/contracts"
	"github.com/thirdweb-dev/ledger-indexer/internal/orchestrator"
	"github.com/thirdweb-dev/ledger-indexer/internal/publisher"
	"github.com/thirdweb-dev/ledger-indexer/internal/retry"
	"github.com/thirdweb-dev/ledger-indexer/internal/rpc"
	"github.com/thirdweb-dev/ledger-indexer/internal/storage"
)

// dependencies shared by the ingestion and timestamp passes
type dependencies struct {
	rpc     rpc.IRPCClient
	retrier *retry.Retrier
	storage storage.ICheckpointStorage
	token   *contracts.Decoder
	ido     *contracts.Decoder

	publisher publisher.IPublisher
}

func initDependencies() *dependencies {
	token, ido, err := contracts.LoadFromConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load contract ABIs")
	}

	retrier := retry.NewRetrier(retry.PolicyFromConfig())
	client, err := rpc.Initialize(context.Background(), token.ABI(), retrier)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize RPC")
	}

	store, err := storage.NewCheckpointConnector(&config.Cfg.Storage.Checkpoint)
	if err != nil {
		client.Close()
		log.Fatal().Err(err).Msg("Failed to initialize checkpoint storage")
	}

	return &dependencies{
		rpc:     client,
		retrier: retrier,
		storage: store,
		token:   token,
		ido:     ido,
	}
}

func (d *dependencies) Close() {
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close publisher")
		}
	}
	if err := d.storage.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close checkpoint storage")
	}
	d.rpc.Close()
}

func newIngestionPass(d *dependencies) orchestrator.Pass {
	var opts []orchestrator.PollerOption
	pub, err := publisher.NewKafkaPublisher()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize publisher")
	}
	if pub != nil {
		d.publisher = pub
		opts = append(opts, orchestrator.WithPublisher(pub))
	}

	poller, err := orchestrator.NewPoller(d.rpc, d.retrier, d.storage, d.token, d.ido, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create poller")
	}
	return poller
}

func newTimestampPass(d *dependencies) orchestrator.Pass {
	return orchestrator.NewTimestampResolver(d.rpc, d.retrier, d.storage)
}

func runPasses(passes ...orchestrator.Pass) {
	o := orchestrator.NewOrchestrator(passes...)
	if err := o.Start(); err != nil {
		log.Error().Err(err).Msg("Run failed")
		return
	}
	log.Info().Msg("Run completed")
}
