package export

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/storage"
)

type Sink interface {
	Name() string
	Write(ctx context.Context, category common.Category, rows []Row) error
	Close() error
}

// NewSinksFromConfig opens every sink configured under config.Cfg.Export.
func NewSinksFromConfig() ([]Sink, error) {
	var sinks []Sink
	if cfg := config.Cfg.Export.Parquet; cfg != nil && cfg.Dir != "" {
		sink, err := NewParquetSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg := config.Cfg.Export.Clickhouse; cfg != nil && cfg.Host != "" {
		sink, err := NewClickhouseSink(cfg)
		if err != nil {
			closeAll(sinks)
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("no export sink configured")
	}
	return sinks, nil
}

type Exporter struct {
	storage storage.ICheckpointStorage
	sinks   []Sink
}

func NewExporter(store storage.ICheckpointStorage, sinks ...Sink) *Exporter {
	return &Exporter{storage: store, sinks: sinks}
}

// Run writes every category to every sink.
func (e *Exporter) Run(ctx context.Context) error {
	for _, category := range common.AllCategories {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := LoadRows(ctx, e.storage, category)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", category, err)
		}
		for _, sink := range e.sinks {
			if err := sink.Write(ctx, category, rows); err != nil {
				return fmt.Errorf("%s export of %s failed: %w", sink.Name(), category, err)
			}
		}
		log.Info().Str("category", string(category)).Int("rows", len(rows)).Msg("Exported category")
	}
	return nil
}

func (e *Exporter) Close() error {
	closeAll(e.sinks)
	return nil
}

func closeAll(sinks []Sink) {
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			log.Error().Err(err).Str("sink", sink.Name()).Msg("Failed to close export sink")
		}
	}
}
