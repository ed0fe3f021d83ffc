package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/export"
	"github.com/thirdweb-dev/ledger-indexer/internal/storage"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "export checkpoints to parquet and/or clickhouse",
	Long:  "load every persisted category and write it to the sinks configured under export",
	Run:   RunExport,
}

func init() {
	exportCmd.Flags().String("export-parquet-dir", "", "Directory to write <category>.parquet files to")
	viper.BindPFlag("export.parquet.dir", exportCmd.Flags().Lookup("export-parquet-dir"))
}

func RunExport(cmd *cobra.Command, args []string) {
	store, err := storage.NewCheckpointConnector(&config.Cfg.Storage.Checkpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize checkpoint storage")
	}
	defer store.Close()

	sinks, err := export.NewSinksFromConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize export sinks")
	}
	exporter := export.NewExporter(store, sinks...)
	defer exporter.Close()

	if err := exporter.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("Export failed")
		return
	}
	log.Info().Msg("Export completed")
}
