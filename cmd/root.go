package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	configs "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/env"
	customLogger "github.com/thirdweb-dev/ledger-indexer/internal/log"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "ledger-indexer",
		Short: "Index token and IDO contract events into checkpoint files",
		Long:  "Scans the token contract event history window by window, classifies the events into record streams, then resolves the timestamp of every referenced block.",
		Run: func(cmd *cobra.Command, args []string) {
			startMetricsServer()
			deps := initDependencies()
			defer deps.Close()
			runPasses(newIngestionPass(deps), newTimestampPass(deps))
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC Url of the ledger node")
	rootCmd.PersistentFlags().Float64("rpc-requests-per-second", 0, "Max RPC requests per second, 0 disables rate limiting")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-prettify", false, "Whether to prettify the log output")
	rootCmd.PersistentFlags().String("log-file", "", "Rotating log file to write JSON logs to")
	rootCmd.PersistentFlags().String("token-address", "", "Address of the token contract")
	rootCmd.PersistentFlags().String("token-abi-path", "", "Path to a token contract ABI overriding the embedded one")
	rootCmd.PersistentFlags().String("ido-address", "", "Address of the IDO contract")
	rootCmd.PersistentFlags().String("ido-abi-path", "", "Path to an IDO contract ABI overriding the embedded one")
	rootCmd.PersistentFlags().String("ido-until-block", "0", "Deposit events are only fetched below this block")
	rootCmd.PersistentFlags().String("ingest-from-block", "0", "Block the scan starts after when no checkpoint exists")
	rootCmd.PersistentFlags().Int64("ingest-step", 5000, "Default number of blocks per window")
	rootCmd.PersistentFlags().Int("ingest-window-delay", 200, "Milliseconds to wait between windows")
	rootCmd.PersistentFlags().Int("ingest-merge-lookback", 1, "How many trailing records are considered when merging")
	rootCmd.PersistentFlags().Int("ingest-buffer-account-index", 4, "Index of the buffer account in the contract metadata")
	rootCmd.PersistentFlags().Int("retry-increment", 200, "Milliseconds added to the retry delay after each consecutive failure")
	rootCmd.PersistentFlags().Int("retry-max-attempts", 0, "Max attempts per remote call, 0 retries forever")
	rootCmd.PersistentFlags().String("storage-checkpoint-file-dir", "./mainnet", "Directory holding the checkpoint files")
	rootCmd.PersistentFlags().Bool("publisher-enabled", false, "Toggle publishing new records to Kafka")
	rootCmd.PersistentFlags().String("publisher-kafka-brokers", "", "Kafka brokers for the publisher")
	rootCmd.PersistentFlags().String("publisher-kafka-topic-prefix", "ledger", "Kafka topic prefix for the publisher")
	rootCmd.PersistentFlags().Bool("metrics-enabled", false, "Toggle the Prometheus metrics server")
	rootCmd.PersistentFlags().Int("metrics-port", 2112, "Port of the Prometheus metrics server")
	viper.BindPFlag("rpc.url", rootCmd.PersistentFlags().Lookup("rpc-url"))
	viper.BindPFlag("rpc.requestsPerSecond", rootCmd.PersistentFlags().Lookup("rpc-requests-per-second"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.prettify", rootCmd.PersistentFlags().Lookup("log-prettify"))
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("contracts.token.address", rootCmd.PersistentFlags().Lookup("token-address"))
	viper.BindPFlag("contracts.token.abiPath", rootCmd.PersistentFlags().Lookup("token-abi-path"))
	viper.BindPFlag("contracts.ido.address", rootCmd.PersistentFlags().Lookup("ido-address"))
	viper.BindPFlag("contracts.ido.abiPath", rootCmd.PersistentFlags().Lookup("ido-abi-path"))
	viper.BindPFlag("contracts.ido.untilBlock", rootCmd.PersistentFlags().Lookup("ido-until-block"))
	viper.BindPFlag("ingest.fromBlock", rootCmd.PersistentFlags().Lookup("ingest-from-block"))
	viper.BindPFlag("ingest.step", rootCmd.PersistentFlags().Lookup("ingest-step"))
	viper.BindPFlag("ingest.windowDelay", rootCmd.PersistentFlags().Lookup("ingest-window-delay"))
	viper.BindPFlag("ingest.mergeLookback", rootCmd.PersistentFlags().Lookup("ingest-merge-lookback"))
	viper.BindPFlag("ingest.bufferAccountIndex", rootCmd.PersistentFlags().Lookup("ingest-buffer-account-index"))
	viper.BindPFlag("retry.increment", rootCmd.PersistentFlags().Lookup("retry-increment"))
	viper.BindPFlag("retry.maxAttempts", rootCmd.PersistentFlags().Lookup("retry-max-attempts"))
	viper.BindPFlag("storage.checkpoint.file.dir", rootCmd.PersistentFlags().Lookup("storage-checkpoint-file-dir"))
	viper.BindPFlag("publisher.enabled", rootCmd.PersistentFlags().Lookup("publisher-enabled"))
	viper.BindPFlag("publisher.kafka.brokers", rootCmd.PersistentFlags().Lookup("publisher-kafka-brokers"))
	viper.BindPFlag("publisher.kafka.topicPrefix", rootCmd.PersistentFlags().Lookup("publisher-kafka-topic-prefix"))
	viper.BindPFlag("metrics.enabled", rootCmd.PersistentFlags().Lookup("metrics-enabled"))
	viper.BindPFlag("metrics.port", rootCmd.PersistentFlags().Lookup("metrics-port"))
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(timestampsCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	env.Load()
	if err := configs.LoadConfig(cfgFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	customLogger.InitLogger()
}

func startMetricsServer() {
	if !configs.Cfg.Metrics.Enabled {
		return
	}
	addr := fmt.Sprintf(":%d", configs.Cfg.Metrics.Port)
	log.Info().Msgf("Starting Metrics Server on %s", addr)
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()
}
