package cmd

import (
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "run the ingestion pass only",
	Long:  "scan the token contract from the last checkpoint up to the current head and persist the classified record streams",
	Run: func(cmd *cobra.Command, args []string) {
		startMetricsServer()
		deps := initDependencies()
		defer deps.Close()
		runPasses(newIngestionPass(deps))
	},
}
