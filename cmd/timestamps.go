package cmd

import (
	"github.com/spf13/cobra"
)

var timestampsCmd = &cobra.Command{
	Use:   "timestamps",
	Short: "run the timestamp pass only",
	Long:  "resolve the timestamp of every block referenced by the persisted record streams that has not been resolved yet",
	Run: func(cmd *cobra.Command, args []string) {
		startMetricsServer()
		deps := initDependencies()
		defer deps.Close()
		runPasses(newTimestampPass(deps))
	},
}
