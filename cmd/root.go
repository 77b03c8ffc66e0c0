package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "etf-momentum",
	Short: "Monthly-rebalanced ETF momentum strategy backtester",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(oosCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
