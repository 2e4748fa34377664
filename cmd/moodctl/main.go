// Package main implements moodctl, an offline runner for the mood analytics
// over a JSON export
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "moodctl",
	Short: "Offline tools for SymptoCare mood data",
	Long: `moodctl runs the SymptoCare analytics over exported mood entries
without a server, a database or an LLM.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(newAnalyzeCmd())
}
