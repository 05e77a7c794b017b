package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for aicleaner.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aicleaner",
		Short: "Clean tabular data with the help of a language model",
		Long: `aicleaner cleans CSV files in a fixed sequence of stages: header
normalization, sparse column and row removal, rare value nulling, per-column
type classification and outlier removal.

Column classification and typo detection are delegated to an
OpenAI-compatible chat API. Set OPENAI_API_KEY (or put it in a .env file) to
enable it. Without a key every stage falls back to mechanical cleaning.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCleanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
