package main

import (
	"fmt"
	"os"

	"github.com/bryanCE/digtrace/internal/cli"

	"github.com/spf13/cobra"
)

var version = "dev" // Will be set by ldflags during build

func main() {
	rootCmd := &cobra.Command{
		Use:   "digtrace",
		Short: "Iterative trace-mode DNS lookup tool",
		Long: `A diagnostic DNS lookup tool that resolves domains by talking to the
root servers directly and walking the referral chain down to the
authoritative zone, reporting every server contacted along the way.`,
		Version: version,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.NewTraceCommand())
	rootCmd.AddCommand(cli.NewRaceCommand())
	rootCmd.AddCommand(cli.NewBulkCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
