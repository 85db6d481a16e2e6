package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ThreatDesk.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threatdesk",
		Short: "Security dashboard for log analysis and threat reporting",
		Long: `ThreatDesk ingests security log exports (CSV, JSON, XML, or plain text),
runs heuristic analysis over the normalized records, and compiles the
findings into executive or technical reports.

Data sources can also be registered from a .threatdesk configuration file,
which populates each active source with demonstration records.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewSourcesCmd())
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
