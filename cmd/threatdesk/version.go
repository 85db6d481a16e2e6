package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo is the resolved version triple printed by the version command.
type buildInfo struct {
	version string
	commit  string
	date    string
}

// resolveBuildInfo fills each field from ldflags first, then from the
// binary's embedded build metadata, then from a placeholder. Release builds
// set the ldflags; go-install builds carry module and VCS metadata instead.
func resolveBuildInfo() buildInfo {
	info := buildInfo{version: version, commit: commit, date: date}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.version == "" {
			info.version = bi.Main.Version
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.commit == "" {
					info.commit = shortCommit(setting.Value)
				}
			case "vcs.time":
				if info.date == "" {
					info.date = setting.Value
				}
			}
		}
	}

	if info.version == "" {
		info.version = "(devel)"
	}
	if info.commit == "" {
		info.commit = "unknown"
	}
	if info.date == "" {
		info.date = "unknown"
	}
	return info
}

// shortCommit truncates a full revision hash to the conventional 7
// characters.
func shortCommit(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}
	return revision
}

// getVersion returns the version string for the root command's --version
// flag.
func getVersion() string {
	return resolveBuildInfo().version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of threatdesk.`,
		Run: func(cmd *cobra.Command, _ []string) {
			info := resolveBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "threatdesk version %s\n", info.version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", info.commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", info.date)
		},
	}
}
