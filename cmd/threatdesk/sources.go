package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nao1215/threatdesk/internal/config"
	"github.com/nao1215/threatdesk/internal/dashboard"
	"github.com/spf13/cobra"
)

// NewSourcesCmd creates the sources command.
// This command registers data sources and lists the resulting registry.
func NewSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources [file...]",
		Short: "Register data sources and list the registry",
		Long: `Sources ingests the given files as data sources, optionally registers the
sources declared in the configuration file, and lists every registered
source with its record count.

Seeded sources marked active are populated with demonstration records;
the listing waits for that population to finish.

Examples:
  # Ingest two files and list them
  threatdesk sources firewall.csv access.txt

  # Register the config file's sources and list them
  threatdesk sources --seed

  # Combine uploads with seeded sources
  threatdesk sources --seed firewall.csv

  # List sources as JSON
  threatdesk sources --json --seed

  # Skip the demo population delay
  threatdesk sources --seed --demo-delay 0`,
		Args: cobra.ArbitraryArgs,
		RunE: runSourcesCmd,
	}

	// Source registration flags
	cmd.Flags().BoolP("seed", "S", false,
		"Register the config file's sources and wait for their demo data")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .threatdesk in current, home, or XDG config directory)")
	cmd.Flags().Duration("demo-delay", config.DefaultDemoDelay,
		"Delay before seeded sources populate demo records")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the source listing in JSON format")

	return cmd
}

// sourceRow is one line of the JSON source listing.
type sourceRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	URL         string    `json:"url,omitempty"`
	Status      string    `json:"status"`
	Records     int       `json:"records"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// runSourcesCmd executes the sources command.
func runSourcesCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()

	var err error

	cfg.Seed, err = cmd.Flags().GetBool("seed")
	if err != nil {
		return err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg.DemoDelay, err = cmd.Flags().GetDuration("demo-delay")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	if err := loadSeeds(cfg); err != nil {
		return err
	}
	cfg.Files = args

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	ctx := context.Background()

	d, err := dashboard.New(cfg, dashboard.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}
	defer d.Close()

	p := dashboard.NewPipeline(dashboard.WithPipelineLogger(logger))
	if len(cfg.Files) > 0 {
		p.AddStep(dashboard.NewIngestStep(d, cfg.Files))
	}
	if cfg.Seed {
		p.AddStep(dashboard.NewSeedStep(d, true))
	}

	run := dashboard.NewRun()
	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("source registration failed: %w", err)
	}
	for _, stepErr := range run.StepErrors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", stepErr)
	}

	// Progress goes to stderr in JSON mode so stdout stays parseable
	progress := io.Writer(os.Stdout)
	if jsonOutput {
		progress = os.Stderr
	}
	if len(cfg.Files) > 0 {
		fmt.Fprintf(progress, "Ingested %d of %d files\n", len(run.Ingested), len(cfg.Files))
	}
	if cfg.Seed {
		fmt.Fprintf(progress, "Registered %d sources from configuration\n", len(run.Seeded))
	}

	rows := collectSourceRows(d)
	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	}

	printSourceTable(rows)
	return nil
}

// collectSourceRows snapshots the registry into listing rows with record
// counts, in registration order.
func collectSourceRows(d *dashboard.Dashboard) []sourceRow {
	sources := d.Registry().Sources()
	rows := make([]sourceRow, 0, len(sources))
	for _, source := range sources {
		records, err := d.Registry().SourceData(source.ID)
		if err != nil {
			records = nil
		}
		rows = append(rows, sourceRow{
			ID:          source.ID,
			Name:        source.Name,
			Type:        string(source.Type),
			URL:         source.URL,
			Status:      string(source.Status),
			Records:     len(records),
			LastUpdated: source.LastUpdated,
		})
	}
	return rows
}

// printSourceTable prints the source listing as a human-readable table.
func printSourceTable(rows []sourceRow) {
	if len(rows) == 0 {
		fmt.Println("No data sources registered.")
		fmt.Println("\nUse 'threatdesk sources <file>...' to ingest files as sources.")
		fmt.Println("Use 'threatdesk sources --seed' to register sources from a configuration file.")
		return
	}

	fmt.Printf("Data sources (%d):\n\n", len(rows))
	fmt.Printf("  %-24s  %-8s  %-8s  %7s  %s\n", "Name", "Type", "Status", "Records", "Last Updated")
	fmt.Println("  " + strings.Repeat("-", 72))

	totalRecords := 0
	for _, row := range rows {
		fmt.Printf("  %-24s  %-8s  %-8s  %7d  %s\n",
			row.Name,
			row.Type,
			row.Status,
			row.Records,
			row.LastUpdated.Format("2006-01-02 15:04:05"),
		)
		totalRecords += row.Records
	}

	fmt.Printf("\n%d records stored across %d sources.\n", totalRecords, len(rows))
	fmt.Println("Use 'threatdesk analyze' to run an analysis over the stored records.")
}
