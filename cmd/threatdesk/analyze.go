package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/threatdesk/internal/config"
	"github.com/nao1215/threatdesk/internal/dashboard"
	"github.com/nao1215/threatdesk/internal/log"
	"github.com/nao1215/threatdesk/internal/model"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze security data and compile a report",
		Long: `Analyze ingests the given files as data sources, runs the selected
analysis over every stored record, and compiles the findings into a report.

Supported file formats (selected by extension):
- CSV with a header row (.csv)
- JSON values or arrays (.json)
- XML documents (.xml)
- Plain text, one record per line (.txt)

With no files and no seeded sources, the analysis demonstrates the
heuristics on a built-in sample set.

Examples:
  # Analyze a single log export
  threatdesk analyze firewall.csv

  # Analyze several files with the pattern strategy
  threatdesk analyze -t pattern-analysis access.txt alerts.json

  # Register the config file's sources first, then analyze
  threatdesk analyze --seed

  # Keep only critical findings and write a PDF report
  threatdesk analyze -s critical -f pdf -o reports/weekly.pdf firewall.csv

  # Use a custom configuration file
  threatdesk analyze -c myconfig.yaml --seed

Configuration file (.threatdesk) example:
  defaults:
    type: osint
    status: active
  sources:
    - name: osint-news
      url: "https://feeds.example.com/news"
    - name: edge-firewall
      type: network`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Analysis flags
	cmd.Flags().StringP("type", "t", config.DefaultAnalysisType,
		"Analysis to run (threat-detection, pattern-analysis, anomaly-detection, correlation-analysis)")
	cmd.Flags().StringP("time-range", "r", config.DefaultTimeRange,
		"Time range hint recorded on the analysis run (e.g. 24h, 7d)")
	cmd.Flags().StringP("severity", "s", config.DefaultSeverityFilter,
		"Keep only findings of this severity (all, low, medium, high, critical)")

	// Report flags
	cmd.Flags().String("report-type", config.DefaultReportType,
		"Report narrative (executive-summary, technical-analysis, threat-assessment, incident-report)")
	cmd.Flags().StringP("format", "f", config.DefaultReportFormat,
		"Report encoding (pdf, html, json)")
	cmd.Flags().String("title", "",
		"Report title (default derives from the report type)")
	cmd.Flags().StringP("output", "o", "",
		"Write the encoded report to specified file path (creates directories if needed)")

	// Source seeding flags
	cmd.Flags().BoolP("seed", "S", false,
		"Register the config file's sources and wait for their demo data")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .threatdesk in current, home, or XDG config directory)")

	// Tuning flags
	cmd.Flags().Duration("demo-delay", config.DefaultDemoDelay,
		"Delay before seeded sources populate demo records")
	cmd.Flags().Duration("analysis-delay-min", config.DefaultAnalysisDelayMin,
		"Lower bound of the simulated analysis processing time")
	cmd.Flags().Duration("analysis-delay-max", config.DefaultAnalysisDelayMax,
		"Upper bound of the simulated analysis processing time")
	cmd.Flags().Int64("max-upload-size", config.DefaultMaxUploadSize,
		"Maximum bytes read from a single file")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of files read in parallel")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.AnalysisType, err = cmd.Flags().GetString("type")
	if err != nil {
		return nil, err
	}

	cfg.TimeRange, err = cmd.Flags().GetString("time-range")
	if err != nil {
		return nil, err
	}

	cfg.SeverityFilter, err = cmd.Flags().GetString("severity")
	if err != nil {
		return nil, err
	}

	cfg.ReportType, err = cmd.Flags().GetString("report-type")
	if err != nil {
		return nil, err
	}

	cfg.ReportFormat, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.ReportTitle, err = cmd.Flags().GetString("title")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Seed, err = cmd.Flags().GetBool("seed")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.DemoDelay, err = cmd.Flags().GetDuration("demo-delay")
	if err != nil {
		return nil, err
	}

	cfg.AnalysisDelayMin, err = cmd.Flags().GetDuration("analysis-delay-min")
	if err != nil {
		return nil, err
	}

	cfg.AnalysisDelayMax, err = cmd.Flags().GetDuration("analysis-delay-max")
	if err != nil {
		return nil, err
	}

	cfg.MaxUploadSize, err = cmd.Flags().GetInt64("max-upload-size")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	if err := loadSeeds(cfg); err != nil {
		return nil, err
	}

	// Get positional arguments (files to ingest)
	cfg.Files = args

	return cfg, nil
}

// loadSeeds loads the source list from the configuration file.
// If user explicitly specified a config file path, error if not found.
// If no path specified, silently leave the seed list empty when no file
// is found.
func loadSeeds(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		seeds, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Seeds = seeds
		return nil
	}

	if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Attribute values are sanitized before they reach the output, so source
// credentials from configuration files never leak into logs.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runAnalyze executes the analysis pipeline.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"type", cfg.AnalysisType,
		"files", len(cfg.Files),
		"seed", cfg.Seed,
	)

	d, err := dashboard.New(cfg, dashboard.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}
	defer d.Close()

	p := dashboard.DefaultPipeline(d, dashboard.WithPipelineLogger(logger))

	fmt.Printf("Running %s...\n", cfg.AnalysisType)
	startTime := time.Now()

	run := dashboard.NewRun()
	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	elapsed := time.Since(startTime)

	// Per-file ingest problems are recoverable; report them and keep the
	// results from the files that parsed.
	for _, stepErr := range run.StepErrors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", stepErr)
	}

	if len(cfg.Files) > 0 {
		fmt.Printf("Ingested %d of %d files\n", len(run.Ingested), len(cfg.Files))
	}
	if cfg.Seed {
		fmt.Printf("Registered %d sources from configuration\n", len(run.Seeded))
	}

	fmt.Printf("Analysis completed in %s: %d findings (%s)\n\n",
		elapsed.Round(time.Millisecond), len(run.Findings), formatSeveritySummary(run.Findings))

	return outputReport(ctx, cfg, d, run.Report)
}

// formatSeveritySummary formats per-severity finding counts into a
// human-readable string.
func formatSeveritySummary(findings []model.Finding) string {
	counts := make(map[model.Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}

	var parts []string
	if v := counts[model.SeverityCritical]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := counts[model.SeverityHigh]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := counts[model.SeverityMedium]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := counts[model.SeverityLow]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}

	if len(parts) == 0 {
		return "no findings"
	}
	return strings.Join(parts, " ")
}

// outputReport prints the report narrative to stdout, or writes the encoded
// artifact when an output file is requested.
func outputReport(ctx context.Context, cfg *config.Config, d *dashboard.Dashboard, rep *model.Report) error {
	if cfg.ReportFile == "" {
		fmt.Println(rep.Content)
		return nil
	}

	// The stored artifact carries the encoded document (PDF bytes, HTML,
	// or the JSON bundle), not the plain narrative.
	art, err := d.Artifacts().Resolve(ctx, rep.Handle)
	if err != nil {
		return fmt.Errorf("failed to resolve report artifact: %w", err)
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain sensitive information that should only be
	// readable by the owner
	if err := os.WriteFile(cfg.ReportFile, art.Data, 0600); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	fmt.Printf("Report written to %s (%s, %d bytes, threat level: %s)\n",
		cfg.ReportFile, rep.Format, len(art.Data), rep.Metadata.ThreatLevel)

	return nil
}
