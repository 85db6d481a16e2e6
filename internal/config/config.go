package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/threatdesk/internal/analysis"
	"github.com/nao1215/threatdesk/internal/model"
)

// Default configuration values.
// These match the behavior of a dashboard session started with no flags
// and no configuration file.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "threatdesk"

	// DefaultDemoDelay is how long an active source waits after registration
	// before its synthetic demo records are populated. One second is long
	// enough for subscribers to attach and short enough to feel immediate.
	DefaultDemoDelay = 1 * time.Second

	// DefaultAnalysisDelayMin and DefaultAnalysisDelayMax bound the
	// simulated processing time of an analysis run. The delay is drawn
	// uniformly from this range on every run.
	DefaultAnalysisDelayMin = 1 * time.Second
	DefaultAnalysisDelayMax = 3 * time.Second

	// DefaultAnalysisType is the strategy run when none is requested.
	// Threat detection is the primary dashboard view.
	DefaultAnalysisType = string(analysis.TypeThreatDetection)

	// DefaultTimeRange scopes an analysis run to the trailing day. The
	// range is recorded on the run for observers; strategies do not
	// filter records by it.
	DefaultTimeRange = "24h"

	// DefaultReportType is the narrative template used when none is
	// requested. The executive summary is the shortest and reads well
	// without analyst context.
	DefaultReportType = string(model.ReportExecutiveSummary)

	// DefaultReportFormat is the output encoding used when none is
	// requested. JSON carries the full finding set and needs no viewer.
	DefaultReportFormat = string(model.FormatJSON)

	// DefaultSeverityFilter keeps every finding. Analysis runs filter
	// findings only when a specific severity is requested.
	DefaultSeverityFilter = "all"

	// DefaultMaxUploadSize limits how many bytes are read from a single
	// uploaded file. 5MB covers typical log exports while preventing
	// memory exhaustion from unexpectedly large inputs.
	DefaultMaxUploadSize = 5 * 1024 * 1024 // 5MB

	// DefaultConcurrency of 4 concurrent file reads balances throughput
	// with disk contention when ingesting multiple files.
	DefaultConcurrency = 4
)

// Config holds all configuration options for ThreatDesk.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., AnalysisConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .threatdesk in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// DemoDelay is how long an active source waits after registration
	// before demo records are populated. A value of 0 populates
	// immediately.
	DemoDelay time.Duration

	// AnalysisDelayMin and AnalysisDelayMax bound the simulated processing
	// time of an analysis run. Setting both to 0 disables the delay, which
	// is useful for scripted runs.
	AnalysisDelayMin time.Duration
	AnalysisDelayMax time.Duration

	// AnalysisType is the strategy to run. Must be one of
	// "threat-detection", "pattern-analysis", "anomaly-detection", or
	// "correlation-analysis".
	AnalysisType string

	// TimeRange is an opaque hint recorded on the analysis run, such as
	// "24h" or "7d". Strategies do not filter records by it.
	TimeRange string

	// ReportType is the narrative template to compile. Must be one of
	// "executive-summary", "technical-analysis", "threat-assessment", or
	// "incident-report".
	ReportType string

	// ReportTitle overrides the generated report title. Empty uses the
	// template's own title.
	ReportTitle string

	// ReportFormat is the output encoding. Must be one of "pdf", "html",
	// or "json".
	ReportFormat string

	// SeverityFilter keeps only findings of the named severity. "all" or
	// empty keeps everything.
	SeverityFilter string

	// ReportFile is the output file path for the encoded report.
	// When set, the stored artifact is also written to this file.
	ReportFile string

	// MaxUploadSize is the maximum number of bytes read from a single
	// uploaded file. Set to 0 to use the default (5MB).
	MaxUploadSize int64

	// Concurrency is the number of files read in parallel when ingesting
	// multiple files.
	Concurrency int

	// Files is the list of file paths to ingest as data sources.
	Files []string

	// Seed registers the configuration file's source list before the
	// analysis runs and waits for their demo data.
	Seed bool

	// Seeds holds the data sources to register at startup, loaded from
	// the configuration file. This is populated by LoadConfigFile.
	Seeds *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., delays, report
// selection). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DemoDelay:        DefaultDemoDelay,
		AnalysisDelayMin: DefaultAnalysisDelayMin,
		AnalysisDelayMax: DefaultAnalysisDelayMax,
		AnalysisType:     DefaultAnalysisType,
		TimeRange:        DefaultTimeRange,
		ReportType:       DefaultReportType,
		ReportFormat:     DefaultReportFormat,
		SeverityFilter:   DefaultSeverityFilter,
		MaxUploadSize:    DefaultMaxUploadSize,
		Concurrency:      DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for ThreatDesk.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/threatdesk
// On macOS: ~/Library/Application Support/threatdesk
// On Windows: %LOCALAPPDATA%\threatdesk
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ThreatDesk.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/threatdesk
// On macOS: ~/Library/Application Support/threatdesk
// On Windows: %APPDATA%\threatdesk
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for ThreatDesk.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/threatdesk
// On macOS: ~/Library/Caches/threatdesk
// On Windows: %LOCALAPPDATA%\threatdesk\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any processing begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// Demo population can be immediate but never scheduled in the past
	if c.DemoDelay < 0 {
		return ErrInvalidDemoDelay
	}

	// The analysis delay range must be well-formed
	if c.AnalysisDelayMin < 0 || c.AnalysisDelayMax < c.AnalysisDelayMin {
		return ErrInvalidAnalysisDelay
	}

	// The analysis type must name a registered strategy
	switch analysis.Type(c.AnalysisType) {
	case analysis.TypeThreatDetection, analysis.TypePatternAnalysis,
		analysis.TypeAnomalyDetection, analysis.TypeCorrelationAnalysis:
	default:
		return ErrInvalidAnalysisType
	}

	// The report type must name a known narrative template
	switch model.ReportType(c.ReportType) {
	case model.ReportExecutiveSummary, model.ReportTechnicalAnalysis,
		model.ReportThreatAssessment, model.ReportIncidentReport:
	default:
		return ErrInvalidReportType
	}

	// The report format must name a known encoder
	switch model.ReportFormat(c.ReportFormat) {
	case model.FormatPDF, model.FormatHTML, model.FormatJSON:
	default:
		return ErrInvalidReportFormat
	}

	// The severity filter is either pass-through or a known severity
	if c.SeverityFilter != "" && c.SeverityFilter != "all" {
		if _, err := model.ParseSeverity(c.SeverityFilter); err != nil {
			return ErrInvalidSeverityFilter
		}
	}

	// MaxUploadSize must be non-negative; 0 means use the default
	if c.MaxUploadSize < 0 {
		return ErrInvalidMaxUploadSize
	}

	// Concurrency must be positive; zero would mean no ingestion
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	return nil
}
