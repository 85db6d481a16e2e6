package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrInvalidDemoDelay is returned when the demo population delay is
	// negative. Use 0 to populate demo records immediately.
	ErrInvalidDemoDelay = errors.New("invalid demo delay: must be non-negative")

	// ErrInvalidAnalysisDelay is returned when the analysis delay range is
	// malformed: a negative minimum, or a maximum below the minimum.
	ErrInvalidAnalysisDelay = errors.New("invalid analysis delay range: minimum must be non-negative and not exceed the maximum")

	// ErrInvalidAnalysisType is returned when the analysis type names no
	// registered strategy.
	ErrInvalidAnalysisType = errors.New("invalid analysis type: must be one of threat-detection, pattern-analysis, anomaly-detection, correlation-analysis")

	// ErrInvalidReportType is returned when the report type names no known
	// narrative template.
	ErrInvalidReportType = errors.New("invalid report type: must be one of executive-summary, technical-analysis, threat-assessment, incident-report")

	// ErrInvalidReportFormat is returned when the report format names no
	// known encoder.
	ErrInvalidReportFormat = errors.New("invalid report format: must be one of pdf, html, json")

	// ErrInvalidSeverityFilter is returned when the severity filter is
	// neither "all", empty, nor a known severity name.
	ErrInvalidSeverityFilter = errors.New("invalid severity filter: must be all, low, medium, high, or critical")

	// ErrInvalidMaxUploadSize is returned when the max upload size is
	// negative. Use 0 to apply the default limit.
	ErrInvalidMaxUploadSize = errors.New("invalid max upload size: must be non-negative")

	// ErrInvalidConcurrency is returned when the ingestion concurrency is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
)
