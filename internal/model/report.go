package model

import "time"

// ReportType selects the narrative template used to compile a report.
type ReportType string

const (
	// ReportExecutiveSummary is a short overview for decision makers.
	ReportExecutiveSummary ReportType = "executive-summary"

	// ReportTechnicalAnalysis is a detailed write-up for analysts.
	ReportTechnicalAnalysis ReportType = "technical-analysis"

	// ReportThreatAssessment surveys the threat landscape across findings.
	ReportThreatAssessment ReportType = "threat-assessment"

	// ReportIncidentReport documents critical and high findings as an
	// incident record.
	ReportIncidentReport ReportType = "incident-report"
)

// ReportFormat selects the output encoding of a compiled report.
type ReportFormat string

const (
	// FormatPDF paints the narrative onto a paginated document.
	FormatPDF ReportFormat = "pdf"

	// FormatHTML wraps the narrative in a styled HTML document.
	FormatHTML ReportFormat = "html"

	// FormatJSON serializes the report bundle as pretty-printed JSON.
	FormatJSON ReportFormat = "json"
)

// ThreatLevel is the overall classification of a finding set.
type ThreatLevel string

const (
	// ThreatLevelLow indicates no high or critical findings.
	ThreatLevelLow ThreatLevel = "low"

	// ThreatLevelMedium indicates at least one high finding or more than
	// three medium findings.
	ThreatLevelMedium ThreatLevel = "medium"

	// ThreatLevelHigh indicates more than two high findings.
	ThreatLevelHigh ThreatLevel = "high"

	// ThreatLevelCritical indicates at least one critical finding.
	ThreatLevelCritical ThreatLevel = "critical"
)

// OverallThreatLevel classifies a finding set with a strict, ordered
// decision table: critical if any critical finding exists; else high if
// more than two high findings; else medium if at least one high finding or
// more than three medium findings; else low.
func OverallThreatLevel(findings []Finding) ThreatLevel {
	var high, medium int
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			return ThreatLevelCritical
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		}
	}

	switch {
	case high > 2:
		return ThreatLevelHigh
	case high >= 1 || medium > 3:
		return ThreatLevelMedium
	default:
		return ThreatLevelLow
	}
}

// ReportMetadata summarizes what went into a compiled report.
type ReportMetadata struct {
	// AnalysisResultsCount is the number of findings the report covers.
	AnalysisResultsCount int `json:"analysisResultsCount"`

	// DataSourcesCount is the number of distinct sources referenced by the
	// record set. It is computed from record fields, not from the registry,
	// so it can differ from the number of registered sources.
	DataSourcesCount int `json:"dataSourcesCount"`

	// ThreatLevel is the overall classification of the finding set.
	ThreatLevel ThreatLevel `json:"threatLevel"`
}

// Report is one compiled output document.
//
// Once appended to the compiler's history a Report is immutable, and its
// handle stays resolvable for the process lifetime (revoked only when the
// artifact store is torn down).
type Report struct {
	// ID is an opaque unique identifier.
	ID string `json:"id"`

	// Title is the document title.
	Title string `json:"title"`

	// Type is the narrative template the report was compiled from.
	Type ReportType `json:"type"`

	// Format is the encoding of the stored artifact.
	Format ReportFormat `json:"format"`

	// GeneratedAt is the compilation time.
	GeneratedAt time.Time `json:"generatedAt"`

	// Content is the compiled narrative text, kept regardless of the final
	// encoding.
	Content string `json:"content"`

	// Handle is a retrievable reference to the encoded artifact,
	// e.g. "mem://reports/<id>".
	Handle string `json:"handle"`

	// Metadata records the finding count, distinct-source count, and the
	// overall threat level.
	Metadata ReportMetadata `json:"metadata"`
}
