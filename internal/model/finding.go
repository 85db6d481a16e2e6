package model

import "time"

// FindingType classifies what kind of signal an analysis produced.
type FindingType string

const (
	// FindingThreat marks a record classified as an active threat.
	FindingThreat FindingType = "threat"

	// FindingPattern marks a recurring structure across records.
	FindingPattern FindingType = "pattern"

	// FindingAnomaly marks a deviation from expected behavior.
	FindingAnomaly FindingType = "anomaly"

	// FindingCorrelation marks related activity across sources.
	FindingCorrelation FindingType = "correlation"
)

// Finding is one output of an analysis run.
//
// The finding set for a run is created atomically at the end of the run and
// replaces the previous run's set entirely; findings never accumulate across
// runs. Report history retains findings independently via generated reports.
type Finding struct {
	// ID is stable within a run and derived from the strategy plus an
	// index, e.g. "threat-1" or "pattern-2".
	ID string `json:"id"`

	// Type classifies the finding.
	Type FindingType `json:"type"`

	// Title is a short human-readable headline.
	Title string `json:"title"`

	// Description explains the finding in free text.
	Description string `json:"description"`

	// Severity and Confidence are always set together when the finding is
	// created. Confidence is in [0, 1].
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`

	// Timestamp is the discovery time.
	Timestamp time.Time `json:"timestamp"`

	// Evidence holds the records (or record excerpts) that justify the
	// finding, in order. It may be empty but is never nil.
	Evidence []Record `json:"evidence"`

	// Recommendations are suggested follow-up actions, in order.
	Recommendations []string `json:"recommendations"`
}
