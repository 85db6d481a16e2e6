package model

import (
	"encoding/json"
	"fmt"
)

// Severity represents the risk level of a finding.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting; the ordering low < medium <
// high < critical is load-bearing (threat-level classification and report
// grouping compare severities). String() and the JSON codec provide the
// lowercase wire form.
type Severity int

const (
	// SeverityLow indicates findings with limited impact that need no
	// immediate action.
	SeverityLow Severity = iota

	// SeverityMedium indicates findings that warrant review, such as
	// services exposed on unusual ports.
	SeverityMedium

	// SeverityHigh indicates findings that should be addressed promptly,
	// such as blocked connections from flagged origins.
	SeverityHigh

	// SeverityCritical indicates findings requiring immediate response,
	// such as malware activity.
	SeverityCritical
)

// severityNames is the wire form of each severity level.
var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// String returns the lowercase name of the severity level.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeverity converts a lowercase severity name into a Severity.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if name == s {
			return sev, nil
		}
	}
	return SeverityLow, fmt.Errorf("unknown severity: %q", s)
}

// MarshalJSON encodes the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a lowercase severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
