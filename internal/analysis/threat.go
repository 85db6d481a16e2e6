package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/threatdesk/internal/model"
)

// threatSourceDenylist holds the source addresses that always flag a record.
var threatSourceDenylist = map[string]struct{}{
	"192.168.1.100": {},
	"10.0.0.50":     {},
	"172.16.0.25":   {},
}

// threatKeywords flag a record when its text mentions any of them,
// case-insensitively.
var threatKeywords = []string{
	"suspicious",
	"malicious",
	"attack",
	"breach",
	"vulnerability",
}

// commonPorts is the allowlist of expected service ports; any other port
// marks a record as using an unusual port.
var commonPorts = map[int]struct{}{
	80: {}, 443: {}, 22: {}, 21: {}, 25: {},
	53: {}, 110: {}, 143: {}, 993: {}, 995: {},
}

// spotCheckChance is the probability that rule (e) flags an otherwise
// clean record.
const spotCheckChance = 0.1

// Constant recommendations appended to every computed threat finding.
var threatFallbackRecommendations = []string{
	"Continue monitoring for related activity",
	"Update detection signatures to cover this pattern",
}

// ThreatDetection classifies individual records as threats with a fixed
// rule set, checked in order: denylisted source address, flagged keyword in
// the record text, unusual port, malware type tag, and finally a uniform
// random spot check for records no deterministic rule matched.
//
// Design decision: The random branch is deliberate demo behavior, not
// noise to remove. It keeps the dashboard lively on clean data. The draw
// is injectable so tests can pin either outcome.
type ThreatDetection struct {
	rand func() float64
}

// ThreatOption configures a ThreatDetection strategy.
type ThreatOption func(*ThreatDetection)

// WithRandomSource sets the uniform [0,1) source used for the spot-check
// branch and confidence draws.
func WithRandomSource(fn func() float64) ThreatOption {
	return func(t *ThreatDetection) {
		t.rand = fn
	}
}

// NewThreatDetection creates the threat-detection strategy.
func NewThreatDetection(opts ...ThreatOption) *ThreatDetection {
	t := &ThreatDetection{}
	for _, opt := range opts {
		opt(t)
	}
	if t.rand == nil {
		t.rand = lockedFloat64(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return t
}

// Name returns the analysis type this strategy serves.
func (t *ThreatDetection) Name() Type {
	return TypeThreatDetection
}

// Run classifies each record against the rule set. When no record matches,
// it returns the three canned sample findings instead of an empty set;
// report narratives assume at least demo content exists.
func (t *ThreatDetection) Run(_ context.Context, records []model.Record) ([]model.Finding, error) {
	var findings []model.Finding
	for _, record := range records {
		signals := t.evaluate(record)
		if len(signals) == 0 {
			continue
		}

		reasons := make([]string, 0, len(signals))
		recommendations := make([]string, 0, len(signals)+len(threatFallbackRecommendations))
		for _, sig := range signals {
			reasons = append(reasons, sig.reason)
			recommendations = append(recommendations, sig.recommendation)
		}
		recommendations = append(recommendations, threatFallbackRecommendations...)

		findings = append(findings, model.Finding{
			ID:              fmt.Sprintf("threat-%d", len(findings)+1),
			Type:            model.FindingThreat,
			Title:           "Potential Threat Detected",
			Description:     "Record flagged: " + strings.Join(reasons, "; "),
			Severity:        threatSeverity(record),
			Confidence:      0.7 + t.rand()*0.3,
			Timestamp:       time.Now(),
			Evidence:        []model.Record{record.Clone()},
			Recommendations: recommendations,
		})
	}

	if len(findings) == 0 {
		return sampleThreatFindings(), nil
	}
	return findings, nil
}

// threatSignal is one matched rule: why the record was flagged and what to
// do about it.
type threatSignal struct {
	reason         string
	recommendation string
}

// evaluate applies the deterministic rules in order and collects every
// match. The random spot check runs only when no deterministic rule
// matched.
func (t *ThreatDetection) evaluate(record model.Record) []threatSignal {
	var signals []threatSignal

	if ip, ok := record.GetString("sourceIP"); ok {
		if _, listed := threatSourceDenylist[ip]; listed {
			signals = append(signals, threatSignal{
				reason:         fmt.Sprintf("source address %s is on the denylist", ip),
				recommendation: fmt.Sprintf("Block traffic from %s at the perimeter firewall", ip),
			})
		}
	}

	text := strings.ToLower(record.Text())
	for _, keyword := range threatKeywords {
		if strings.Contains(text, keyword) {
			signals = append(signals, threatSignal{
				reason:         fmt.Sprintf("content mentions %q", keyword),
				recommendation: "Review the originating feed entry for confirmed indicators",
			})
			break
		}
	}

	if port, ok := recordPort(record); ok {
		if _, common := commonPorts[port]; !common {
			signals = append(signals, threatSignal{
				reason:         fmt.Sprintf("port %d is outside the common service ports", port),
				recommendation: fmt.Sprintf("Audit the service listening on port %d", port),
			})
		}
	}

	if kind, ok := record.GetString("type"); ok && kind == "malware" {
		signals = append(signals, threatSignal{
			reason:         "record is tagged as malware",
			recommendation: "Isolate affected hosts and collect samples for analysis",
		})
	}

	if len(signals) == 0 && t.rand() < spotCheckChance {
		signals = append(signals, threatSignal{
			reason:         "flagged by random spot check",
			recommendation: "Schedule a manual review of this record",
		})
	}

	return signals
}

// threatSeverity grades a flagged record with a fixed, ordered decision
// table over its fields.
func threatSeverity(record model.Record) model.Severity {
	kind, _ := record.GetString("type")
	inputSeverity, _ := record.GetString("severity")
	status, _ := record.GetString("status")

	switch {
	case kind == "malware" || inputSeverity == "high":
		return model.SeverityCritical
	case status == "blocked" || inputSeverity == "medium":
		return model.SeverityHigh
	case hasUnusualPort(record):
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// hasUnusualPort reports whether the record carries a port outside the
// common-port allowlist.
func hasUnusualPort(record model.Record) bool {
	port, ok := recordPort(record)
	if !ok {
		return false
	}
	_, common := commonPorts[port]
	return !common
}

// recordPort extracts a port from numeric or numeric-string form. CSV
// normalization produces string fields, so both shapes occur in practice.
func recordPort(record model.Record) (int, bool) {
	if n, ok := record.GetNumber("port"); ok {
		return int(n), true
	}
	if s, ok := record.GetString("port"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// sampleThreatFindings is the fixed fallback set returned when no record
// matched any rule.
func sampleThreatFindings() []model.Finding {
	now := time.Now()
	return []model.Finding{
		{
			ID:          "threat-sample-1",
			Type:        model.FindingThreat,
			Title:       "Suspicious Network Activity",
			Description: "Multiple connection attempts from known malicious IP addresses",
			Severity:    model.SeverityHigh,
			Confidence:  0.85,
			Timestamp:   now,
			Evidence:    []model.Record{},
			Recommendations: []string{
				"Block the source addresses at the perimeter",
				"Increase monitoring of the affected segments",
			},
		},
		{
			ID:          "threat-sample-2",
			Type:        model.FindingThreat,
			Title:       "Malware Communication Detected",
			Description: "Outbound traffic to known command-and-control infrastructure",
			Severity:    model.SeverityCritical,
			Confidence:  0.92,
			Timestamp:   now,
			Evidence:    []model.Record{},
			Recommendations: []string{
				"Isolate the affected hosts immediately",
				"Run a full malware scan on the affected systems",
			},
		},
		{
			ID:          "threat-sample-3",
			Type:        model.FindingThreat,
			Title:       "Unusual Port Activity",
			Description: "Services communicating over non-standard ports",
			Severity:    model.SeverityMedium,
			Confidence:  0.78,
			Timestamp:   now,
			Evidence:    []model.Record{},
			Recommendations: []string{
				"Audit services listening on non-standard ports",
				"Verify firewall rules cover the observed ports",
			},
		},
	}
}
