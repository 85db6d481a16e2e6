package analysis

import (
	"context"
	"time"

	"github.com/nao1215/threatdesk/internal/model"
)

// The pattern, anomaly, and correlation strategies return fixed catalogs of
// demonstrative findings rather than computed detections. Their evidence is
// sliced from the input record set, so evidence size tracks input size, but
// the narrative content never changes.

// PatternAnalysis reports recurring structures across records.
type PatternAnalysis struct{}

// NewPatternAnalysis creates the pattern-analysis strategy.
func NewPatternAnalysis() *PatternAnalysis {
	return &PatternAnalysis{}
}

// Name returns the analysis type this strategy serves.
func (p *PatternAnalysis) Name() Type {
	return TypePatternAnalysis
}

// Run returns the fixed pattern catalog.
func (p *PatternAnalysis) Run(_ context.Context, records []model.Record) ([]model.Finding, error) {
	now := time.Now()
	return []model.Finding{
		{
			ID:          "pattern-1",
			Type:        model.FindingPattern,
			Title:       "Recurring Access Pattern",
			Description: "The same origin repeatedly accessed monitored assets at regular intervals",
			Severity:    model.SeverityMedium,
			Confidence:  0.81,
			Timestamp:   now,
			Evidence:    evidenceSlice(records, 5),
			Recommendations: []string{
				"Correlate the recurring origin with asset ownership records",
				"Add a rate alert for the recurring origin",
			},
		},
		{
			ID:          "pattern-2",
			Type:        model.FindingPattern,
			Title:       "Sequential Scanning Pattern",
			Description: "Destination ports were probed in ascending sequence across monitored hosts",
			Severity:    model.SeverityHigh,
			Confidence:  0.88,
			Timestamp:   now,
			Evidence:    evidenceSlice(records, 3),
			Recommendations: []string{
				"Throttle connections from the scanning origin",
				"Check exposed services on the probed ports for weak configurations",
			},
		},
	}, nil
}

// AnomalyDetection reports deviations from expected behavior.
type AnomalyDetection struct{}

// NewAnomalyDetection creates the anomaly-detection strategy.
func NewAnomalyDetection() *AnomalyDetection {
	return &AnomalyDetection{}
}

// Name returns the analysis type this strategy serves.
func (a *AnomalyDetection) Name() Type {
	return TypeAnomalyDetection
}

// Run returns the fixed anomaly catalog.
func (a *AnomalyDetection) Run(_ context.Context, records []model.Record) ([]model.Finding, error) {
	now := time.Now()
	return []model.Finding{
		{
			ID:          "anomaly-1",
			Type:        model.FindingAnomaly,
			Title:       "Traffic Volume Anomaly",
			Description: "Observed traffic volume deviates sharply from the rolling baseline",
			Severity:    model.SeverityMedium,
			Confidence:  0.76,
			Timestamp:   now,
			Evidence:    evidenceSlice(records, 4),
			Recommendations: []string{
				"Compare the spike window against scheduled batch jobs",
				"Capture a traffic sample for offline inspection",
			},
		},
		{
			ID:          "anomaly-2",
			Type:        model.FindingAnomaly,
			Title:       "Off-Hours Activity Spike",
			Description: "Activity clustered outside the usual operating window",
			Severity:    model.SeverityHigh,
			Confidence:  0.83,
			Timestamp:   now,
			Evidence:    evidenceSlice(records, 3),
			Recommendations: []string{
				"Verify scheduled maintenance accounts for the off-hours window",
				"Require re-authentication for sessions opened in the window",
			},
		},
	}, nil
}

// CorrelationAnalysis reports related activity across sources.
type CorrelationAnalysis struct{}

// NewCorrelationAnalysis creates the correlation-analysis strategy.
func NewCorrelationAnalysis() *CorrelationAnalysis {
	return &CorrelationAnalysis{}
}

// Name returns the analysis type this strategy serves.
func (c *CorrelationAnalysis) Name() Type {
	return TypeCorrelationAnalysis
}

// Run returns the fixed correlation catalog.
func (c *CorrelationAnalysis) Run(_ context.Context, records []model.Record) ([]model.Finding, error) {
	return []model.Finding{
		{
			ID:          "correlation-1",
			Type:        model.FindingCorrelation,
			Title:       "Cross-Source Activity Correlation",
			Description: "Related indicators appeared in multiple independent sources within a short window",
			Severity:    model.SeverityHigh,
			Confidence:  0.87,
			Timestamp:   time.Now(),
			Evidence:    evidenceSlice(records, 6),
			Recommendations: []string{
				"Pivot on the shared indicators across the contributing sources",
				"Raise the monitoring priority of the correlated assets",
			},
		},
	}, nil
}

// evidenceSlice copies up to max leading records as finding evidence. The
// returned slice is never nil.
func evidenceSlice(records []model.Record, max int) []model.Record {
	if len(records) < max {
		max = len(records)
	}
	out := make([]model.Record, 0, max)
	for _, rec := range records[:max] {
		out = append(out, rec.Clone())
	}
	return out
}
