package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/nao1215/markdown"

	"github.com/nao1215/threatdesk/internal/model"
)

// Narrative sizing. Detail sections list at most maxDetailFindings
// findings; recommendation lists are capped per template so an executive
// summary stays short while a technical write-up can go deeper.
const (
	maxDetailFindings            = 10
	maxExecutiveRecommendations  = 5
	maxTechnicalRecommendations  = 8
	maxAssessmentRecommendations = 6
	maxIncidentRecommendations   = 6
	maxIndicators                = 8
)

// buildNarrative compiles the markdown narrative for one report. The
// builders restrict themselves to headers, bullet and numbered lists, bold
// spans, and plain paragraphs so the HTML and PDF encoders can render every
// construct they emit.
func buildNarrative(typ model.ReportType, title string, meta model.ReportMetadata, findings []model.Finding, records []model.Record) (string, error) {
	switch typ {
	case model.ReportExecutiveSummary:
		return executiveSummary(title, meta, findings), nil
	case model.ReportTechnicalAnalysis:
		return technicalAnalysis(title, meta, findings, records), nil
	case model.ReportThreatAssessment:
		return threatAssessment(title, meta, findings), nil
	case model.ReportIncidentReport:
		return incidentReport(title, meta, findings), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReportType, string(typ))
	}
}

// executiveSummary is a short overview for decision makers: what was
// analyzed, what stood out, and what to do about it.
func executiveSummary(title string, meta model.ReportMetadata, findings []model.Finding) string {
	md := markdown.NewMarkdown(io.Discard)

	md.H1(title)
	md.PlainText("")
	md.H2("Overview")
	md.PlainTextf("The analysis run produced %d findings across %d distinct data sources.",
		meta.AnalysisResultsCount, meta.DataSourcesCount)
	md.PlainTextf("The overall threat level is **%s**.", meta.ThreatLevel)
	md.PlainText("")

	md.H2("Key Findings")
	writeFindingList(md, findings)
	md.PlainText("")

	md.H2("Risk Posture")
	writeSeveritySentence(md, findings, meta.ThreatLevel)
	md.PlainText("")

	md.H2("Recommendations")
	writeRecommendationList(md, findings, maxExecutiveRecommendations)

	return md.String()
}

// technicalAnalysis is the analyst-facing write-up: how the run worked,
// what it looked at, and the indicators it surfaced.
func technicalAnalysis(title string, meta model.ReportMetadata, findings []model.Finding, records []model.Record) string {
	md := markdown.NewMarkdown(io.Discard)

	md.H1(title)
	md.PlainText("")
	md.H2("Methodology")
	md.PlainText("Records were evaluated by rule-based analysis passes, in order:")
	md.PlainText("")
	md.PlainText("1. Threat detection against address denylists, keyword lists, and service-port baselines")
	md.PlainText("2. Pattern analysis across recurring record structures")
	md.PlainText("3. Anomaly detection against expected volume and timing")
	md.PlainText("4. Correlation of related activity across sources")
	md.PlainText("")

	md.H2("Data Sources")
	md.PlainTextf("The record set spans %d records referencing %d distinct sources.",
		len(records), meta.DataSourcesCount)
	md.PlainText("")

	md.H2("Findings")
	writeFindingList(md, findings)
	md.PlainText("")

	md.H2("Indicators of Compromise")
	writeIndicatorList(md, findings)
	md.PlainText("")

	md.H2("Mitigations")
	writeRecommendationList(md, findings, maxTechnicalRecommendations)

	return md.String()
}

// threatAssessment surveys the landscape across the full finding set.
func threatAssessment(title string, meta model.ReportMetadata, findings []model.Finding) string {
	md := markdown.NewMarkdown(io.Discard)

	md.H1(title)
	md.PlainText("")
	md.H2("Threat Landscape")
	md.PlainTextf("The current landscape is rated **%s** based on %d findings from %d distinct sources.",
		meta.ThreatLevel, meta.AnalysisResultsCount, meta.DataSourcesCount)
	md.PlainText("")

	md.H2("Finding Categories")
	writeCategoryList(md, findings)
	md.PlainText("")

	md.H2("Severity Distribution")
	writeSeverityList(md, findings)
	md.PlainText("")

	md.H2("Attack Vectors")
	writeIndicatorList(md, findings)
	md.PlainText("")

	md.H2("Actor Notes")
	md.PlainText("Observed activity is consistent with opportunistic scanning and commodity tooling.")
	md.PlainText("No attribution to a named actor is made at the current confidence level.")
	md.PlainText("")

	md.H2("Recommended Defenses")
	writeRecommendationList(md, findings, maxAssessmentRecommendations)

	return md.String()
}

// incidentReport documents the critical and high findings as an incident
// record. Lower severities are out of scope for this template.
func incidentReport(title string, meta model.ReportMetadata, findings []model.Finding) string {
	incidents := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity >= model.SeverityHigh {
			incidents = append(incidents, f)
		}
	}

	md := markdown.NewMarkdown(io.Discard)

	md.H1(title)
	md.PlainText("")
	md.H2("Incident Summary")
	md.PlainTextf("Of %d findings in the analysis run, %d met the incident threshold (high or critical severity).",
		meta.AnalysisResultsCount, len(incidents))
	md.PlainTextf("The overall threat level is **%s**.", meta.ThreatLevel)
	md.PlainText("")

	md.H2("Timeline")
	if len(incidents) == 0 {
		md.PlainText("No incident-level findings were recorded.")
	}
	for i, f := range incidents {
		md.PlainTextf("%d. %s **%s** (%s): %s",
			i+1, f.Timestamp.Format("15:04:05"), f.Title, f.Severity, f.Description)
	}
	md.PlainText("")

	md.H2("Impact Assessment")
	writeSeveritySentence(md, incidents, meta.ThreatLevel)
	md.PlainText("")

	md.H2("Response Actions")
	writeRecommendationList(md, incidents, maxIncidentRecommendations)
	md.PlainText("")

	md.H2("Lessons Learned")
	md.BulletList(
		"Detection rules flagged the activity without manual triage",
		"Source coverage should be reviewed for blind spots between feeds",
		"Evidence retention made the flagged records available for this report",
	)
	md.PlainText("")

	md.H2("Next Steps")
	md.PlainText("1. Confirm containment of every address and host named in the timeline")
	md.PlainText("2. Re-run the analysis after remediation to verify the threat level drops")
	md.PlainText("3. Archive this report with the incident ticket")

	return md.String()
}

// writeFindingList renders up to maxDetailFindings findings as bullets,
// highest severity first.
func writeFindingList(md *markdown.Markdown, findings []model.Finding) {
	top := topFindings(findings, maxDetailFindings)
	if len(top) == 0 {
		md.PlainText("The analysis run produced no findings.")
		return
	}
	items := make([]string, 0, len(top))
	for _, f := range top {
		items = append(items, fmt.Sprintf("**%s** (%s, confidence %.0f%%): %s",
			f.Title, f.Severity, f.Confidence*100, f.Description))
	}
	md.BulletList(items...)
}

// writeRecommendationList renders deduplicated recommendations as a
// numbered list, capped at max.
func writeRecommendationList(md *markdown.Markdown, findings []model.Finding, max int) {
	recs := collectRecommendations(findings, max)
	if len(recs) == 0 {
		md.PlainText("Maintain the current monitoring posture.")
		return
	}
	for i, rec := range recs {
		md.PlainTextf("%d. %s", i+1, rec)
	}
}

// writeIndicatorList renders the distinct indicators extracted from the
// finding evidence.
func writeIndicatorList(md *markdown.Markdown, findings []model.Finding) {
	indicators := extractIndicators(findings, maxIndicators)
	if len(indicators) == 0 {
		md.PlainText("No concrete indicators were extracted from the evidence.")
		return
	}
	md.BulletList(indicators...)
}

// writeCategoryList renders per-category finding counts as bullets, in the
// fixed category order.
func writeCategoryList(md *markdown.Markdown, findings []model.Finding) {
	counts := make(map[model.FindingType]int)
	for _, f := range findings {
		counts[f.Type]++
	}
	items := make([]string, 0, 4)
	for _, typ := range []model.FindingType{model.FindingThreat, model.FindingPattern, model.FindingAnomaly, model.FindingCorrelation} {
		if n := counts[typ]; n > 0 {
			items = append(items, fmt.Sprintf("**%s**: %d", typ, n))
		}
	}
	if len(items) == 0 {
		md.PlainText("No findings to categorize.")
		return
	}
	md.BulletList(items...)
}

// writeSeverityList renders per-severity finding counts as bullets, most
// severe first.
func writeSeverityList(md *markdown.Markdown, findings []model.Finding) {
	counts := make(map[model.Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	items := make([]string, 0, 4)
	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		if n := counts[sev]; n > 0 {
			items = append(items, fmt.Sprintf("**%s**: %d", sev, n))
		}
	}
	if len(items) == 0 {
		md.PlainText("No findings to distribute.")
		return
	}
	md.BulletList(items...)
}

// writeSeveritySentence renders a one-paragraph severity summary.
func writeSeveritySentence(md *markdown.Markdown, findings []model.Finding, level model.ThreatLevel) {
	var critical, high, medium, low int
	for _, f := range findings {
		switch f.Severity {
		case model.SeverityCritical:
			critical++
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		default:
			low++
		}
	}
	md.PlainTextf("The finding set contains %d critical, %d high, %d medium, and %d low severity findings, for an overall threat level of **%s**.",
		critical, high, medium, low, level)
}

// topFindings returns up to max findings ordered by severity descending.
// Ties keep their original order so repeated compilations of the same
// finding set stay identical.
func topFindings(findings []model.Finding, max int) []model.Finding {
	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity > sorted[j].Severity
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

// collectRecommendations walks the findings by severity descending and
// gathers their recommendations, deduplicated, capped at max.
func collectRecommendations(findings []model.Finding, max int) []string {
	seen := make(map[string]struct{})
	var recs []string
	for _, f := range topFindings(findings, len(findings)) {
		for _, rec := range f.Recommendations {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			recs = append(recs, rec)
			if len(recs) == max {
				return recs
			}
		}
	}
	return recs
}

// extractIndicators pulls concrete, reportable values out of the finding
// evidence: source addresses, ports, and record types. Duplicates are
// collapsed and insertion order is kept.
func extractIndicators(findings []model.Finding, max int) []string {
	seen := make(map[string]struct{})
	var indicators []string
	add := func(s string) bool {
		if _, ok := seen[s]; ok {
			return false
		}
		seen[s] = struct{}{}
		indicators = append(indicators, s)
		return len(indicators) == max
	}

	for _, f := range findings {
		for _, rec := range f.Evidence {
			if ip, ok := rec.GetString("sourceIP"); ok && ip != "" {
				if add(fmt.Sprintf("Source address %s", ip)) {
					return indicators
				}
			}
			if port, ok := rec.GetNumber("port"); ok {
				if add(fmt.Sprintf("Port %d", int(port))) {
					return indicators
				}
			} else if port, ok := rec.GetString("port"); ok && port != "" {
				if add(fmt.Sprintf("Port %s", port)) {
					return indicators
				}
			}
			if typ, ok := rec.GetString("type"); ok && typ != "" {
				if add(fmt.Sprintf("Record type %q", typ)) {
					return indicators
				}
			}
		}
	}
	return indicators
}
