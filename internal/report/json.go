package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/threatdesk/internal/model"
)

// reportBundle is the export envelope for JSON reports: the report record
// itself plus the findings that produced it.
type reportBundle struct {
	Report           *model.Report   `json:"report"`
	AnalysisResults  []model.Finding `json:"analysisResults"`
	DataSourcesCount int             `json:"dataSourcesCount"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// encodeJSONBundle marshals the report together with its findings,
// pretty-printed for the download surface. The embedded report carries an
// empty handle: the handle identifies this bundle and is assigned only
// after it is stored.
func encodeJSONBundle(report *model.Report, findings []model.Finding) ([]byte, error) {
	if findings == nil {
		findings = []model.Finding{}
	}
	bundle := reportBundle{
		Report:           report,
		AnalysisResults:  findings,
		DataSourcesCount: report.Metadata.DataSourcesCount,
		GeneratedAt:      report.GeneratedAt,
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report bundle: %w", err)
	}
	return data, nil
}
