package ingest

import (
	"strings"
	"time"

	"github.com/nao1215/threatdesk/internal/model"
)

// parseText turns each non-empty line into one record with a 1-based
// sequential id, the trimmed line as content, and a capture-time timestamp.
// The timestamp is the normalization time, not anything parsed from the
// line.
func (n *Normalizer) parseText(content []byte) []model.Record {
	capturedAt := n.now().Format(time.RFC3339)

	var records []model.Record
	id := 0
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		id++
		records = append(records, model.Record{
			"id":        model.Number(float64(id)),
			"content":   model.String(trimmed),
			"timestamp": model.String(capturedAt),
		})
	}
	return records
}
