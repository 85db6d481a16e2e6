package ingest

import (
	"strings"

	"github.com/nao1215/threatdesk/internal/model"
)

// parseCSV parses comma-separated content. The first non-empty line is the
// header row and defines field names in order; each later line is zipped
// positionally against those names. Rows shorter than the header fill the
// missing fields with empty strings; values beyond the header count are
// dropped.
//
// Quoting is not supported: a literal comma inside a value always splits.
func (n *Normalizer) parseCSV(content []byte) ([]model.Record, error) {
	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, ErrInsufficientRows
	}

	headers := splitAndTrim(lines[0])
	records := make([]model.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitAndTrim(line)
		record := make(model.Record, len(headers))
		for i, name := range headers {
			if i < len(values) {
				record[name] = model.String(values[i])
			} else {
				record[name] = model.String("")
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// splitAndTrim comma-splits a line and trims surrounding whitespace from
// each piece.
func splitAndTrim(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
