package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/threatdesk/internal/model"
)

// Normalizer converts raw file content into records, selecting the parser
// by file-name extension.
//
// Design decision: Format selection is purely by extension, never by
// content sniffing:
//  1. The uploading user named the file; honoring the name makes failures
//     predictable and easy to explain
//  2. Sniffing would let a malformed file of one format silently parse as
//     another, producing garbage records instead of a clear error
type Normalizer struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// WithClock sets the time source used to stamp plain-text records.
// Tests use this to make text normalization deterministic.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	if n.now == nil {
		n.now = time.Now
	}
	return n
}

// Normalize parses the named file's content into a record sequence. The
// parser is chosen by the file-name extension, case-insensitively; .json,
// .csv, .xml, and .txt are supported. Record order follows content order
// (lines, array elements, matched XML elements).
func (n *Normalizer) Normalize(fileName string, content []byte) ([]model.Record, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	n.logger.Debug("normalizing file",
		slog.String("file", fileName),
		slog.String("format", ext))

	switch ext {
	case "json":
		return n.parseJSON(content)
	case "csv":
		return n.parseCSV(content)
	case "xml":
		return n.parseXML(content)
	case "txt":
		return n.parseText(content), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
