package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/threatdesk/internal/artifact"
	"github.com/nao1215/threatdesk/internal/event"
	"github.com/nao1215/threatdesk/internal/model"
)

// Event names emitted by the compiler.
const (
	// EventReportGenerated fires after a report is compiled, stored, and
	// appended to the history. Payload: model.Report (a copy).
	EventReportGenerated = "reportGenerated"

	// EventReportError fires when compilation fails at any stage. Payload:
	// error.
	EventReportError = "reportError"
)

// artifactKind groups every encoded report under one handle namespace,
// e.g. "mem://reports/<id>".
const artifactKind = "reports"

// Config selects what to compile and how to encode it.
type Config struct {
	// Type selects the narrative template.
	Type model.ReportType

	// Format selects the output encoding.
	Format model.ReportFormat

	// Title overrides the document title. Empty derives the title from the
	// report type.
	Title string
}

// Compiler turns finding sets into stored report documents.
//
// Design decision: Compilation is all-or-nothing. The narrative is built
// and the artifact is stored before anything observable happens; a failure
// at any stage leaves the history untouched and emits EventReportError, so
// subscribers never see a report whose handle does not resolve.
type Compiler struct {
	logger  *slog.Logger
	emitter *event.Emitter
	store   *artifact.Store
	painter Painter
	now     func() time.Time

	ownsStore bool

	mu      sync.RWMutex
	history []model.Report
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compiler diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithEmitter sets the event emitter used for report notifications.
func WithEmitter(emitter *event.Emitter) Option {
	return func(c *Compiler) {
		c.emitter = emitter
	}
}

// WithStore sets the artifact store that holds encoded reports. The caller
// keeps ownership; Close will not tear it down.
func WithStore(store *artifact.Store) Option {
	return func(c *Compiler) {
		c.store = store
	}
}

// WithPainter sets the painter used for PDF encoding.
func WithPainter(painter Painter) Option {
	return func(c *Compiler) {
		c.painter = painter
	}
}

// WithClock sets the time source used for generation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) {
		c.now = now
	}
}

// NewCompiler creates a Compiler with an empty history. Unless WithStore
// is given it creates and owns an in-memory artifact store.
func NewCompiler(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.emitter == nil {
		c.emitter = event.NewEmitter(event.WithLogger(c.logger))
	}
	if c.painter == nil {
		c.painter = NewPDFPainter()
	}
	if c.store == nil {
		store, err := artifact.NewStore()
		if err != nil {
			return nil, fmt.Errorf("failed to create artifact store: %w", err)
		}
		c.store = store
		c.ownsStore = true
	}
	return c, nil
}

// Subscribe registers a listener for the named compiler event. The
// returned function removes the listener.
func (c *Compiler) Subscribe(name string, fn event.Listener) func() {
	return c.emitter.Subscribe(name, fn)
}

// Generate compiles a report from the given findings and records, stores
// the encoded artifact, appends the report to the history, and emits
// EventReportGenerated. On failure it emits EventReportError and the
// history is left unchanged.
func (c *Compiler) Generate(ctx context.Context, cfg Config, findings []model.Finding, records []model.Record) (*model.Report, error) {
	report, err := c.compile(ctx, cfg, findings, records)
	if err != nil {
		c.logger.Warn("report generation failed",
			slog.String("type", string(cfg.Type)),
			slog.String("format", string(cfg.Format)),
			slog.String("error", err.Error()))
		c.emitter.Emit(EventReportError, err)
		return nil, err
	}

	c.mu.Lock()
	c.history = append(c.history, *report)
	c.mu.Unlock()

	c.logger.Debug("report generated",
		slog.String("id", report.ID),
		slog.String("type", string(report.Type)),
		slog.String("format", string(report.Format)),
		slog.String("handle", report.Handle))
	c.emitter.Emit(EventReportGenerated, *report)
	return report, nil
}

// compile builds the narrative, encodes it, and stores the artifact. It
// has no observable side effects until it succeeds.
func (c *Compiler) compile(ctx context.Context, cfg Config, findings []model.Finding, records []model.Record) (*model.Report, error) {
	meta := model.ReportMetadata{
		AnalysisResultsCount: len(findings),
		DataSourcesCount:     distinctSourceCount(records),
		ThreatLevel:          model.OverallThreatLevel(findings),
	}

	title := cfg.Title
	if title == "" {
		title = defaultTitle(cfg.Type)
	}

	narrative, err := buildNarrative(cfg.Type, title, meta, findings, records)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		ID:          uuid.NewString(),
		Title:       title,
		Type:        cfg.Type,
		Format:      cfg.Format,
		GeneratedAt: c.now(),
		Content:     narrative,
		Metadata:    meta,
	}

	handle, err := c.encode(ctx, report, findings)
	if err != nil {
		return nil, err
	}
	report.Handle = handle
	return report, nil
}

// encode serializes the report in its configured format and stores the
// result, returning the artifact handle.
func (c *Compiler) encode(ctx context.Context, report *model.Report, findings []model.Finding) (string, error) {
	switch report.Format {
	case model.FormatHTML:
		doc := renderHTMLDocument(report.Title, transformMarkdown(report.Content))
		return c.store.Put(ctx, artifactKind, "text/html", []byte(doc))
	case model.FormatJSON:
		bundle, err := encodeJSONBundle(report, findings)
		if err != nil {
			return "", err
		}
		return c.store.Put(ctx, artifactKind, "application/json", bundle)
	case model.FormatPDF:
		data, err := c.painter.Paint(report.Title, metaLines(report), strings.Split(report.Content, "\n"))
		if err != nil {
			return "", fmt.Errorf("failed to paint PDF: %w", err)
		}
		return c.store.Put(ctx, artifactKind, "application/pdf", data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReportFormat, string(report.Format))
	}
}

// History returns every generated report in generation order.
func (c *Compiler) History() []model.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Report, len(c.history))
	copy(out, c.history)
	return out
}

// Artifact resolves a report handle to its stored encoded document.
func (c *Compiler) Artifact(ctx context.Context, handle string) (*artifact.Artifact, error) {
	return c.store.Resolve(ctx, handle)
}

// Close releases the compiler's resources. An artifact store passed in via
// WithStore stays open; only a store the compiler created itself is torn
// down, which revokes the handles of every report it generated.
func (c *Compiler) Close() error {
	if c.ownsStore {
		return c.store.Close()
	}
	return nil
}

// defaultTitle derives a document title from the report type,
// e.g. "executive-summary" becomes "Executive Summary".
func defaultTitle(typ model.ReportType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(typ), "-", " "))
}

// metaLines renders the report metadata as the header block of a painted
// document.
func metaLines(report *model.Report) []string {
	return []string{
		fmt.Sprintf("Type: %s", report.Type),
		fmt.Sprintf("Generated: %s", report.GeneratedAt.Format(time.RFC3339)),
		fmt.Sprintf("Threat level: %s", report.Metadata.ThreatLevel),
		fmt.Sprintf("Findings: %d", report.Metadata.AnalysisResultsCount),
		fmt.Sprintf("Data sources: %d", report.Metadata.DataSourcesCount),
	}
}

// distinctSourceCount counts the unique source and sourceIP values across
// the record set. A record can contribute both fields. The count reflects
// record contents rather than registry registrations, so records that
// carry no source fields contribute nothing.
func distinctSourceCount(records []model.Record) int {
	seen := make(map[string]struct{})
	for _, rec := range records {
		if v, ok := rec.GetString("source"); ok && v != "" {
			seen[v] = struct{}{}
		}
		if v, ok := rec.GetString("sourceIP"); ok && v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
