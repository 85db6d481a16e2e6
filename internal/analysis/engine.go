package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/nao1215/threatdesk/internal/event"
	"github.com/nao1215/threatdesk/internal/model"
)

// Event names emitted by the engine.
const (
	// EventAnalysisStarted fires when a run begins. Payload: Config.
	EventAnalysisStarted = "analysisStarted"

	// EventAnalysisCompleted fires when a run finishes successfully.
	// Payload: []model.Finding (a copy of the retained set).
	EventAnalysisCompleted = "analysisCompleted"

	// EventAnalysisError fires when a run fails. Payload: error.
	EventAnalysisError = "analysisError"
)

// Type selects one analysis strategy.
type Type string

const (
	// TypeThreatDetection classifies individual records as threats with a
	// fixed heuristic rule set.
	TypeThreatDetection Type = "threat-detection"

	// TypePatternAnalysis reports recurring structures across records.
	TypePatternAnalysis Type = "pattern-analysis"

	// TypeAnomalyDetection reports deviations from expected behavior.
	TypeAnomalyDetection Type = "anomaly-detection"

	// TypeCorrelationAnalysis reports related activity across sources.
	TypeCorrelationAnalysis Type = "correlation-analysis"
)

// SeverityFilterAll disables post-run severity filtering.
const SeverityFilterAll = "all"

// Config selects the strategy for one run and carries the post-filter.
type Config struct {
	// Type names the strategy to run.
	Type Type

	// TimeRange is an opaque caller hint ("24h", "7d"). It is carried for
	// observers but does not constrain the record set.
	TimeRange string

	// SeverityFilter keeps only findings whose severity name matches
	// exactly. Empty or "all" keeps everything.
	SeverityFilter string
}

// Strategy computes findings from a record set.
type Strategy interface {
	// Name returns the analysis type this strategy serves.
	Name() Type

	// Run computes the finding set for the given records.
	Run(ctx context.Context, records []model.Record) ([]model.Finding, error)
}

// Default artificial processing delay bounds. A run waits a uniform random
// duration inside these bounds before computing, modeling asynchronous
// analysis work.
const (
	defaultDelayMin = 1 * time.Second
	defaultDelayMax = 3 * time.Second
)

// Engine dispatches analysis runs to registered strategies and retains the
// latest result snapshot.
//
// Design decision: Concurrent runs are not mutually exclusive. Each run
// computes independently and replaces the latest snapshot when it finishes,
// so a slower run that resolves after a faster one wins. Callers that need
// run-to-result pairing must use the return value, not the snapshot.
type Engine struct {
	logger   *slog.Logger
	emitter  *event.Emitter
	rand     func() float64
	delayMin time.Duration
	delayMax time.Duration

	mu          sync.RWMutex
	strategies  map[Type]Strategy
	latest      []model.Finding
	threatCount int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEmitter sets the event emitter used for run notifications.
func WithEmitter(emitter *event.Emitter) Option {
	return func(e *Engine) {
		e.emitter = emitter
	}
}

// WithRandom sets the random source used to draw the processing delay.
func WithRandom(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rand = lockedFloat64(rng)
	}
}

// WithDelayRange sets the artificial processing delay bounds. Tests use
// WithDelayRange(0, 0) to run without waiting.
func WithDelayRange(min, max time.Duration) Option {
	return func(e *Engine) {
		e.delayMin = min
		e.delayMax = max
	}
}

// WithStrategy registers a strategy, replacing any default for its type.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		e.strategies[s.Name()] = s
	}
}

// NewEngine creates an Engine with the four built-in strategies. Strategies
// supplied via WithStrategy take precedence over the built-ins.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		delayMin:   defaultDelayMin,
		delayMax:   defaultDelayMax,
		strategies: make(map[Type]Strategy),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.emitter == nil {
		e.emitter = event.NewEmitter(event.WithLogger(e.logger))
	}
	if e.rand == nil {
		e.rand = lockedFloat64(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	for _, s := range []Strategy{
		NewThreatDetection(),
		NewPatternAnalysis(),
		NewAnomalyDetection(),
		NewCorrelationAnalysis(),
	} {
		if _, ok := e.strategies[s.Name()]; !ok {
			e.strategies[s.Name()] = s
		}
	}

	return e
}

// Subscribe registers a listener for one of the engine's events and returns
// a function that removes it.
func (e *Engine) Subscribe(name string, fn event.Listener) func() {
	return e.emitter.Subscribe(name, fn)
}

// RegisterStrategy adds or replaces a strategy at runtime.
func (e *Engine) RegisterStrategy(s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies[s.Name()] = s
}

// RunAnalysis waits the artificial processing delay, dispatches the run to
// the strategy selected by cfg.Type, applies the severity post-filter, and
// replaces the engine's latest snapshot with the retained findings.
//
// A failed run (unknown type, strategy error, context cancellation during
// the delay) emits EventAnalysisError, returns the error, and leaves the
// previous snapshot untouched. Both channels always fire together: the
// event does not replace the returned error.
func (e *Engine) RunAnalysis(ctx context.Context, records []model.Record, cfg Config) ([]model.Finding, error) {
	e.logger.Debug("analysis started",
		slog.String("type", string(cfg.Type)),
		slog.Int("records", len(records)))
	e.emitter.Emit(EventAnalysisStarted, cfg)

	findings, err := e.run(ctx, records, cfg)
	if err != nil {
		e.logger.Warn("analysis failed",
			slog.String("type", string(cfg.Type)),
			slog.String("error", err.Error()))
		e.emitter.Emit(EventAnalysisError, err)
		return nil, err
	}

	e.mu.Lock()
	e.latest = cloneFindings(findings)
	e.threatCount = countThreats(findings)
	e.mu.Unlock()

	e.logger.Debug("analysis completed",
		slog.String("type", string(cfg.Type)),
		slog.Int("findings", len(findings)))
	e.emitter.Emit(EventAnalysisCompleted, cloneFindings(findings))

	return findings, nil
}

// run performs the delay, dispatch, and post-filter stages.
func (e *Engine) run(ctx context.Context, records []model.Record, cfg Config) ([]model.Finding, error) {
	if err := e.delay(ctx); err != nil {
		return nil, err
	}

	e.mu.RLock()
	strategy, ok := e.strategies[cfg.Type]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnalysisType, string(cfg.Type))
	}

	findings, err := strategy.Run(ctx, records)
	if err != nil {
		return nil, err
	}

	return filterBySeverity(findings, cfg.SeverityFilter), nil
}

// delay waits a uniform random duration inside the configured bounds, or
// returns early when the context is canceled.
func (e *Engine) delay(ctx context.Context) error {
	d := e.delayMin
	if span := e.delayMax - e.delayMin; span > 0 {
		d += time.Duration(e.rand() * float64(span))
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LatestFindings returns a copy of the most recent run's retained findings.
func (e *Engine) LatestFindings() []model.Finding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneFindings(e.latest)
}

// ThreatCount returns the threat counter computed by the most recent run:
// the number of retained findings that are threats by type or carry high
// or critical severity.
func (e *Engine) ThreatCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threatCount
}

// filterBySeverity keeps findings whose severity name matches the filter
// exactly, preserving relative order. An empty or "all" filter keeps
// everything.
func filterBySeverity(findings []model.Finding, filter string) []model.Finding {
	if filter == "" || filter == SeverityFilterAll {
		return findings
	}

	kept := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.String() == filter {
			kept = append(kept, f)
		}
	}
	return kept
}

// countThreats counts findings that are threats by type or severity.
func countThreats(findings []model.Finding) int {
	count := 0
	for _, f := range findings {
		if f.Type == model.FindingThreat || f.Severity >= model.SeverityHigh {
			count++
		}
	}
	return count
}

// cloneFindings copies a finding list so callers cannot mutate retained
// results through shared evidence or recommendation slices.
func cloneFindings(findings []model.Finding) []model.Finding {
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		out[i] = f
		out[i].Evidence = make([]model.Record, 0, len(f.Evidence))
		for _, rec := range f.Evidence {
			out[i].Evidence = append(out[i].Evidence, rec.Clone())
		}
		if f.Recommendations != nil {
			out[i].Recommendations = append([]string(nil), f.Recommendations...)
		}
	}
	return out
}

// lockedFloat64 wraps a shared random source with a mutex; rand.Rand is not
// safe for concurrent draws.
func lockedFloat64(rng *rand.Rand) func() float64 {
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}
}
