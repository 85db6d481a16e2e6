package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/nao1215/threatdesk/internal/analysis"
	"github.com/nao1215/threatdesk/internal/artifact"
	"github.com/nao1215/threatdesk/internal/config"
	"github.com/nao1215/threatdesk/internal/model"
	"github.com/nao1215/threatdesk/internal/registry"
	"github.com/nao1215/threatdesk/internal/report"
)

// Dashboard wires the source registry, analysis engine, report compiler,
// and artifact store into one session-scoped facade.
//
// Design decision: Each component keeps its own event emitter rather than
// sharing a process-wide bus:
//  1. Observers subscribe through the component accessors, so notification
//     ownership stays explicit
//  2. Components remain usable in isolation, without the facade
//  3. There is no global state to reset between sessions or tests
type Dashboard struct {
	// logger is shared by every wired component.
	logger *slog.Logger

	// cfg carries the session settings: delays, upload limit, ingestion
	// concurrency, and the seed sources loaded from the configuration file.
	cfg *config.Config

	// painter overrides the compiler's PDF painter when non-nil.
	painter report.Painter

	// seed, when non-nil, pins the random sources of the registry and the
	// engine for deterministic runs.
	seed *int64

	// store backs the retrievable report handles. The dashboard owns it and
	// tears it down on Close.
	store *artifact.Store

	registry *registry.Registry
	engine   *analysis.Engine
	compiler *report.Compiler
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the logger shared by all wired components.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) {
		d.logger = logger
	}
}

// WithPainter sets the PDF painter passed to the report compiler.
func WithPainter(painter report.Painter) Option {
	return func(d *Dashboard) {
		d.painter = painter
	}
}

// WithRandomSeed seeds the random sources of the registry and the engine.
// Each component gets its own generator, so their draws never contend
// across goroutines. Tests use a fixed seed to pin demo records and
// confidence values.
func WithRandomSeed(seed int64) Option {
	return func(d *Dashboard) {
		d.seed = &seed
	}
}

// New creates a Dashboard backed by a fresh in-memory artifact store.
// A nil cfg uses the defaults from config.NewConfig().
func New(cfg *config.Config, opts ...Option) (*Dashboard, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	d := &Dashboard{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	store, err := artifact.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}
	d.store = store

	registryOpts := []registry.Option{
		registry.WithLogger(d.logger),
		registry.WithDemoDelay(cfg.DemoDelay),
	}
	engineOpts := []analysis.Option{
		analysis.WithLogger(d.logger),
		analysis.WithDelayRange(cfg.AnalysisDelayMin, cfg.AnalysisDelayMax),
	}
	if d.seed != nil {
		registryOpts = append(registryOpts,
			registry.WithRandom(rand.New(rand.NewSource(*d.seed))))
		engineOpts = append(engineOpts,
			analysis.WithRandom(rand.New(rand.NewSource(*d.seed))))
	}
	d.registry = registry.NewRegistry(registryOpts...)
	d.engine = analysis.NewEngine(engineOpts...)

	compilerOpts := []report.Option{
		report.WithLogger(d.logger),
		report.WithStore(store),
	}
	if d.painter != nil {
		compilerOpts = append(compilerOpts, report.WithPainter(d.painter))
	}
	compiler, err := report.NewCompiler(compilerOpts...)
	if err != nil {
		_ = store.Close() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to create report compiler: %w", err)
	}
	d.compiler = compiler

	return d, nil
}

// SeedSources registers every source declared in the configuration file, in
// file order. Seeds with active status begin background demo population
// after the configured delay. When wait is true, SeedSources blocks until
// each active seed has populated its demo records or ctx is done.
//
// The subscription that counts population events is installed before any
// seed is registered, so a zero demo delay cannot race the wait.
func (d *Dashboard) SeedSources(ctx context.Context, wait bool) ([]*model.DataSource, error) {
	if d.cfg.Seeds == nil {
		return nil, nil
	}
	seeds := d.cfg.Seeds.NormalizedSources()
	if len(seeds) == 0 {
		return nil, nil
	}

	active := 0
	for _, seed := range seeds {
		if model.SourceStatus(seed.Status) == model.SourceStatusActive {
			active++
		}
	}

	populated := make(chan struct{}, active)
	if wait && active > 0 {
		unsubscribe := d.registry.Subscribe(registry.EventDataProcessed, func(any) {
			populated <- struct{}{}
		})
		defer unsubscribe()
	}

	sources := make([]*model.DataSource, 0, len(seeds))
	for _, seed := range seeds {
		cfg := registry.SourceConfig{
			Name:   seed.Name,
			Type:   model.SourceType(seed.Type),
			URL:    seed.URL,
			Status: model.SourceStatus(seed.Status),
		}
		if len(seed.Config) > 0 {
			cfg.Config = make(map[string]any, len(seed.Config))
			for key, value := range seed.Config {
				cfg.Config[key] = value
			}
		}
		sources = append(sources, d.registry.AddSource(cfg))
	}

	d.logger.Debug("seed sources registered",
		slog.Int("count", len(sources)),
		slog.Int("active", active))

	if wait {
		for i := 0; i < active; i++ {
			select {
			case <-populated:
			case <-ctx.Done():
				return sources, ctx.Err()
			}
		}
	}

	return sources, nil
}

// Analyze runs one analysis over the concatenation of every registered
// source's records.
func (d *Dashboard) Analyze(ctx context.Context, cfg analysis.Config) ([]model.Finding, error) {
	return d.engine.RunAnalysis(ctx, d.registry.AllData(), cfg)
}

// Report compiles a report from the latest analysis findings and the
// current record set.
func (d *Dashboard) Report(ctx context.Context, cfg report.Config) (*model.Report, error) {
	return d.compiler.Generate(ctx, cfg, d.engine.LatestFindings(), d.registry.AllData())
}

// Registry returns the source registry.
func (d *Dashboard) Registry() *registry.Registry {
	return d.registry
}

// Engine returns the analysis engine.
func (d *Dashboard) Engine() *analysis.Engine {
	return d.engine
}

// Compiler returns the report compiler.
func (d *Dashboard) Compiler() *report.Compiler {
	return d.compiler
}

// Artifacts returns the artifact store backing the report handles.
func (d *Dashboard) Artifacts() *artifact.Store {
	return d.store
}

// Close stops pending demo timers and tears down the artifact store.
// Report handles stop resolving once the dashboard is closed.
func (d *Dashboard) Close() error {
	return errors.Join(
		d.registry.Close(),
		d.compiler.Close(),
		d.store.Close(),
	)
}
