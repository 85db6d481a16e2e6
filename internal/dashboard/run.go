package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/threatdesk/internal/analysis"
	"github.com/nao1215/threatdesk/internal/model"
	"github.com/nao1215/threatdesk/internal/report"
)

// Run accumulates the results of one dashboard flow as the pipeline steps
// execute. Steps read what earlier steps produced and record their own
// output, so the caller gets the whole session state back in one place.
type Run struct {
	// Ingested holds the file-backed sources registered by the ingest
	// step, in input order.
	Ingested []*model.DataSource

	// Seeded holds the configuration-file sources registered by the seed
	// step, in file order.
	Seeded []*model.DataSource

	// Findings is the finding set produced by the analyze step.
	Findings []model.Finding

	// Report is the document compiled by the report step.
	Report *model.Report

	// StepErrors collects the failures recorded while the run executed:
	// recoverable per-file problems noted by the ingest step, and the
	// failure of any step that aborted the pipeline.
	StepErrors []error

	// PerformedSteps lists the executed step names in order.
	PerformedSteps []string
}

// NewRun creates an empty run.
func NewRun() *Run {
	return &Run{}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// run state from previous steps.
//
// Design decision: We use an interface rather than function types because:
//  1. It allows steps to carry configuration state
//  2. It provides a Name() method for logging and debugging
//  3. It's more extensible for future features (e.g., conditional steps)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the run to modify.
	// Returns an error if the step fails critically; recoverable problems
	// should be recorded in the run's StepErrors and return nil.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// PipelineOption is a function that configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution even
// when a step fails. Failed steps are logged and recorded in the run, but
// subsequent steps still execute.
//
// The default is to stop on error: the analyze and report steps build on
// what earlier steps registered, and an aborted predecessor usually means
// their inputs are not what the caller asked for.
func WithContinueOnError(continueOnError bool) PipelineOption {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// NewPipeline creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps handle their own suspension points (file reads,
// the analysis delay). This allows graceful cleanup between steps while
// still respecting cancellation.
//
// Returns the first error encountered if continueOnError is false, or nil
// if all steps complete (failures are recorded in the run).
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		// Check for cancellation before starting each step
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
			// Continue with execution
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)

			// Record the failure in the run
			run.StepErrors = append(run.StepErrors, fmt.Errorf("%s: %w", step.Name(), err))

			// Stop or continue based on configuration
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed", "step", step.Name())
		}

		// Track which steps were performed
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// IngestStep registers files as data sources.
//
// Design decision: Per-file failures are recoverable, not critical:
//  1. The remaining files still ingest, so the run keeps whatever parsed
//  2. The registry keeps failed file sources in the error state, which the
//     source listing should show rather than hide
//  3. An analysis over a partial record set is still the analysis the
//     caller asked for
type IngestStep struct {
	dashboard *Dashboard
	paths     []string
}

// NewIngestStep creates a step that ingests the given files.
func NewIngestStep(d *Dashboard, paths []string) *IngestStep {
	return &IngestStep{dashboard: d, paths: paths}
}

// Name returns the step name.
func (s *IngestStep) Name() string {
	return "ingest"
}

// Do reads and registers the files. Per-file failures are recorded in the
// run; only context cancellation aborts the step.
func (s *IngestStep) Do(ctx context.Context, run *Run) error {
	sources, err := s.dashboard.IngestFiles(ctx, s.paths)
	run.Ingested = append(run.Ingested, sources...)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		run.StepErrors = append(run.StepErrors, err)
	}
	return nil
}

// SeedStep registers the configuration file's sources.
type SeedStep struct {
	dashboard *Dashboard
	wait      bool
}

// NewSeedStep creates a step that registers the config file's seeds. When
// wait is true the step blocks until every active seed has populated its
// demo records.
func NewSeedStep(d *Dashboard, wait bool) *SeedStep {
	return &SeedStep{dashboard: d, wait: wait}
}

// Name returns the step name.
func (s *SeedStep) Name() string {
	return "seed"
}

// Do registers the seeds and, when configured, waits for demo population.
func (s *SeedStep) Do(ctx context.Context, run *Run) error {
	sources, err := s.dashboard.SeedSources(ctx, s.wait)
	run.Seeded = append(run.Seeded, sources...)
	return err
}

// AnalyzeStep runs one analysis over every stored record.
type AnalyzeStep struct {
	dashboard *Dashboard
	cfg       analysis.Config
}

// NewAnalyzeStep creates a step that runs the configured analysis.
func NewAnalyzeStep(d *Dashboard, cfg analysis.Config) *AnalyzeStep {
	return &AnalyzeStep{dashboard: d, cfg: cfg}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do runs the analysis and stores the findings in the run.
func (s *AnalyzeStep) Do(ctx context.Context, run *Run) error {
	findings, err := s.dashboard.Analyze(ctx, s.cfg)
	if err != nil {
		return err
	}
	run.Findings = findings
	return nil
}

// ReportStep compiles the latest findings into a report.
type ReportStep struct {
	dashboard *Dashboard
	cfg       report.Config
}

// NewReportStep creates a step that compiles the configured report.
func NewReportStep(d *Dashboard, cfg report.Config) *ReportStep {
	return &ReportStep{dashboard: d, cfg: cfg}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do compiles the report and stores it in the run.
func (s *ReportStep) Do(ctx context.Context, run *Run) error {
	rep, err := s.dashboard.Report(ctx, s.cfg)
	if err != nil {
		return err
	}
	run.Report = rep
	return nil
}

// DefaultPipeline creates a pipeline with the standard dashboard flow
// derived from the session configuration: ingest the configured files,
// seed the configuration file's sources, run the configured analysis, and
// compile the configured report. Steps without configured work (no files,
// seeding disabled) are omitted.
//
// Design decision: We provide a default pipeline because:
//  1. Every CLI command runs some prefix of this flow
//  2. Reduces boilerplate in the commands
//  3. Ensures consistent ordering (sources must exist before analysis)
func DefaultPipeline(d *Dashboard, opts ...PipelineOption) *Pipeline {
	p := NewPipeline(opts...)

	if len(d.cfg.Files) > 0 {
		p.AddStep(NewIngestStep(d, d.cfg.Files))
	}
	if d.cfg.Seed {
		p.AddStep(NewSeedStep(d, true))
	}

	p.AddSteps(
		NewAnalyzeStep(d, analysis.Config{
			Type:           analysis.Type(d.cfg.AnalysisType),
			TimeRange:      d.cfg.TimeRange,
			SeverityFilter: d.cfg.SeverityFilter,
		}),
		NewReportStep(d, report.Config{
			Type:   model.ReportType(d.cfg.ReportType),
			Format: model.ReportFormat(d.cfg.ReportFormat),
			Title:  d.cfg.ReportTitle,
		}),
	)

	return p
}
