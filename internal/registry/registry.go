package registry

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/threatdesk/internal/event"
	"github.com/nao1215/threatdesk/internal/ingest"
	"github.com/nao1215/threatdesk/internal/model"
)

// Event names emitted by the registry.
const (
	// EventSourceAdded fires after a source is registered. Payload:
	// *model.DataSource (a copy).
	EventSourceAdded = "sourceAdded"

	// EventSourceUpdated fires after a source is mutated. Payload:
	// *model.DataSource (a copy).
	EventSourceUpdated = "sourceUpdated"

	// EventSourceRemoved fires after a source and its records are dropped.
	// Payload: *model.DataSource (a copy of the removed source).
	EventSourceRemoved = "sourceRemoved"

	// EventDataProcessed fires after records are stored for a source.
	// Payload: DataProcessedPayload.
	EventDataProcessed = "dataProcessed"
)

// DataProcessedPayload describes one completed record-population pass.
type DataProcessedPayload struct {
	// SourceID is the id of the source whose record set grew.
	SourceID string

	// Count is the number of records stored by this pass.
	Count int
}

// defaultDemoDelay is how long after registration an active source waits
// before its synthetic demo records are populated.
const defaultDemoDelay = 1 * time.Second

// Registry owns every registered data source and its record set.
//
// Design decision: All mutable state lives behind one mutex inside the
// registry:
//  1. Accessors return copies, so no caller can reach internal state
//  2. Demo population runs on timer goroutines and needs the same lock as
//     foreground mutations
//  3. Iteration order is tracked explicitly (ordered id slice) because
//     AllData and Sources must follow registration order, which map
//     iteration does not preserve
type Registry struct {
	logger     *slog.Logger
	emitter    *event.Emitter
	normalizer *ingest.Normalizer
	demoDelay  time.Duration
	rng        *rand.Rand
	now        func() time.Time

	mu      sync.RWMutex
	order   []string
	sources map[string]*model.DataSource
	records map[string][]model.Record
	timers  map[string]*time.Timer
	closed  bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithEmitter sets the event emitter used for lifecycle notifications.
func WithEmitter(emitter *event.Emitter) Option {
	return func(r *Registry) {
		r.emitter = emitter
	}
}

// WithNormalizer sets the normalizer used by AddFileSource.
func WithNormalizer(normalizer *ingest.Normalizer) Option {
	return func(r *Registry) {
		r.normalizer = normalizer
	}
}

// WithDemoDelay sets how long an active source waits before demo records
// are populated. Tests use a short delay.
func WithDemoDelay(delay time.Duration) Option {
	return func(r *Registry) {
		r.demoDelay = delay
	}
}

// WithRandom sets the random source used by demo-record generation.
func WithRandom(rng *rand.Rand) Option {
	return func(r *Registry) {
		r.rng = rng
	}
}

// WithClock sets the time source used for source timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		demoDelay: defaultDemoDelay,
		sources:   make(map[string]*model.DataSource),
		records:   make(map[string][]model.Record),
		timers:    make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.emitter == nil {
		r.emitter = event.NewEmitter(event.WithLogger(r.logger))
	}
	if r.normalizer == nil {
		r.normalizer = ingest.NewNormalizer(ingest.WithLogger(r.logger))
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Subscribe registers a listener for one of the registry's events and
// returns a function that removes it.
func (r *Registry) Subscribe(name string, fn event.Listener) func() {
	return r.emitter.Subscribe(name, fn)
}

// SourceConfig is the caller-supplied description of a non-file source.
type SourceConfig struct {
	// Name is the display name.
	Name string

	// Type tags the feed kind.
	Type model.SourceType

	// URL is the origin locator. It is stored, never dereferenced.
	URL string

	// Status is the initial lifecycle state; empty defaults to inactive.
	Status model.SourceStatus

	// Config is an opaque configuration payload.
	Config map[string]any
}

// AddSource registers a non-file source. When the initial status is active,
// synthetic demo records are populated in the background after a fixed
// delay; the population refreshes the source timestamp and emits
// EventDataProcessed without changing the status.
func (r *Registry) AddSource(cfg SourceConfig) *model.DataSource {
	status := cfg.Status
	if status == "" {
		status = model.SourceStatusInactive
	}

	source := &model.DataSource{
		ID:          uuid.NewString(),
		Name:        cfg.Name,
		Type:        cfg.Type,
		URL:         cfg.URL,
		Status:      status,
		LastUpdated: r.now(),
		Config:      cfg.Config,
	}

	r.mu.Lock()
	r.sources[source.ID] = source
	r.order = append(r.order, source.ID)
	if status == model.SourceStatusActive && !r.closed {
		id := source.ID
		r.timers[id] = time.AfterFunc(r.demoDelay, func() {
			r.populateDemo(id)
		})
	}
	r.mu.Unlock()

	r.logger.Debug("source added",
		slog.String("id", source.ID),
		slog.String("name", source.Name),
		slog.String("type", string(source.Type)))
	r.emitter.Emit(EventSourceAdded, source.Clone())

	return source.Clone()
}

// AddFileSource registers a file-backed source with type custom. The file
// content is normalized immediately: on success the records are stored and
// the source is active; on failure the source is still registered with
// status error, keeps an empty record set, and the parse failure is
// returned. The error-state registration is not rolled back.
func (r *Registry) AddFileSource(fileName string, reader io.Reader) (*model.DataSource, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", fileName, err)
	}

	records, parseErr := r.normalizer.Normalize(fileName, content)

	status := model.SourceStatusActive
	if parseErr != nil {
		status = model.SourceStatusError
		records = nil
	}

	source := &model.DataSource{
		ID:          uuid.NewString(),
		Name:        fileName,
		Type:        model.SourceTypeCustom,
		URL:         "file://" + fileName,
		Status:      status,
		LastUpdated: r.now(),
		Config: map[string]any{
			"fileName": fileName,
			"fileSize": len(content),
		},
	}

	r.mu.Lock()
	r.sources[source.ID] = source
	r.order = append(r.order, source.ID)
	r.records[source.ID] = records
	r.mu.Unlock()

	r.emitter.Emit(EventSourceAdded, source.Clone())

	if parseErr != nil {
		r.logger.Warn("file source registered in error state",
			slog.String("id", source.ID),
			slog.String("file", fileName),
			slog.String("error", parseErr.Error()))
		return nil, parseErr
	}

	r.logger.Debug("file source added",
		slog.String("id", source.ID),
		slog.String("file", fileName),
		slog.Int("records", len(records)))
	r.emitter.Emit(EventDataProcessed, DataProcessedPayload{
		SourceID: source.ID,
		Count:    len(records),
	})

	return source.Clone(), nil
}

// SourceUpdate carries the fields UpdateSource merges into a source.
// Nil fields are left unchanged; a non-nil Config replaces the whole
// configuration payload.
type SourceUpdate struct {
	Name   *string
	Type   *model.SourceType
	URL    *string
	Status *model.SourceStatus
	Config map[string]any
}

// UpdateSource shallow-merges the update into the identified source and
// refreshes its timestamp. It fails with ErrSourceNotFound when the id is
// not registered; nothing is modified in that case.
func (r *Registry) UpdateSource(id string, update SourceUpdate) (*model.DataSource, error) {
	r.mu.Lock()
	source, ok := r.sources[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}

	if update.Name != nil {
		source.Name = *update.Name
	}
	if update.Type != nil {
		source.Type = *update.Type
	}
	if update.URL != nil {
		source.URL = *update.URL
	}
	if update.Status != nil {
		source.Status = *update.Status
	}
	if update.Config != nil {
		source.Config = update.Config
	}
	source.LastUpdated = r.now()
	updated := source.Clone()
	r.mu.Unlock()

	r.logger.Debug("source updated", slog.String("id", id))
	r.emitter.Emit(EventSourceUpdated, updated.Clone())

	return updated, nil
}

// RemoveSource drops the identified source and its record set. It fails
// with ErrSourceNotFound when the id is not registered.
func (r *Registry) RemoveSource(id string) error {
	r.mu.Lock()
	source, ok := r.sources[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}

	removed := source.Clone()
	delete(r.sources, id)
	delete(r.records, id)
	if timer, ok := r.timers[id]; ok {
		timer.Stop()
		delete(r.timers, id)
	}
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.Debug("source removed", slog.String("id", id))
	r.emitter.Emit(EventSourceRemoved, removed)

	return nil
}

// Sources returns copies of all registered sources in registration order.
func (r *Registry) Sources() []*model.DataSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*model.DataSource, 0, len(r.order))
	for _, id := range r.order {
		sources = append(sources, r.sources[id].Clone())
	}
	return sources
}

// Source returns a copy of the identified source, or ErrSourceNotFound.
func (r *Registry) Source(id string) (*model.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}
	return source.Clone(), nil
}

// SourceData returns copies of the identified source's records in stored
// order, or ErrSourceNotFound.
func (r *Registry) SourceData(id string) ([]model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.sources[id]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, id)
	}

	stored := r.records[id]
	records := make([]model.Record, 0, len(stored))
	for _, rec := range stored {
		records = append(records, rec.Clone())
	}
	return records, nil
}

// AllData returns copies of every source's records, flattened in source
// registration order with each source's records in their stored order. It
// is the analysis engine's sole data input.
func (r *Registry) AllData() []model.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []model.Record
	for _, id := range r.order {
		for _, rec := range r.records[id] {
			records = append(records, rec.Clone())
		}
	}
	return records
}

// Close stops pending demo-population timers and drops all sources and
// record sets.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
	r.order = nil
	r.sources = make(map[string]*model.DataSource)
	r.records = make(map[string][]model.Record)

	return nil
}

// populateDemo stores synthetic records for an active source. It runs on a
// timer goroutine scheduled by AddSource.
func (r *Registry) populateDemo(id string) {
	r.mu.Lock()
	source, ok := r.sources[id]
	if !ok || r.closed {
		delete(r.timers, id)
		r.mu.Unlock()
		return
	}

	records := r.demoRecords(source.Type)
	r.records[id] = append(r.records[id], records...)
	source.LastUpdated = r.now()
	delete(r.timers, id)
	count := len(records)
	r.mu.Unlock()

	r.logger.Debug("demo records populated",
		slog.String("id", id),
		slog.Int("records", count))
	r.emitter.Emit(EventDataProcessed, DataProcessedPayload{
		SourceID: id,
		Count:    count,
	})
}
