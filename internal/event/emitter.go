package event

import (
	"log/slog"
	"sort"
	"sync"
)

// Listener receives the payload of one emitted event.
type Listener func(payload any)

// Emitter is a process-local publish/subscribe hub for lifecycle events.
//
// Design decision: Listeners are isolated from each other and from the
// emitting component:
//  1. Emit never blocks on or fails because of a listener; a panicking
//     listener is recovered and logged, and the remaining listeners still
//     run
//  2. Listeners registered for the same event run in registration order,
//     synchronously on the emitting goroutine, so tests can observe events
//     without extra synchronization
//  3. Subscribe returns an unsubscribe function instead of exposing
//     listener identity, so callers cannot detach each other
type Emitter struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID int
	// listeners maps event name to registration id to listener. The id
	// preserves registration order for iteration.
	listeners map[string]map[int]Listener
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used to report recovered listener panics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// NewEmitter creates an Emitter with no listeners.
func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		listeners: make(map[string]map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Subscribe registers a listener for the named event and returns a function
// that removes it. Unsubscribing twice is harmless.
func (e *Emitter) Subscribe(name string, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++

	group, ok := e.listeners[name]
	if !ok {
		group = make(map[int]Listener)
		e.listeners[name] = group
	}
	group[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners[name], id)
	}
}

// Emit delivers the payload to every listener registered for the named
// event, in registration order. A listener panic is recovered and logged;
// it does not stop delivery to later listeners.
func (e *Emitter) Emit(name string, payload any) {
	e.mu.RLock()
	group := e.listeners[name]
	ids := make([]int, 0, len(group))
	for id := range group {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, group[id])
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		e.deliver(name, fn, payload)
	}
}

// deliver invokes one listener with panic isolation.
func (e *Emitter) deliver(name string, fn Listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event listener panicked",
				slog.String("event", name),
				slog.Any("panic", r))
		}
	}()
	fn(payload)
}
