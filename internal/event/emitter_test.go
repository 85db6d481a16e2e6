package event

import (
	"io"
	"log/slog"
	"testing"
)

// TestEmitterSubscribeAndEmit tests basic event delivery.
func TestEmitterSubscribeAndEmit(t *testing.T) {
	t.Parallel()

	t.Run("delivers payload to the subscribed listener", func(t *testing.T) {
		t.Parallel()

		e := NewEmitter()
		var got any
		e.Subscribe("sourceAdded", func(payload any) {
			got = payload
		})

		e.Emit("sourceAdded", "id-1")

		if got != "id-1" {
			t.Errorf("listener received %v, expected %q", got, "id-1")
		}
	})

	t.Run("does not deliver other events", func(t *testing.T) {
		t.Parallel()

		e := NewEmitter()
		called := false
		e.Subscribe("sourceAdded", func(any) { called = true })

		e.Emit("sourceRemoved", "id-1")

		if called {
			t.Error("listener for sourceAdded was called for sourceRemoved")
		}
	})

	t.Run("emit with no listeners is a no-op", func(t *testing.T) {
		t.Parallel()

		e := NewEmitter()
		e.Emit("analysisStarted", nil)
	})

	t.Run("delivers to multiple listeners in registration order", func(t *testing.T) {
		t.Parallel()

		e := NewEmitter()
		var order []int
		e.Subscribe("dataProcessed", func(any) { order = append(order, 1) })
		e.Subscribe("dataProcessed", func(any) { order = append(order, 2) })
		e.Subscribe("dataProcessed", func(any) { order = append(order, 3) })

		e.Emit("dataProcessed", nil)

		if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
			t.Errorf("delivery order = %v, expected [1 2 3]", order)
		}
	})
}

// TestEmitterUnsubscribe tests listener removal.
func TestEmitterUnsubscribe(t *testing.T) {
	t.Parallel()

	t.Run("unsubscribed listener stops receiving", func(t *testing.T) {
		t.Parallel()

		e := NewEmitter()
		count := 0
		unsubscribe := e.Subscribe("reportGenerated", func(any) { count++ })

		e.Emit("reportGenerated", nil)
		unsubscribe()
		e.Emit("reportGenerated", nil)

		if count != 1 {
			t.Errorf("listener ran %d times, expected 1", count)
		}
	})

	t.Run("unsubscribing twice is harmless", func(t *testing.T) {
		t.Parallel()

		e := NewEmitter()
		unsubscribe := e.Subscribe("reportGenerated", func(any) {})
		unsubscribe()
		unsubscribe()
	})

	t.Run("other listeners keep receiving", func(t *testing.T) {
		t.Parallel()

		e := NewEmitter()
		var first, second int
		unsubscribe := e.Subscribe("analysisCompleted", func(any) { first++ })
		e.Subscribe("analysisCompleted", func(any) { second++ })

		unsubscribe()
		e.Emit("analysisCompleted", nil)

		if first != 0 {
			t.Errorf("unsubscribed listener ran %d times, expected 0", first)
		}
		if second != 1 {
			t.Errorf("remaining listener ran %d times, expected 1", second)
		}
	})
}

// TestEmitterPanicIsolation tests that a panicking listener does not stop
// delivery to later listeners or crash the emitting goroutine.
func TestEmitterPanicIsolation(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEmitter(WithLogger(logger))

	var delivered []string
	e.Subscribe("analysisError", func(any) { delivered = append(delivered, "first") })
	e.Subscribe("analysisError", func(any) { panic("listener bug") })
	e.Subscribe("analysisError", func(any) { delivered = append(delivered, "third") })

	e.Emit("analysisError", "boom")

	if len(delivered) != 2 || delivered[0] != "first" || delivered[1] != "third" {
		t.Errorf("delivered = %v, expected [first third]", delivered)
	}
}
