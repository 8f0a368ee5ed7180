package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	eventTypes []string
	err        error
	panicMsg   string

	mu      sync.Mutex
	handled []shared.DomainEvent
	done    chan struct{}
}

func newRecordingHandler(expected int, eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes, done: make(chan struct{}, expected)}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	h.done <- struct{}{}
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startBus(t *testing.T, logger *zap.Logger, opts ...Option) *AsyncEventBus {
	t.Helper()
	bus := NewAsyncEventBus(logger, opts...)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestAsyncEventBus_Dispatch(t *testing.T) {
	bus := startBus(t, zap.NewNop(), WithWorkers(2))

	payHandler := newRecordingHandler(2, payment.EventTypePayRequestAccepted)
	bus.Subscribe(payHandler)
	// No event types at all makes a wildcard handler.
	everything := newRecordingHandler(3)
	bus.Subscribe(everything)

	notes := payment.Notes{IssuerKey: "app-key"}
	require.NoError(t, bus.Publish(context.Background(),
		payment.NewPayRequestAcceptedEvent("webpay:1", notes),
		payment.NewPayRequestAcceptedEvent("webpay:2", notes),
		payment.NewSimulationRequestedEvent("app-key", payment.PayRequest{}),
	))

	payHandler.wait(t, 2)
	everything.wait(t, 3)
	assert.Equal(t, 2, payHandler.count())
	assert.Equal(t, 3, everything.count())
}

func TestAsyncEventBus_HandlerFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := startBus(t, zap.New(core), WithWorkers(1))

	failing := newRecordingHandler(1, editors.EventTypeReviewProcessed)
	failing.err = errors.New("boom")
	panicking := newRecordingHandler(1, editors.EventTypeReviewProcessed)
	panicking.panicMsg = "kaboom"
	after := newRecordingHandler(1, editors.EventTypeReviewProcessed)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(after)

	event := &editors.ReviewProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(editors.EventTypeReviewProcessed, editors.AggregateTypeVersion, "v1"),
	}
	require.NoError(t, bus.Publish(context.Background(), event))

	after.wait(t, 1)
	require.NoError(t, bus.Stop(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
	assert.Equal(t, 1, logs.FilterMessage("handler panicked").Len())
}

func TestAsyncEventBus_Lifecycle(t *testing.T) {
	bus := NewAsyncEventBus(zap.NewNop(), WithQueueSize(4))
	event := payment.NewPayRequestAcceptedEvent("webpay:1", payment.Notes{})

	assert.ErrorIs(t, bus.Publish(context.Background(), event), ErrBusStopped)

	handler := newRecordingHandler(4, payment.EventTypePayRequestAccepted)
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()))

	for i := 0; i < 4; i++ {
		require.NoError(t, bus.Publish(context.Background(), event))
	}
	// Stop drains the queue before returning.
	require.NoError(t, bus.Stop(context.Background()))
	assert.Equal(t, 4, handler.count())

	assert.ErrorIs(t, bus.Publish(context.Background(), event), ErrBusStopped)
	assert.NoError(t, bus.Stop(context.Background()))
}

func TestAsyncEventBus_Unsubscribe(t *testing.T) {
	bus := startBus(t, zap.NewNop(), WithWorkers(1))
	removed := newRecordingHandler(1, payment.EventTypePayRequestAccepted)
	kept := newRecordingHandler(1, payment.EventTypePayRequestAccepted)
	bus.Subscribe(removed)
	bus.Subscribe(kept)
	bus.Unsubscribe(removed)

	require.NoError(t, bus.Publish(context.Background(), payment.NewPayRequestAcceptedEvent("webpay:1", payment.Notes{})))
	kept.wait(t, 1)
	assert.Equal(t, 0, removed.count())
}
