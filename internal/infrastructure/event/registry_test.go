package event

import (
	"testing"

	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	pay := newRecordingHandler(0, payment.EventTypePayRequestAccepted)
	audit := newRecordingHandler(0)

	registry.Register(pay, payment.EventTypePayRequestAccepted, payment.EventTypeSimulationRequested)
	registry.Register(pay, payment.EventTypePayRequestAccepted)
	registry.Register(audit)

	t.Run("type handlers run before catch-all", func(t *testing.T) {
		handlers := registry.GetHandlers(payment.EventTypePayRequestAccepted)
		assert.Len(t, handlers, 2)
		assert.Same(t, pay, handlers[0])
		assert.Same(t, audit, handlers[1])
	})

	t.Run("unknown type only reaches catch-all", func(t *testing.T) {
		assert.Len(t, registry.GetHandlers(editors.EventTypeReviewProcessed), 1)
	})

	t.Run("event types are sorted", func(t *testing.T) {
		assert.Equal(t, []string{payment.EventTypePayRequestAccepted, payment.EventTypeSimulationRequested}, registry.EventTypes())
	})

	t.Run("unregister drops empty types", func(t *testing.T) {
		registry.Unregister(pay)
		assert.Len(t, registry.GetHandlers(payment.EventTypeSimulationRequested), 1)
		assert.Empty(t, registry.EventTypes())
	})
}
