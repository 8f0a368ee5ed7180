// Package event dispatches domain events to background handlers on a
// bounded worker pool.
package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned when publishing to a bus that is not running.
var ErrBusStopped = errors.New("event bus is not running")

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// AsyncEventBus implements shared.EventBus. Publish enqueues events and a
// fixed number of workers hand them to the registered handlers.
type AsyncEventBus struct {
	registry       *HandlerRegistry
	logger         *zap.Logger
	workers        int
	queueSize      int
	handlerTimeout time.Duration

	mu      sync.RWMutex
	queue   chan envelope
	running bool
	wg      sync.WaitGroup
}

// Option configures an AsyncEventBus
type Option func(*AsyncEventBus)

// WithWorkers sets the number of worker goroutines
func WithWorkers(n int) Option {
	return func(b *AsyncEventBus) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithQueueSize sets the capacity of the event queue
func WithQueueSize(n int) Option {
	return func(b *AsyncEventBus) {
		if n >= 0 {
			b.queueSize = n
		}
	}
}

// WithHandlerTimeout bounds the time a single handler may run
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *AsyncEventBus) {
		b.handlerTimeout = d
	}
}

// NewAsyncEventBus creates a stopped bus
func NewAsyncEventBus(logger *zap.Logger, opts ...Option) *AsyncEventBus {
	b := &AsyncEventBus{
		registry:       NewHandlerRegistry(),
		logger:         logger.Named("events"),
		workers:        4,
		queueSize:      256,
		handlerTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler. Without explicit event types the
// handler's own EventTypes are used.
func (b *AsyncEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *AsyncEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the workers
func (b *AsyncEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}
	b.queue = make(chan envelope, b.queueSize)
	b.running = true
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(b.queue)
	}
	b.logger.Info("event bus started",
		zap.Int("workers", b.workers),
		zap.Int("queue_size", b.queueSize),
		zap.Strings("event_types", b.registry.EventTypes()),
	)
	return nil
}

// Stop closes the queue and waits until queued events are handled or ctx ends
func (b *AsyncEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out, pending events dropped")
		return ctx.Err()
	}
}

// Publish enqueues events. Handlers run after the request that published
// them may have finished, so they get a context that keeps the caller's
// values but not its cancellation.
func (b *AsyncEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return ErrBusStopped
	}
	detached := context.WithoutCancel(ctx)
	for _, event := range events {
		select {
		case b.queue <- envelope{ctx: detached, event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *AsyncEventBus) worker(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		for _, handler := range b.registry.GetHandlers(env.event.EventType()) {
			if err := b.dispatchToHandler(env.ctx, handler, env.event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", env.event.EventType()),
					zap.String("event_id", env.event.EventID().String()),
					zap.String("aggregate_id", env.event.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
}

func (b *AsyncEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	if b.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.handlerTimeout)
		defer cancel()
	}
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*AsyncEventBus)(nil)
