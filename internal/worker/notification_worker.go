package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/events"
)

const (
	// DefaultQueueSize bounds how many events wait for delivery.
	DefaultQueueSize = 256
	// DefaultEnqueueTimeout is how long Publish waits for room in a full queue.
	DefaultEnqueueTimeout = time.Second
)

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// NotificationWorker moves ticket event delivery off the request path.
// Publish enqueues and returns; a single goroutine hands events to the
// wrapped dispatcher in publish order. A full queue makes Publish wait for
// room up to the enqueue timeout; past it the event is delivered inline, ahead
// of whatever is still queued, so nothing is dropped.
type NotificationWorker struct {
	inner          events.Dispatcher
	queue          chan queuedEvent
	enqueueTimeout time.Duration
	logger         *zap.Logger

	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	done      chan struct{}
}

// NewNotificationWorker wraps inner. Call Start before publishing and Close on
// shutdown.
func NewNotificationWorker(inner events.Dispatcher, queueSize int, enqueueTimeout time.Duration, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if enqueueTimeout <= 0 {
		enqueueTimeout = DefaultEnqueueTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		inner:  inner,
		queue:          make(chan queuedEvent, queueSize),
		enqueueTimeout: enqueueTimeout,
		logger:         logger,
		done:           make(chan struct{}),
	}
}

// Start launches the delivery goroutine. Extra calls are no-ops.
func (w *NotificationWorker) Start() {
	w.startOnce.Do(func() { go w.run() })
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for item := range w.queue {
		w.deliver(item.ctx, item.event)
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.inner.Publish(ctx, event); err != nil {
		w.logger.Warn("event delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

// Publish queues the event. The request context is detached from its
// cancellation since delivery outlives the request. After Close events are
// delivered inline.
func (w *NotificationWorker) Publish(ctx context.Context, event events.Event) error {
	ctx = context.WithoutCancel(ctx)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.deliver(ctx, event)
		return nil
	}
	item := queuedEvent{ctx: ctx, event: event}
	select {
	case w.queue <- item:
		return nil
	default:
	}

	timer := time.NewTimer(w.enqueueTimeout)
	defer timer.Stop()
	select {
	case w.queue <- item:
	case <-timer.C:
		w.logger.Warn("notification queue full, delivering inline",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID))
		w.deliver(ctx, event)
	}
	return nil
}

// Subscribe registers a handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.inner.Subscribe(eventType, handler)
}

// Close stops accepting queued events and waits until the queue drains or
// ctx expires. A worker that was never started is drained here.
func (w *NotificationWorker) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.Start()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
