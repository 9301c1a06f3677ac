package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const defaultQueueSize = 256

// Async decouples request handlers from broker latency. Publish never blocks;
// events are dropped when the queue is full.
type Async struct {
	next    Publisher
	timeout time.Duration
	logger  *slog.Logger

	queue   chan Event
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsync starts the delivery goroutine. timeout bounds each delivery.
func NewAsync(next Publisher, queueSize int, timeout time.Duration, logger *slog.Logger) *Async {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Async{
		next:    next,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan Event, queueSize),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Publish enqueues e. It returns ErrClosed after Close.
func (a *Async) Publish(_ context.Context, e Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- e:
	default:
		if n := a.dropped.Add(1); n == 1 || n%100 == 0 {
			a.logger.Warn("event queue full, dropping events", "type", e.Type, "dropped_total", n)
		}
	}
	return nil
}

// Dropped returns the number of events discarded because the queue was full.
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close drains queued events and closes the underlying publisher.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	return a.next.Close()
}

func (a *Async) run() {
	defer a.wg.Done()
	for e := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Publish(ctx, e); err != nil {
			a.logger.Warn("failed to publish event", "type", e.Type, "event_id", e.ID, "error", err)
		}
		cancel()
	}
}
