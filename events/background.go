package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned when the background queue cannot take another event.
var ErrQueueFull = errors.New("event queue is full")

// Background hands events to a single worker goroutine so callers never wait
// on the broker. Events are delivered in the order they were queued.
type Background struct {
	next    Publisher
	timeout time.Duration
	queue   chan OrderEvent
	done    chan struct{}
	once    sync.Once
}

// NewBackground starts the worker. Each delivery to next gets its own timeout.
func NewBackground(next Publisher, buffer int, timeout time.Duration) *Background {
	b := &Background{
		next:    next,
		timeout: timeout,
		queue:   make(chan OrderEvent, buffer),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Background) run() {
	defer close(b.done)
	for e := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		if err := b.next.PublishOrderEvent(ctx, e); err != nil {
			slog.Warn("failed to publish order event", "type", e.Type, "order_id", e.OrderID, "error", err)
		}
		cancel()
	}
}

// PublishOrderEvent queues e without blocking.
func (b *Background) PublishOrderEvent(_ context.Context, e OrderEvent) error {
	select {
	case b.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close delivers what is already queued, then closes the wrapped publisher.
// Events must not be published after Close.
func (b *Background) Close() error {
	b.once.Do(func() { close(b.queue) })
	<-b.done
	return b.next.Close()
}
