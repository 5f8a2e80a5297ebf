package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/models"
)

func TestNewOrderEvent(t *testing.T) {
	o := &models.Order{ID: primitive.NewObjectID(), User: primitive.NewObjectID(), Status: models.OrderCancelled, Total: 530000}

	e := NewOrderEvent(OrderStatusChanged, o, models.OrderPending)

	assert.Equal(t, OrderStatusChanged, e.Type)
	assert.Equal(t, o.ID.Hex(), e.OrderID)
	assert.Equal(t, o.User.Hex(), e.UserID)
	assert.Equal(t, models.OrderCancelled, e.Status)
	assert.Equal(t, models.OrderPending, e.Previous)
	assert.False(t, e.OccurredAt.IsZero())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishOrderEvent(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close())
}

type gatedPublisher struct {
	gate chan struct{}
	mu   sync.Mutex
	got  []string
}

func (p *gatedPublisher) PublishOrderEvent(_ context.Context, e OrderEvent) error {
	<-p.gate
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e.OrderID)
	return nil
}

func (p *gatedPublisher) Close() error { return nil }

func TestBackgroundDoesNotWaitForBroker(t *testing.T) {
	inner := &gatedPublisher{gate: make(chan struct{})}
	b := NewBackground(inner, 2, time.Second)

	start := time.Now()
	// the worker holds the first event while the broker is stuck
	require.NoError(t, b.PublishOrderEvent(context.Background(), OrderEvent{OrderID: "1"}))
	require.Eventually(t, func() bool { return len(b.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, b.PublishOrderEvent(context.Background(), OrderEvent{OrderID: "2"}))
	require.NoError(t, b.PublishOrderEvent(context.Background(), OrderEvent{OrderID: "3"}))
	assert.ErrorIs(t, b.PublishOrderEvent(context.Background(), OrderEvent{OrderID: "4"}), ErrQueueFull)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(inner.gate)
	require.NoError(t, b.Close())
	assert.Equal(t, []string{"1", "2", "3"}, inner.got)
}
