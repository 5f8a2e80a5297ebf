package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/events"
	"phonestore/models"
	"phonestore/repository"
)

func orderInput(lines ...LineRequest) CreateOrderInput {
	return CreateOrderInput{Items: lines, ShippingAddress: address(), PaymentMethod: "cod"}
}

func line(p *models.Phone, qty int) LineRequest {
	return LineRequest{PhoneID: p.ID.Hex(), Quantity: qty}
}

func TestCreateOrderComputesShippingFee(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()

	tests := []struct {
		price    int64
		qty      int
		subtotal int64
		fee      int64
	}{
		{price: 600000, qty: 1, subtotal: 600000, fee: 0},
		{price: 200000, qty: 2, subtotal: 400000, fee: 30000},
		{price: 250000, qty: 2, subtotal: 500000, fee: 0},
	}
	for i, tt := range tests {
		p := f.phone(t, string(rune('A'+i))+" phone", "Nokia", tt.price, 10)
		order, err := f.orders.Create(ctx, u.ID, orderInput(line(p, tt.qty)))
		require.NoError(t, err)
		assert.Equal(t, tt.subtotal, order.Subtotal)
		assert.Equal(t, tt.fee, order.ShippingFee)
		assert.Equal(t, order.Subtotal+order.ShippingFee, order.Total)
		assert.Equal(t, models.OrderPending, order.Status)
		assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	}
}

func TestCreateOrderSnapshotsLines(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Galaxy S24", "Samsung", 18000000, 3)

	order, err := f.orders.Create(ctx, u.ID, orderInput(line(p, 2)))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "Galaxy S24", item.Name)
	assert.Equal(t, "Samsung", item.Brand)
	assert.Equal(t, int64(36000000), item.LineTotal)
	assert.Equal(t, p.Thumbnail, item.Image)
	assert.Equal(t, 1, f.stock(t, p))

	changed, err := f.store.Phones().FindByID(ctx, p.ID)
	require.NoError(t, err)
	changed.Price = 1
	changed.Name = "Renamed"
	require.NoError(t, f.store.Phones().Replace(ctx, changed))

	got, err := f.orders.Get(ctx, Principal{UserID: u.ID}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(18000000), got.Items[0].Price)
	assert.Equal(t, "Galaxy S24", got.Items[0].Name)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Moto G", "Motorola", 3000000, 5)

	_, err := f.orders.Create(ctx, u.ID, orderInput())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "order must have at least one item", err.Error())

	_, err = f.orders.Create(ctx, u.ID, orderInput(LineRequest{PhoneID: primitive.NewObjectID().Hex(), Quantity: 1}))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.orders.Create(ctx, u.ID, orderInput(LineRequest{PhoneID: "nope", Quantity: 1}))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.orders.Create(ctx, u.ID, orderInput(line(p, 0)))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in := orderInput(line(p, 1))
	in.PaymentMethod = "crypto"
	_, err = f.orders.Create(ctx, u.ID, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in = orderInput(line(p, 1))
	in.ShippingAddress.City = ""
	_, err = f.orders.Create(ctx, u.ID, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	n, err := f.store.Orders().Count(ctx, repository.OrderQuery{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 5, f.stock(t, p))
}

func TestCreateOrderInsufficientStockPersistsNothing(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()
	plenty := f.phone(t, "Pixel 8", "Google", 15000000, 10)
	scarce := f.phone(t, "Pixel Fold", "Google", 40000000, 1)

	_, err := f.orders.Create(ctx, u.ID, orderInput(line(plenty, 2), line(scarce, 2)))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	n, err := f.store.Orders().Count(ctx, repository.OrderQuery{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 10, f.stock(t, plenty))
	assert.Equal(t, 1, f.stock(t, scarce))
}

// Two lines for the same phone each pass the per-line stock check. The
// reservation step still refuses to oversell and gives back the first
// line. This closes the stock race left open by per-line checking alone.
func TestCreateOrderReservesAcrossLines(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Xperia 10", "Sony", 8000000, 3)

	_, err := f.orders.Create(ctx, u.ID, orderInput(line(p, 2), line(p, 2)))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 3, f.stock(t, p))

	n, err := f.store.Orders().Count(ctx, repository.OrderQuery{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

// Concurrent buyers of the last unit: exactly one order goes through and
// stock never drops below zero.
func TestCreateOrderConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	p := f.phone(t, "Galaxy Z Flip", "Samsung", 20000000, 1)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < buyers; i++ {
		u := f.user(t, fmt.Sprintf("buyer%d@example.com", i), models.RoleUser)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.orders.Create(context.Background(), u.ID, orderInput(line(p, 1))); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.stock(t, p))
}

func TestCreateOrderSideEffects(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	p := f.phone(t, "Nord 4", "OnePlus", 10000000, 3)

	_, err := f.orders.Create(context.Background(), u.ID, orderInput(line(p, 1)))
	require.NoError(t, err)
	assert.Equal(t, []string{events.OrderCreated}, f.publisher.types())

	select {
	case to := <-f.notifier.sent:
		assert.Equal(t, "buyer@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("order confirmation was not sent")
	}
}

type stuckPublisher struct{ release chan struct{} }

func (p stuckPublisher) PublishOrderEvent(ctx context.Context, _ events.OrderEvent) error {
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (stuckPublisher) Close() error { return nil }

func TestCreateOrderDoesNotWaitForBroker(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	p := f.phone(t, "Nord 4", "OnePlus", 10000000, 3)

	broker := stuckPublisher{release: make(chan struct{})}
	publisher := events.NewBackground(broker, 8, time.Minute)
	orders := NewOrderService(f.store.Orders(), f.store.Phones(), f.store.Users(), publisher, nil)

	start := time.Now()
	order, err := orders.Create(context.Background(), u.ID, orderInput(line(p, 1)))
	require.NoError(t, err)
	_, err = orders.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: "confirmed"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	close(broker.release)
	require.NoError(t, publisher.Close())
}

func TestCancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()
	a := f.phone(t, "iPhone 15", "Apple", 20000000, 5)
	b := f.phone(t, "AirPods Case", "Apple", 300000, 2)

	order, err := f.orders.Create(ctx, u.ID, orderInput(line(a, 2), line(b, 2)))
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, a))
	assert.Equal(t, 0, f.stock(t, b))

	cancelled, err := f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "cancelled", CancelReason: "changed mind"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, "changed mind", cancelled.CancelReason)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, f.stock(t, a))
	assert.Equal(t, 2, f.stock(t, b))
	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusChanged}, f.publisher.types())
}

// A second cancellation is rejected so stock is restored only once. Plain
// status overwriting would restore it twice.
func TestCancelTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Mi 14", "Xiaomi", 15000000, 4)

	order, err := f.orders.Create(ctx, u.ID, orderInput(line(p, 1)))
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "cancelled"})
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "cancelled"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 4, f.stock(t, p))
}

func TestUpdateStatusSideEffects(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Edge 50", "Motorola", 9000000, 4)

	order, err := f.orders.Create(ctx, u.ID, orderInput(line(p, 1)))
	require.NoError(t, err)

	confirmed, err := f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "confirmed", TrackingNumber: "IGNORED"})
	require.NoError(t, err)
	assert.Empty(t, confirmed.TrackingNumber)

	shipped, err := f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "shipped", TrackingNumber: "VN123"})
	require.NoError(t, err)
	assert.Equal(t, "VN123", shipped.TrackingNumber)
	assert.Nil(t, shipped.DeliveredAt)

	delivered, err := f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "delivered"})
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, "VN123", delivered.TrackingNumber)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "pending"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusUpdate{Status: "cancelled"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 3, f.stock(t, p))
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.UpdateStatus(context.Background(), primitive.NewObjectID(), StatusUpdate{Status: "shipped"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.orders.UpdateStatus(context.Background(), primitive.NewObjectID(), StatusUpdate{Status: "lost"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com", models.RoleUser)
	stranger := f.user(t, "stranger@example.com", models.RoleUser)
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	ctx := context.Background()
	p := f.phone(t, "Magic 6", "Honor", 12000000, 2)

	order, err := f.orders.Create(ctx, owner.ID, orderInput(line(p, 1)))
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, Principal{UserID: owner.ID, Role: models.RoleUser}, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.Get(ctx, Principal{UserID: admin.ID, Role: models.RoleAdmin}, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.Get(ctx, Principal{UserID: stranger.ID, Role: models.RoleUser}, order.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	_, err = f.orders.Get(ctx, Principal{UserID: owner.ID}, primitive.NewObjectID())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", models.RoleUser)
	bob := f.user(t, "bob@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Nothing Phone 2", "Nothing", 11000000, 100)

	var last *models.OrderView
	for i := 0; i < 5; i++ {
		o, err := f.orders.Create(ctx, alice.ID, orderInput(line(p, 1)))
		require.NoError(t, err)
		last = o
	}
	_, err := f.orders.Create(ctx, bob.ID, orderInput(line(p, 1)))
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, last.ID, StatusUpdate{Status: "shipped"})
	require.NoError(t, err)

	mine, err := f.orders.ListForUser(ctx, alice.ID, models.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)
	assert.Equal(t, int64(5), mine.Pagination.Total)
	assert.Equal(t, int64(3), mine.Pagination.TotalPages)
	assert.Equal(t, last.ID, mine.Items[0].ID)
	for _, o := range mine.Items {
		assert.Equal(t, alice.ID, o.User)
		assert.Equal(t, "Nothing", o.Items[0].Brand)
	}

	all, err := f.orders.List(ctx, models.Page{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), all.Pagination.Total)

	shipped, err := f.orders.List(ctx, models.Page{}, "shipped")
	require.NoError(t, err)
	require.Len(t, shipped.Items, 1)
	assert.Equal(t, last.ID, shipped.Items[0].ID)

	_, err = f.orders.List(ctx, models.Page{}, "lost")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
