package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/events"
	"phonestore/models"
	"phonestore/repository"
)

const sideEffectTimeout = 5 * time.Second

// OrderNotifier delivers the order confirmation to the customer
type OrderNotifier interface {
	SendOrderConfirmationEmail(toEmail string, order *models.Order) error
}

type OrderService struct {
	orders    repository.OrderRepository
	phones    repository.PhoneRepository
	users     repository.UserRepository
	publisher events.Publisher
	notifier  OrderNotifier
}

// NewOrderService wires the order workflow. publisher and notifier may be nil.
func NewOrderService(orders repository.OrderRepository, phones repository.PhoneRepository, users repository.UserRepository, publisher events.Publisher, notifier OrderNotifier) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orders:    orders,
		phones:    phones,
		users:     users,
		publisher: publisher,
		notifier:  notifier,
	}
}

type LineRequest struct {
	PhoneID  string `json:"phoneId"`
	Quantity int    `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []LineRequest          `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           string                 `json:"notes"`
}

// Create validates the request lines against the catalog, reserves stock
// and persists the order. Any failure releases the stock reserved so far.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, in CreateOrderInput) (*models.OrderView, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("order must have at least one item")
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	method, ok := models.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, apperr.Validation("payment method must be cod or bank_transfer")
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	summaries := make(map[primitive.ObjectID]models.PhoneSummary, len(in.Items))
	var subtotal int64
	for _, line := range in.Items {
		id, err := ParseID("phone", line.PhoneID)
		if err != nil {
			return nil, err
		}
		if line.Quantity < 1 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
		phone, err := s.phones.FindByID(ctx, id)
		if err != nil {
			return nil, wrap(notFound(err, "phone %s not found", line.PhoneID), "create order")
		}
		if phone.Status != models.PhoneActive {
			return nil, apperr.Validation("phone %s is not available", phone.Name)
		}
		if phone.Stock < line.Quantity {
			return nil, apperr.Validation("insufficient stock for %s", phone.Name)
		}
		item := models.OrderItem{
			Phone:    phone.ID,
			Name:     phone.Name,
			Price:    phone.Price,
			Quantity: line.Quantity,
			Image:    phone.Thumbnail,
		}
		subtotal += item.LineTotal()
		items = append(items, item)
		summaries[phone.ID] = phone.Summary()
	}

	var reserved []models.OrderItem
	for _, item := range items {
		if err := s.phones.ReserveStock(ctx, item.Phone, item.Quantity); err != nil {
			s.release(ctx, reserved)
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				return nil, apperr.Validation("insufficient stock for %s", item.Name)
			case errors.Is(err, repository.ErrNotFound):
				return nil, apperr.NotFound("phone %s not found", item.Phone.Hex())
			}
			return nil, fmt.Errorf("reserve stock: %w", err)
		}
		reserved = append(reserved, item)
	}

	fee := models.ShippingFee(subtotal)
	order := &models.Order{
		User:            userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   method,
		Subtotal:        subtotal,
		ShippingFee:     fee,
		Total:           subtotal + fee,
		Notes:           strings.TrimSpace(in.Notes),
		Status:          models.OrderPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, reserved)
		return nil, fmt.Errorf("create order: %w", err)
	}
	slog.Info("order created", "order_id", order.ID.Hex(), "user_id", userID.Hex(), "total", order.Total)

	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, order, ""))
	s.confirm(ctx, order)

	view := models.NewOrderView(*order, summaries)
	return &view, nil
}

// release gives back reserved stock even when the request context is gone
func (s *OrderService) release(ctx context.Context, items []models.OrderItem) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range items {
		if err := s.phones.AdjustStock(ctx, item.Phone, item.Quantity); err != nil {
			slog.Error("failed to release stock", "phone_id", item.Phone.Hex(), "quantity", item.Quantity, "error", err)
		}
	}
}

func (s *OrderService) publish(ctx context.Context, e events.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.publisher.PublishOrderEvent(ctx, e); err != nil {
		slog.Warn("failed to publish order event", "type", e.Type, "order_id", e.OrderID, "error", err)
	}
}

// confirm emails the order owner in the background
func (s *OrderService) confirm(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	user, err := s.users.FindByID(ctx, order.User)
	if err != nil {
		slog.Warn("skipping order confirmation", "order_id", order.ID.Hex(), "error", err)
		return
	}
	snapshot := *order
	go func(email string) {
		if err := s.notifier.SendOrderConfirmationEmail(email, &snapshot); err != nil {
			slog.Warn("failed to send order confirmation", "order_id", snapshot.ID.Hex(), "error", err)
		}
	}(user.Email)
}

type StatusUpdate struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
	CancelReason   string `json:"cancelReason"`
}

// UpdateStatus moves an order through its lifecycle. Cancelling restores the
// stock of every line; the compare-and-set on the previous status guarantees
// this happens at most once per order.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, in StatusUpdate) (*models.OrderView, error) {
	next := models.OrderStatus(in.Status)
	if !next.Valid() {
		return nil, apperr.Validation("invalid order status %q", in.Status)
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(notFound(err, "order not found"), "update order status")
	}
	previous := order.Status
	if !previous.CanTransitionTo(next) {
		return nil, apperr.Conflict("cannot change order status from %s to %s", previous, next)
	}

	now := time.Now().UTC()
	order.Status = next
	switch next {
	case models.OrderShipped:
		if tn := strings.TrimSpace(in.TrackingNumber); tn != "" {
			order.TrackingNumber = tn
		}
	case models.OrderDelivered:
		order.DeliveredAt = &now
	case models.OrderCancelled:
		order.CancelledAt = &now
		order.CancelReason = strings.TrimSpace(in.CancelReason)
	}

	if err := s.orders.UpdateIfStatus(ctx, order, previous); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Conflict("order status changed concurrently, retry")
		}
		return nil, wrap(notFound(err, "order not found"), "update order status")
	}

	if next == models.OrderCancelled {
		s.release(ctx, order.Items)
	}
	slog.Info("order status changed", "order_id", id.Hex(), "from", previous, "to", next)
	s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, order, previous))

	return s.view(ctx, order)
}

// Get returns an order visible to p: its owner or any admin.
func (s *OrderService) Get(ctx context.Context, p Principal, id primitive.ObjectID) (*models.OrderView, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(notFound(err, "order not found"), "get order")
	}
	if !p.IsAdmin() && order.User != p.UserID {
		return nil, apperr.Authorization("access denied")
	}
	return s.view(ctx, order)
}

type OrderList struct {
	Items      []models.OrderView `json:"orders"`
	Pagination models.Pagination  `json:"pagination"`
}

// List pages through all orders, optionally restricted to one status.
func (s *OrderService) List(ctx context.Context, page models.Page, status string) (*OrderList, error) {
	q := repository.OrderQuery{}
	if status != "" {
		st := models.OrderStatus(status)
		if !st.Valid() {
			return nil, apperr.Validation("invalid order status %q", status)
		}
		q.Status = st
	}
	return s.list(ctx, page, q)
}

// ListForUser pages through the orders placed by userID.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID, page models.Page) (*OrderList, error) {
	return s.list(ctx, page, repository.OrderQuery{UserID: &userID})
}

func (s *OrderService) list(ctx context.Context, page models.Page, q repository.OrderQuery) (*OrderList, error) {
	page = page.Normalized()
	q.Skip = page.Offset()
	q.Limit = int64(page.Size)

	orders, err := s.orders.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	total, err := s.orders.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	views, err := s.views(ctx, orders)
	if err != nil {
		return nil, err
	}
	return &OrderList{Items: views, Pagination: models.NewPagination(page, total)}, nil
}

func (s *OrderService) view(ctx context.Context, o *models.Order) (*models.OrderView, error) {
	views, err := s.views(ctx, []models.Order{*o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves the phones of all lines in one catalog query
func (s *OrderService) views(ctx context.Context, orders []models.Order) ([]models.OrderView, error) {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, o := range orders {
		for _, it := range o.Items {
			if !seen[it.Phone] {
				seen[it.Phone] = true
				ids = append(ids, it.Phone)
			}
		}
	}

	summaries := make(map[primitive.ObjectID]models.PhoneSummary, len(ids))
	if len(ids) > 0 {
		phones, err := s.phones.Find(ctx, repository.PhoneQuery{IDs: ids})
		if err != nil {
			return nil, fmt.Errorf("resolve order phones: %w", err)
		}
		for i := range phones {
			summaries[phones[i].ID] = phones[i].Summary()
		}
	}

	views := make([]models.OrderView, len(orders))
	for i, o := range orders {
		views[i] = models.NewOrderView(o, summaries)
	}
	return views, nil
}
