package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/models"
	"phonestore/repository"
)

// CartService persists each user's cart between sessions
type CartService struct {
	carts  repository.CartRepository
	phones repository.PhoneRepository
	orders *OrderService
}

func NewCartService(carts repository.CartRepository, phones repository.PhoneRepository, orders *OrderService) *CartService {
	return &CartService{carts: carts, phones: phones, orders: orders}
}

// CartView is a cart with its derived totals
type CartView struct {
	Items []models.CartItem `json:"items"`
	models.CartTotals
}

func newCartView(c *models.Cart) *CartView {
	return &CartView{Items: c.Items, CartTotals: c.Totals()}
}

func (s *CartService) load(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	c, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, c *models.Cart) (*CartView, error) {
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return newCartView(c), nil
}

// mutate loads the cart, applies fn and stores the result
func (s *CartService) mutate(ctx context.Context, userID primitive.ObjectID, fn func(c *models.Cart) error) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newCartView(c), nil
}

func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, phoneID string) (*CartView, error) {
	if userID.IsZero() {
		return nil, apperr.Authentication("%s", models.ErrCartUnauthenticated.Error())
	}
	id, err := ParseID("phone", phoneID)
	if err != nil {
		return nil, err
	}
	phone, err := s.phones.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(notFound(err, "phone not found"), "add to cart")
	}
	if phone.Status != models.PhoneActive {
		return nil, apperr.Validation("phone %s is not available", phone.Name)
	}

	return s.mutate(ctx, userID, func(c *models.Cart) error {
		_, err := c.Add(phone)
		return err
	})
}

func entryNotFound(ok bool) error {
	if !ok {
		return apperr.NotFound("cart entry not found")
	}
	return nil
}

func (s *CartService) SetQuantity(ctx context.Context, userID primitive.ObjectID, entryID string, n int) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		return entryNotFound(c.SetQuantity(entryID, n))
	})
}

func (s *CartService) Remove(ctx context.Context, userID primitive.ObjectID, entryID string) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		return entryNotFound(c.Remove(entryID))
	})
}

func (s *CartService) Toggle(ctx context.Context, userID primitive.ObjectID, entryID string) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		return entryNotFound(c.ToggleSelection(entryID))
	})
}

func (s *CartService) SelectAll(ctx context.Context, userID primitive.ObjectID) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		c.SelectAll()
		return nil
	})
}

func (s *CartService) UnselectAll(ctx context.Context, userID primitive.ObjectID) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		c.UnselectAll()
		return nil
	})
}

func (s *CartService) RemoveSelected(ctx context.Context, userID primitive.ObjectID) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		c.RemoveSelected()
		return nil
	})
}

// Clear drops the stored cart, as done on logout.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ReplaceItem is a client-held cart entry sent to Replace
type ReplaceItem struct {
	EntryID  string `json:"entryId"`
	PhoneID  string `json:"phoneId"`
	Quantity int    `json:"quantity"`
	Selected bool   `json:"selected"`
}

// Replace overwrites the stored cart with the client's entries. Product
// snapshots are refreshed from the catalog and entries with a quantity
// below one are dropped.
func (s *CartService) Replace(ctx context.Context, userID primitive.ObjectID, items []ReplaceItem) (*CartView, error) {
	c := models.NewCart(userID)
	if existing, err := s.carts.FindByUser(ctx, userID); err == nil {
		c.ID = existing.ID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	seen := map[string]bool{}
	for _, in := range items {
		if in.Quantity < 1 {
			continue
		}
		id, err := ParseID("phone", in.PhoneID)
		if err != nil {
			return nil, err
		}
		phone, err := s.phones.FindByID(ctx, id)
		if err != nil {
			return nil, wrap(notFound(err, "phone %s not found", in.PhoneID), "replace cart")
		}
		entryID := in.EntryID
		if entryID == "" || seen[entryID] {
			entryID = uuid.NewString()
		}
		seen[entryID] = true
		c.Items = append(c.Items, models.CartItem{
			ID:        entryID,
			PhoneID:   phone.ID,
			Name:      phone.Name,
			Brand:     phone.Brand,
			Thumbnail: phone.Thumbnail,
			Price:     phone.Price,
			Quantity:  in.Quantity,
			Selected:  in.Selected,
		})
	}
	return s.save(ctx, c)
}

type CheckoutInput struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           string                 `json:"notes"`
}

type CheckoutResult struct {
	Order *models.OrderView `json:"order"`
	Cart  *CartView         `json:"cart"`
}

// Checkout places an order for the selected entries and removes them from
// the cart. The cart is left untouched when the order is rejected.
func (s *CartService) Checkout(ctx context.Context, userID primitive.ObjectID, in CheckoutInput) (*CheckoutResult, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	selected := c.SelectedItems()
	lines := make([]LineRequest, len(selected))
	for i, it := range selected {
		lines[i] = LineRequest{PhoneID: it.PhoneID.Hex(), Quantity: it.Quantity}
	}

	order, err := s.orders.Create(ctx, userID, CreateOrderInput{
		Items:           lines,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}

	c.RemoveSelected()
	view, err := s.save(ctx, c)
	if err != nil {
		slog.Warn("order placed but cart not updated", "order_id", order.ID.Hex(), "user_id", userID.Hex(), "error", err)
		view = newCartView(c)
	}
	return &CheckoutResult{Order: order, Cart: view}, nil
}
