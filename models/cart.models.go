package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrCartUnauthenticated is returned when adding to a cart that has no owner.
var ErrCartUnauthenticated = errors.New("you need to sign in to add products to the cart")

// CartItem is one entry of a cart. ID identifies the entry, not the phone:
// adding the same phone twice yields two independent entries.
type CartItem struct {
	ID           string             `bson:"entryId" json:"entryId"`
	PhoneID      primitive.ObjectID `bson:"phoneId" json:"phoneId"`
	Name         string             `bson:"name" json:"name"`
	Brand        string             `bson:"brand" json:"brand"`
	Thumbnail    string             `bson:"thumbnail" json:"thumbnail"`
	Price        int64              `bson:"price" json:"price"`
	CurrentPrice int64              `bson:"currentPrice,omitempty" json:"currentPrice,omitempty"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	Selected     bool               `bson:"selected" json:"selected"`
}

// UnitPrice falls back to CurrentPrice when Price is not set.
func (i CartItem) UnitPrice() int64 {
	if i.Price != 0 {
		return i.Price
	}
	return i.CurrentPrice
}

// Cart represents a user's shopping cart
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewCart returns an empty cart owned by userID.
func NewCart(userID primitive.ObjectID) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// Add appends a new entry for p with quantity 1, selected.
func (c *Cart) Add(p *Phone) (CartItem, error) {
	if c.UserID.IsZero() {
		return CartItem{}, ErrCartUnauthenticated
	}
	item := CartItem{
		ID:        uuid.NewString(),
		PhoneID:   p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Thumbnail: p.Thumbnail,
		Price:     p.Price,
		Quantity:  1,
		Selected:  true,
	}
	c.Items = append(c.Items, item)
	return item, nil
}

func (c *Cart) index(entryID string) int {
	for i := range c.Items {
		if c.Items[i].ID == entryID {
			return i
		}
	}
	return -1
}

// Remove drops the entry. It reports whether the entry existed.
func (c *Cart) Remove(entryID string) bool {
	i := c.index(entryID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
	return true
}

// SetQuantity sets the entry quantity; n <= 0 removes the entry.
func (c *Cart) SetQuantity(entryID string, n int) bool {
	if n <= 0 {
		return c.Remove(entryID)
	}
	i := c.index(entryID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = n
	return true
}

func (c *Cart) ToggleSelection(entryID string) bool {
	i := c.index(entryID)
	if i < 0 {
		return false
	}
	c.Items[i].Selected = !c.Items[i].Selected
	return true
}

func (c *Cart) SelectAll()   { c.setSelected(true) }
func (c *Cart) UnselectAll() { c.setSelected(false) }

func (c *Cart) setSelected(v bool) {
	for i := range c.Items {
		c.Items[i].Selected = v
	}
}

// RemoveSelected drops every selected entry.
func (c *Cart) RemoveSelected() {
	kept := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if !it.Selected {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

func (c *Cart) SelectedItems() []CartItem {
	out := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Selected {
			out = append(out, it)
		}
	}
	return out
}

// CartTotals holds values derived from the cart entries
type CartTotals struct {
	TotalItems         int   `json:"totalItems"`
	SelectedItems      int   `json:"selectedItems"`
	TotalPrice         int64 `json:"totalPrice"`
	SelectedTotalPrice int64 `json:"selectedTotalPrice"`
}

// Totals recomputes the derived values from the current entries.
func (c *Cart) Totals() CartTotals {
	var t CartTotals
	for _, it := range c.Items {
		line := it.UnitPrice() * int64(it.Quantity)
		t.TotalItems += it.Quantity
		t.TotalPrice += line
		if it.Selected {
			t.SelectedItems += it.Quantity
			t.SelectedTotalPrice += line
		}
	}
	return t
}
