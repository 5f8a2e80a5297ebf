package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// position along the fulfilment path; cancelled is off the path
var orderProgress = map[OrderStatus]int{
	OrderPending:    1,
	OrderConfirmed:  2,
	OrderProcessing: 3,
	OrderShipped:    4,
	OrderDelivered:  5,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderProgress[s]
	return ok || s == OrderCancelled
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
// Forward moves may skip steps. Cancellation is allowed until the order ships.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() || s == next {
		return false
	}
	if next == OrderCancelled {
		return s == OrderPending || s == OrderConfirmed || s == OrderProcessing
	}
	return orderProgress[next] > orderProgress[s]
}

// ShippingAddress is the delivery snapshot captured at checkout
type ShippingAddress struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Phone     string `bson:"phone" json:"phone"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	District  string `bson:"district" json:"district"`
	Ward      string `bson:"ward" json:"ward"`
}

func (a ShippingAddress) Validate() error {
	fields := []struct{ name, value string }{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"district", a.District},
		{"ward", a.Ward},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("shipping address is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// OrderItem is a line snapshot taken at purchase time. Later catalog edits
// do not change it.
type OrderItem struct {
	Phone    primitive.ObjectID `bson:"phone" json:"phone"`
	Name     string             `bson:"name" json:"name"`
	Price    int64              `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Image    string             `bson:"image" json:"image"`
}

func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Order represents a placed order
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Subtotal        int64              `bson:"subtotal" json:"subtotal"`
	ShippingFee     int64              `bson:"shippingFee" json:"shippingFee"`
	Total           int64              `bson:"total" json:"total"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status          OrderStatus        `bson:"status" json:"status"`
	TrackingNumber  string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelReason    string             `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const (
	FreeShippingThreshold int64 = 500000
	FlatShippingFee       int64 = 30000
)

// ShippingFee is free from FreeShippingThreshold upwards, flat otherwise.
func ShippingFee(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// OrderItemView is an order line with the current catalog identity attached.
type OrderItemView struct {
	OrderItem
	Brand     string `json:"brand,omitempty"`
	LineTotal int64  `json:"lineTotal"`
}

// OrderView is the display form of an order returned by the API.
type OrderView struct {
	Order
	Items []OrderItemView `json:"items"`
}

// NewOrderView attaches brand names from phones (keyed by id) to the order lines.
// Lines whose phone left the catalog keep their snapshot only.
func NewOrderView(o Order, phones map[primitive.ObjectID]PhoneSummary) OrderView {
	items := make([]OrderItemView, len(o.Items))
	for i, it := range o.Items {
		v := OrderItemView{OrderItem: it, LineTotal: it.LineTotal()}
		if p, ok := phones[it.Phone]; ok {
			v.Brand = p.Brand
			if v.Name == "" {
				v.Name = p.Name
			}
		}
		items[i] = v
	}
	return OrderView{Order: o, Items: items}
}
