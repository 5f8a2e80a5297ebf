package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/models"
)

// SortKey names a phone listing order
type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortPrice     SortKey = "price"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
	// SortRelevance orders by text score and only applies with FullText.
	SortRelevance SortKey = "relevance"
)

// PhoneQuery is a store-independent conjunctive phone filter.
// Zero-valued fields do not constrain the result.
type PhoneQuery struct {
	Status      models.PhoneStatus
	Brand       string
	MinPrice    *int64
	MaxPrice    *int64
	RAM         string
	Storage     string
	Category    string
	Subcategory string
	// Search is a case-insensitive substring match on name, brand or description.
	Search string
	// FullText uses the store's text index.
	FullText   string
	IDs        []primitive.ObjectID
	ExcludeIDs []primitive.ObjectID

	Sort  SortKey
	Desc  bool
	Skip  int64
	Limit int64
}

type PhoneRepository interface {
	Find(ctx context.Context, q PhoneQuery) ([]models.Phone, error)
	Count(ctx context.Context, q PhoneQuery) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Phone, error)
	Create(ctx context.Context, p *models.Phone) error
	Replace(ctx context.Context, p *models.Phone) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ReserveStock decrements stock by qty only if at least qty is available.
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	// AdjustStock adds delta to stock unconditionally.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByGoogleIDOrEmail prefers a googleId match over an email match.
	FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error)
	List(ctx context.Context, skip, limit int64) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *models.User) error
	Replace(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderQuery filters order listings; newest first.
type OrderQuery struct {
	UserID *primitive.ObjectID
	Status models.OrderStatus
	Skip   int64
	Limit  int64
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Find(ctx context.Context, q OrderQuery) ([]models.Order, error)
	Count(ctx context.Context, q OrderQuery) (int64, error)
	// UpdateIfStatus replaces o only while the stored status still equals expected.
	UpdateIfStatus(ctx context.Context, o *models.Order, expected models.OrderStatus) error
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, c *models.Cart) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}
