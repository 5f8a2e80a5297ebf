package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"phonestore/models"
)

// CartRepo stores one cart document per user in the "carts" collection
type CartRepo struct {
	Collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepo {
	return &CartRepo{Collection: db.Collection("carts")}
}

var _ CartRepository = (*CartRepo)(nil)

func (r *CartRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.Collection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save upserts the cart keyed by its owner.
func (r *CartRepo) Save(ctx context.Context, c *models.Cart) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := r.Collection.UpdateOne(ctx,
		bson.M{"user": c.UserID},
		bson.M{"$set": bson.M{"items": c.Items, "updatedAt": c.UpdatedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *CartRepo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.Collection.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
