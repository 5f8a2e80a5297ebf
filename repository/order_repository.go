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

// OrderRepo stores orders in the "orders" collection
type OrderRepo struct {
	Collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepo {
	return &OrderRepo{Collection: db.Collection("orders")}
}

var _ OrderRepository = (*OrderRepo)(nil)

func orderFilter(q OrderQuery) bson.M {
	filter := bson.M{}
	if q.UserID != nil {
		filter["user"] = *q.UserID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	return filter
}

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := r.Collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id.Hex(), err)
	}
	return &order, nil
}

func (r *OrderRepo) Find(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(q.Skip)
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cursor, err := r.Collection.Find(ctx, orderFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) Count(ctx context.Context, q OrderQuery) (int64, error) {
	n, err := r.Collection.CountDocuments(ctx, orderFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *OrderRepo) UpdateIfStatus(ctx context.Context, o *models.Order, expected models.OrderStatus) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": o.ID, "status": expected}, o)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", o.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		n, err := r.Collection.CountDocuments(ctx, bson.M{"_id": o.ID})
		if err != nil {
			return fmt.Errorf("failed to check order %s: %w", o.ID.Hex(), err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
