package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"phonestore/models"
)

// PhoneRepo stores phones in the "phones" collection
type PhoneRepo struct {
	Collection *mongo.Collection
}

func NewPhoneRepository(db *mongo.Database) *PhoneRepo {
	return &PhoneRepo{Collection: db.Collection("phones")}
}

var _ PhoneRepository = (*PhoneRepo)(nil)

func (r *PhoneRepo) Find(ctx context.Context, q PhoneQuery) ([]models.Phone, error) {
	cursor, err := r.Collection.Find(ctx, PhoneFilter(q), PhoneFindOptions(q))
	if err != nil {
		return nil, fmt.Errorf("failed to find phones: %w", err)
	}
	defer cursor.Close(ctx)

	phones := []models.Phone{}
	if err := cursor.All(ctx, &phones); err != nil {
		return nil, fmt.Errorf("failed to decode phones: %w", err)
	}
	return phones, nil
}

func (r *PhoneRepo) Count(ctx context.Context, q PhoneQuery) (int64, error) {
	n, err := r.Collection.CountDocuments(ctx, PhoneFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count phones: %w", err)
	}
	return n, nil
}

func (r *PhoneRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Phone, error) {
	var phone models.Phone
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&phone)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phone %s: %w", id.Hex(), err)
	}
	return &phone, nil
}

func (r *PhoneRepo) Create(ctx context.Context, p *models.Phone) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	if _, err := r.Collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create phone: %w", err)
	}
	return nil
}

func (r *PhoneRepo) Replace(ctx context.Context, p *models.Phone) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update phone %s: %w", p.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PhoneRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete phone %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PhoneRepo) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to reserve stock for %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		n, err := r.Collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to check phone %s: %w", id.Hex(), err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *PhoneRepo) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": delta}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll empties the collection and reports how many phones were removed.
func (r *PhoneRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.Collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete phones: %w", err)
	}
	return res.DeletedCount, nil
}
