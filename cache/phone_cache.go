// Package cache provides a redis read-through cache for catalog lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/models"
	"phonestore/repository"
)

const notFoundMarker = "notfound"

// CachedPhoneRepository caches phones by id in front of another
// PhoneRepository. Any write to a phone drops its key. Redis failures are
// logged and the call falls through to the wrapped repository.
type CachedPhoneRepository struct {
	repository.PhoneRepository
	redis       *redis.Client
	ttl         time.Duration
	notFoundTTL time.Duration
}

func NewCachedPhoneRepository(realRepo repository.PhoneRepository, rdb *redis.Client, ttl time.Duration) *CachedPhoneRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedPhoneRepository{
		PhoneRepository: realRepo,
		redis:           rdb,
		ttl:             ttl,
		notFoundTTL:     time.Minute,
	}
}

func phoneKey(id primitive.ObjectID) string {
	return "phone:" + id.Hex()
}

func (c *CachedPhoneRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Phone, error) {
	key := phoneKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}
		var phone models.Phone
		if err := json.Unmarshal(data, &phone); err == nil {
			return &phone, nil
		}
		slog.Warn("cache: failed to unmarshal cached phone", "key", key, "err", err)
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("cache: redis get failed, continuing with store", "key", key, "err", err)
	}

	phone, err := c.PhoneRepository.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		if setErr := c.redis.Set(ctx, key, notFoundMarker, c.notFoundTTL).Err(); setErr != nil {
			slog.Warn("cache: failed to cache miss", "key", key, "err", setErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(phone); err != nil {
		slog.Warn("cache: failed to marshal phone", "key", key, "err", err)
	} else if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("cache: failed to cache phone", "key", key, "err", err)
	}
	return phone, nil
}

func (c *CachedPhoneRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := c.redis.Del(ctx, phoneKey(id)).Err(); err != nil {
		slog.Warn("cache: failed to invalidate phone", "phone_id", id.Hex(), "err", err)
	}
}

func (c *CachedPhoneRepository) Create(ctx context.Context, p *models.Phone) error {
	if err := c.PhoneRepository.Create(ctx, p); err != nil {
		return err
	}
	// a miss may have been cached for this id
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *CachedPhoneRepository) Replace(ctx context.Context, p *models.Phone) error {
	defer c.invalidate(ctx, p.ID)
	return c.PhoneRepository.Replace(ctx, p)
}

func (c *CachedPhoneRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer c.invalidate(ctx, id)
	return c.PhoneRepository.Delete(ctx, id)
}

func (c *CachedPhoneRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	defer c.invalidate(ctx, id)
	return c.PhoneRepository.ReserveStock(ctx, id, qty)
}

func (c *CachedPhoneRepository) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	defer c.invalidate(ctx, id)
	return c.PhoneRepository.AdjustStock(ctx, id, delta)
}
