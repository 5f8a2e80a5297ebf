// Package services holds the storefront business logic. Services speak in
// apperr kinds so the transport layer can map outcomes to status codes.
package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/models"
	"phonestore/repository"
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID primitive.ObjectID
	Role   models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// ParseID converts a hex id into an ObjectID, failing with a validation error.
func ParseID(kind, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid %s ID", kind)
	}
	return id, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}

func wrap(err error, op string) error {
	if err == nil || apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
