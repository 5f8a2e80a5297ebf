package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/models"
	"phonestore/repository"
	"phonestore/utils"
)

type UserService struct {
	users repository.UserRepository
	carts repository.CartRepository
}

func NewUserService(users repository.UserRepository, carts repository.CartRepository) *UserService {
	return &UserService{users: users, carts: carts}
}

// ProfileUpdate carries the fields a user may change on their own account.
// Nil fields are left as stored.
type ProfileUpdate struct {
	FirstName *string           `json:"firstName"`
	LastName  *string           `json:"lastName"`
	Phone     *string           `json:"phone"`
	Addresses *[]models.Address `json:"addresses"`
	Password  *string           `json:"password"`
}

// UserUpdate is the admin form of ProfileUpdate
type UserUpdate struct {
	ProfileUpdate
	Email    *string      `json:"email"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

func (p ProfileUpdate) apply(u *models.User) error {
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Addresses != nil {
		u.Addresses = models.NormalizeAddresses(*p.Addresses)
	}
	if p.Password != nil {
		if err := models.ValidatePassword(*p.Password); err != nil {
			return err
		}
		digest, err := utils.HashPassword(*p.Password)
		if err != nil {
			return err
		}
		u.Password = digest
	}
	return nil
}

func (s *UserService) save(ctx context.Context, u *models.User) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Replace(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email already in use")
		}
		return nil, wrap(notFound(err, "user not found"), "update user")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(user); err != nil {
		return nil, err
	}
	return s.save(ctx, user)
}

type UserList struct {
	Items      []models.User     `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *UserService) List(ctx context.Context, page models.Page) (*UserList, error) {
	page = page.Normalized()
	users, err := s.users.List(ctx, page.Offset(), int64(page.Size))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &UserList{Items: users, Pagination: models.NewPagination(page, total)}, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(notFound(err, "user not found"), "get user")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, in UserUpdate) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(user); err != nil {
		return nil, err
	}
	if in.Email != nil {
		user.Email = models.NormalizeEmail(*in.Email)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	saved, err := s.save(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("user updated", "user_id", id.Hex(), "role", saved.Role, "active", saved.IsActive)
	return saved, nil
}

// Delete removes the account and its saved cart. Orders are kept.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return wrap(notFound(err, "user not found"), "delete user")
	}
	if s.carts != nil {
		if err := s.carts.DeleteByUser(ctx, id); err != nil {
			slog.Warn("failed to delete cart of removed user", "user_id", id.Hex(), "error", err)
		}
	}
	slog.Info("user deleted", "user_id", id.Hex())
	return nil
}
