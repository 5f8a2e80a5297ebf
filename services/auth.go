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

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	GenerateJWT(user *models.User) (string, error)
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

// Register creates a customer account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user := &models.User{
		Email:     models.NormalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.RoleUser,
		IsActive:  true,
		Addresses: []models.Address{},
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, user.Email); err == nil {
		return nil, apperr.Conflict("user already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	digest, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.Password = digest

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID.Hex())
	return s.issue(user)
}

// Login verifies the credentials of an active account.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("please provide email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Authentication("invalid credentials")
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return nil, apperr.Authentication("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Authentication("account is deactivated")
	}
	return s.issue(user)
}

// Me loads the account behind a verified token.
func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Authentication("user no longer exists")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.Authentication("account is deactivated")
	}
	return user, nil
}

// Refresh issues a fresh token for a still active account.
func (s *AuthService) Refresh(ctx context.Context, userID primitive.ObjectID) (*AuthResult, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// FederatedLogin signs in the account linked to id, linking an existing
// account with the same email or creating a new one when needed.
func (s *AuthService) FederatedLogin(ctx context.Context, id *utils.FederatedIdentity) (*AuthResult, error) {
	if id == nil || id.ID == "" {
		return nil, apperr.Authentication("identity provider returned no account")
	}
	if !id.EmailVerified {
		return nil, apperr.Authentication("email address is not verified")
	}
	email := models.NormalizeEmail(id.Email)

	user, err := s.users.FindByGoogleIDOrEmail(ctx, id.ID, email)
	switch {
	case err == nil:
		if user.GoogleID != "" && user.GoogleID != id.ID {
			slog.Warn("federated login rejected, email linked to another google account", "user_id", user.ID.Hex())
			return nil, apperr.Authentication("account is linked to a different Google account")
		}
		changed := false
		if user.GoogleID == "" {
			user.GoogleID = id.ID
			changed = true
		}
		if user.Avatar == "" && id.Avatar != "" {
			user.Avatar = id.Avatar
			changed = true
		}
		if !user.IsActive {
			return nil, apperr.Authentication("account is deactivated")
		}
		if changed {
			if err := s.users.Replace(ctx, user); err != nil {
				return nil, fmt.Errorf("link federated account: %w", err)
			}
		}
	case errors.Is(err, repository.ErrNotFound):
		user = &models.User{
			Email:     email,
			GoogleID:  id.ID,
			FirstName: fallback(id.FirstName, "Google"),
			LastName:  fallback(id.LastName, "User"),
			Avatar:    id.Avatar,
			Role:      models.RoleUser,
			IsActive:  true,
			Addresses: []models.Address{},
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create federated account: %w", err)
		}
		slog.Info("user registered via google", "user_id", user.ID.Hex())
	default:
		return nil, fmt.Errorf("federated login: %w", err)
	}
	return s.issue(user)
}

func fallback(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
