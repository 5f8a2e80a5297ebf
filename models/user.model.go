package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

// Address represents a saved delivery address of a user
type Address struct {
	Type      AddressType `bson:"type" json:"type"`
	Street    string      `bson:"street" json:"street"`
	City      string      `bson:"city" json:"city"`
	District  string      `bson:"district" json:"district"`
	Ward      string      `bson:"ward" json:"ward"`
	IsDefault bool        `bson:"isDefault" json:"isDefault"`
}

// User represents an account. Password holds the bcrypt digest and is empty
// for accounts created through federated login.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	GoogleID  string             `bson:"googleId,omitempty" json:"-"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role      Role               `bson:"role" json:"role"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Addresses []Address          `bson:"addresses" json:"addresses"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)
)

const MinPasswordLength = 6

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the profile fields. Password rules are checked by the
// caller because only the digest is stored here.
func (u *User) Validate() error {
	var problems []string
	if !emailPattern.MatchString(u.Email) {
		problems = append(problems, "please add a valid email")
	}
	if strings.TrimSpace(u.FirstName) == "" {
		problems = append(problems, "firstName is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		problems = append(problems, "lastName is required")
	}
	if u.Phone != "" && !phonePattern.MatchString(u.Phone) {
		problems = append(problems, "please add a valid phone number")
	}
	if !u.Role.Valid() {
		problems = append(problems, "role must be user or admin")
	}
	for _, a := range u.Addresses {
		switch a.Type {
		case AddressHome, AddressWork, AddressOther:
		default:
			problems = append(problems, "address type must be home, work or other")
		}
	}
	if len(problems) > 0 {
		return apperr.Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

// NormalizeAddresses defaults empty address types to home.
func NormalizeAddresses(addresses []Address) []Address {
	out := make([]Address, len(addresses))
	for i, a := range addresses {
		if a.Type == "" {
			a.Type = AddressHome
		}
		out[i] = a
	}
	return out
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(plain string) error {
	if len(plain) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
