package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"phonestore/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Email: "an@example.com", Role: models.RoleAdmin}

	token, err := tm.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := tm.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "an@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
}

func TestTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}

	expired, err := NewTokenManager("secret", -time.Minute).GenerateJWT(user)
	require.NoError(t, err)
	_, err = tm.ParseJWT(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenManager("other", time.Hour).GenerateJWT(user)
	require.NoError(t, err)
	_, err = tm.ParseJWT(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.ParseJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { BcryptCost = 12 })

	digest, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", digest)
	assert.True(t, CheckPassword(digest, "hunter22"))
	assert.False(t, CheckPassword(digest, "hunter23"))
	assert.False(t, CheckPassword("", "hunter22"))
}
