package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"phonestore/models"
	"phonestore/repository"
	"phonestore/repository/memory"
	"phonestore/utils"
)

func TestCatalogIsValidAndDeterministic(t *testing.T) {
	phones, err := catalog(20, 7)
	require.NoError(t, err)
	require.Len(t, phones, 25)

	skus := map[string]bool{}
	for i := range phones {
		p := phones[i]
		p.Normalize()
		assert.NoError(t, p.Validate(), p.SKU)
		assert.False(t, skus[p.SKU], "duplicate sku %s", p.SKU)
		skus[p.SKU] = true
	}

	again, err := catalog(20, 7)
	require.NoError(t, err)
	assert.Equal(t, phones, again)
}

func TestSeedPhonesSkipsExisting(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().Phones()

	require.NoError(t, seedPhones(ctx, store, 3, 1))
	require.NoError(t, seedPhones(ctx, store, 3, 1))

	n, err := store.Count(ctx, repository.PhoneQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
}

func TestEnsureAdmin(t *testing.T) {
	utils.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	users := memory.NewStore().Users()

	require.NoError(t, ensureAdmin(ctx, users, "admin123"))
	admin, err := users.FindByEmail(ctx, adminEmail)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, utils.CheckPassword(admin.Password, "admin123"))

	admin.Role = models.RoleUser
	require.NoError(t, users.Replace(ctx, admin))
	require.NoError(t, ensureAdmin(ctx, users, "ignored"))
	promoted, err := users.FindByEmail(ctx, adminEmail)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
}
