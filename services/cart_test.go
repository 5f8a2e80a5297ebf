package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/models"
	"phonestore/repository"
)

func TestCartAddSamePhoneTwice(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Galaxy Z Flip", "Samsung", 20000000, 5)

	_, err := f.carts.Add(ctx, u.ID, p.ID.Hex())
	require.NoError(t, err)
	cart, err := f.carts.Add(ctx, u.ID, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	first, second := cart.Items[0], cart.Items[1]
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.Selected)
	assert.Equal(t, 1, first.Quantity)

	cart, err = f.carts.SetQuantity(ctx, u.ID, first.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 1, cart.Items[1].Quantity)

	cart, err = f.carts.Remove(ctx, u.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, second.ID, cart.Items[0].ID)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestCartSetQuantityZeroRemoves(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Pixel 8a", "Google", 11000000, 5)

	cart, err := f.carts.Add(ctx, u.ID, p.ID.Hex())
	require.NoError(t, err)
	cart, err = f.carts.SetQuantity(ctx, u.ID, cart.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalItems)
}

func TestCartUnknownEntry(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()

	_, err := f.carts.Toggle(ctx, u.ID, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.carts.Remove(ctx, u.ID, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.carts.SetQuantity(ctx, u.ID, "missing", 2)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCartAddRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	p := f.phone(t, "Pixel 8a", "Google", 11000000, 5)

	_, err := f.carts.Add(context.Background(), primitive.NilObjectID, p.ID.Hex())
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestCartAddRejectsUnavailablePhone(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()

	_, err := f.carts.Add(ctx, u.ID, primitive.NewObjectID().Hex())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.carts.Add(ctx, u.ID, "bogus")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCartSelectionAndTotals(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()
	a := f.phone(t, "Phone A", "Vivo", 1000, 5)
	b := f.phone(t, "Phone B", "Vivo", 2500, 5)

	_, err := f.carts.Add(ctx, u.ID, a.ID.Hex())
	require.NoError(t, err)
	cart, err := f.carts.Add(ctx, u.ID, b.ID.Hex())
	require.NoError(t, err)
	cart, err = f.carts.SetQuantity(ctx, u.ID, cart.Items[0].ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, int64(4500), cart.TotalPrice)
	assert.Equal(t, int64(4500), cart.SelectedTotalPrice)

	cart, err = f.carts.Toggle(ctx, u.ID, cart.Items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.SelectedItems)
	assert.Equal(t, int64(2000), cart.SelectedTotalPrice)

	cart, err = f.carts.UnselectAll(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, cart.SelectedItems)

	cart, err = f.carts.SelectAll(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.SelectedItems)

	cart, err = f.carts.RemoveSelected(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartPersistsPerUser(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", models.RoleUser)
	bob := f.user(t, "bob@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Reno 12", "Oppo", 9000000, 5)

	_, err := f.carts.Add(ctx, alice.ID, p.ID.Hex())
	require.NoError(t, err)

	got, err := f.carts.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	other, err := f.carts.Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	require.NoError(t, f.carts.Clear(ctx, alice.ID))
	got, err = f.carts.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestCartReplace(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()
	a := f.phone(t, "Phone A", "Tecno", 1000, 5)
	b := f.phone(t, "Phone B", "Tecno", 2000, 5)

	_, err := f.carts.Add(ctx, u.ID, a.ID.Hex())
	require.NoError(t, err)

	cart, err := f.carts.Replace(ctx, u.ID, []ReplaceItem{
		{EntryID: "keep-me", PhoneID: b.ID.Hex(), Quantity: 2, Selected: true},
		{PhoneID: a.ID.Hex(), Quantity: 0},
		{EntryID: "keep-me", PhoneID: a.ID.Hex(), Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "keep-me", cart.Items[0].ID)
	assert.Equal(t, "Phone B", cart.Items[0].Name)
	assert.Equal(t, int64(2000), cart.Items[0].Price)
	assert.NotEqual(t, "keep-me", cart.Items[1].ID)
	assert.False(t, cart.Items[1].Selected)

	_, err = f.carts.Replace(ctx, u.ID, []ReplaceItem{{PhoneID: primitive.NewObjectID().Hex(), Quantity: 1}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCartCheckout(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()
	a := f.phone(t, "Phone A", "Realme", 300000, 5)
	b := f.phone(t, "Phone B", "Realme", 100000, 5)

	_, err := f.carts.Add(ctx, u.ID, a.ID.Hex())
	require.NoError(t, err)
	cart, err := f.carts.Add(ctx, u.ID, b.ID.Hex())
	require.NoError(t, err)
	_, err = f.carts.Toggle(ctx, u.ID, cart.Items[1].ID)
	require.NoError(t, err)

	res, err := f.carts.Checkout(ctx, u.ID, CheckoutInput{ShippingAddress: address(), PaymentMethod: "bank_transfer"})
	require.NoError(t, err)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, a.ID, res.Order.Items[0].Phone)
	assert.Equal(t, int64(30000), res.Order.ShippingFee)
	assert.Equal(t, models.PaymentBankTransfer, res.Order.PaymentMethod)
	require.Len(t, res.Cart.Items, 1)
	assert.Equal(t, b.ID, res.Cart.Items[0].PhoneID)
	assert.Equal(t, 4, f.stock(t, a))
	assert.Equal(t, 5, f.stock(t, b))
}

func TestCartCheckoutRejectedKeepsCart(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "shopper@example.com", models.RoleUser)
	ctx := context.Background()
	p := f.phone(t, "Phone A", "Realme", 300000, 5)

	_, err := f.carts.Add(ctx, u.ID, p.ID.Hex())
	require.NoError(t, err)
	_, err = f.carts.UnselectAll(ctx, u.ID)
	require.NoError(t, err)

	_, err = f.carts.Checkout(ctx, u.ID, CheckoutInput{ShippingAddress: address()})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	cart, err := f.carts.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	n, err := f.store.Orders().Count(ctx, repository.OrderQuery{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
