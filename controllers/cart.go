package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/services"
	"phonestore/utils"
)

// CartController handles the stored cart of the authenticated user
type CartController struct {
	Carts *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

type cartOp func(ctx context.Context, userID primitive.ObjectID) (*services.CartView, error)

// serve runs op for the caller and writes the resulting cart
func (cc *CartController) serve(w http.ResponseWriter, r *http.Request, op cartOp) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := op(ctx, p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, cart)
}

// GetCart retrieves the cart with its totals
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	cc.serve(w, r, cc.Carts.Get)
}

// ReplaceCart overwrites the stored cart with the client's entries
func (cc *CartController) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []services.ReplaceItem `json:"items"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	cc.serve(w, r, func(ctx context.Context, userID primitive.ObjectID) (*services.CartView, error) {
		return cc.Carts.Replace(ctx, userID, body.Items)
	})
}

// ClearCart drops the stored cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := cc.Carts.Clear(ctx, p.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Cart cleared")
}

// AddToCart appends a new entry for a phone
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PhoneID string `json:"phoneId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	cc.serve(w, r, func(ctx context.Context, userID primitive.ObjectID) (*services.CartView, error) {
		return cc.Carts.Add(ctx, userID, body.PhoneID)
	})
}

// UpdateCartItem sets the quantity of an entry; zero or less removes it
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Quantity == nil {
		utils.WriteError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	entryID := mux.Vars(r)["entryId"]
	cc.serve(w, r, func(ctx context.Context, userID primitive.ObjectID) (*services.CartView, error) {
		return cc.Carts.SetQuantity(ctx, userID, entryID, *body.Quantity)
	})
}

// RemoveFromCart drops one entry
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["entryId"]
	cc.serve(w, r, func(ctx context.Context, userID primitive.ObjectID) (*services.CartView, error) {
		return cc.Carts.Remove(ctx, userID, entryID)
	})
}

// ToggleCartItem flips the checkout selection of one entry
func (cc *CartController) ToggleCartItem(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["entryId"]
	cc.serve(w, r, func(ctx context.Context, userID primitive.ObjectID) (*services.CartView, error) {
		return cc.Carts.Toggle(ctx, userID, entryID)
	})
}

func (cc *CartController) SelectAll(w http.ResponseWriter, r *http.Request) {
	cc.serve(w, r, cc.Carts.SelectAll)
}

func (cc *CartController) UnselectAll(w http.ResponseWriter, r *http.Request) {
	cc.serve(w, r, cc.Carts.UnselectAll)
}

// RemoveSelected drops every selected entry
func (cc *CartController) RemoveSelected(w http.ResponseWriter, r *http.Request) {
	cc.serve(w, r, cc.Carts.RemoveSelected)
}

// Checkout places an order for the selected entries
func (cc *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.CheckoutInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := cc.Carts.Checkout(ctx, p.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, res)
}
