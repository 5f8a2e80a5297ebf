package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"phonestore/services"
	"phonestore/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder places an order for the authenticated user
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.CreateOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.Create(ctx, p.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, order)
}

// GetMyOrders lists the orders of the authenticated user
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	list, err := oc.Orders.ListForUser(ctx, p.UserID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, list)
}

// GetOrder retrieves one order of its owner, or any order for an admin
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := services.ParseID("order", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.Get(ctx, p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, order)
}

// GetOrders lists all orders, optionally by status (Admin only)
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	list, err := oc.Orders.List(ctx, page, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, list)
}

// UpdateOrderStatus moves an order to a new status (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID("order", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.StatusUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.Orders.UpdateStatus(ctx, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, order)
}
