package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"phonestore/controllers"
	"phonestore/middleware"
	"phonestore/utils"
)

// apiPrefix is prepended to every API route. Routes are registered on the
// root router because a mux subrouter loses the method mismatch and answers
// 404 where 405 is due.
const apiPrefix = "/api"

// Controllers groups the handlers served by the API
type Controllers struct {
	Auth   *controllers.AuthController
	Users  *controllers.UserController
	Phones *controllers.PhoneController
	Carts  *controllers.CartController
	Orders *controllers.OrderController
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed")
}

// NewRouter builds the application handler with logging and panic recovery applied.
func NewRouter(c Controllers, tokens middleware.TokenParser) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, c, tokens)
	return middleware.Recover(middleware.Logging(router))
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, tokens middleware.TokenParser) {
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessage(w, http.StatusOK, "OK")
	}).Methods(http.MethodGet)

	protect := middleware.AuthMiddleware(tokens)
	private := func(h http.HandlerFunc) http.Handler {
		return protect(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return protect(middleware.AdminMiddleware(h))
	}

	// Auth routes
	router.HandleFunc(apiPrefix+"/auth/register", c.Auth.Register).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/auth/login", c.Auth.Login).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/auth/refresh", c.Auth.Refresh).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/auth/me", private(c.Auth.Me)).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/auth/google", c.Auth.GoogleLogin).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/auth/google/callback", c.Auth.GoogleCallback).Methods(http.MethodGet)

	// User routes
	router.Handle(apiPrefix+"/users/profile", private(c.Users.GetProfile)).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/users/profile", private(c.Users.UpdateProfile)).Methods(http.MethodPut)
	router.Handle(apiPrefix+"/users", admin(c.Users.GetUsers)).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/users/{id}", admin(c.Users.GetUser)).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/users/{id}", admin(c.Users.UpdateUser)).Methods(http.MethodPut)
	router.Handle(apiPrefix+"/users/{id}", admin(c.Users.DeleteUser)).Methods(http.MethodDelete)

	// Phone routes; fixed paths come before /phones/{id}
	router.HandleFunc(apiPrefix+"/phones", c.Phones.GetPhones).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/phones/search", c.Phones.SearchPhones).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/phones/compare", c.Phones.ComparePhones).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/phones/{id}", c.Phones.GetPhoneByID).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/phones", admin(c.Phones.CreatePhone)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/phones/{id}", admin(c.Phones.UpdatePhone)).Methods(http.MethodPut)
	router.Handle(apiPrefix+"/phones/{id}", admin(c.Phones.DeletePhone)).Methods(http.MethodDelete)

	// Cart routes
	router.Handle(apiPrefix+"/cart", private(c.Carts.GetCart)).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/cart", private(c.Carts.ReplaceCart)).Methods(http.MethodPut)
	router.Handle(apiPrefix+"/cart", private(c.Carts.ClearCart)).Methods(http.MethodDelete)
	router.Handle(apiPrefix+"/cart/items", private(c.Carts.AddToCart)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/cart/items/{entryId}", private(c.Carts.UpdateCartItem)).Methods(http.MethodPatch)
	router.Handle(apiPrefix+"/cart/items/{entryId}", private(c.Carts.RemoveFromCart)).Methods(http.MethodDelete)
	router.Handle(apiPrefix+"/cart/items/{entryId}/toggle", private(c.Carts.ToggleCartItem)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/cart/select-all", private(c.Carts.SelectAll)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/cart/unselect-all", private(c.Carts.UnselectAll)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/cart/selected", private(c.Carts.RemoveSelected)).Methods(http.MethodDelete)
	router.Handle(apiPrefix+"/cart/checkout", private(c.Carts.Checkout)).Methods(http.MethodPost)

	// Order routes; /orders/my-orders comes before /orders/{id}
	router.Handle(apiPrefix+"/orders", private(c.Orders.CreateOrder)).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/orders/my-orders", private(c.Orders.GetMyOrders)).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/orders/{id}", private(c.Orders.GetOrder)).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/orders", admin(c.Orders.GetOrders)).Methods(http.MethodGet)
	router.Handle(apiPrefix+"/orders/{id}/status", admin(c.Orders.UpdateOrderStatus)).Methods(http.MethodPut)
}
