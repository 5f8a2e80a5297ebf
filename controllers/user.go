package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"phonestore/services"
	"phonestore/utils"
)

// UserController handles profile and account management requests
type UserController struct {
	Users *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Users.Get(ctx, p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, user)
}

// UpdateProfile changes the authenticated user's own profile
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.ProfileUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Users.UpdateProfile(ctx, p.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, user)
}

// GetUsers lists all accounts (Admin only)
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	list, err := uc.Users.List(ctx, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, list)
}

// GetUser retrieves one account (Admin only)
func (uc *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID("user", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Users.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, user)
}

// UpdateUser changes any account field, including role and status (Admin only)
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID("user", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.UserUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Users.Update(ctx, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, user)
}

// DeleteUser removes an account (Admin only)
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParseID("user", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.Users.Delete(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "User deleted successfully")
}
