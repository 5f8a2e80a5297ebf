package controllers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/middleware"
	"phonestore/services"
	"phonestore/utils"
)

const oauthStateCookie = "oauth_state"

// AuthController handles sign-up, sign-in and token requests
type AuthController struct {
	Auth   *services.AuthService
	Tokens middleware.TokenParser
	// Google is nil when federated login is not configured.
	Google    *utils.GoogleProvider
	ClientURL string
}

// NewAuthController creates a new AuthController
func NewAuthController(auth *services.AuthService, tokens middleware.TokenParser, google *utils.GoogleProvider, clientURL string) *AuthController {
	return &AuthController{
		Auth:      auth,
		Tokens:    tokens,
		Google:    google,
		ClientURL: strings.TrimRight(clientURL, "/"),
	}
}

// Register handles user registration
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := ac.Auth.Register(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, res)
}

// Login handles user authentication
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := ac.Auth.Login(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, res)
}

// Me retrieves the authenticated user's account
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := ac.Auth.Me(ctx, p.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]any{"user": user})
}

// Refresh exchanges a still valid token for a new one
func (ac *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Token == "" {
		utils.WriteError(w, http.StatusBadRequest, "Token is required")
		return
	}
	claims, err := ac.Tokens.ParseJWT(body.Token)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := ac.Auth.Refresh(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]string{"token": res.Token})
}

// GoogleLogin redirects the browser to the Google consent screen
func (ac *AuthController) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if ac.Google == nil {
		utils.WriteError(w, http.StatusNotFound, "Google login is not configured")
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, ac.Google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the Google flow and hands the token to the client app
func (ac *AuthController) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if ac.Google == nil {
		utils.WriteError(w, http.StatusNotFound, "Google login is not configured")
		return
	}
	fail := func(reason string, err error) {
		slog.Warn("google login failed", "reason", reason, "error", err)
		http.Redirect(w, r, ac.ClientURL+"/login?error=google_auth_failed", http.StatusTemporaryRedirect)
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		fail("state mismatch", err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/api/auth/google", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		fail("missing code", nil)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	identity, err := ac.Google.Identify(ctx, code)
	if err != nil {
		fail("identify", err)
		return
	}
	res, err := ac.Auth.FederatedLogin(ctx, identity)
	if err != nil {
		fail("sign in", err)
		return
	}
	http.Redirect(w, r, ac.ClientURL+"/auth/success?token="+url.QueryEscape(res.Token), http.StatusTemporaryRedirect)
}
