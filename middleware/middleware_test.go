package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/models"
	"phonestore/utils"
)

func issue(t *testing.T, tm *utils.TokenManager, role models.Role) string {
	t.Helper()
	token, err := tm.GenerateJWT(&models.User{ID: primitive.NewObjectID(), Email: "m@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	tm := utils.NewTokenManager("middleware-secret", time.Hour)
	var seen *utils.Claims
	h := AuthMiddleware(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "garbage").Code)

	other := utils.NewTokenManager("other-secret", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, serve(h, issue(t, other, models.RoleUser)).Code)

	rec := serve(h, issue(t, tm, models.RoleUser))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "m@example.com", seen.Email)

	var env utils.Envelope
	require.NoError(t, json.Unmarshal(serve(h, "").Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Not authorized, no token", env.Message)
}

func TestAdminMiddleware(t *testing.T) {
	tm := utils.NewTokenManager("middleware-secret", time.Hour)
	h := AuthMiddleware(tm)(AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	assert.Equal(t, http.StatusForbidden, serve(h, issue(t, tm, models.RoleUser)).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, issue(t, tm, models.RoleAdmin)).Code)
}

func TestBearerToken(t *testing.T) {
	tests := map[string]struct {
		header string
		token  string
		ok     bool
	}{
		"valid":        {"Bearer abc", "abc", true},
		"lowercase":    {"bearer abc", "abc", true},
		"basic":        {"Basic abc", "", false},
		"no token":     {"Bearer", "", false},
		"extra fields": {"Bearer a b", "", false},
		"empty":        {"", "", false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			token, ok := BearerToken(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestLoggingSetsRequestID(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := serve(h, "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := serve(h, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
