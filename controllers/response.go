package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/middleware"
	"phonestore/models"
	"phonestore/services"
	"phonestore/utils"
)

const (
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindConflict:       http.StatusConflict,
}

// writeError maps err to a status code. Internal errors are logged and
// never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if status, ok := statusByKind[kind]; ok {
		utils.WriteError(w, status, err.Error())
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Error("request timed out", "method", r.Method, "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusGatewayTimeout, "Request timed out")
		return
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return false
	}
	return true
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// principal returns the authenticated caller. A token whose subject is not
// an ObjectID is treated like a missing token.
func principal(r *http.Request) (services.Principal, error) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return services.Principal{}, apperr.Authentication("Not authorized, no token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return services.Principal{}, apperr.Authentication("Not authorized, token failed")
	}
	return services.Principal{UserID: id, Role: models.Role(claims.Role)}, nil
}

func queryInt(r *http.Request, keys ...string) (int, error) {
	for _, key := range keys {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, apperr.Validation("%s must be a number", key)
		}
		return n, nil
	}
	return 0, nil
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.Validation("%s must be a number", key)
	}
	return &n, nil
}

// pageFrom reads page and pageSize; limit is accepted as an alias of pageSize.
func pageFrom(r *http.Request) (models.Page, error) {
	number, err := queryInt(r, "page")
	if err != nil {
		return models.Page{}, err
	}
	size, err := queryInt(r, "pageSize", "limit")
	if err != nil {
		return models.Page{}, err
	}
	return models.Page{Number: number, Size: size}.Normalized(), nil
}
