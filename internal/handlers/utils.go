package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bounce-app/apiserver/internal/auth"
	"github.com/bounce-app/apiserver/internal/services"
	"github.com/bounce-app/apiserver/internal/store"
)

type contextKey string

const contextUserIDKey contextKey = "user_id"

func userIDFromContext(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(contextUserIDKey).(int)
	if !ok || userID < 1 {
		return 0, errors.New("missing authenticated user")
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeServiceError maps the service layer's typed failures onto
// transport status codes. Authentication, permission, absence, and
// conflict failures each keep a distinct status so callers know which
// remediation applies.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
