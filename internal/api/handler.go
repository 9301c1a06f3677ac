// Package api provides HTTP handlers for the StockFlow API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ashureev/stockflow/internal/events"
	"github.com/ashureev/stockflow/internal/session"
	"github.com/ashureev/stockflow/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Handler provides common handler utilities.
type Handler struct {
	repo     store.Repository
	sessions *session.Manager
	events   events.Publisher
	isDev    bool
}

// NewHandler creates a new Handler with common dependencies.
// A nil publisher discards inventory events.
func NewHandler(repo store.Repository, sessions *session.Manager, publisher events.Publisher, isDev bool) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Handler{
		repo:     repo,
		sessions: sessions,
		events:   publisher,
		isDev:    isDev,
	}
}

// publish hands inventory events to the publisher. Failures never affect the response.
func (h *Handler) publish(r *http.Request, evs ...events.Event) {
	for _, e := range evs {
		if err := h.events.Publish(r.Context(), e); err != nil {
			slog.Warn("Failed to publish event", "type", e.Type, "error", err)
		}
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// DecodeJSON reads a size-limited JSON body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// StoreError maps repository errors onto HTTP responses.
func StoreError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidInput):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrInsufficientStock):
		Error(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, store.ErrUsernameTaken):
		Error(w, http.StatusConflict, "username already exists")
	case errors.Is(err, store.ErrProtectedUser):
		Error(w, http.StatusForbidden, "cannot delete demo users")
	case errors.Is(err, store.ErrInvalidLogin):
		Error(w, http.StatusUnauthorized, "invalid username or password")
	default:
		slog.Error("Repository operation failed", "op", op, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}
