package api

import (
	"net/http"
	"strings"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/identity"
)

// SubmitFeedback stores a rating and comment from the current user.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid feedback")
		return
	}
	err := h.repo.SaveFeedback(r.Context(), identity.UserIDFromContext(r.Context()), req.Rating, strings.TrimSpace(req.Feedback))
	if err != nil {
		StoreError(w, err, "save feedback")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ListMessages returns the message board, newest first.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.repo.ListMessages(r.Context())
	if err != nil {
		StoreError(w, err, "list messages")
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	JSON(w, http.StatusOK, msgs)
}

// PostMessage adds a message signed with the current username.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}
	if err := h.repo.SendMessage(r.Context(), identity.UsernameFromContext(r.Context()), strings.TrimSpace(req.Message)); err != nil {
		StoreError(w, err, "send message")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ClearMessages empties the message board.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.ClearMessages(r.Context()); err != nil {
		StoreError(w, err, "clear messages")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns every non-admin account.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		StoreError(w, err, "list users")
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	JSON(w, http.StatusOK, users)
}

// DeleteUser removes an account and ends its sessions.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.repo.DeleteUser(r.Context(), id); err != nil {
		StoreError(w, err, "delete user")
		return
	}
	h.sessions.DeleteUser(id)
	w.WriteHeader(http.StatusNoContent)
}
