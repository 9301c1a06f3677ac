package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/identity"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (c *credentials) normalize() bool {
	c.Username = strings.TrimSpace(c.Username)
	return c.Username != "" && c.Password != ""
}

// Register creates an account. Self-registration can only produce employee or
// customer accounts; admins are created by seeding.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := DecodeJSON(r, &req); err != nil || !req.normalize() {
		Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	role := domain.ParseRole(req.Role)
	if role == domain.RoleAdmin {
		role = domain.RoleCustomer
	}

	user, err := h.repo.CreateUser(r.Context(), req.Username, req.Password, role)
	if err != nil {
		StoreError(w, err, "register")
		return
	}

	slog.Info("User registered", "user_id", user.ID, "role", user.Role)
	JSON(w, http.StatusCreated, user)
}

// Login verifies credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := DecodeJSON(r, &req); err != nil || !req.normalize() {
		Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.repo.VerifyUser(r.Context(), req.Username, req.Password)
	if err != nil {
		StoreError(w, err, "login")
		return
	}

	s, err := h.sessions.Create(*user)
	if err != nil {
		slog.Error("Failed to create session", "error", err, "user_id", user.ID)
		Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	identity.SetSessionCookie(w, s.Token, h.isDev)
	JSON(w, http.StatusOK, map[string]interface{}{
		"token": s.Token,
		"user":  user,
	})
}

// Logout ends the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := identity.TokenFromRequest(r); token != "" {
		h.sessions.Delete(token)
	}
	identity.ClearSessionCookie(w, h.isDev)
	w.WriteHeader(http.StatusNoContent)
}

// GetMe returns the current user's information.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	s := identity.SessionFromContext(r.Context())
	if s == nil {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"user":       s.User,
		"privileged": s.User.Role.Privileged(),
		"last_seen":  s.LastSeen(),
	})
}
