// Package identity resolves dashboard login sessions into request context values.
package identity

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/session"
)

const (
	SessionCookieName = "stockflow_session"
	SessionHeaderName = "X-StockFlow-Session"
	sessionCookieAge  = 24 * time.Hour
)

type contextKey int

const (
	sessionKey contextKey = iota
)

var tokenPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// SessionFromContext returns the login session attached to ctx, if any.
func SessionFromContext(ctx context.Context) *session.Session {
	if v, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return v
	}
	return nil
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// UserIDFromContext extracts the logged-in user's id, or 0 when anonymous.
func UserIDFromContext(ctx context.Context) int64 {
	if s := SessionFromContext(ctx); s != nil {
		return s.User.ID
	}
	return 0
}

// UsernameFromContext extracts the logged-in user's name.
func UsernameFromContext(ctx context.Context) string {
	if s := SessionFromContext(ctx); s != nil {
		return s.User.Username
	}
	return ""
}

// RoleFromContext extracts the logged-in user's role. Anonymous requests get
// the customer role.
func RoleFromContext(ctx context.Context) domain.Role {
	if s := SessionFromContext(ctx); s != nil {
		return s.User.Role
	}
	return domain.RoleCustomer
}

func tokenFromRequest(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get(SessionHeaderName))
	if token == "" {
		if c, err := r.Cookie(SessionCookieName); err == nil {
			token = c.Value
		}
	}
	if !tokenPattern.MatchString(token) {
		return ""
	}
	return token
}

// TokenFromRequest returns the session token carried by r, or "" if none is valid.
func TokenFromRequest(r *http.Request) string {
	return tokenFromRequest(r)
}

// SetSessionCookie writes the login cookie for token.
func SetSessionCookie(w http.ResponseWriter, token string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieAge.Seconds()),
		Expires:  time.Now().Add(sessionCookieAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// ClearSessionCookie expires the login cookie.
func ClearSessionCookie(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware attaches the login session, when the request carries a live one.
// Requests without a session pass through anonymously.
func Middleware(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if s, ok := sessions.Get(token); ok {
					r = r.WithContext(WithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects anonymous requests with 401 and requests from users
// outside roles with 403. With no roles any logged-in user passes.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			if s == nil {
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}
			if len(roles) > 0 && !hasRole(s.User.Role, roles) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
