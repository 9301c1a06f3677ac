package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/session"
)

func newSession(t *testing.T, mgr *session.Manager, role domain.Role) *session.Session {
	t.Helper()
	s, err := mgr.Create(domain.User{ID: 9, Username: "tester", Role: role})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return s
}

func TestMiddlewareResolvesCookieAndHeader(t *testing.T) {
	mgr := session.NewManager(assistant.DefaultConfig(), nil)
	s := newSession(t, mgr, domain.RoleEmployee)

	var gotID int64
	var gotRole domain.Role
	h := Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: s.Token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotID != 9 || gotRole != domain.RoleEmployee {
		t.Fatalf("cookie: got id=%d role=%s", gotID, gotRole)
	}

	gotID, gotRole = 0, ""
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeaderName, s.Token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotID != 9 {
		t.Fatalf("header: got id=%d", gotID)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeaderName, "not-a-token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotID != 0 || gotRole != domain.RoleCustomer {
		t.Fatalf("invalid token should be anonymous, got id=%d role=%s", gotID, gotRole)
	}
}

func TestRequireRole(t *testing.T) {
	mgr := session.NewManager(assistant.DefaultConfig(), nil)
	admin := newSession(t, mgr, domain.RoleAdmin)
	customer := newSession(t, mgr, domain.RoleCustomer)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(mgr)(RequireRole(domain.RoleAdmin, domain.RoleEmployee)(ok))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"customer", customer.Token, http.StatusForbidden},
		{"admin", admin.Token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set(SessionHeaderName, tt.token)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestClearSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	ClearSessionCookie(rr, true)
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName || cookies[0].MaxAge >= 0 {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
}
