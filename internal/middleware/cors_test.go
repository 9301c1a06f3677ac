package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantStatus int
		wantOrigin string
		wantCreds  bool
	}{
		{"explicit origin", []string{"https://dash.example.com"}, "https://dash.example.com", http.MethodGet, http.StatusTeapot, "https://dash.example.com", true},
		{"wildcard has no credentials", []string{"*"}, "https://other.example.com", http.MethodGet, http.StatusTeapot, "https://other.example.com", false},
		{"unknown origin", []string{"https://dash.example.com"}, "https://evil.example.com", http.MethodGet, http.StatusTeapot, "", false},
		{"trailing slash in config", []string{"https://dash.example.com/"}, "https://dash.example.com", http.MethodGet, http.StatusTeapot, "https://dash.example.com", true},
		{"no origin", []string{"*"}, "", http.MethodGet, http.StatusTeapot, "", false},
		{"preflight", []string{"*"}, "https://dash.example.com", http.MethodOptions, http.StatusNoContent, "https://dash.example.com", false},
		{"preflight unknown origin", []string{"https://dash.example.com"}, "https://evil.example.com", http.MethodOptions, http.StatusForbidden, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/products", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			CORS(tt.allowed)(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rr.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCreds {
				t.Errorf("credentials = %v, want %v", got, tt.wantCreds)
			}
			if tt.wantOrigin != "" && !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), "X-StockFlow-Session") {
				t.Error("session header must be allowed")
			}
			if got := rr.Header().Get("Vary"); got != "Origin" {
				t.Errorf("vary = %q, want Origin", got)
			}
		})
	}
}
