package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/JobTracker/internal/models"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type validatorFunc func(string) (string, error)

func (f validatorFunc) Validate(token string) (string, error) { return f(token) }

var testValidator = validatorFunc(func(token string) (string, error) {
	switch token {
	case "good":
		return "alice", nil
	case "old":
		return "", models.ErrExpiredToken
	default:
		return "", models.ErrInvalidSignature
	}
})

func TestTokenAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantUser   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "", "alice"},
		{"lowercase scheme", "bearer good", http.StatusOK, "", "alice"},
		{"missing header", "", http.StatusUnauthorized, "missing bearer token", ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "missing bearer token", ""},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "missing bearer token", ""},
		{"expired token", "Bearer old", http.StatusUnauthorized, "token expired", ""},
		{"bad signature", "Bearer forged", http.StatusUnauthorized, "invalid token", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := TokenAuth(testValidator)(dummy)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/applications", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q; want it to contain %q", rec.Body.String(), tt.wantBody)
			}
			if dummy.called != (tt.wantUser != "") {
				t.Fatalf("next called = %v", dummy.called)
			}
			if dummy.called {
				if got := GetUserIDFromContext(dummy.ctx); got != tt.wantUser {
					t.Errorf("user in context = %q; want %q", got, tt.wantUser)
				}
			}
		})
	}
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	if got := GetUserIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty user ID, got %q", got)
	}
}
