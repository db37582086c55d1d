package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	user        *models.User
	registerErr error
	verifyErr   error
	changeErr   error

	changedFor string
}

func (f *fakeAuthService) Register(_ context.Context, username, _ string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u1", Username: username}, nil
}

func (f *fakeAuthService) Verify(context.Context, string, string) (*models.User, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.user, nil
}

func (f *fakeAuthService) ChangePassword(_ context.Context, userID, _, _ string) error {
	f.changedFor = userID
	return f.changeErr
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(user *models.User) (string, time.Time, error) {
	return "token-for-" + user.ID, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), nil
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "malformed JSON",
		},
		{
			name:           "validation error",
			body:           `{"username":"al","password":"x"}`,
			service:        &fakeAuthService{registerErr: models.ErrInvalidInput},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid input",
		},
		{
			name:           "user already exists",
			body:           `{"username":"bob","password":"password1"}`,
			service:        &fakeAuthService{registerErr: models.ErrDuplicateUser},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "username already taken",
		},
		{
			name:           "system full",
			body:           `{"username":"carol","password":"password1"}`,
			service:        &fakeAuthService{registerErr: models.ErrCapacityExceeded},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "user limit reached",
		},
		{
			name:           "database error",
			body:           `{"username":"dave","password":"password1"}`,
			service:        &fakeAuthService{registerErr: errors.New("db error")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "success",
			body:           `{"username":"erin","password":"password1"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"token":"token-for-u1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service, Tokens: fakeIssuer{}}
			h.Register(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		service      *fakeAuthService
		expectedCode int
		expectedJSON map[string]any
	}{
		{
			name:         "wrong password",
			service:      &fakeAuthService{verifyErr: models.ErrInvalidCredentials},
			expectedCode: http.StatusUnauthorized,
			expectedJSON: map[string]any{"error": "invalid username or password"},
		},
		{
			name:         "success",
			service:      &fakeAuthService{user: &models.User{ID: "u7", Username: "frank"}},
			expectedCode: http.StatusOK,
			expectedJSON: map[string]any{"token": "token-for-u7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(`{"username":"frank","password":"password1"}`))
			h := &AuthHandler{AuthService: tt.service, Tokens: fakeIssuer{}}
			h.Login(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			var got map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("invalid JSON response: %v", err)
			}
			for k, v := range tt.expectedJSON {
				if got[k] != v {
					t.Errorf("response[%q] = %v; want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	svc := &fakeAuthService{}
	h := &AuthHandler{AuthService: svc, Tokens: fakeIssuer{}}

	req := httptest.NewRequest("POST", "/password", bytes.NewBufferString(`{"old_password":"a","new_password":"b"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), "u9"))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if svc.changedFor != "u9" {
		t.Errorf("ChangePassword called for %q; want u9", svc.changedFor)
	}

	svc.changeErr = models.ErrInvalidCredentials
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/password", bytes.NewBufferString(`{"old_password":"a","new_password":"b"}`))
	h.ChangePassword(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
