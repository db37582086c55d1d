// Package http provides the HTTP handlers and routing of the JobTracker API.
package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
)

// AuthService defines the credential operations required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns it.
	Register(ctx context.Context, username, password string) (*models.User, error)
	// Verify checks a username and password pair.
	Verify(ctx context.Context, username, password string) (*models.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

// AuthHandler handles HTTP requests for registration, login and password changes.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Tokens      TokenIssuer
	Logger      *zap.Logger
}

// credentialsRequest represents the JSON payload for registration and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse is returned after a successful registration or login.
type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register handles POST /register. It creates the account and responds with
// a session token so the client is signed in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	h.respondWithSession(w, r, http.StatusCreated, user)
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	user, err := h.AuthService.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	h.respondWithSession(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, exp, err := h.Tokens.Issue(user)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, ExpiresAt: exp, User: user})
}

// ChangePassword handles POST /password for the authenticated user.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	userID := middleware.GetUserIDFromContext(r.Context())
	if err := h.AuthService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
