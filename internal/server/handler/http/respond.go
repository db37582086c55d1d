package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON value from the request body. Failures are
// reported as models.ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", models.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON", models.ErrInvalidInput)
	}
	return nil
}

// statusFor maps a service error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, models.ErrExpiredToken):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, models.ErrInvalidSignature):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrQuotaExceeded):
		return http.StatusConflict, "application limit reached; delete one to add another"
	case errors.Is(err, models.ErrCapacityExceeded):
		return http.StatusConflict, "user limit reached"
	case errors.Is(err, models.ErrDuplicateUser):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, models.ErrUpstream):
		return http.StatusBadGateway, "assistant unavailable, try again later"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeError maps err to a response. Server-side failures are logged; the
// client only sees a generic message for them.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
