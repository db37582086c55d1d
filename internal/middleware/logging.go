package middleware

import (
	"context"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const requestUserKey ctxKey = "request_user"

// requestUser is shared between WithRequestLogging and TokenAuth. TokenAuth
// runs deeper in the chain on a derived request, so it records the user here.
type requestUser struct {
	id string
}

func setRequestUser(ctx context.Context, userID string) {
	if ru, ok := ctx.Value(requestUserKey).(*requestUser); ok {
		ru.id = userID
	}
}

// WithRequestLogging logs one line per request with its outcome.
func WithRequestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ru := &requestUser{}
			r = r.WithContext(context.WithValue(r.Context(), requestUserKey, ru))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if id := chiMiddleware.GetReqID(r.Context()); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if ru.id != "" {
				fields = append(fields, zap.String("user_id", ru.id))
			}
			logger.Info("request", fields...)
		})
	}
}
