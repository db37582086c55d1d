package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/metrics"
	"github.com/atinyakov/JobTracker/internal/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth         *AuthHandler
	Applications *ApplicationHandler
	Deliverables *DeliverableHandler
	Writing      *WritingHandler
	Assistant    *AssistantHandler
	Analytics    *AnalyticsHandler
}

// NewRouter constructs and returns an HTTP handler that serves the JobTracker
// API.
//
// Routes:
//
//	GET  /health, /metrics               public
//	POST /register, /login               public
//	POST /password                       → Auth.ChangePassword
//	GET  /meta                           → Applications.Meta
//	     /applications[/{id}]            → Applications CRUD
//	     /deliverables[/{id}]            → Deliverables CRUD
//	     /writing[/{id}]                 → Writing CRUD
//	POST /assistant                      → Assistant.Ask (rate limited)
//	GET  /analytics                      → Analytics.Summary
//
// Middleware chain (applied in order):
//  1. RequestID and Recoverer
//  2. Metrics and WithRequestLogging(logger)
//  3. AllowContentType("application/json") for requests with a body
//  4. TokenAuth on everything but the public routes
func NewRouter(
	h Handlers,
	tokens middleware.TokenValidator,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Public endpoints
	r.Get("/health", Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)

	// Protected group: requires a valid session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(tokens))

		r.Post("/password", h.Auth.ChangePassword)
		r.Get("/meta", h.Applications.Meta)

		r.Route("/applications", func(r chi.Router) {
			r.Get("/", h.Applications.List)
			r.Post("/", h.Applications.Create)
			r.Get("/{id}", h.Applications.Get)
			r.Patch("/{id}", h.Applications.Update)
			r.Put("/{id}", h.Applications.Update)
			r.Delete("/{id}", h.Applications.Delete)
		})

		r.Route("/deliverables", func(r chi.Router) {
			r.Get("/", h.Deliverables.List)
			r.Post("/", h.Deliverables.Create)
			r.Patch("/{id}", h.Deliverables.Update)
			r.Put("/{id}", h.Deliverables.Update)
			r.Delete("/{id}", h.Deliverables.Delete)
		})

		r.Route("/writing", func(r chi.Router) {
			r.Get("/", h.Writing.List)
			r.Post("/", h.Writing.Create)
			r.Patch("/{id}", h.Writing.Update)
			r.Put("/{id}", h.Writing.Update)
			r.Delete("/{id}", h.Writing.Delete)
		})

		r.With(limiter.Handler).Post("/assistant", h.Assistant.Ask)
		r.Get("/analytics", h.Analytics.Summary)
	})

	return r
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
