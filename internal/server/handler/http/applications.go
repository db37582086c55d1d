package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
)

// ApplicationService defines the application operations required by ApplicationHandler.
type ApplicationService interface {
	Meta(ctx context.Context, userID string) (models.Meta, error)
	// List returns the user's applications, optionally narrowed by status and a search query.
	List(ctx context.Context, userID, status, query string) ([]models.Application, error)
	Get(ctx context.Context, userID, id string) (*models.Application, error)
	Create(ctx context.Context, userID string, in models.ApplicationInput) (*models.Application, error)
	Update(ctx context.Context, userID, id string, patch models.ApplicationPatch) (*models.Application, error)
	Delete(ctx context.Context, userID, id string) error
}

// ApplicationHandler serves /meta and /applications.
type ApplicationHandler struct {
	Service ApplicationService
	Logger  *zap.Logger
}

// Meta handles GET /meta.
func (h *ApplicationHandler) Meta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.Service.Meta(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// List handles GET /applications?status=&q=.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	apps, err := h.Service.List(r.Context(), middleware.GetUserIDFromContext(r.Context()), q.Get("status"), q.Get("q"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// Get handles GET /applications/{id}.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.Service.Get(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Create handles POST /applications.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ApplicationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	app, err := h.Service.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// Update handles PATCH and PUT /applications/{id}. Both are partial updates.
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ApplicationPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	app, err := h.Service.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Delete handles DELETE /applications/{id}.
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
