package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
)

// DeliverableService defines the deliverable operations required by DeliverableHandler.
type DeliverableService interface {
	ListDeliverables(ctx context.Context, userID, applicationID string) ([]models.Deliverable, error)
	CreateDeliverable(ctx context.Context, userID string, in models.DeliverableInput) (*models.Deliverable, error)
	UpdateDeliverable(ctx context.Context, userID, id string, patch models.DeliverablePatch) (*models.Deliverable, error)
	DeleteDeliverable(ctx context.Context, userID, id string) error
}

// DeliverableHandler serves /deliverables.
type DeliverableHandler struct {
	Service DeliverableService
	Logger  *zap.Logger
}

// List handles GET /deliverables?application_id=.
func (h *DeliverableHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListDeliverables(r.Context(), middleware.GetUserIDFromContext(r.Context()), r.URL.Query().Get("application_id"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /deliverables. The body names the parent application.
func (h *DeliverableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.DeliverableInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	d, err := h.Service.CreateDeliverable(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// Update handles PATCH and PUT /deliverables/{id}.
func (h *DeliverableHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.DeliverablePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	d, err := h.Service.UpdateDeliverable(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /deliverables/{id}.
func (h *DeliverableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteDeliverable(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
