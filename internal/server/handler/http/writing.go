package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
)

// WritingService defines the writing note operations required by WritingHandler.
type WritingService interface {
	ListWritingNotes(ctx context.Context, userID, applicationID, query string) ([]models.WritingNote, error)
	CreateWritingNote(ctx context.Context, userID string, in models.WritingNoteInput) (*models.WritingNote, error)
	UpdateWritingNote(ctx context.Context, userID, id string, patch models.WritingNotePatch) (*models.WritingNote, error)
	DeleteWritingNote(ctx context.Context, userID, id string) error
}

// WritingHandler serves /writing.
type WritingHandler struct {
	Service WritingService
	Logger  *zap.Logger
}

// List handles GET /writing?application_id=&q=.
func (h *WritingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	notes, err := h.Service.ListWritingNotes(r.Context(), middleware.GetUserIDFromContext(r.Context()), q.Get("application_id"), q.Get("q"))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Create handles POST /writing.
func (h *WritingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.WritingNoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	n, err := h.Service.CreateWritingNote(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// Update handles PATCH and PUT /writing/{id}.
func (h *WritingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.WritingNotePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	n, err := h.Service.UpdateWritingNote(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Delete handles DELETE /writing/{id}.
func (h *WritingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteWritingNote(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
