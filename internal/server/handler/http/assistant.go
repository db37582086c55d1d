package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
)

// AssistantService answers questions about one application.
type AssistantService interface {
	Ask(ctx context.Context, userID, applicationID, message string, history []models.ChatTurn) (string, error)
}

// AssistantHandler serves /assistant.
type AssistantHandler struct {
	Assistant AssistantService
	Logger    *zap.Logger
}

type askRequest struct {
	ApplicationID string            `json:"application_id"`
	Message       string            `json:"message"`
	History       []models.ChatTurn `json:"history"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// Ask handles POST /assistant.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	reply, err := h.Assistant.Ask(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.ApplicationID, req.Message, req.History)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Reply: reply})
}
