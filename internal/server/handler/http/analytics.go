package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
)

// AnalyticsService computes the dashboard summary.
type AnalyticsService interface {
	Summary(ctx context.Context, userID string) (models.Summary, error)
}

// AnalyticsHandler serves /analytics.
type AnalyticsHandler struct {
	Service AnalyticsService
	Logger  *zap.Logger
}

// Summary handles GET /analytics.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
