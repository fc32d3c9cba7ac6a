package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/handler/dto"
	"github.com/linkpage/linkpage/internal/service"
)

// AnalyticsHandler serves the owner's dashboard.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:    svc,
		logger: logger.With("component", "handler.analytics"),
	}
}

// Dashboard handles GET /api/v1/analytics?days=N.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.Fail("Days must be a whole number", "days"))
			return
		}
		days = n
	}

	dash, err := h.svc.Dashboard(r.Context(), auth.UserIDFromContext(r.Context()), days)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, dash)
}
