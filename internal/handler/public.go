package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkpage/linkpage/internal/analytics"
	"github.com/linkpage/linkpage/internal/handler/dto"
	"github.com/linkpage/linkpage/internal/middleware"
	"github.com/linkpage/linkpage/internal/service"
)

// ActivityRecorder records views and clicks off the request path.
type ActivityRecorder interface {
	RecordViewAsync(profileID int64, v analytics.Visitor)
	RecordClickAsync(linkID int64, v analytics.Visitor)
}

// PublicHandler serves unauthenticated profile pages and click redirects.
type PublicHandler struct {
	profiles *service.ProfileService
	links    *service.LinkService
	recorder ActivityRecorder
	baseURL  string
	logger   *slog.Logger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(profiles *service.ProfileService, links *service.LinkService, recorder ActivityRecorder, baseURL string, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		profiles: profiles,
		links:    links,
		recorder: recorder,
		baseURL:  baseURL,
		logger:   logger.With("component", "handler.public"),
	}
}

// Profile handles GET /{username}. A successful resolve records one view.
func (h *PublicHandler) Profile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	pp, err := h.profiles.ResolvePublic(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.recorder.RecordViewAsync(pp.Profile.ID, visitor(r))

	h.logger.Debug("profile_resolved",
		"username", pp.Profile.Username,
		"links", len(pp.Links),
		"duration_ms", float64(time.Since(start).Microseconds())/1000,
	)

	bg, textColor := service.Background(&pp.Profile)
	w.Header().Set("Cache-Control", "private, max-age=0")
	writeOK(w, http.StatusOK, dto.ToPublicProfileResponse(pp, bg, textColor, h.baseURL))
}

// Click handles GET /go/{linkID}: redirect first, record afterwards.
func (h *PublicHandler) Click(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "linkID")
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.Fail("Link not found", ""))
		return
	}

	link, err := h.links.PublicLink(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.recorder.RecordClickAsync(link.ID, visitor(r))

	w.Header().Set("Cache-Control", "private, max-age=0")
	http.Redirect(w, r, link.URL, http.StatusFound)
}

// Beacon handles POST /api/v1/public/links/{linkID}/click for clients that
// open the destination themselves.
func (h *PublicHandler) Beacon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "linkID")
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.Fail("Link not found", ""))
		return
	}

	link, err := h.links.PublicLink(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.recorder.RecordClickAsync(link.ID, visitor(r))
	writeJSON(w, http.StatusAccepted, dto.OKMessage("Click recorded"))
}

func visitor(r *http.Request) analytics.Visitor {
	return analytics.NewVisitor(middleware.ClientIP(r), r.UserAgent(), r.Referer())
}
