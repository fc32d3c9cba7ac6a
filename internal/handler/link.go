package handler

import (
	"log/slog"
	"net/http"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/handler/dto"
	"github.com/linkpage/linkpage/internal/service"
)

// LinkHandler handles the owner's links.
type LinkHandler struct {
	svc     *service.LinkService
	baseURL string
	logger  *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, baseURL string, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:     svc,
		baseURL: baseURL,
		logger:  logger.With("component", "handler.link"),
	}
}

// List handles GET /api/v1/links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListLinks(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, dto.ToLinkResponses(links, h.baseURL))
}

// Create handles POST /api/v1/links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.svc.AddLink(r.Context(), auth.UserIDFromContext(r.Context()), service.AddLinkInput{
		Platform:     req.Platform,
		Input:        req.Input,
		Title:        req.Title,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("link_created", "link_id", link.ID, "platform", link.Platform)
	writeOK(w, http.StatusCreated, dto.ToLinkResponse(link, h.baseURL))
}

// Update handles PATCH /api/v1/links/{linkID}.
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "linkID")
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.Fail("Link not found", ""))
		return
	}

	var req dto.UpdateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.svc.UpdateLink(r.Context(), auth.UserIDFromContext(r.Context()), id, service.UpdateLinkInput{
		Platform:     req.Platform,
		Input:        req.Input,
		Title:        req.Title,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("link_updated", "link_id", link.ID)
	writeOK(w, http.StatusOK, dto.ToLinkResponse(link, h.baseURL))
}

// Delete handles DELETE /api/v1/links/{linkID}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "linkID")
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.Fail("Link not found", ""))
		return
	}

	if err := h.svc.DeleteLink(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("link_deleted", "link_id", id)
	writeJSON(w, http.StatusOK, dto.OKMessage("Link deleted"))
}

// Reorder handles PUT /api/v1/links/order and returns the links in their
// new order.
func (h *LinkHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderLinksRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	if err := h.svc.ReorderLinks(ctx, userID, req.IDs); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	links, err := h.svc.ListLinks(ctx, userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, dto.ToLinkResponses(links, h.baseURL))
}
