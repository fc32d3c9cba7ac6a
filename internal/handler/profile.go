package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/background"
	"github.com/linkpage/linkpage/internal/handler/dto"
	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/service"
)

// ProfileHandler handles the owner's profile.
type ProfileHandler struct {
	svc     *service.ProfileService
	baseURL string
	logger  *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, baseURL string, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc:     svc,
		baseURL: baseURL,
		logger:  logger.With("component", "handler.profile"),
	}
}

// Get handles GET /api/v1/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetMyProfile(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeProfile(w, http.StatusOK, p)
}

// Create handles POST /api/v1/profile.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	p, err := h.svc.CreateProfile(r.Context(), userID, service.CreateProfileInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("profile_created", "profile_id", p.ID, "user_id", userID, "username", p.Username)
	h.writeProfile(w, http.StatusCreated, p)
}

// Update handles PATCH /api/v1/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), req.ToModel())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("profile_updated", "profile_id", p.ID)
	h.writeProfile(w, http.StatusOK, p)
}

// UpdateBackground handles PUT /api/v1/profile/background. The body is a
// raw background configuration.
func (h *ProfileHandler) UpdateBackground(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, dto.Fail("Request body is too large", ""))
		return
	}

	p, err := h.svc.UpdateBackground(r.Context(), auth.UserIDFromContext(r.Context()), string(raw))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeProfile(w, http.StatusOK, p)
}

// ChangeBackgroundType handles POST /api/v1/profile/background/type.
func (h *ProfileHandler) ChangeBackgroundType(w http.ResponseWriter, r *http.Request) {
	var req dto.BackgroundTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.ChangeBackgroundType(r.Context(), auth.UserIDFromContext(r.Context()), background.Type(req.Type))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeProfile(w, http.StatusOK, p)
}

// CheckUsername handles GET /api/v1/usernames/{username}.
func (h *ProfileHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CheckUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, res)
}

func (h *ProfileHandler) writeProfile(w http.ResponseWriter, status int, p *model.Profile) {
	bg, textColor := service.Background(p)
	writeOK(w, status, dto.ToProfileResponse(p, bg, textColor, h.baseURL))
}
