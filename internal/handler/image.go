package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/handler/dto"
	"github.com/linkpage/linkpage/internal/service"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 1 << 20

// ImageHandler accepts multipart image uploads.
type ImageHandler struct {
	svc     *service.ImageService
	baseURL string
	logger  *slog.Logger
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(svc *service.ImageService, baseURL string, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		svc:     svc,
		baseURL: baseURL,
		logger:  logger.With("component", "handler.image"),
	}
}

// UploadProfile handles POST /api/v1/profile/images/{kind}.
func (h *ImageHandler) UploadProfile(w http.ResponseWriter, r *http.Request) {
	file, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	kind := service.ImageKind(chi.URLParam(r, "kind"))
	p, err := h.svc.UploadProfileImage(r.Context(), auth.UserIDFromContext(r.Context()), kind, file)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("image_uploaded", "profile_id", p.ID, "kind", kind)
	bg, textColor := service.Background(p)
	writeOK(w, http.StatusOK, dto.ToProfileResponse(p, bg, textColor, h.baseURL))
}

// UploadLinkIcon handles POST /api/v1/links/{linkID}/icon.
func (h *ImageHandler) UploadLinkIcon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "linkID")
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.Fail("Link not found", ""))
		return
	}

	file, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	link, err := h.svc.UploadLinkIcon(r.Context(), auth.UserIDFromContext(r.Context()), id, file)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("image_uploaded", "link_id", link.ID, "kind", service.ImageLinkIcon)
	writeOK(w, http.StatusOK, dto.ToLinkResponse(link, h.baseURL))
}

// formFile extracts the "file" part of a multipart request.
func (h *ImageHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, dto.Fail("Request body is too large", ""))
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, dto.Fail("Upload the image as multipart form data", "file"))
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.Fail("Choose an image to upload", "file"))
		return nil, false
	}
	return file, true
}
