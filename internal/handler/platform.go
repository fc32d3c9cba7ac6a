package handler

import (
	"net/http"

	"github.com/linkpage/linkpage/internal/platform"
)

type platformsResponse struct {
	Platforms  []platform.Platform                       `json:"platforms"`
	Categories map[platform.Category][]platform.Platform `json:"categories"`
}

// Platforms handles GET /api/v1/platforms. The registry is static, so
// clients may cache it.
func (h *Handler) Platforms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeOK(w, http.StatusOK, platformsResponse{
		Platforms:  platform.All(),
		Categories: platform.Categories(),
	})
}
