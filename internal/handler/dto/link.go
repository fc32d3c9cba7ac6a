package dto

import (
	"strconv"
	"time"

	"github.com/linkpage/linkpage/internal/model"
)

// AddLinkRequest is the body of POST /api/v1/links.
type AddLinkRequest struct {
	Platform     string `json:"platform" validate:"required"`
	Input        string `json:"input" validate:"required,max=2048"`
	Title        string `json:"title,omitempty" validate:"max=100"`
	Icon         string `json:"icon,omitempty" validate:"max=2048"`
	DisplayOrder *int   `json:"display_order,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// UpdateLinkRequest is the body of PATCH /api/v1/links/{id}.
type UpdateLinkRequest struct {
	Platform     *string `json:"platform,omitempty"`
	Input        *string `json:"input,omitempty" validate:"omitempty,max=2048"`
	Title        *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Icon         *string `json:"icon,omitempty" validate:"omitempty,max=2048"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// ReorderLinksRequest is the body of PUT /api/v1/links/order.
type ReorderLinksRequest struct {
	IDs []int64 `json:"ids" validate:"max=500,dive,gt=0"`
}

// LinkResponse represents a link in owner API responses.
type LinkResponse struct {
	ID           int64     `json:"id"`
	Platform     string    `json:"platform"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Icon         string    `json:"icon"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	ClickCount   int64     `json:"click_count"`
	ClickURL     string    `json:"click_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link, baseURL string) *LinkResponse {
	return &LinkResponse{
		ID:           link.ID,
		Platform:     link.Platform,
		Title:        link.Title,
		URL:          link.URL,
		Icon:         link.Icon,
		DisplayOrder: link.DisplayOrder,
		IsActive:     link.IsActive,
		ClickCount:   link.ClickCount,
		ClickURL:     ClickURL(baseURL, link.ID),
		CreatedAt:    link.CreatedAt,
		UpdatedAt:    link.UpdatedAt,
	}
}

// ToLinkResponses converts links in order.
func ToLinkResponses(links []model.Link, baseURL string) []LinkResponse {
	out := make([]LinkResponse, len(links))
	for i := range links {
		out[i] = *ToLinkResponse(&links[i], baseURL)
	}
	return out
}

// ClickURL is the counted redirect URL for a link.
func ClickURL(baseURL string, linkID int64) string {
	return baseURL + "/go/" + strconv.FormatInt(linkID, 10)
}
