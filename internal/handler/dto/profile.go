package dto

import (
	"time"

	"github.com/linkpage/linkpage/internal/background"
	"github.com/linkpage/linkpage/internal/model"
)

// CreateProfileRequest is the body of POST /api/v1/profile.
type CreateProfileRequest struct {
	Username    string `json:"username" validate:"required"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Bio         string `json:"bio" validate:"max=500"`
}

// UpdateProfileRequest is the body of PATCH /api/v1/profile. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	Username        *string `json:"username,omitempty"`
	DisplayName     *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ThemeColor      *string `json:"theme_color,omitempty" validate:"omitempty,hexcolor"`
	TextColor       *string `json:"text_color,omitempty" validate:"omitempty,hexcolor"`
	BackgroundColor *string `json:"background_color,omitempty" validate:"omitempty,hexcolor"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// ToModel converts the request to a partial model update.
func (r UpdateProfileRequest) ToModel() model.ProfileUpdate {
	return model.ProfileUpdate{
		Username:        r.Username,
		DisplayName:     r.DisplayName,
		Bio:             r.Bio,
		ThemeColor:      r.ThemeColor,
		TextColor:       r.TextColor,
		BackgroundColor: r.BackgroundColor,
		IsActive:        r.IsActive,
	}
}

// BackgroundTypeRequest is the body of POST /api/v1/profile/background/type.
type BackgroundTypeRequest struct {
	Type string `json:"type" validate:"required,oneof=solid hyperspeed silk squares iridescence"`
}

// ProfileResponse is the owner's view of a profile.
type ProfileResponse struct {
	ID                 int64             `json:"id"`
	Username           string            `json:"username"`
	DisplayName        string            `json:"display_name"`
	Bio                string            `json:"bio"`
	ProfilePicture     string            `json:"profile_picture"`
	CompanyLogo        string            `json:"company_logo"`
	ThemeColor         string            `json:"theme_color"`
	TextColor          string            `json:"text_color"`
	BackgroundColor    string            `json:"background_color"`
	Background         background.Config `json:"background"`
	EffectiveTextColor string            `json:"effective_text_color"`
	IsActive           bool              `json:"is_active"`
	ViewCount          int64             `json:"view_count"`
	PublicURL          string            `json:"public_url"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ToProfileResponse converts a Profile to its owner response. bg and
// textColor come from service.Background.
func ToProfileResponse(p *model.Profile, bg background.Config, textColor, baseURL string) *ProfileResponse {
	return &ProfileResponse{
		ID:                 p.ID,
		Username:           p.Username,
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		ProfilePicture:     p.ProfilePicture,
		CompanyLogo:        p.CompanyLogo,
		ThemeColor:         p.ThemeColor,
		TextColor:          p.TextColor,
		BackgroundColor:    p.BackgroundColor,
		Background:         bg,
		EffectiveTextColor: textColor,
		IsActive:           p.IsActive,
		ViewCount:          p.ViewCount,
		PublicURL:          baseURL + "/" + p.Username,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// PublicProfileResponse is the body of GET /{username}.
type PublicProfileResponse struct {
	Username           string               `json:"username"`
	DisplayName        string               `json:"display_name"`
	Bio                string               `json:"bio,omitempty"`
	ProfilePicture     string               `json:"profile_picture,omitempty"`
	CompanyLogo        string               `json:"company_logo,omitempty"`
	ThemeColor         string               `json:"theme_color"`
	TextColor          string               `json:"text_color"`
	BackgroundColor    string               `json:"background_color"`
	Background         background.Config    `json:"background"`
	EffectiveTextColor string               `json:"effective_text_color"`
	Links              []PublicLinkResponse `json:"links"`
}

// PublicLinkResponse is a link as rendered on a public page. Href routes
// through the click endpoint so clicks are counted.
type PublicLinkResponse struct {
	ID       int64  `json:"id"`
	Platform string `json:"platform"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Href     string `json:"href"`
	Icon     string `json:"icon,omitempty"`
}

// ToPublicProfileResponse converts a resolved profile for public rendering.
func ToPublicProfileResponse(pp *model.PublicProfile, bg background.Config, textColor, baseURL string) *PublicProfileResponse {
	p := &pp.Profile
	links := make([]PublicLinkResponse, len(pp.Links))
	for i, l := range pp.Links {
		links[i] = PublicLinkResponse{
			ID:       l.ID,
			Platform: l.Platform,
			Title:    l.Title,
			URL:      l.URL,
			Href:     ClickURL(baseURL, l.ID),
			Icon:     l.Icon,
		}
	}
	return &PublicProfileResponse{
		Username:           p.Username,
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		ProfilePicture:     p.ProfilePicture,
		CompanyLogo:        p.CompanyLogo,
		ThemeColor:         p.ThemeColor,
		TextColor:          p.TextColor,
		BackgroundColor:    p.BackgroundColor,
		Background:         bg,
		EffectiveTextColor: textColor,
		Links:              links,
	}
}
