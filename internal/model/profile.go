// Package model defines domain entities for the application.
package model

import "time"

// Profile is one user's public link-in-bio page.
type Profile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"-"`
	Username           string    `json:"username"`
	DisplayName        string    `json:"display_name"`
	Bio                string    `json:"bio,omitempty"`
	ProfilePicture     string    `json:"profile_picture,omitempty"`
	CompanyLogo        string    `json:"company_logo,omitempty"`
	ThemeColor         string    `json:"theme_color"`
	TextColor          string    `json:"text_color"`
	BackgroundColor    string    `json:"background_color"`
	BackgroundSettings string    `json:"-"` // serialized background config
	IsActive           bool      `json:"is_active"`
	ViewCount          int64     `json:"view_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Default presentation values for new profiles.
const (
	DefaultThemeColor      = "#000000"
	DefaultTextColor       = "#000000"
	DefaultBackgroundColor = "#ffffff"
)

// PublicProfile is a resolved profile together with its active links in
// render order.
type PublicProfile struct {
	Profile Profile `json:"profile"`
	Links   []Link  `json:"links"`
}

// ProfileUpdate carries a partial profile update. Nil fields are left as-is.
type ProfileUpdate struct {
	Username        *string
	DisplayName     *string
	Bio             *string
	ProfilePicture  *string
	CompanyLogo     *string
	ThemeColor      *string
	TextColor       *string
	BackgroundColor *string
	IsActive        *bool
}

// IsEmpty reports whether the update changes nothing.
func (u *ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.DisplayName == nil && u.Bio == nil &&
		u.ProfilePicture == nil && u.CompanyLogo == nil && u.ThemeColor == nil &&
		u.TextColor == nil && u.BackgroundColor == nil && u.IsActive == nil
}
