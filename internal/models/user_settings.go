package models

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

type Privacy string

const (
	PrivacyPrivate Privacy = "private"
	PrivacyPublic  Privacy = "public"
)

func (p Privacy) IsValid() bool {
	return p == PrivacyPrivate || p == PrivacyPublic
}

// UserSettings holds per-user preferences. Privacy is stored but not enforced.
type UserSettings struct {
	Theme         Theme   `json:"theme"`
	Notifications bool    `json:"notifications"`
	Privacy       Privacy `json:"privacy"`
}

// DefaultUserSettings is what a user gets before saving anything.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:         ThemeSystem,
		Notifications: true,
		Privacy:       PrivacyPrivate,
	}
}

// UserProfile is the editable public-facing profile of a user
type UserProfile struct {
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
