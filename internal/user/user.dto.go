package user

import "linkFitAPI/internal/challenge"

type EstablishSessionRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type SessionResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// BadgeWithStatus decorates a static badge definition with the per-user
// earned flag, mirroring how the badge shelf is rendered.
type BadgeWithStatus struct {
	challenge.Badge
	Earned     bool   `json:"earned"`
	AchievedAt string `json:"achievedAt,omitempty"`
}

// PublicProfileResponse is what other users see when browsing a profile.
type PublicProfileResponse struct {
	User          *User             `json:"user"`
	CompletedDays int               `json:"completedDays"`
	Badges        []BadgeWithStatus `json:"badges"`
	PostCount     int               `json:"postCount"`
}
