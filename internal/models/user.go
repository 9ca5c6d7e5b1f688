package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	Bio          string    `json:"bio"`
	ShowEmail    bool      `json:"show_email"`
	ShowActivity bool      `json:"show_activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicProfile is the projection of a user shown to other users.
// Email is only populated when the owner opted in via show_email.
type PublicProfile struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Email       string `json:"email,omitempty"`
}

func (u *User) PublicProfile() *PublicProfile {
	profile := &PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
	if u.ShowEmail {
		profile.Email = u.Email
	}
	return profile
}
