package model

import (
	"errors"
	"time"
)

// Profile represents a user profile in the system
type Profile struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	DisplayName    *string   `db:"display_name" json:"display_name"`
	Bio            *string   `db:"bio" json:"bio"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	CoverURL       *string   `db:"cover_url" json:"cover_url"`
	CoverKey       *string   `db:"cover_key" json:"-"`
	Website        *string   `db:"website" json:"website"`
	Location       *string   `db:"location" json:"location"`
	IsVerified     bool      `db:"is_verified" json:"is_verified"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Computed fields (not columns on profiles)
	FollowerCount     int  `json:"follower_count"`
	FollowingCount    int  `json:"following_count"`
	PostCount         int  `json:"post_count"`
	ViewerIsFollowing bool `json:"viewer_is_following"`
}

// ProfileSummary is the author payload embedded in posts and notifications.
type ProfileSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	DisplayName *string `db:"display_name" json:"display_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
	IsVerified  bool    `db:"is_verified" json:"is_verified"`
}

// RegisterRequest represents the data needed to register a new profile
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the editable profile fields.
// Nil pointers mean "leave unchanged".
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Website     *string `json:"website"`
	Location    *string `json:"location"`
}

// Field limits, matching the original client-side validation
const (
	MaxDisplayNameLength = 50
	MaxBioLength         = 160
	MaxLocationLength    = 30
	MaxUsernameLength    = 30
)

var (
	// ErrProfileNotFound is returned when a profile cannot be found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUsernameExists is returned when attempting to register a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFieldTooLong is returned when a profile field exceeds its limit
	ErrFieldTooLong = errors.New("field too long")
)
