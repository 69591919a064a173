package model

import (
	"errors"
	"time"
)

// RefreshToken is a rotating, hashed refresh token. Only the SHA-256 hash of
// the token is stored; the raw value is returned to the client once.
type RefreshToken struct {
	ID         string     `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	TokenHash  string     `db:"token_hash" json:"-"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	RevokedAt  *time.Time `db:"revoked_at" json:"-"`
	ReplacedBy *string    `db:"replaced_by" json:"-"`
}

// Valid reports whether the token is usable right now.
func (t *RefreshToken) Valid() bool {
	return t.RevokedAt == nil && time.Now().Before(t.ExpiresAt)
}

// TokenPair is what a successful login, register or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// LoginResponse bundles the profile with a fresh token pair.
type LoginResponse struct {
	User         *Profile `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
}

// RefreshRequest carries the raw refresh token for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest carries the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")

	// ErrRefreshTokenReused signals a rotation replay: a revoked token came
	// back, so the whole family gets revoked.
	ErrRefreshTokenReused = errors.New("refresh token reused")
)

// Error codes used by the auth middleware and handlers
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
