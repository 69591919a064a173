package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"desiiseb/internal/config"
	"desiiseb/internal/model"
)

func newTestAuthService(repo *mockRefreshTokenRepository) *AuthService {
	return NewAuthService(repo, &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 2592000,
	})
}

func TestAuthService_GenerateTokenPair(t *testing.T) {
	repo := &mockRefreshTokenRepository{}
	svc := newTestAuthService(repo)

	pair, err := svc.GenerateTokenPair(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pair.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", pair.ExpiresIn)
	}

	// The access token must be a valid HS256 JWT carrying the user ID.
	token, err := jwt.Parse(pair.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("access token should parse and validate: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"].(float64) != 7 {
		t.Errorf("user_id claim = %v, want 7", claims["user_id"])
	}

	// Only the hash of the refresh token is persisted.
	if len(repo.stored) != 1 {
		t.Fatalf("stored %d refresh tokens, want 1", len(repo.stored))
	}
	if repo.stored[0].TokenHash == pair.RefreshToken {
		t.Error("the raw refresh token must never be stored")
	}
	if repo.stored[0].UserID != 7 {
		t.Errorf("stored UserID = %d, want 7", repo.stored[0].UserID)
	}
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	repo := &mockRefreshTokenRepository{}
	svc := newTestAuthService(repo)

	first, err := svc.GenerateTokenPair(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, userID, err := svc.RefreshTokens(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("rotation must issue a new refresh token")
	}

	// The original token is revoked and points at its replacement.
	old := repo.stored[0]
	if old.RevokedAt == nil {
		t.Error("rotated token should be revoked")
	}
	if old.ReplacedBy == nil {
		t.Error("rotated token should record its replacement")
	}
}

func TestAuthService_RefreshTokens_ReuseRevokesFamily(t *testing.T) {
	repo := &mockRefreshTokenRepository{}
	svc := newTestAuthService(repo)

	first, _ := svc.GenerateTokenPair(context.Background(), 7)
	if _, _, err := svc.RefreshTokens(context.Background(), first.RefreshToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Replaying the already-rotated token means the raw value leaked.
	_, _, err := svc.RefreshTokens(context.Background(), first.RefreshToken)
	if !errors.Is(err, model.ErrRefreshTokenReused) {
		t.Fatalf("error = %v, want %v", err, model.ErrRefreshTokenReused)
	}

	// Every token of the user is now revoked.
	for i, tok := range repo.stored {
		if tok.RevokedAt == nil {
			t.Errorf("stored[%d] not revoked after reuse detection", i)
		}
	}
}

func TestAuthService_RefreshTokens_Expired(t *testing.T) {
	repo := &mockRefreshTokenRepository{}
	svc := newTestAuthService(repo)

	pair, _ := svc.GenerateTokenPair(context.Background(), 7)
	repo.stored[0].ExpiresAt = time.Now().Add(-time.Hour)

	_, _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if !errors.Is(err, model.ErrRefreshTokenExpired) {
		t.Errorf("error = %v, want %v", err, model.ErrRefreshTokenExpired)
	}
}

func TestAuthService_RefreshTokens_Unknown(t *testing.T) {
	svc := newTestAuthService(&mockRefreshTokenRepository{})

	_, _, err := svc.RefreshTokens(context.Background(), "never-issued")
	if !errors.Is(err, model.ErrRefreshTokenNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrRefreshTokenNotFound)
	}
}
