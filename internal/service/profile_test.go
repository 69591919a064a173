package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"desiiseb/internal/model"
)

func TestProfileService_Register_Success(t *testing.T) {
	mockRepo := &mockProfileRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, profile *model.Profile) error {
			profile.ID = 1
			profile.CreatedAt = time.Now()
			return nil
		},
	}
	svc := NewProfileService(mockRepo, &mockFollowRepository{})

	req := &model.RegisterRequest{
		Username:    "Rahim_01",
		Password:    "securepassword123",
		DisplayName: "রহিম",
	}

	profile, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if profile == nil {
		t.Fatal("expected profile, got nil")
	}

	// Handles are normalized to lowercase.
	if profile.Username != "rahim_01" {
		t.Errorf("username = %q, want %q", profile.Username, "rahim_01")
	}
	if profile.DisplayName == nil || *profile.DisplayName != "রহিম" {
		t.Errorf("display_name = %v, want রহিম", profile.DisplayName)
	}

	// Password must be hashed, never stored as given.
	if profile.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHashed), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	if mockRepo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1", mockRepo.createCalls)
	}
}

func TestProfileService_Register_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		req     model.RegisterRequest
		exists  bool
		wantErr error
	}{
		{
			name: "username taken",
			req:  model.RegisterRequest{Username: "taken", Password: "pw123456"},
			exists:  true,
			wantErr: model.ErrUsernameExists,
		},
		{
			name: "display name too long",
			req: model.RegisterRequest{
				Username:    "valid_user",
				Password:    "pw123456",
				DisplayName: strings.Repeat("ক", 51),
			},
			wantErr: model.ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockProfileRepository{
				existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
					return tt.exists, nil
				},
			}
			svc := NewProfileService(mockRepo, &mockFollowRepository{})

			_, err := svc.Register(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if mockRepo.createCalls != 0 {
				t.Error("Create should not be called for invalid registration")
			}
		})
	}
}

func TestProfileService_Register_BadUsernames(t *testing.T) {
	svc := NewProfileService(&mockProfileRepository{}, &mockFollowRepository{})

	for _, username := range []string{"ab", "has space", "ঢাকা", "UPPER!", strings.Repeat("a", 31)} {
		_, err := svc.Register(context.Background(), &model.RegisterRequest{
			Username: username,
			Password: "pw123456",
		})
		if err == nil {
			t.Errorf("username %q should be rejected", username)
		}
	}
}

func TestProfileService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testProfile := &model.Profile{
		ID:             1,
		Username:       "rahim",
		PasswordHashed: string(validHash),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.Profile, error)
		wantErr       error
	}{
		{
			name:     "successful login",
			username: "rahim",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.Profile, error) {
				return testProfile, nil
			},
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.Profile, error) {
				return nil, model.ErrProfileNotFound
			},
			wantErr: model.ErrInvalidCredentials, // Don't reveal the username doesn't exist
		},
		{
			name:     "wrong password",
			username: "rahim",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.Profile, error) {
				return testProfile, nil
			},
			wantErr: model.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockProfileRepository{getByUsernameFn: tt.mockGetByUser}
			svc := NewProfileService(mockRepo, &mockFollowRepository{})

			profile, err := svc.Login(context.Background(), &model.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if profile != nil {
					t.Error("expected nil profile on failed login")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if profile == nil {
				t.Error("expected profile, got nil")
			}
		})
	}
}

func TestProfileService_GetByID_EnrichesFollowState(t *testing.T) {
	viewerID := int64(2)
	mockRepo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return &model.Profile{ID: id, Username: "karim"}, nil
		},
		countsFn: func(ctx context.Context, id int64) (int, int, int, error) {
			return 10, 5, 42, nil
		},
	}
	followRepo := &mockFollowRepository{
		existsFn: func(ctx context.Context, followerID, followingID int64) (bool, error) {
			return followerID == viewerID, nil
		},
	}
	svc := NewProfileService(mockRepo, followRepo)

	profile, err := svc.GetByID(context.Background(), 1, &viewerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.FollowerCount != 10 || profile.FollowingCount != 5 || profile.PostCount != 42 {
		t.Errorf("counts = %d/%d/%d", profile.FollowerCount, profile.FollowingCount, profile.PostCount)
	}
	if !profile.ViewerIsFollowing {
		t.Error("ViewerIsFollowing should be true")
	}
}

func TestProfileService_Update_FieldTooLong(t *testing.T) {
	svc := NewProfileService(&mockProfileRepository{}, &mockFollowRepository{})

	bio := strings.Repeat("ক", 161)
	_, err := svc.Update(context.Background(), 1, model.UpdateProfileRequest{Bio: &bio})
	if !errors.Is(err, model.ErrFieldTooLong) {
		t.Errorf("error = %v, want %v", err, model.ErrFieldTooLong)
	}
}

func TestProfileService_Search_EmptyQuery(t *testing.T) {
	queried := false
	mockRepo := &mockProfileRepository{
		searchFn: func(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error) {
			queried = true
			return nil, nil
		},
	}
	svc := NewProfileService(mockRepo, &mockFollowRepository{})

	users, err := svc.Search(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried {
		t.Error("repository should not be queried for an empty search")
	}
	if len(users) != 0 {
		t.Errorf("users = %v, want empty", users)
	}
}
