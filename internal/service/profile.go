package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"desiiseb/internal/model"
	"desiiseb/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// ProfileService handles account registration, login and profile reads and
// edits.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, followRepo repository.FollowRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		followRepo:  followRepo,
	}
}

// Register creates a new account. Usernames are lowercase ASCII handles.
func (s *ProfileService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Profile, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	if !usernamePattern.MatchString(req.Username) {
		return nil, fmt.Errorf("invalid username: must be 3-30 lowercase letters, digits or underscores")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}
	if utf8.RuneCountInString(req.DisplayName) > model.MaxDisplayNameLength {
		return nil, model.ErrFieldTooLong
	}

	exists, err := s.profileRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &model.Profile{
		Username:       req.Username,
		PasswordHashed: string(hashedPassword),
	}
	if req.DisplayName != "" {
		profile.DisplayName = &req.DisplayName
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Login authenticates by username and password. Failures never reveal
// whether the username exists.
func (s *ProfileService) Login(ctx context.Context, req *model.LoginRequest) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, strings.ToLower(req.Username))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return profile, nil
}

// GetByUsername returns a profile with counts and the viewer's follow state.
func (s *ProfileService) GetByUsername(ctx context.Context, username string, viewerID *int64) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, profile, viewerID)
}

// GetByID returns a profile with counts and the viewer's follow state.
func (s *ProfileService) GetByID(ctx context.Context, id int64, viewerID *int64) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, profile, viewerID)
}

func (s *ProfileService) enrich(ctx context.Context, profile *model.Profile, viewerID *int64) (*model.Profile, error) {
	followers, following, posts, err := s.profileRepo.Counts(ctx, profile.ID)
	if err != nil {
		log.Printf("[ProfileService] Failed to get counts for user=%d: %v", profile.ID, err)
	} else {
		profile.FollowerCount = followers
		profile.FollowingCount = following
		profile.PostCount = posts
	}

	if viewerID != nil && *viewerID != profile.ID {
		isFollowing, err := s.followRepo.Exists(ctx, *viewerID, profile.ID)
		if err == nil {
			profile.ViewerIsFollowing = isFollowing
		}
	}
	return profile, nil
}

// Update edits the caller's profile fields. Nil means leave unchanged.
func (s *ProfileService) Update(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.Profile, error) {
	if req.DisplayName != nil && utf8.RuneCountInString(*req.DisplayName) > model.MaxDisplayNameLength {
		return nil, model.ErrFieldTooLong
	}
	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > model.MaxBioLength {
		return nil, model.ErrFieldTooLong
	}
	if req.Location != nil && utf8.RuneCountInString(*req.Location) > model.MaxLocationLength {
		return nil, model.ErrFieldTooLong
	}

	if err := s.profileRepo.Update(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID, nil)
}

// SetAvatar stores the new avatar location and returns the previous object
// key so the caller can delete it from storage.
func (s *ProfileService) SetAvatar(ctx context.Context, userID int64, url, key string) (*string, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.SetAvatar(ctx, userID, url, key); err != nil {
		return nil, err
	}
	return profile.AvatarKey, nil
}

// SetCover stores the new cover location and returns the previous object key.
func (s *ProfileService) SetCover(ctx context.Context, userID int64, url, key string) (*string, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.SetCover(ctx, userID, url, key); err != nil {
		return nil, err
	}
	return profile.CoverKey, nil
}

// Search finds profiles by username or display name prefix.
func (s *ProfileService) Search(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.ProfileSummary{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	return s.profileRepo.Search(ctx, query, limit)
}
