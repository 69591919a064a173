package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"desiiseb/internal/model"
)

func newTestFollowService(followRepo *mockFollowRepository, profileRepo *mockProfileRepository) *FollowService {
	if followRepo == nil {
		followRepo = &mockFollowRepository{}
	}
	if profileRepo == nil {
		profileRepo = &mockProfileRepository{
			getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
				return &model.Profile{ID: id}, nil
			},
		}
	}
	return NewFollowService(nil, followRepo, profileRepo, &mockPublisher{})
}

func TestFollowService_Follow_Self(t *testing.T) {
	svc := newTestFollowService(nil, nil)

	_, err := svc.Follow(context.Background(), 1, 1)
	if !errors.Is(err, model.ErrCannotFollowSelf) {
		t.Errorf("error = %v, want %v", err, model.ErrCannotFollowSelf)
	}
}

func TestFollowService_Follow_UnknownTarget(t *testing.T) {
	svc := newTestFollowService(nil, &mockProfileRepository{}) // GetByID defaults to not found

	_, err := svc.Follow(context.Background(), 1, 404)
	if !errors.Is(err, model.ErrProfileNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrProfileNotFound)
	}
}

func TestFollowService_GetFollowers_Pagination(t *testing.T) {
	next := time.Unix(1700000050, 0)
	var gotCursor *time.Time
	var gotLimit int
	followRepo := &mockFollowRepository{
		getFollowersFn: func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
			gotCursor = cursor
			gotLimit = limit
			return []model.ProfileSummary{{ID: 9, Username: "karim"}}, &next, nil
		},
	}
	svc := newTestFollowService(followRepo, nil)

	cursor := "1700000100"
	resp, err := svc.GetFollowers(context.Background(), 1, &cursor, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotCursor == nil || gotCursor.Unix() != 1700000100 {
		t.Errorf("repo cursor = %v, want unix 1700000100", gotCursor)
	}
	if gotLimit != 50 {
		t.Errorf("limit = %d, want clamped to 50", gotLimit)
	}
	if len(resp.Users) != 1 || resp.Users[0].Username != "karim" {
		t.Errorf("users = %+v", resp.Users)
	}
	if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor != "1700000050" {
		t.Errorf("pagination = hasMore=%v cursor=%v", resp.HasMore, resp.NextCursor)
	}
}

func TestFollowService_GetFollowing_LastPage(t *testing.T) {
	followRepo := &mockFollowRepository{
		getFollowingFn: func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
			return []model.ProfileSummary{{ID: 9}}, nil, nil
		},
	}
	svc := newTestFollowService(followRepo, nil)

	resp, err := svc.GetFollowing(context.Background(), 1, nil, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.HasMore || resp.NextCursor != nil {
		t.Errorf("last page must not advertise more: hasMore=%v cursor=%v", resp.HasMore, resp.NextCursor)
	}
}

func TestFollowService_GetFollowers_BadCursor(t *testing.T) {
	svc := newTestFollowService(nil, nil)

	cursor := "yesterday"
	if _, err := svc.GetFollowers(context.Background(), 1, &cursor, 20); err == nil {
		t.Error("expected an error for a malformed cursor")
	}
}

func TestFollowService_GetFollowers_UnknownUser(t *testing.T) {
	svc := newTestFollowService(nil, &mockProfileRepository{})

	_, err := svc.GetFollowers(context.Background(), 404, nil, 20)
	if !errors.Is(err, model.ErrProfileNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrProfileNotFound)
	}
}
