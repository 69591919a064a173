package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"desiiseb/internal/model"
	"desiiseb/internal/queue"
	"desiiseb/internal/repository"
)

// FollowService manages the follow graph and publishes the events that keep
// home feed caches in sync with it.
type FollowService struct {
	db          *sqlx.DB
	followRepo  repository.FollowRepository
	profileRepo repository.ProfileRepository
	publisher   queue.Publisher
}

func NewFollowService(
	db *sqlx.DB,
	followRepo repository.FollowRepository,
	profileRepo repository.ProfileRepository,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		db:          db,
		followRepo:  followRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

// Follow creates a follow edge. A duplicate follow is a successful no-op
// (changed=false) and publishes nothing.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID int64) (bool, error) {
	if followerID == followingID {
		return false, model.ErrCannotFollowSelf
	}

	if _, err := s.profileRepo.GetByID(ctx, followingID); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := s.followRepo.Create(ctx, tx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	if created {
		event := queue.NewUserFollowedEvent(followerID, followingID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[FollowService] Failed to publish UserFollowed: follower=%d followee=%d err=%v",
				followerID, followingID, err)
		}
	}
	return created, nil
}

// Unfollow removes a follow edge. Unfollowing someone not followed is a
// successful no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.followRepo.Delete(ctx, tx, followerID, followingID); err != nil {
		if errors.Is(err, model.ErrNotFollowing) {
			return false, nil
		}
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	event := queue.NewUserUnfollowedEvent(followerID, followingID)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[FollowService] Failed to publish UserUnfollowed: follower=%d followee=%d err=%v",
			followerID, followingID, err)
	}
	return true, nil
}

// GetFollowers returns a page of a user's followers.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64, cursor *string, limit int) (*model.FollowListResponse, error) {
	return s.followPage(ctx, userID, cursor, limit, s.followRepo.GetFollowers)
}

// GetFollowing returns a page of accounts a user follows.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64, cursor *string, limit int) (*model.FollowListResponse, error) {
	return s.followPage(ctx, userID, cursor, limit, s.followRepo.GetFollowing)
}

type followPageFn func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)

func (s *FollowService) followPage(ctx context.Context, userID int64, cursor *string, limit int, page followPageFn) (*model.FollowListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	if _, err := s.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var cursorTime *time.Time
	if cursor != nil {
		ts, err := strconv.ParseInt(*cursor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		t := time.Unix(ts, 0)
		cursorTime = &t
	}

	users, next, err := page(ctx, userID, cursorTime, limit)
	if err != nil {
		return nil, err
	}

	var nextCursor *string
	if next != nil {
		c := strconv.FormatInt(next.Unix(), 10)
		nextCursor = &c
	}
	return &model.FollowListResponse{
		Users:      users,
		NextCursor: nextCursor,
		HasMore:    next != nil,
	}, nil
}
