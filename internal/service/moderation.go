package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"desiiseb/internal/model"
	"desiiseb/internal/queue"
	"desiiseb/internal/repository"
)

// ModerationService handles blocks and reports. Blocking also severs the
// follow edges in both directions so neither party keeps the other in their
// home feed.
type ModerationService struct {
	db             *sqlx.DB
	moderationRepo repository.ModerationRepository
	followRepo     repository.FollowRepository
	profileRepo    repository.ProfileRepository
	postRepo       repository.PostRepository
	publisher      queue.Publisher
}

func NewModerationService(
	db *sqlx.DB,
	moderationRepo repository.ModerationRepository,
	followRepo repository.FollowRepository,
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	publisher queue.Publisher,
) *ModerationService {
	return &ModerationService{
		db:             db,
		moderationRepo: moderationRepo,
		followRepo:     followRepo,
		profileRepo:    profileRepo,
		postRepo:       postRepo,
		publisher:      publisher,
	}
}

// Block blocks a user. Already-blocked is a successful no-op.
func (s *ModerationService) Block(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	if blockerID == blockedID {
		return false, model.ErrCannotBlockSelf
	}
	if _, err := s.profileRepo.GetByID(ctx, blockedID); err != nil {
		return false, err
	}

	created, err := s.moderationRepo.Block(ctx, blockerID, blockedID)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	// Sever follows both ways. Each removal publishes the unfollow event so
	// the feed caches are cleaned up by the worker.
	s.severFollow(ctx, blockerID, blockedID)
	s.severFollow(ctx, blockedID, blockerID)
	return true, nil
}

func (s *ModerationService) severFollow(ctx context.Context, followerID, followingID int64) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("[ModerationService] begin tx failed: %v", err)
		return
	}
	defer tx.Rollback()

	if err := s.followRepo.Delete(ctx, tx, followerID, followingID); err != nil {
		if !errors.Is(err, model.ErrNotFollowing) {
			log.Printf("[ModerationService] sever follow failed: follower=%d followee=%d err=%v",
				followerID, followingID, err)
		}
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[ModerationService] commit sever follow failed: %v", err)
		return
	}

	event := queue.NewUserUnfollowedEvent(followerID, followingID)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[ModerationService] Failed to publish UserUnfollowed: %v", err)
	}
}

// Unblock removes a block. Unblocking someone not blocked is a no-op.
func (s *ModerationService) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	err := s.moderationRepo.Unblock(ctx, blockerID, blockedID)
	if errors.Is(err, model.ErrNotBlocked) {
		return nil
	}
	return err
}

// Report files a moderation report against a post or a user.
func (s *ModerationService) Report(ctx context.Context, reporterID int64, req model.CreateReportRequest) (*model.Report, error) {
	if (req.PostID == nil) == (req.UserID == nil) {
		return nil, model.ErrInvalidReport
	}
	if !model.IsValidReportReason(req.Reason) {
		return nil, model.ErrUnknownReason
	}

	if req.PostID != nil {
		exists, err := s.postRepo.Exists(ctx, *req.PostID)
		if err != nil {
			return nil, fmt.Errorf("check post exists: %w", err)
		}
		if !exists {
			return nil, model.ErrPostNotFound
		}
	}
	if req.UserID != nil {
		if _, err := s.profileRepo.GetByID(ctx, *req.UserID); err != nil {
			return nil, err
		}
	}

	report := &model.Report{
		ReporterID: reporterID,
		PostID:     req.PostID,
		UserID:     req.UserID,
		Reason:     req.Reason,
		Detail:     req.Detail,
	}
	if err := s.moderationRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
