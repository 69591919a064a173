package service

import (
	"context"
	"fmt"

	"desiiseb/internal/model"
	"desiiseb/internal/repository"
)

// NotificationService reads and mutates the stored notification rows the
// stream worker writes.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List returns a page of the user's notifications plus the unread count.
func (s *NotificationService) List(ctx context.Context, userID int64, cursor *string, limit int) (*model.NotificationListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	notifications, nextCursor, err := s.notificationRepo.List(ctx, userID, cursor, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.notificationRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get unread count: %w", err)
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		NextCursor:    nextCursor,
		HasMore:       nextCursor != nil,
	}, nil
}

// MarkRead marks the given notifications as read for the user.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, notificationIDs []int64) error {
	return s.notificationRepo.MarkAsRead(ctx, userID, notificationIDs)
}

// MarkAllRead marks every unread notification as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

// UnreadCount returns the badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.GetUnreadCount(ctx, userID)
}
