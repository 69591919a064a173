package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"desiiseb/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create appends a notification row.
func (r *notificationRepository) Create(ctx context.Context, userID, actorID int64, notifType string, postID *int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, actor_id, type, post_id)
		VALUES ($1, $2, $3, $4)
	`, userID, actorID, notifType, postID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List returns the recipient's notifications, newest first, with the actor
// summary and (for post-scoped types) the post content joined in.
func (r *notificationRepository) List(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Notification, *string, error) {
	query := `
		SELECT n.id, n.user_id, n.actor_id, n.type, n.post_id, n.is_read, n.created_at,
			a.id AS "actor.id",
			a.username AS "actor.username",
			a.display_name AS "actor.display_name",
			a.avatar_url AS "actor.avatar_url",
			a.is_verified AS "actor.is_verified",
			p.content AS post_content
		FROM notifications n
		JOIN profiles a ON a.id = n.actor_id
		LEFT JOIN posts p ON p.id = n.post_id AND p.deleted_at IS NULL
		WHERE n.user_id = $1`
	args := []interface{}{userID}

	if cursor != nil {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		args = append(args, ts, id)
		query += fmt.Sprintf(` AND (n.created_at, n.id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY n.created_at DESC, n.id DESC LIMIT $%d`, len(args))

	type notifRow struct {
		model.Notification
		Actor model.ProfileSummary `db:"actor"`
	}
	var rows []notifRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list notifications: %w", err)
	}

	var nextCursor *string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		c := formatCursor(last.CreatedAt, last.Notification.ID)
		nextCursor = &c
	}

	notifications := make([]model.Notification, len(rows))
	for i, row := range rows {
		n := row.Notification
		actor := row.Actor
		n.Actor = &actor
		notifications[i] = n
	}
	return notifications, nextCursor, nil
}

// MarkAsRead marks the given notifications as read, scoped to the recipient
// so one user cannot clear another's badge.
func (r *notificationRepository) MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, pq.Array(notificationIDs))
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}
