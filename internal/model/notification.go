package model

import (
	"time"
)

// Notification types
const (
	NotificationTypeFollow  = "follow"
	NotificationTypeLike    = "like"
	NotificationTypeRepost  = "repost"
	NotificationTypeReply   = "reply"
	NotificationTypeMention = "mention"
)

// Notification is an append-only row written by the stream worker when the
// triggering like/repost/reply/mention/follow lands. Reading the list is a
// single table scan instead of re-deriving from four interaction tables.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`         // Recipient
	ActorID   int64     `db:"actor_id" json:"actor_id"` // Who triggered it
	Type      string    `db:"type" json:"type"`
	PostID    *int64    `db:"post_id" json:"post_id,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined fields for display
	Actor       *ProfileSummary `json:"actor,omitempty"`
	PostContent *string         `db:"post_content" json:"post_content,omitempty"`
}

// NotificationListResponse is the paginated notification list.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
	NextCursor    *string        `json:"next_cursor,omitempty"`
	HasMore       bool           `json:"has_more"`
}

// MarkReadRequest is the request body for marking notifications as read.
type MarkReadRequest struct {
	NotificationIDs []int64 `json:"notification_ids"`
}
