package model

import (
	"errors"
	"time"
)

// Block identity is the (blocker, blocked) pair; existence means "blocked".
// Blocked authors' posts are excluded from the blocker's feed scopes.
type Block struct {
	BlockerID int64     `db:"blocker_id" json:"blocker_id"`
	BlockedID int64     `db:"blocked_id" json:"blocked_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Report is a moderation report against a post or a user.
type Report struct {
	ID         int64     `db:"id" json:"id"`
	ReporterID int64     `db:"reporter_id" json:"reporter_id"`
	PostID     *int64    `db:"post_id" json:"post_id,omitempty"`
	UserID     *int64    `db:"user_id" json:"user_id,omitempty"`
	Reason     string    `db:"reason" json:"reason"`
	Detail     *string   `db:"detail" json:"detail,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CreateReportRequest is the request body for POST /reports.
type CreateReportRequest struct {
	PostID *int64  `json:"post_id"`
	UserID *int64  `json:"user_id"`
	Reason string  `json:"reason"`
	Detail *string `json:"detail"`
}

// Accepted report reasons, matching the original report dialog.
var ReportReasons = []string{
	"Spam",
	"Harassment or bullying",
	"Hate speech",
	"Violence or threats",
	"Misinformation",
	"Adult content",
	"Copyright violation",
	"Other",
}

// IsValidReportReason reports whether the reason is one of ReportReasons.
func IsValidReportReason(reason string) bool {
	for _, r := range ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

var (
	ErrCannotBlockSelf = errors.New("cannot block yourself")
	ErrNotBlocked      = errors.New("user is not blocked")
	ErrInvalidReport   = errors.New("report must target a post or a user")
	ErrUnknownReason   = errors.New("unknown report reason")
)
