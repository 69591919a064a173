package model

import "time"

type Hashtag struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TrendingHashtag is a tag with its recent post volume.
type TrendingHashtag struct {
	Name      string `db:"name" json:"name"`
	PostCount int    `db:"post_count" json:"post_count"`
}

// Mention links a post to a mentioned profile. Rows are written best-effort
// at post creation; a mention that fails to resolve is simply not recorded.
type Mention struct {
	PostID          int64     `db:"post_id" json:"post_id"`
	MentionedUserID int64     `db:"mentioned_user_id" json:"mentioned_user_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
