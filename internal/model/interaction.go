package model

import (
	"errors"
	"time"
)

// Interaction kinds, used for notification types and mutation sequencing keys.
const (
	InteractionLike     = "like"
	InteractionRepost   = "repost"
	InteractionReply    = "reply"
	InteractionBookmark = "bookmark"
)

// Like identity is the (user, post) pair; existence means "liked".
// The reposts and bookmarks tables share the same shape.
type Like struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Repost is a simple repost: an interaction row referencing an existing post,
// as opposed to a quote repost which is a new Post with RepostOf set.
type Repost struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined columns for feed assembly
	ActorUsername    string  `db:"actor_username" json:"-"`
	ActorDisplayName *string `db:"actor_display_name" json:"-"`
	ActorAvatarURL   *string `db:"actor_avatar_url" json:"-"`
	ActorIsVerified  bool    `db:"actor_is_verified" json:"-"`
}

// Actor builds the reposting user's summary from the joined columns.
func (r *Repost) Actor() ProfileSummary {
	return ProfileSummary{
		ID:          r.UserID,
		Username:    r.ActorUsername,
		DisplayName: r.ActorDisplayName,
		AvatarURL:   r.ActorAvatarURL,
		IsVerified:  r.ActorIsVerified,
	}
}

// InteractionCounts carries the per-post aggregates and viewer flags the
// resolver computes for one page of posts.
type InteractionCounts struct {
	LikeCount   map[int64]int
	RepostCount map[int64]int
	ReplyCount  map[int64]int

	ViewerLiked    map[int64]bool
	ViewerReposted map[int64]bool
}

// NewInteractionCounts returns an empty, fully initialized set.
func NewInteractionCounts() *InteractionCounts {
	return &InteractionCounts{
		LikeCount:      make(map[int64]int),
		RepostCount:    make(map[int64]int),
		ReplyCount:     make(map[int64]int),
		ViewerLiked:    make(map[int64]bool),
		ViewerReposted: make(map[int64]bool),
	}
}

var (
	ErrNotLiked    = errors.New("post not liked")
	ErrNotReposted = errors.New("post not reposted")
)
