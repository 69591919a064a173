package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Media types; a post's media set is homogeneous.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeGIF   = "gif"
)

// Post represents one row of the posts table.
// Replies are posts with ReplyTo set; quote reposts are posts with RepostOf
// set. Simple reposts live in the reposts table, not here.
type Post struct {
	ID        int64          `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	Content   string         `db:"content" json:"content"`
	ReplyTo   *int64         `db:"reply_to" json:"reply_to"`
	RepostOf  *int64         `db:"repost_of" json:"repost_of"`
	MediaURLs pq.StringArray `db:"media_urls" json:"media_urls"`
	MediaType *string        `db:"media_type" json:"media_type"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at" json:"-"`

	// Author columns joined by the scope queries (profiles alias "author_").
	AuthorUsername    string  `db:"author_username" json:"-"`
	AuthorDisplayName *string `db:"author_display_name" json:"-"`
	AuthorAvatarURL   *string `db:"author_avatar_url" json:"-"`
	AuthorIsVerified  bool    `db:"author_is_verified" json:"-"`
}

// Author builds the embedded summary from the joined columns.
func (p *Post) Author() ProfileSummary {
	return ProfileSummary{
		ID:          p.UserID,
		Username:    p.AuthorUsername,
		DisplayName: p.AuthorDisplayName,
		AvatarURL:   p.AuthorAvatarURL,
		IsVerified:  p.AuthorIsVerified,
	}
}

// PostView is the denormalized, render-ready post. Every field the
// presentation layer needs is present; no further lookups are required.
type PostView struct {
	ID        int64          `json:"id"`
	Author    ProfileSummary `json:"author"`
	Content   string         `json:"content"`
	ReplyTo   *int64         `json:"reply_to,omitempty"`
	RepostOf  *int64         `json:"repost_of,omitempty"`
	MediaURLs []string       `json:"media_urls"`
	MediaType *string        `json:"media_type,omitempty"`
	CreatedAt time.Time      `json:"created_at"`

	LikeCount   int `json:"like_count"`
	RepostCount int `json:"repost_count"`
	ReplyCount  int `json:"reply_count"`

	ViewerHasLiked    bool `json:"viewer_has_liked"`
	ViewerHasReposted bool `json:"viewer_has_reposted"`

	// RepostedBy is set when this entry is a simple repost: the view carries
	// the original post's content and the reposting actor's identity, and
	// CreatedAt is the repost action's timestamp.
	RepostedBy *ProfileSummary `json:"reposted_by,omitempty"`

	// Quoted is the inlined original for quote reposts.
	Quoted *PostView `json:"quoted,omitempty"`
}

// FeedResponse is the paginated feed page.
type FeedResponse struct {
	Posts      []PostView `json:"posts"`
	NextCursor *string    `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

// CreatePostRequest is the request body for creating a post, reply, or
// quote repost. Media must already be uploaded (see media presign flow).
type CreatePostRequest struct {
	Content   string   `json:"content"`
	ReplyTo   *int64   `json:"reply_to"`
	RepostOf  *int64   `json:"repost_of"`
	MediaURLs []string `json:"media_urls"`
	MediaType *string  `json:"media_type"`
}

// Post limits
const (
	MaxPostContentRunes = 280 // Unicode code points, not bytes
	MaxPostMediaCount   = 4
)

// Post errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrNotPostOwner     = errors.New("not the owner of this post")
	ErrEmptyContent     = errors.New("post content is empty")
	ErrContentTooLong   = errors.New("post content too long")
	ErrTooManyMedia     = errors.New("too many media items")
	ErrInvalidMediaType = errors.New("invalid media type")
	ErrParentNotFound   = errors.New("parent post not found")
)
