package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"desiiseb/internal/cache"
	"desiiseb/internal/model"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id int64) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	GetIDByUsername(ctx context.Context, username string) (int64, error)
	Search(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error)
	Update(ctx context.Context, id int64, req model.UpdateProfileRequest) error
	SetAvatar(ctx context.Context, id int64, url, key string) error
	SetCover(ctx context.Context, id int64, url, key string) error
	GetSummaries(ctx context.Context, ids []int64) (map[int64]model.ProfileSummary, error)
	// Counts returns follower, following and post counts for a profile.
	Counts(ctx context.Context, id int64) (followers, following, posts int, err error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	// Create inserts a follow edge. Returns false when the edge already
	// existed (duplicate follow is a no-op, not an error).
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) error
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}

// PostRepository is the query composer: every scope query joins the author
// profile columns in the same round trip, never per-post author lookups.
type PostRepository interface {
	Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// GetByIDs preserves the input ordering and silently drops missing or
	// soft-deleted posts; callers use the result map-style via post ID.
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	// GetByIDsWithCounts is the single-round-trip fast path: posts with
	// embedded interaction counts and viewer flags. viewerID may be nil.
	GetByIDsWithCounts(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error)
	Delete(ctx context.Context, postID, userID int64) error
	Exists(ctx context.Context, postID int64) (bool, error)
	GetAuthorID(ctx context.Context, postID int64) (int64, error)

	// Scope queries over the merged post/repost stream.
	ListGlobal(ctx context.Context, viewerID *int64, cursor *string, limit int) ([]model.FeedEntry, error)
	ListByAuthor(ctx context.Context, authorID int64, cursor *string, limit int) ([]model.FeedEntry, error)
	ListReplies(ctx context.Context, parentID int64, cursor *string, limit int) ([]model.FeedEntry, error)
	ListByHashtag(ctx context.Context, tag string, cursor *string, limit int) ([]model.FeedEntry, error)

	// Feed-cache warming reads over the merged post/repost stream.
	GetRecentEntriesByUser(ctx context.Context, userID int64, limit int) ([]cache.EntryScore, error)
	GetWarmupEntries(ctx context.Context, followeeIDs []int64, limit int) ([]cache.EntryScore, error)
}

// InteractionRepository covers likes, simple reposts and bookmarks: the bulk
// reads the resolver aggregates from, and the toggle writes the mutation
// coordinator sequences.
type InteractionRepository interface {
	CountLikes(ctx context.Context, postIDs []int64) (map[int64]int, error)
	CountReposts(ctx context.Context, postIDs []int64) (map[int64]int, error)
	CountReplies(ctx context.Context, postIDs []int64) (map[int64]int, error)
	ViewerLiked(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error)
	ViewerReposted(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error)

	// Toggle writes return false when the desired end state already held
	// (duplicate insert or absent delete target).
	Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	Repost(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	Unrepost(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	Bookmark(ctx context.Context, postID, userID int64) (bool, error)
	Unbookmark(ctx context.Context, postID, userID int64) (bool, error)

	GetPostLikers(ctx context.Context, postID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	ListBookmarkedPostIDs(ctx context.Context, userID int64, cursor *string, limit int) ([]model.FeedEntry, error)
}

type HashtagRepository interface {
	// Upsert inserts the tag if new and returns its id either way.
	Upsert(ctx context.Context, name string) (int64, error)
	LinkPost(ctx context.Context, postID, hashtagID int64) error
	LinkMention(ctx context.Context, postID, mentionedUserID int64) error
	Trending(ctx context.Context, since time.Time, limit int) ([]model.TrendingHashtag, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, userID, actorID int64, notifType string, postID *int64) error
	List(ctx context.Context, userID int64, cursor *string, limit int) ([]model.Notification, *string, error)
	MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	GetUnreadCount(ctx context.Context, userID int64) (int, error)
}

type ModerationRepository interface {
	// Block returns false when the user was already blocked.
	Block(ctx context.Context, blockerID, blockedID int64) (bool, error)
	Unblock(ctx context.Context, blockerID, blockedID int64) error
	GetBlockedIDs(ctx context.Context, blockerID int64) ([]int64, error)
	CreateReport(ctx context.Context, report *model.Report) error
}
