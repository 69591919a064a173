package service

// Function-field mocks for the repository and infrastructure interfaces.
// Each test sets only the functions it cares about; unset functions return
// empty results so unrelated code paths stay quiet.

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"desiiseb/internal/cache"
	"desiiseb/internal/model"
	"desiiseb/internal/queue"
)

type mockPostRepository struct {
	createFn             func(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error)
	getByIDFn            func(ctx context.Context, postID int64) (*model.Post, error)
	getByIDsFn           func(ctx context.Context, postIDs []int64) ([]model.Post, error)
	getByIDsWithCountsFn func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error)
	deleteFn             func(ctx context.Context, postID, userID int64) error
	existsFn             func(ctx context.Context, postID int64) (bool, error)
	getAuthorIDFn        func(ctx context.Context, postID int64) (int64, error)
	listGlobalFn         func(ctx context.Context, viewerID *int64, cursor *string, limit int) ([]model.FeedEntry, error)
	listByAuthorFn       func(ctx context.Context, authorID int64, cursor *string, limit int) ([]model.FeedEntry, error)
	listRepliesFn        func(ctx context.Context, parentID int64, cursor *string, limit int) ([]model.FeedEntry, error)
	listByHashtagFn      func(ctx context.Context, tag string, cursor *string, limit int) ([]model.FeedEntry, error)
	recentEntriesFn      func(ctx context.Context, userID int64, limit int) ([]cache.EntryScore, error)
	warmupEntriesFn      func(ctx context.Context, followeeIDs []int64, limit int) ([]cache.EntryScore, error)
}

func (m *mockPostRepository) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return &model.Post{ID: 1, UserID: userID, Content: req.Content}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	return nil, nil
}

func (m *mockPostRepository) GetByIDsWithCounts(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
	if m.getByIDsWithCountsFn != nil {
		return m.getByIDsWithCountsFn(ctx, postIDs, viewerID)
	}
	return nil, model.NewInteractionCounts(), nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return 0, model.ErrPostNotFound
}

func (m *mockPostRepository) ListGlobal(ctx context.Context, viewerID *int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	if m.listGlobalFn != nil {
		return m.listGlobalFn(ctx, viewerID, cursor, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ListByAuthor(ctx context.Context, authorID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	if m.listByAuthorFn != nil {
		return m.listByAuthorFn(ctx, authorID, cursor, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ListReplies(ctx context.Context, parentID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	if m.listRepliesFn != nil {
		return m.listRepliesFn(ctx, parentID, cursor, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ListByHashtag(ctx context.Context, tag string, cursor *string, limit int) ([]model.FeedEntry, error) {
	if m.listByHashtagFn != nil {
		return m.listByHashtagFn(ctx, tag, cursor, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetRecentEntriesByUser(ctx context.Context, userID int64, limit int) ([]cache.EntryScore, error) {
	if m.recentEntriesFn != nil {
		return m.recentEntriesFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetWarmupEntries(ctx context.Context, followeeIDs []int64, limit int) ([]cache.EntryScore, error) {
	if m.warmupEntriesFn != nil {
		return m.warmupEntriesFn(ctx, followeeIDs, limit)
	}
	return nil, nil
}

type mockProfileRepository struct {
	createFn           func(ctx context.Context, profile *model.Profile) error
	getByIDFn          func(ctx context.Context, id int64) (*model.Profile, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.Profile, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	getIDByUsernameFn  func(ctx context.Context, username string) (int64, error)
	searchFn           func(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error)
	updateFn           func(ctx context.Context, id int64, req model.UpdateProfileRequest) error
	getSummariesFn     func(ctx context.Context, ids []int64) (map[int64]model.ProfileSummary, error)
	countsFn           func(ctx context.Context, id int64) (int, int, int, error)

	createCalls int
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockProfileRepository) GetIDByUsername(ctx context.Context, username string) (int64, error) {
	if m.getIDByUsernameFn != nil {
		return m.getIDByUsernameFn(ctx, username)
	}
	return 0, model.ErrProfileNotFound
}

func (m *mockProfileRepository) Search(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockProfileRepository) Update(ctx context.Context, id int64, req model.UpdateProfileRequest) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil
}

func (m *mockProfileRepository) SetAvatar(ctx context.Context, id int64, url, key string) error {
	return nil
}

func (m *mockProfileRepository) SetCover(ctx context.Context, id int64, url, key string) error {
	return nil
}

func (m *mockProfileRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.ProfileSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	summaries := make(map[int64]model.ProfileSummary, len(ids))
	for _, id := range ids {
		summaries[id] = model.ProfileSummary{ID: id, Username: "user"}
	}
	return summaries, nil
}

func (m *mockProfileRepository) Counts(ctx context.Context, id int64) (int, int, int, error) {
	if m.countsFn != nil {
		return m.countsFn(ctx, id)
	}
	return 0, 0, 0, nil
}

type mockInteractionRepository struct {
	countLikesFn     func(ctx context.Context, postIDs []int64) (map[int64]int, error)
	countRepostsFn   func(ctx context.Context, postIDs []int64) (map[int64]int, error)
	countRepliesFn   func(ctx context.Context, postIDs []int64) (map[int64]int, error)
	viewerLikedFn    func(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error)
	viewerRepostedFn func(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error)
	bookmarkFn       func(ctx context.Context, postID, userID int64) (bool, error)
	unbookmarkFn     func(ctx context.Context, postID, userID int64) (bool, error)
	getPostLikersFn  func(ctx context.Context, postID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	listBookmarkedFn func(ctx context.Context, userID int64, cursor *string, limit int) ([]model.FeedEntry, error)
}

func (m *mockInteractionRepository) CountLikes(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	if m.countLikesFn != nil {
		return m.countLikesFn(ctx, postIDs)
	}
	return map[int64]int{}, nil
}

func (m *mockInteractionRepository) CountReposts(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	if m.countRepostsFn != nil {
		return m.countRepostsFn(ctx, postIDs)
	}
	return map[int64]int{}, nil
}

func (m *mockInteractionRepository) CountReplies(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	if m.countRepliesFn != nil {
		return m.countRepliesFn(ctx, postIDs)
	}
	return map[int64]int{}, nil
}

func (m *mockInteractionRepository) ViewerLiked(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error) {
	if m.viewerLikedFn != nil {
		return m.viewerLikedFn(ctx, viewerID, postIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockInteractionRepository) ViewerReposted(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error) {
	if m.viewerRepostedFn != nil {
		return m.viewerRepostedFn(ctx, viewerID, postIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockInteractionRepository) Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return true, nil
}

func (m *mockInteractionRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return true, nil
}

func (m *mockInteractionRepository) Repost(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return true, nil
}

func (m *mockInteractionRepository) Unrepost(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return true, nil
}

func (m *mockInteractionRepository) Bookmark(ctx context.Context, postID, userID int64) (bool, error) {
	if m.bookmarkFn != nil {
		return m.bookmarkFn(ctx, postID, userID)
	}
	return true, nil
}

func (m *mockInteractionRepository) Unbookmark(ctx context.Context, postID, userID int64) (bool, error) {
	if m.unbookmarkFn != nil {
		return m.unbookmarkFn(ctx, postID, userID)
	}
	return true, nil
}

func (m *mockInteractionRepository) GetPostLikers(ctx context.Context, postID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	if m.getPostLikersFn != nil {
		return m.getPostLikersFn(ctx, postID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockInteractionRepository) ListBookmarkedPostIDs(ctx context.Context, userID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	if m.listBookmarkedFn != nil {
		return m.listBookmarkedFn(ctx, userID, cursor, limit)
	}
	return nil, nil
}

type mockFollowRepository struct {
	existsFn         func(ctx context.Context, followerID, followingID int64) (bool, error)
	getFollowersFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	getFollowingFn   func(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	checkFollowsFn   func(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error)
	getFollowerIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	getFolloweeIDsFn func(ctx context.Context, userID int64) ([]int64, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) (bool, error) {
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) error {
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followingIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

type mockHashtagRepository struct {
	upsertFn      func(ctx context.Context, name string) (int64, error)
	linkPostFn    func(ctx context.Context, postID, hashtagID int64) error
	linkMentionFn func(ctx context.Context, postID, mentionedUserID int64) error
	trendingFn    func(ctx context.Context, since time.Time, limit int) ([]model.TrendingHashtag, error)

	upserted []string
}

func (m *mockHashtagRepository) Upsert(ctx context.Context, name string) (int64, error) {
	m.upserted = append(m.upserted, name)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, name)
	}
	return int64(len(m.upserted)), nil
}

func (m *mockHashtagRepository) LinkPost(ctx context.Context, postID, hashtagID int64) error {
	if m.linkPostFn != nil {
		return m.linkPostFn(ctx, postID, hashtagID)
	}
	return nil
}

func (m *mockHashtagRepository) LinkMention(ctx context.Context, postID, mentionedUserID int64) error {
	if m.linkMentionFn != nil {
		return m.linkMentionFn(ctx, postID, mentionedUserID)
	}
	return nil
}

func (m *mockHashtagRepository) Trending(ctx context.Context, since time.Time, limit int) ([]model.TrendingHashtag, error) {
	if m.trendingFn != nil {
		return m.trendingFn(ctx, since, limit)
	}
	return nil, nil
}

type mockRefreshTokenRepository struct {
	createFn          func(ctx context.Context, token *model.RefreshToken) error
	findByTokenHashFn func(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	revokeFn          func(ctx context.Context, id string, replacedBy *string) error
	revokeAllFn       func(ctx context.Context, userID int64) error

	stored []*model.RefreshToken
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	m.stored = append(m.stored, token)
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	if m.findByTokenHashFn != nil {
		return m.findByTokenHashFn(ctx, tokenHash)
	}
	for _, t := range m.stored {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, id, replacedBy)
	}
	now := time.Now()
	for _, t := range m.stored {
		if t.ID == id {
			t.RevokedAt = &now
			t.ReplacedBy = replacedBy
		}
	}
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	if m.revokeAllFn != nil {
		return m.revokeAllFn(ctx, userID)
	}
	now := time.Now()
	for _, t := range m.stored {
		if t.UserID == userID {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

type publishedEvent struct {
	Stream string
	Event  queue.FeedEvent
}

type mockPublisher struct {
	publishFn func(ctx context.Context, stream string, event queue.FeedEvent) (string, error)

	published []publishedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
	m.published = append(m.published, publishedEvent{Stream: stream, Event: event})
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

type mockFeedCache struct {
	addEntryFn      func(ctx context.Context, userID int64, entry cache.EntryScore) error
	removeEntriesFn func(ctx context.Context, userID int64, entries []cache.EntryScore) error
	getFeedFn       func(ctx context.Context, userID int64, cursorScore *float64, limit int) ([]cache.EntryScore, error)
	warmCacheFn     func(ctx context.Context, userID int64, entries []cache.EntryScore) error
	existsFn        func(ctx context.Context, userID int64) (bool, error)

	warmed int
}

func (m *mockFeedCache) AddEntry(ctx context.Context, userID int64, entry cache.EntryScore) error {
	if m.addEntryFn != nil {
		return m.addEntryFn(ctx, userID, entry)
	}
	return nil
}

func (m *mockFeedCache) RemoveEntries(ctx context.Context, userID int64, entries []cache.EntryScore) error {
	if m.removeEntriesFn != nil {
		return m.removeEntriesFn(ctx, userID, entries)
	}
	return nil
}

func (m *mockFeedCache) GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) ([]cache.EntryScore, error) {
	if m.getFeedFn != nil {
		return m.getFeedFn(ctx, userID, cursorScore, limit)
	}
	return nil, nil
}

func (m *mockFeedCache) WarmCache(ctx context.Context, userID int64, entries []cache.EntryScore) error {
	m.warmed++
	if m.warmCacheFn != nil {
		return m.warmCacheFn(ctx, userID, entries)
	}
	return nil
}

func (m *mockFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}

func (m *mockFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID)
	}
	return true, nil
}
