package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"desiiseb/internal/cache"
	"desiiseb/internal/model"
	"desiiseb/internal/repository"
)

const (
	// FeedDefaultLimit is the default number of entries per page
	FeedDefaultLimit = 20

	// FeedMaxLimit is the maximum number of entries per page
	FeedMaxLimit = 50

	// CacheWarmLimit is max entries to fetch when warming the home cache
	CacheWarmLimit = 500
)

// FeedService is the aggregator: it picks the entry source for a scope,
// paginates it and hands the page to the assembler. The home scope reads the
// Redis cache, warming it on a miss; every other scope queries Postgres.
type FeedService struct {
	feedCache  cache.FeedCache
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	assembler  *AssemblerService
}

func NewFeedService(
	feedCache cache.FeedCache,
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	assembler *AssemblerService,
) *FeedService {
	return &FeedService{
		feedCache:  feedCache,
		postRepo:   postRepo,
		followRepo: followRepo,
		assembler:  assembler,
	}
}

// GetFeed returns one page of the requested scope. viewerID may be nil for
// global, author and thread scopes; the home scope requires it.
func (s *FeedService) GetFeed(ctx context.Context, viewerID *int64, scope model.Scope, cursor *string, limit int) (*model.FeedResponse, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	var entries []model.FeedEntry
	var err error

	switch scope.Kind {
	case model.ScopeHome:
		if viewerID == nil {
			return nil, model.ErrInvalidScope
		}
		return s.getHomeFeed(ctx, *viewerID, cursor, limit)
	case model.ScopeGlobal:
		entries, err = s.postRepo.ListGlobal(ctx, viewerID, cursor, limit)
	case model.ScopeAuthor:
		entries, err = s.postRepo.ListByAuthor(ctx, scope.AuthorID, cursor, limit)
	case model.ScopeThread:
		entries, err = s.postRepo.ListReplies(ctx, scope.ParentID, cursor, limit)
	default:
		return nil, model.ErrInvalidScope
	}
	if err != nil {
		return nil, fmt.Errorf("list %s feed: %w", scope.Kind, err)
	}

	// The repository fetched limit+1 to detect a further page.
	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	posts, err := s.assembler.Assemble(ctx, entries, viewerID)
	if err != nil {
		return nil, err
	}

	var nextCursor *string
	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1]
		c := formatFeedCursor(last.PostID, last.CreatedAt.Unix())
		nextCursor = &c
	}

	log.Printf("[FeedService] GetFeed OK: scope=%s posts=%d hasMore=%v duration=%v",
		scope.Kind, len(posts), hasMore, time.Since(startTime))

	return &model.FeedResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// GetHashtagFeed returns one page of posts carrying the given tag.
func (s *FeedService) GetHashtagFeed(ctx context.Context, viewerID *int64, tag string, cursor *string, limit int) (*model.FeedResponse, error) {
	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	entries, err := s.postRepo.ListByHashtag(ctx, strings.ToLower(tag), cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list hashtag feed: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	posts, err := s.assembler.Assemble(ctx, entries, viewerID)
	if err != nil {
		return nil, err
	}

	var nextCursor *string
	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1]
		c := formatFeedCursor(last.PostID, last.CreatedAt.Unix())
		nextCursor = &c
	}
	return &model.FeedResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// getHomeFeed serves the followed-authors scope from the Redis cache,
// warming it from Postgres when cold.
func (s *FeedService) getHomeFeed(ctx context.Context, userID int64, cursor *string, limit int) (*model.FeedResponse, error) {
	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		log.Printf("[FeedService] cache check failed for user=%d: %v", userID, err)
	}
	if !exists {
		if err := s.warmCache(ctx, userID); err != nil {
			log.Printf("[FeedService] cache warm failed for user=%d: %v", userID, err)
		}
	}

	var cursorScore *float64
	if cursor != nil {
		_, ts, err := parseFeedCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		score := float64(ts)
		cursorScore = &score
	}

	scores, err := s.feedCache.GetFeed(ctx, userID, cursorScore, limit)
	if err != nil {
		return nil, fmt.Errorf("get home feed from cache: %w", err)
	}

	entries := make([]model.FeedEntry, len(scores))
	for i, sc := range scores {
		entries[i] = model.FeedEntry{
			Kind:      sc.Kind,
			PostID:    sc.PostID,
			ActorID:   sc.ActorID,
			CreatedAt: time.Unix(sc.Timestamp, 0),
		}
	}

	posts, err := s.assembler.Assemble(ctx, entries, &userID)
	if err != nil {
		return nil, err
	}

	// A full page from the cache means there is probably another one.
	hasMore := len(entries) == limit
	var nextCursor *string
	if hasMore {
		last := entries[len(entries)-1]
		c := formatFeedCursor(last.PostID, last.CreatedAt.Unix())
		nextCursor = &c
	}

	return &model.FeedResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// warmCache rebuilds a cold home cache from the followees' recent entries.
// The user's own activity is included so they see their posts in their feed.
func (s *FeedService) warmCache(ctx context.Context, userID int64) error {
	startTime := time.Now()

	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("get followee ids: %w", err)
	}
	followeeIDs = append(followeeIDs, userID)

	entries, err := s.postRepo.GetWarmupEntries(ctx, followeeIDs, CacheWarmLimit)
	if err != nil {
		return fmt.Errorf("get warmup entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.feedCache.WarmCache(ctx, userID, entries); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] Cache warmed: user=%d entries=%d duration=%v",
		userID, len(entries), time.Since(startTime))
	return nil
}

// parseFeedCursor parses the "id:timestamp" cursor format.
func parseFeedCursor(cursor string) (int64, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cursor format, expected id:timestamp")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid post id in cursor: %w", err)
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}
	return id, ts, nil
}

// formatFeedCursor builds the "id:timestamp" cursor format.
func formatFeedCursor(id, ts int64) string {
	return fmt.Sprintf("%d:%d", id, ts)
}
