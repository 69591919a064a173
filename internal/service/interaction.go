package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"desiiseb/internal/model"
	"desiiseb/internal/queue"
	"desiiseb/internal/repository"
)

// keyedMutex serializes operations sharing a key while letting unrelated
// keys proceed. Entries are reference counted and removed when idle.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock blocks until the key is free and returns the unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// InteractionService coordinates like, repost and bookmark toggles.
//
// Two rules keep rapid toggling sane. Writes for the same (user, post, kind)
// are serialized through a keyed mutex, so a tap-tap-tap burst settles on the
// last state instead of interleaving. And a write that finds its end state
// already in place (duplicate like, absent unlike target) reports
// changed=false with no error: the caller wanted that state and has it.
type InteractionService struct {
	db              *sqlx.DB
	postRepo        repository.PostRepository
	interactionRepo repository.InteractionRepository
	assembler       *AssemblerService
	publisher       queue.Publisher
	locks           *keyedMutex
}

func NewInteractionService(
	db *sqlx.DB,
	postRepo repository.PostRepository,
	interactionRepo repository.InteractionRepository,
	assembler *AssemblerService,
	publisher queue.Publisher,
) *InteractionService {
	return &InteractionService{
		db:              db,
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		assembler:       assembler,
		publisher:       publisher,
		locks:           newKeyedMutex(),
	}
}

func interactionKey(userID, postID int64, kind string) string {
	return fmt.Sprintf("%d:%d:%s", userID, postID, kind)
}

// Like records a like. Returns true when state changed.
func (s *InteractionService) Like(ctx context.Context, postID, userID int64) (bool, error) {
	unlock := s.locks.Lock(interactionKey(userID, postID, model.InteractionLike))
	defer unlock()

	if err := s.ensurePostExists(ctx, postID); err != nil {
		return false, err
	}

	inserted, err := s.withTx(ctx, func(tx *sqlx.Tx) (bool, error) {
		return s.interactionRepo.Like(ctx, tx, postID, userID)
	})
	if err != nil {
		return false, err
	}

	if inserted {
		s.publishForAuthor(ctx, postID, userID, queue.NewPostLikedEvent)
	}
	return inserted, nil
}

// Unlike removes a like. Removing an absent like is a successful no-op.
func (s *InteractionService) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	unlock := s.locks.Lock(interactionKey(userID, postID, model.InteractionLike))
	defer unlock()

	return s.withTx(ctx, func(tx *sqlx.Tx) (bool, error) {
		return s.interactionRepo.Unlike(ctx, tx, postID, userID)
	})
}

// Repost records a simple repost and fans it out to followers.
func (s *InteractionService) Repost(ctx context.Context, postID, userID int64) (bool, error) {
	unlock := s.locks.Lock(interactionKey(userID, postID, model.InteractionRepost))
	defer unlock()

	if err := s.ensurePostExists(ctx, postID); err != nil {
		return false, err
	}

	inserted, err := s.withTx(ctx, func(tx *sqlx.Tx) (bool, error) {
		return s.interactionRepo.Repost(ctx, tx, postID, userID)
	})
	if err != nil {
		return false, err
	}

	if inserted {
		s.publishForAuthor(ctx, postID, userID, queue.NewPostRepostedEvent)
	}
	return inserted, nil
}

// Unrepost removes a simple repost and withdraws it from followers' feeds.
func (s *InteractionService) Unrepost(ctx context.Context, postID, userID int64) (bool, error) {
	unlock := s.locks.Lock(interactionKey(userID, postID, model.InteractionRepost))
	defer unlock()

	removed, err := s.withTx(ctx, func(tx *sqlx.Tx) (bool, error) {
		return s.interactionRepo.Unrepost(ctx, tx, postID, userID)
	})
	if err != nil {
		return false, err
	}

	if removed {
		event := queue.NewPostUnrepostedEvent(postID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[InteractionService] Failed to publish PostUnreposted: post=%d err=%v", postID, err)
		}
	}
	return removed, nil
}

// Bookmark saves a post for the user. Bookmarks are private: no events, no
// notifications, no counters.
func (s *InteractionService) Bookmark(ctx context.Context, postID, userID int64) (bool, error) {
	unlock := s.locks.Lock(interactionKey(userID, postID, model.InteractionBookmark))
	defer unlock()

	if err := s.ensurePostExists(ctx, postID); err != nil {
		return false, err
	}
	return s.interactionRepo.Bookmark(ctx, postID, userID)
}

func (s *InteractionService) Unbookmark(ctx context.Context, postID, userID int64) (bool, error) {
	unlock := s.locks.Lock(interactionKey(userID, postID, model.InteractionBookmark))
	defer unlock()

	return s.interactionRepo.Unbookmark(ctx, postID, userID)
}

// GetPostLikers returns a page of users who liked a post.
func (s *InteractionService) GetPostLikers(ctx context.Context, postID int64, cursor *string, limit int) (*model.FollowListResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	if err := s.ensurePostExists(ctx, postID); err != nil {
		return nil, err
	}

	var cursorTime *time.Time
	if cursor != nil {
		ts, err := strconv.ParseInt(*cursor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		t := time.Unix(ts, 0)
		cursorTime = &t
	}

	users, next, err := s.interactionRepo.GetPostLikers(ctx, postID, cursorTime, limit)
	if err != nil {
		return nil, fmt.Errorf("get post likers: %w", err)
	}

	var nextCursor *string
	if next != nil {
		c := strconv.FormatInt(next.Unix(), 10)
		nextCursor = &c
	}
	return &model.FollowListResponse{
		Users:      users,
		NextCursor: nextCursor,
		HasMore:    next != nil,
	}, nil
}

// ListBookmarks returns the viewer's saved posts, newest bookmark first.
func (s *InteractionService) ListBookmarks(ctx context.Context, userID int64, cursor *string, limit int) (*model.FeedResponse, error) {
	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	entries, err := s.interactionRepo.ListBookmarkedPostIDs(ctx, userID, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	posts, err := s.assembler.Assemble(ctx, entries, &userID)
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

func (s *InteractionService) ensurePostExists(ctx context.Context, postID int64) error {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return model.ErrPostNotFound
	}
	return nil
}

// withTx runs fn in a transaction, following the begin/defer-rollback/commit
// shape used across the service layer.
func (s *InteractionService) withTx(ctx context.Context, fn func(tx *sqlx.Tx) (bool, error)) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	changed, err := fn(tx)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return changed, nil
}

// publishForAuthor looks up the post author and publishes the event built by
// mk(postID, authorID, actorID). Best effort after commit.
func (s *InteractionService) publishForAuthor(ctx context.Context, postID, actorID int64, mk func(int64, int64, int64) queue.FeedEvent) {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		log.Printf("[InteractionService] Failed to get author for post=%d: %v", postID, err)
		return
	}
	event := mk(postID, authorID, actorID)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[InteractionService] Failed to publish %s: post=%d err=%v", event.Type, postID, err)
	}
}
