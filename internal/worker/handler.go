package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"desiiseb/internal/cache"
	"desiiseb/internal/model"
	"desiiseb/internal/queue"
)

const (
	// backfillLimit is how many recent entries to copy into a new
	// follower's cache.
	backfillLimit = 20

	// removeLimit bounds how many followee entries an unfollow sweeps out.
	removeLimit = 100
)

// FollowerProvider abstracts the follow repository so the handler doesn't
// depend on the DB layer directly.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RecentEntriesProvider fetches a user's recent posts and reposts as cache
// entries, for follow backfill and unfollow cleanup.
type RecentEntriesProvider interface {
	GetRecentEntriesByUser(ctx context.Context, userID int64, limit int) ([]cache.EntryScore, error)
}

// NotificationCreator writes notification rows for interaction events.
type NotificationCreator interface {
	Create(ctx context.Context, userID, actorID int64, notifType string, postID *int64) error
}

// Handler processes feed events from the stream: fan-out and removal of
// feed cache entries, plus notification row writes.
type Handler struct {
	feedCache       cache.FeedCache
	followers       FollowerProvider
	entriesProvider RecentEntriesProvider
	notifications   NotificationCreator
}

func NewHandler(
	feedCache cache.FeedCache,
	followers FollowerProvider,
	entriesProvider RecentEntriesProvider,
	notifications NotificationCreator,
) *Handler {
	return &Handler{
		feedCache:       feedCache,
		followers:       followers,
		entriesProvider: entriesProvider,
		notifications:   notifications,
	}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.FeedEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		err = h.handlePostDeleted(ctx, event)
	case queue.EventPostLiked:
		err = h.handlePostLiked(ctx, event)
	case queue.EventPostReposted:
		err = h.handlePostReposted(ctx, event)
	case queue.EventPostUnreposted:
		err = h.handlePostUnreposted(ctx, event)
	case queue.EventUserFollowed:
		err = h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		err = h.handleUserUnfollowed(ctx, event)
	case queue.EventUserMentioned:
		err = h.handleUserMentioned(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}
	return nil
}

// fanOutEntry adds an entry to every follower's cache and the actor's own.
// Per-follower failures are logged and skipped so one bad cache never stalls
// the whole fan-out.
func (h *Handler) fanOutEntry(ctx context.Context, actorID int64, entry cache.EntryScore) error {
	followers, err := h.followers.GetFollowerIDs(ctx, actorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.AddEntry(ctx, followerID, entry); err != nil {
			log.Printf("[Worker] fan-out: failed to add to user=%d err=%v", followerID, err)
			failCount++
		}
	}
	if err := h.feedCache.AddEntry(ctx, actorID, entry); err != nil {
		log.Printf("[Worker] fan-out: failed to add to actor's own feed err=%v", err)
	}

	log.Printf("[Worker] fan-out DONE: member=%s fanout=%d failed=%d",
		entry.Member(), len(followers)+1, failCount)
	return nil
}

// handlePostCreated fans a top-level post out to followers. A reply skips
// fan-out and notifies the parent author instead.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostCreated: post=%d author=%d parent=%d", event.PostID, event.AuthorID, event.ParentID)

	if event.ParentID != 0 {
		if event.ParentAuthorID == event.AuthorID {
			return nil
		}
		postID := event.ParentID
		if err := h.notifications.Create(ctx, event.ParentAuthorID, event.AuthorID, model.NotificationTypeReply, &postID); err != nil {
			return fmt.Errorf("create reply notification: %w", err)
		}
		return nil
	}

	return h.fanOutEntry(ctx, event.AuthorID, cache.EntryScore{
		Kind:      cache.EntryKindPost,
		PostID:    event.PostID,
		ActorID:   event.AuthorID,
		Timestamp: event.Timestamp,
	})
}

// handlePostDeleted removes the post entry from followers' caches. Repost
// entries pointing at the dead post are left behind; the assembler drops
// them when it finds no live target.
func (h *Handler) handlePostDeleted(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostDeleted: post=%d author=%d", event.PostID, event.AuthorID)

	followers, err := h.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	entry := []cache.EntryScore{{
		Kind:    cache.EntryKindPost,
		PostID:  event.PostID,
		ActorID: event.AuthorID,
	}}

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.RemoveEntries(ctx, followerID, entry); err != nil {
			log.Printf("[Worker] PostDeleted: failed to remove from user=%d err=%v", followerID, err)
			failCount++
		}
	}
	if err := h.feedCache.RemoveEntries(ctx, event.AuthorID, entry); err != nil {
		log.Printf("[Worker] PostDeleted: failed to remove from author's own feed err=%v", err)
	}

	log.Printf("[Worker] PostDeleted DONE: post=%d fanout=%d failed=%d",
		event.PostID, len(followers)+1, failCount)
	return nil
}

// handlePostLiked notifies the post author. Self-likes are silent.
func (h *Handler) handlePostLiked(ctx context.Context, event queue.FeedEvent) error {
	if event.ActorID == event.AuthorID {
		return nil
	}
	postID := event.PostID
	if err := h.notifications.Create(ctx, event.AuthorID, event.ActorID, model.NotificationTypeLike, &postID); err != nil {
		return fmt.Errorf("create like notification: %w", err)
	}
	return nil
}

// handlePostReposted fans the repost entry out to the reposter's followers
// and notifies the post author.
func (h *Handler) handlePostReposted(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostReposted: post=%d actor=%d author=%d", event.PostID, event.ActorID, event.AuthorID)

	if err := h.fanOutEntry(ctx, event.ActorID, cache.EntryScore{
		Kind:      cache.EntryKindRepost,
		PostID:    event.PostID,
		ActorID:   event.ActorID,
		Timestamp: event.Timestamp,
	}); err != nil {
		return err
	}

	if event.ActorID != event.AuthorID {
		postID := event.PostID
		if err := h.notifications.Create(ctx, event.AuthorID, event.ActorID, model.NotificationTypeRepost, &postID); err != nil {
			log.Printf("[Worker] PostReposted: failed to create notification: %v", err)
		}
	}
	return nil
}

// handlePostUnreposted removes the repost entry from the reposter's
// followers' caches.
func (h *Handler) handlePostUnreposted(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostUnreposted: post=%d actor=%d", event.PostID, event.ActorID)

	followers, err := h.followers.GetFollowerIDs(ctx, event.ActorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	entry := []cache.EntryScore{{
		Kind:    cache.EntryKindRepost,
		PostID:  event.PostID,
		ActorID: event.ActorID,
	}}

	for _, followerID := range followers {
		if err := h.feedCache.RemoveEntries(ctx, followerID, entry); err != nil {
			log.Printf("[Worker] PostUnreposted: failed to remove from user=%d err=%v", followerID, err)
		}
	}
	if err := h.feedCache.RemoveEntries(ctx, event.ActorID, entry); err != nil {
		log.Printf("[Worker] PostUnreposted: failed to remove from actor's own feed err=%v", err)
	}
	return nil
}

// handleUserFollowed backfills the followee's recent entries into the
// follower's cache and notifies the followee.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] UserFollowed: follower=%d followee=%d", event.FollowerID, event.FolloweeID)

	entries, err := h.entriesProvider.GetRecentEntriesByUser(ctx, event.FolloweeID, backfillLimit)
	if err != nil {
		return fmt.Errorf("get recent entries: %w", err)
	}

	var failCount int
	for _, e := range entries {
		if err := h.feedCache.AddEntry(ctx, event.FollowerID, e); err != nil {
			log.Printf("[Worker] UserFollowed: failed to add member=%s err=%v", e.Member(), err)
			failCount++
		}
	}
	log.Printf("[Worker] UserFollowed DONE: follower=%d backfilled=%d failed=%d",
		event.FollowerID, len(entries), failCount)

	if err := h.notifications.Create(ctx, event.FolloweeID, event.FollowerID, model.NotificationTypeFollow, nil); err != nil {
		log.Printf("[Worker] UserFollowed: failed to create notification: %v", err)
	}
	return nil
}

// handleUserUnfollowed sweeps the followee's entries out of the follower's
// cache.
func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] UserUnfollowed: follower=%d followee=%d", event.FollowerID, event.FolloweeID)

	entries, err := h.entriesProvider.GetRecentEntriesByUser(ctx, event.FolloweeID, removeLimit)
	if err != nil {
		return fmt.Errorf("get entries to remove: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := h.feedCache.RemoveEntries(ctx, event.FollowerID, entries); err != nil {
		return fmt.Errorf("remove followee entries: %w", err)
	}

	log.Printf("[Worker] UserUnfollowed DONE: follower=%d removed=%d", event.FollowerID, len(entries))
	return nil
}

// handleUserMentioned notifies the mentioned user. Self-mentions are silent.
func (h *Handler) handleUserMentioned(ctx context.Context, event queue.FeedEvent) error {
	if event.ActorID == event.MentionedID {
		return nil
	}
	postID := event.PostID
	if err := h.notifications.Create(ctx, event.MentionedID, event.ActorID, model.NotificationTypeMention, &postID); err != nil {
		return fmt.Errorf("create mention notification: %w", err)
	}
	return nil
}
