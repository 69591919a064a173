package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published to the feed stream.
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventPostReposted   = "post_reposted"
	EventPostUnreposted = "post_unreposted"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
	EventUserMentioned  = "user_mentioned"
)

// Stream and consumer group names.
const (
	StreamFeed        = "stream:feed"
	ConsumerGroupFeed = "feed_workers"
)

// FeedEvent is the single event shape published to the feed stream. Which
// fields are set depends on Type.
type FeedEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// Post events. AuthorID is the post owner; ActorID is the user who
	// liked, reposted or replied. ParentID is set when the created post is
	// a reply.
	PostID         int64 `json:"post_id,omitempty"`
	AuthorID       int64 `json:"author_id,omitempty"`
	ActorID        int64 `json:"actor_id,omitempty"`
	ParentID       int64 `json:"parent_id,omitempty"`
	ParentAuthorID int64 `json:"parent_author_id,omitempty"`

	// Follow events.
	FollowerID int64 `json:"follower_id,omitempty"`
	FolloweeID int64 `json:"followee_id,omitempty"`

	// Mention events.
	MentionedID int64 `json:"mentioned_id,omitempty"`
}

// NewPostCreatedEvent announces a new post. The worker fans top-level posts
// out to followers' feed caches; replies instead notify the parent author.
func NewPostCreatedEvent(postID, authorID, parentID, parentAuthorID int64) FeedEvent {
	return FeedEvent{
		Type:           EventPostCreated,
		Timestamp:      time.Now().Unix(),
		PostID:         postID,
		AuthorID:       authorID,
		ParentID:       parentID,
		ParentAuthorID: parentAuthorID,
	}
}

// NewPostDeletedEvent announces a deleted post so followers' caches drop it.
func NewPostDeletedEvent(postID, authorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewPostLikedEvent announces a like for notification delivery.
func NewPostLikedEvent(postID, authorID, actorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostLiked,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
		ActorID:   actorID,
	}
}

// NewPostRepostedEvent announces a repost. The worker fans the repost entry
// out to the reposter's followers and notifies the post author.
func NewPostRepostedEvent(postID, authorID, actorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostReposted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
		ActorID:   actorID,
	}
}

// NewPostUnrepostedEvent announces an undone repost so followers' caches
// drop the repost entry.
func NewPostUnrepostedEvent(postID, actorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostUnreposted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		ActorID:   actorID,
	}
}

// NewUserFollowedEvent announces a follow. The worker backfills the
// followee's recent entries into the follower's feed cache and notifies the
// followee.
func NewUserFollowedEvent(followerID, followeeID int64) FeedEvent {
	return FeedEvent{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// NewUserUnfollowedEvent announces an unfollow so the followee's entries
// leave the follower's feed cache.
func NewUserUnfollowedEvent(followerID, followeeID int64) FeedEvent {
	return FeedEvent{
		Type:       EventUserUnfollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// NewUserMentionedEvent announces an @mention for notification delivery.
func NewUserMentionedEvent(postID, actorID, mentionedID int64) FeedEvent {
	return FeedEvent{
		Type:        EventUserMentioned,
		Timestamp:   time.Now().Unix(),
		PostID:      postID,
		ActorID:     actorID,
		MentionedID: mentionedID,
	}
}

// ToMap serializes the event for XADD. Streams store field-value pairs, so
// the full event rides in a JSON "data" field alongside a bare "type".
func (e FeedEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseFeedEvent parses a FeedEvent from Redis stream message values.
func ParseFeedEvent(values map[string]interface{}) (FeedEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return FeedEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event FeedEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return FeedEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
