package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for per-user home feed caches.
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of entries cached per user.
	FeedCacheCap = 500

	// FeedCacheTTL is how long an untouched feed cache survives.
	FeedCacheTTL = 7 * 24 * time.Hour
)

// Entry kinds stored in cache members.
const (
	EntryKindPost   = "post"
	EntryKindRepost = "repost"
)

// EntryScore is one home-feed entry with its timestamp score. ActorID is the
// author for posts and the reposting user for reposts.
type EntryScore struct {
	Kind      string
	PostID    int64
	ActorID   int64
	Timestamp int64
}

// FeedCache is the Redis-backed home feed index: a sorted set per user where
// members encode (kind, post, actor) and scores are unix timestamps.
type FeedCache interface {
	// AddEntry adds one entry, trims to cap and refreshes the TTL.
	AddEntry(ctx context.Context, userID int64, entry EntryScore) error

	// RemoveEntries removes the given entries if present.
	RemoveEntries(ctx context.Context, userID int64, entries []EntryScore) error

	// GetFeed returns entries newest-first. A nil cursorScore starts at the
	// top; otherwise only entries strictly older than the cursor are returned.
	GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) ([]EntryScore, error)

	// WarmCache bulk-inserts entries, trims to cap and sets the TTL.
	WarmCache(ctx context.Context, userID int64, entries []EntryScore) error

	// Size returns the number of cached entries for a user.
	Size(ctx context.Context, userID int64) (int64, error)

	// Exists reports whether the user has a cache key at all. False means a
	// cold cache (new user or TTL expired) and callers should warm it.
	Exists(ctx context.Context, userID int64) (bool, error)
}

type RedisFeedCache struct {
	client *redis.Client
}

func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s%d", FeedCachePrefix, userID)
}

// Member returns the sorted-set member encoding: kind:postID:actorID.
func (e EntryScore) Member() string {
	return fmt.Sprintf("%s:%d:%d", e.Kind, e.PostID, e.ActorID)
}

func parseMember(member string, score float64) (EntryScore, error) {
	parts := strings.SplitN(member, ":", 3)
	if len(parts) != 3 {
		return EntryScore{}, fmt.Errorf("malformed feed member %q", member)
	}
	postID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return EntryScore{}, fmt.Errorf("parse post id in %q: %w", member, err)
	}
	actorID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return EntryScore{}, fmt.Errorf("parse actor id in %q: %w", member, err)
	}
	return EntryScore{
		Kind:      parts[0],
		PostID:    postID,
		ActorID:   actorID,
		Timestamp: int64(score),
	}, nil
}

// AddEntry pipelines ZADD + ZREMRANGEBYRANK (keep the newest FeedCacheCap
// scores) + EXPIRE.
func (c *RedisFeedCache) AddEntry(ctx context.Context, userID int64, entry EntryScore) error {
	key := feedKey(userID)
	startTime := time.Now()

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(entry.Timestamp),
		Member: entry.Member(),
	})
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] AddEntry FAILED: user=%d member=%s err=%v", userID, entry.Member(), err)
		return fmt.Errorf("add feed entry: %w", err)
	}

	log.Printf("[FeedCache] AddEntry OK: user=%d member=%s score=%d duration=%v",
		userID, entry.Member(), entry.Timestamp, time.Since(startTime))
	return nil
}

func (c *RedisFeedCache) RemoveEntries(ctx context.Context, userID int64, entries []EntryScore) error {
	if len(entries) == 0 {
		return nil
	}
	key := feedKey(userID)

	members := make([]interface{}, len(entries))
	for i, e := range entries {
		members[i] = e.Member()
	}

	removed, err := c.client.ZRem(ctx, key, members...).Result()
	if err != nil {
		log.Printf("[FeedCache] RemoveEntries FAILED: user=%d count=%d err=%v", userID, len(entries), err)
		return fmt.Errorf("remove feed entries: %w", err)
	}

	log.Printf("[FeedCache] RemoveEntries OK: user=%d requested=%d removed=%d", userID, len(entries), removed)
	return nil
}

func (c *RedisFeedCache) GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) ([]EntryScore, error) {
	key := feedKey(userID)
	startTime := time.Now()

	var results []redis.Z
	var err error

	if cursorScore == nil {
		results, err = c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	} else {
		// "(" prefix makes the cursor bound exclusive.
		results, err = c.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:    "-inf",
			Max:    fmt.Sprintf("(%f", *cursorScore),
			Offset: 0,
			Count:  int64(limit),
		}).Result()
	}
	if err != nil {
		log.Printf("[FeedCache] GetFeed FAILED: user=%d err=%v", userID, err)
		return nil, fmt.Errorf("get feed: %w", err)
	}

	// Refresh TTL on access.
	c.client.Expire(ctx, key, FeedCacheTTL)

	entries := make([]EntryScore, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entry, err := parseMember(member, z.Score)
		if err != nil {
			log.Printf("[FeedCache] GetFeed skipping bad member: user=%d err=%v", userID, err)
			continue
		}
		entries = append(entries, entry)
	}

	log.Printf("[FeedCache] GetFeed OK: user=%d returned=%d duration=%v",
		userID, len(entries), time.Since(startTime))
	return entries, nil
}

func (c *RedisFeedCache) WarmCache(ctx context.Context, userID int64, entries []EntryScore) error {
	if len(entries) == 0 {
		log.Printf("[FeedCache] WarmCache: user=%d entries=0 (nothing to warm)", userID)
		return nil
	}

	key := feedKey(userID)
	startTime := time.Now()

	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{
			Score:  float64(e.Timestamp),
			Member: e.Member(),
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: user=%d entries=%d err=%v", userID, len(entries), err)
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: user=%d entries=%d duration=%v",
		userID, len(entries), time.Since(startTime))
	return nil
}

func (c *RedisFeedCache) Size(ctx context.Context, userID int64) (int64, error) {
	size, err := c.client.ZCard(ctx, feedKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("get cache size: %w", err)
	}
	return size, nil
}

func (c *RedisFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	exists, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check cache exists: %w", err)
	}
	return exists > 0, nil
}
