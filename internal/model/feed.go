package model

import (
	"errors"
	"time"
)

// Feed scope kinds
const (
	ScopeGlobal = "global"
	ScopeHome   = "home"
	ScopeAuthor = "author"
	ScopeThread = "thread"
)

// Scope selects which slice of the post graph a feed page is built from.
// AuthorID is set for ScopeAuthor, ParentID for ScopeThread.
type Scope struct {
	Kind     string
	AuthorID int64
	ParentID int64
}

// Feed entry kinds
const (
	FeedEntryPost   = "post"
	FeedEntryRepost = "repost"
)

// FeedEntry is one row of the merged post/repost stream a scope query
// returns. For a repost entry PostID references the original post and
// CreatedAt is the repost action's timestamp.
type FeedEntry struct {
	Kind      string    `db:"kind"`
	PostID    int64     `db:"post_id"`
	ActorID   int64     `db:"actor_id"`
	CreatedAt time.Time `db:"created_at"`
}

var ErrInvalidScope = errors.New("invalid feed scope")
