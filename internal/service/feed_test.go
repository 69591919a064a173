package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"desiiseb/internal/cache"
	"desiiseb/internal/model"
)

func newTestFeedService(feedCache *mockFeedCache, postRepo *mockPostRepository, followRepo *mockFollowRepository) *FeedService {
	if feedCache == nil {
		feedCache = &mockFeedCache{}
	}
	if postRepo == nil {
		postRepo = &mockPostRepository{}
	}
	if followRepo == nil {
		followRepo = &mockFollowRepository{}
	}
	assembler := newTestAssembler(postRepo, nil, nil)
	return NewFeedService(feedCache, postRepo, followRepo, assembler)
}

func entriesOfLen(n int) []model.FeedEntry {
	entries := make([]model.FeedEntry, n)
	for i := range entries {
		entries[i] = model.FeedEntry{
			Kind:      model.FeedEntryPost,
			PostID:    int64(n - i),
			CreatedAt: time.Unix(int64(1700000000+n-i), 0),
		}
	}
	return entries
}

func TestFeedService_HomeRequiresViewer(t *testing.T) {
	svc := newTestFeedService(nil, nil, nil)

	_, err := svc.GetFeed(context.Background(), nil, model.Scope{Kind: model.ScopeHome}, nil, 20)
	if !errors.Is(err, model.ErrInvalidScope) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidScope)
	}
}

func TestFeedService_UnknownScope(t *testing.T) {
	svc := newTestFeedService(nil, nil, nil)

	_, err := svc.GetFeed(context.Background(), nil, model.Scope{Kind: "trending"}, nil, 20)
	if !errors.Is(err, model.ErrInvalidScope) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidScope)
	}
}

func TestFeedService_ScopeSelection(t *testing.T) {
	var called string
	postRepo := &mockPostRepository{
		listGlobalFn: func(ctx context.Context, viewerID *int64, cursor *string, limit int) ([]model.FeedEntry, error) {
			called = "global"
			return nil, nil
		},
		listByAuthorFn: func(ctx context.Context, authorID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
			called = "author"
			if authorID != 5 {
				t.Errorf("authorID = %d, want 5", authorID)
			}
			return nil, nil
		},
		listRepliesFn: func(ctx context.Context, parentID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
			called = "thread"
			if parentID != 77 {
				t.Errorf("parentID = %d, want 77", parentID)
			}
			return nil, nil
		},
	}
	svc := newTestFeedService(nil, postRepo, nil)

	tests := []struct {
		scope model.Scope
		want  string
	}{
		{model.Scope{Kind: model.ScopeGlobal}, "global"},
		{model.Scope{Kind: model.ScopeAuthor, AuthorID: 5}, "author"},
		{model.Scope{Kind: model.ScopeThread, ParentID: 77}, "thread"},
	}
	for _, tt := range tests {
		called = ""
		if _, err := svc.GetFeed(context.Background(), nil, tt.scope, nil, 20); err != nil {
			t.Fatalf("scope %s: unexpected error: %v", tt.scope.Kind, err)
		}
		if called != tt.want {
			t.Errorf("scope %s dispatched to %q, want %q", tt.scope.Kind, called, tt.want)
		}
	}
}

func TestFeedService_LimitClampAndOverfetchTrim(t *testing.T) {
	var gotLimit int
	postRepo := &mockPostRepository{
		listGlobalFn: func(ctx context.Context, viewerID *int64, cursor *string, limit int) ([]model.FeedEntry, error) {
			gotLimit = limit
			// limit+1 rows returned signals a further page.
			return entriesOfLen(limit + 1), nil
		},
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return postsFromIDs(postIDs...), model.NewInteractionCounts(), nil
		},
	}
	svc := newTestFeedService(nil, postRepo, nil)

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero falls back to default", 0, FeedDefaultLimit},
		{"negative falls back to default", -3, FeedDefaultLimit},
		{"above max clamps", 500, FeedMaxLimit},
		{"in range passes through", 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := svc.GetFeed(context.Background(), nil, model.Scope{Kind: model.ScopeGlobal}, nil, tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotLimit != tt.wantLimit {
				t.Errorf("repo limit = %d, want %d", gotLimit, tt.wantLimit)
			}
			if len(feed.Posts) != tt.wantLimit {
				t.Errorf("page size = %d, want %d (overfetch row trimmed)", len(feed.Posts), tt.wantLimit)
			}
			if !feed.HasMore {
				t.Error("HasMore should be true when limit+1 rows came back")
			}
			if feed.NextCursor == nil {
				t.Error("NextCursor should be set when more pages exist")
			}
		})
	}
}

func TestFeedService_LastPageHasNoCursor(t *testing.T) {
	postRepo := &mockPostRepository{
		listGlobalFn: func(ctx context.Context, viewerID *int64, cursor *string, limit int) ([]model.FeedEntry, error) {
			return entriesOfLen(3), nil
		},
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return postsFromIDs(postIDs...), model.NewInteractionCounts(), nil
		},
	}
	svc := newTestFeedService(nil, postRepo, nil)

	feed, err := svc.GetFeed(context.Background(), nil, model.Scope{Kind: model.ScopeGlobal}, nil, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.HasMore {
		t.Error("HasMore should be false on the last page")
	}
	if feed.NextCursor != nil {
		t.Errorf("NextCursor = %v, want nil on the last page", *feed.NextCursor)
	}
}

func TestFeedService_HomeWarmsColdCache(t *testing.T) {
	userID := int64(4)
	feedCache := &mockFeedCache{
		existsFn: func(ctx context.Context, uID int64) (bool, error) {
			return false, nil
		},
	}
	var warmedWith []int64
	postRepo := &mockPostRepository{
		warmupEntriesFn: func(ctx context.Context, followeeIDs []int64, limit int) ([]cache.EntryScore, error) {
			warmedWith = followeeIDs
			return []cache.EntryScore{{Kind: cache.EntryKindPost, PostID: 1, ActorID: 2, Timestamp: 1700000001}}, nil
		},
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return postsFromIDs(postIDs...), model.NewInteractionCounts(), nil
		},
	}
	followRepo := &mockFollowRepository{
		getFolloweeIDsFn: func(ctx context.Context, uID int64) ([]int64, error) {
			return []int64{2, 3}, nil
		},
	}
	svc := newTestFeedService(feedCache, postRepo, followRepo)

	if _, err := svc.GetFeed(context.Background(), &userID, model.Scope{Kind: model.ScopeHome}, nil, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feedCache.warmed != 1 {
		t.Errorf("WarmCache called %d times, want 1", feedCache.warmed)
	}
	// The warm set covers the followees plus the user themself.
	wantIDs := map[int64]bool{2: true, 3: true, 4: true}
	if len(warmedWith) != 3 {
		t.Fatalf("warmup queried %v, want followees plus self", warmedWith)
	}
	for _, id := range warmedWith {
		if !wantIDs[id] {
			t.Errorf("unexpected warmup user %d", id)
		}
	}
}

func TestFeedService_HomeCursorBecomesScore(t *testing.T) {
	userID := int64(4)
	var gotCursor *float64
	feedCache := &mockFeedCache{
		getFeedFn: func(ctx context.Context, uID int64, cursorScore *float64, limit int) ([]cache.EntryScore, error) {
			gotCursor = cursorScore
			return nil, nil
		},
	}
	svc := newTestFeedService(feedCache, nil, nil)

	cursor := "15:1700000123"
	if _, err := svc.GetFeed(context.Background(), &userID, model.Scope{Kind: model.ScopeHome}, &cursor, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCursor == nil || *gotCursor != 1700000123 {
		t.Errorf("cursor score = %v, want 1700000123", gotCursor)
	}
}

func TestFeedCursorRoundTrip(t *testing.T) {
	c := formatFeedCursor(42, 1700000000)
	id, ts, err := parseFeedCursor(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 || ts != 1700000000 {
		t.Errorf("parsed (%d, %d), want (42, 1700000000)", id, ts)
	}

	for _, bad := range []string{"", "42", "a:b", "42:17:00"} {
		if _, _, err := parseFeedCursor(bad); err == nil {
			t.Errorf("parseFeedCursor(%q) should fail", bad)
		}
	}
}
