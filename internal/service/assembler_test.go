package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"desiiseb/internal/model"
)

func newTestAssembler(postRepo *mockPostRepository, profileRepo *mockProfileRepository, interactionRepo *mockInteractionRepository) *AssemblerService {
	if profileRepo == nil {
		profileRepo = &mockProfileRepository{}
	}
	if interactionRepo == nil {
		interactionRepo = &mockInteractionRepository{}
	}
	return NewAssemblerService(postRepo, profileRepo, NewResolverService(interactionRepo))
}

func postsFromIDs(ids ...int64) []model.Post {
	posts := make([]model.Post, len(ids))
	for i, id := range ids {
		posts[i] = model.Post{
			ID:             id,
			UserID:         100 + id,
			Content:        "post content",
			CreatedAt:      time.Unix(1700000000+id, 0),
			AuthorUsername: "author",
		}
	}
	return posts
}

func TestAssembler_PreservesEntryOrder(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return postsFromIDs(3, 1, 2), model.NewInteractionCounts(), nil
		},
	}
	svc := newTestAssembler(postRepo, nil, nil)

	entries := []model.FeedEntry{
		{Kind: model.FeedEntryPost, PostID: 3},
		{Kind: model.FeedEntryPost, PostID: 1},
		{Kind: model.FeedEntryPost, PostID: 2},
	}

	views, err := svc.Assemble(context.Background(), entries, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []int64{3, 1, 2}
	if len(views) != len(wantOrder) {
		t.Fatalf("got %d views, want %d", len(views), len(wantOrder))
	}
	for i, want := range wantOrder {
		if views[i].ID != want {
			t.Errorf("views[%d].ID = %d, want %d", i, views[i].ID, want)
		}
	}
}

func TestAssembler_UnwrapsSimpleRepost(t *testing.T) {
	repostedAt := time.Unix(1700005000, 0)

	postRepo := &mockPostRepository{
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return postsFromIDs(7), model.NewInteractionCounts(), nil
		},
	}
	profileRepo := &mockProfileRepository{
		getSummariesFn: func(ctx context.Context, ids []int64) (map[int64]model.ProfileSummary, error) {
			return map[int64]model.ProfileSummary{
				42: {ID: 42, Username: "reposter"},
			}, nil
		},
	}
	svc := newTestAssembler(postRepo, profileRepo, nil)

	entries := []model.FeedEntry{
		{Kind: model.FeedEntryRepost, PostID: 7, ActorID: 42, CreatedAt: repostedAt},
	}

	views, err := svc.Assemble(context.Background(), entries, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}

	view := views[0]
	if view.ID != 7 {
		t.Errorf("view.ID = %d, want the original post's ID 7", view.ID)
	}
	if view.Content != "post content" {
		t.Errorf("view.Content = %q, want the original post's content", view.Content)
	}
	if view.RepostedBy == nil || view.RepostedBy.ID != 42 {
		t.Errorf("view.RepostedBy = %+v, want actor 42", view.RepostedBy)
	}
	if !view.CreatedAt.Equal(repostedAt) {
		t.Errorf("view.CreatedAt = %v, want the repost timestamp %v", view.CreatedAt, repostedAt)
	}
}

func TestAssembler_DropsDanglingRepost(t *testing.T) {
	// Post 8 exists; post 9 (the repost target) has been deleted.
	postRepo := &mockPostRepository{
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return postsFromIDs(8), model.NewInteractionCounts(), nil
		},
	}
	svc := newTestAssembler(postRepo, nil, nil)

	entries := []model.FeedEntry{
		{Kind: model.FeedEntryPost, PostID: 8},
		{Kind: model.FeedEntryRepost, PostID: 9, ActorID: 42},
	}

	views, err := svc.Assemble(context.Background(), entries, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1 (dangling repost dropped)", len(views))
	}
	if views[0].ID != 8 {
		t.Errorf("surviving view ID = %d, want 8", views[0].ID)
	}
}

func TestAssembler_InlinesQuoteTarget(t *testing.T) {
	quoteTarget := int64(5)
	postRepo := &mockPostRepository{
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			// First call hydrates the page, second hydrates the quote target.
			if len(postIDs) == 1 && postIDs[0] == quoteTarget {
				return postsFromIDs(quoteTarget), model.NewInteractionCounts(), nil
			}
			quote := postsFromIDs(10)
			quote[0].RepostOf = &quoteTarget
			return quote, model.NewInteractionCounts(), nil
		},
	}
	svc := newTestAssembler(postRepo, nil, nil)

	views, err := svc.Assemble(context.Background(), []model.FeedEntry{
		{Kind: model.FeedEntryPost, PostID: 10},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	if views[0].Quoted == nil {
		t.Fatal("expected Quoted to be set for a quote repost")
	}
	if views[0].Quoted.ID != quoteTarget {
		t.Errorf("Quoted.ID = %d, want %d", views[0].Quoted.ID, quoteTarget)
	}
}

func TestAssembler_QuoteOfDeletedTargetRendersWithoutQuoted(t *testing.T) {
	deleted := int64(99)
	postRepo := &mockPostRepository{
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			if len(postIDs) == 1 && postIDs[0] == deleted {
				return nil, model.NewInteractionCounts(), nil
			}
			quote := postsFromIDs(11)
			quote[0].RepostOf = &deleted
			return quote, model.NewInteractionCounts(), nil
		},
	}
	svc := newTestAssembler(postRepo, nil, nil)

	views, err := svc.Assemble(context.Background(), []model.FeedEntry{
		{Kind: model.FeedEntryPost, PostID: 11},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1 (the quote itself still renders)", len(views))
	}
	if views[0].Quoted != nil {
		t.Error("Quoted should be nil when the quote target is gone")
	}
}

func TestAssembler_FallsBackWhenFastPathFails(t *testing.T) {
	fallbackUsed := false
	postRepo := &mockPostRepository{
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return nil, nil, errors.New("aggregate query broken")
		},
		getByIDsFn: func(ctx context.Context, postIDs []int64) ([]model.Post, error) {
			fallbackUsed = true
			return postsFromIDs(1), nil
		},
	}
	interactionRepo := &mockInteractionRepository{
		countLikesFn: func(ctx context.Context, postIDs []int64) (map[int64]int, error) {
			return map[int64]int{1: 3}, nil
		},
	}
	svc := newTestAssembler(postRepo, nil, interactionRepo)

	views, err := svc.Assemble(context.Background(), []model.FeedEntry{
		{Kind: model.FeedEntryPost, PostID: 1},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fallbackUsed {
		t.Error("expected the plain read fallback to run")
	}
	if len(views) != 1 || views[0].LikeCount != 3 {
		t.Errorf("views = %+v, want one view with LikeCount 3", views)
	}
}

func TestAssembler_AssembleOne_NotFound(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDsWithCountsFn: func(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
			return nil, model.NewInteractionCounts(), nil
		},
	}
	svc := newTestAssembler(postRepo, nil, nil)

	_, err := svc.AssembleOne(context.Background(), 404, nil)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}
