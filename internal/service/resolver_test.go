package service

import (
	"context"
	"errors"
	"testing"
)

func TestResolver_AggregatesCountsAndFlags(t *testing.T) {
	viewerID := int64(9)
	mockRepo := &mockInteractionRepository{
		countLikesFn: func(ctx context.Context, postIDs []int64) (map[int64]int, error) {
			return map[int64]int{1: 5, 2: 1}, nil
		},
		countRepostsFn: func(ctx context.Context, postIDs []int64) (map[int64]int, error) {
			return map[int64]int{1: 2}, nil
		},
		countRepliesFn: func(ctx context.Context, postIDs []int64) (map[int64]int, error) {
			return map[int64]int{2: 7}, nil
		},
		viewerLikedFn: func(ctx context.Context, vID int64, postIDs []int64) (map[int64]bool, error) {
			if vID != viewerID {
				t.Errorf("viewerID passed to ViewerLiked = %d, want %d", vID, viewerID)
			}
			return map[int64]bool{1: true}, nil
		},
		viewerRepostedFn: func(ctx context.Context, vID int64, postIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{2: true}, nil
		},
	}
	svc := NewResolverService(mockRepo)

	counts, err := svc.Resolve(context.Background(), []int64{1, 2}, &viewerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if counts.LikeCount[1] != 5 || counts.LikeCount[2] != 1 {
		t.Errorf("LikeCount = %v", counts.LikeCount)
	}
	if counts.RepostCount[1] != 2 {
		t.Errorf("RepostCount = %v", counts.RepostCount)
	}
	if counts.ReplyCount[2] != 7 {
		t.Errorf("ReplyCount = %v", counts.ReplyCount)
	}
	if !counts.ViewerLiked[1] || counts.ViewerLiked[2] {
		t.Errorf("ViewerLiked = %v", counts.ViewerLiked)
	}
	if !counts.ViewerReposted[2] {
		t.Errorf("ViewerReposted = %v", counts.ViewerReposted)
	}
}

func TestResolver_AnonymousViewerSkipsFlagQueries(t *testing.T) {
	flagQueried := false
	mockRepo := &mockInteractionRepository{
		viewerLikedFn: func(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error) {
			flagQueried = true
			return nil, nil
		},
		viewerRepostedFn: func(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error) {
			flagQueried = true
			return nil, nil
		},
	}
	svc := NewResolverService(mockRepo)

	counts, err := svc.Resolve(context.Background(), []int64{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flagQueried {
		t.Error("viewer flag queries must not run for anonymous viewers")
	}
	if len(counts.ViewerLiked) != 0 || len(counts.ViewerReposted) != 0 {
		t.Error("viewer flags should stay empty for anonymous viewers")
	}
}

func TestResolver_EmptyPageSkipsQueries(t *testing.T) {
	queried := false
	mockRepo := &mockInteractionRepository{
		countLikesFn: func(ctx context.Context, postIDs []int64) (map[int64]int, error) {
			queried = true
			return nil, nil
		},
	}
	svc := NewResolverService(mockRepo)

	counts, err := svc.Resolve(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried {
		t.Error("no queries should run for an empty page")
	}
	if counts == nil {
		t.Fatal("expected empty counts, got nil")
	}
}

func TestResolver_PropagatesFirstError(t *testing.T) {
	dbErr := errors.New("connection reset")
	mockRepo := &mockInteractionRepository{
		countRepostsFn: func(ctx context.Context, postIDs []int64) (map[int64]int, error) {
			return nil, dbErr
		},
	}
	svc := NewResolverService(mockRepo)

	_, err := svc.Resolve(context.Background(), []int64{1}, nil)
	if !errors.Is(err, dbErr) {
		t.Errorf("error = %v, want wrapped %v", err, dbErr)
	}
}
