package service

import (
	"context"
	"fmt"
	"sync"

	"desiiseb/internal/model"
	"desiiseb/internal/repository"
)

// ResolverService computes interaction state for a page of posts using bulk
// reads: one query per aggregate kind regardless of page size, never one per
// post. It is the fallback path when the combined SQL read is unavailable.
type ResolverService struct {
	interactionRepo repository.InteractionRepository
}

func NewResolverService(interactionRepo repository.InteractionRepository) *ResolverService {
	return &ResolverService{interactionRepo: interactionRepo}
}

// Resolve fetches counts and viewer flags for the given posts. The five bulk
// reads are independent, so they run concurrently. A nil viewerID skips the
// flag queries and leaves all flags false.
func (s *ResolverService) Resolve(ctx context.Context, postIDs []int64, viewerID *int64) (*model.InteractionCounts, error) {
	counts := model.NewInteractionCounts()
	if len(postIDs) == 0 {
		return counts, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		likes, err := s.interactionRepo.CountLikes(ctx, postIDs)
		if err == nil {
			counts.LikeCount = likes
		}
		record(err)
	}()
	go func() {
		defer wg.Done()
		reposts, err := s.interactionRepo.CountReposts(ctx, postIDs)
		if err == nil {
			counts.RepostCount = reposts
		}
		record(err)
	}()
	go func() {
		defer wg.Done()
		replies, err := s.interactionRepo.CountReplies(ctx, postIDs)
		if err == nil {
			counts.ReplyCount = replies
		}
		record(err)
	}()

	if viewerID != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			liked, err := s.interactionRepo.ViewerLiked(ctx, *viewerID, postIDs)
			if err == nil {
				counts.ViewerLiked = liked
			}
			record(err)
		}()
		go func() {
			defer wg.Done()
			reposted, err := s.interactionRepo.ViewerReposted(ctx, *viewerID, postIDs)
			if err == nil {
				counts.ViewerReposted = reposted
			}
			record(err)
		}()
	}

	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("resolve interactions: %w", firstErr)
	}
	return counts, nil
}
