package service

import (
	"context"
	"time"

	"desiiseb/internal/model"
	"desiiseb/internal/repository"
)

const (
	// TrendingWindow is how far back trending tag counts look.
	TrendingWindow = 24 * time.Hour

	TrendingDefaultLimit = 10
	TrendingMaxLimit     = 50
)

// HashtagService serves the trending tags list.
type HashtagService struct {
	hashtagRepo repository.HashtagRepository
}

func NewHashtagService(hashtagRepo repository.HashtagRepository) *HashtagService {
	return &HashtagService{hashtagRepo: hashtagRepo}
}

// Trending returns the most-used tags over the trailing window.
func (s *HashtagService) Trending(ctx context.Context, limit int) ([]model.TrendingHashtag, error) {
	if limit <= 0 {
		limit = TrendingDefaultLimit
	}
	if limit > TrendingMaxLimit {
		limit = TrendingMaxLimit
	}
	return s.hashtagRepo.Trending(ctx, time.Now().Add(-TrendingWindow), limit)
}
