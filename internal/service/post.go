package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"desiiseb/internal/model"
	"desiiseb/internal/queue"
	"desiiseb/internal/repository"
)

// PostService handles post creation, lookup and deletion, plus the
// write-time hashtag and mention extraction that feeds discovery.
type PostService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	hashtagRepo repository.HashtagRepository
	assembler   *AssemblerService
	publisher   queue.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	hashtagRepo repository.HashtagRepository,
	assembler *AssemblerService,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		hashtagRepo: hashtagRepo,
		assembler:   assembler,
		publisher:   publisher,
	}
}

// Create validates and inserts a post, reply or quote repost, then links
// hashtags and mentions and publishes the fan-out event.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.PostView, error) {
	req.Content = strings.TrimSpace(req.Content)

	if req.Content == "" && len(req.MediaURLs) == 0 && req.RepostOf == nil {
		return nil, model.ErrEmptyContent
	}
	if utf8.RuneCountInString(req.Content) > model.MaxPostContentRunes {
		return nil, model.ErrContentTooLong
	}
	if len(req.MediaURLs) > model.MaxPostMediaCount {
		return nil, model.ErrTooManyMedia
	}
	if len(req.MediaURLs) > 0 {
		if req.MediaType == nil || !isValidMediaType(*req.MediaType) {
			return nil, model.ErrInvalidMediaType
		}
	}

	var parentAuthorID int64
	if req.ReplyTo != nil {
		authorID, err := s.postRepo.GetAuthorID(ctx, *req.ReplyTo)
		if err != nil {
			if errors.Is(err, model.ErrPostNotFound) {
				return nil, model.ErrParentNotFound
			}
			return nil, err
		}
		parentAuthorID = authorID
	}
	if req.RepostOf != nil {
		exists, err := s.postRepo.Exists(ctx, *req.RepostOf)
		if err != nil {
			return nil, fmt.Errorf("check quote target: %w", err)
		}
		if !exists {
			return nil, model.ErrParentNotFound
		}
	}

	post, err := s.postRepo.Create(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	// Hashtag and mention linking is best-effort: a failed link never undoes
	// the post, it just leaves a tag unindexed.
	s.linkHashtags(ctx, post.ID, req.Content)
	s.linkMentions(ctx, post.ID, userID, req.Content)

	var parentID int64
	if req.ReplyTo != nil {
		parentID = *req.ReplyTo
	}
	event := queue.NewPostCreatedEvent(post.ID, userID, parentID, parentAuthorID)
	if msgID, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[PostService] Failed to publish PostCreated: post=%d err=%v", post.ID, err)
	} else {
		log.Printf("[PostService] Published PostCreated: post=%d msgID=%s", post.ID, msgID)
	}

	return s.assembler.AssembleOne(ctx, post.ID, &userID)
}

// GetByID returns the assembled view of one post.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64) (*model.PostView, error) {
	return s.assembler.AssembleOne(ctx, postID, viewerID)
}

// Delete soft-deletes a post (ownership checked in SQL) and publishes the
// removal event so follower caches drop it.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	if err := s.postRepo.Delete(ctx, postID, userID); err != nil {
		return err
	}

	event := queue.NewPostDeletedEvent(postID, userID)
	if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
		log.Printf("[PostService] Failed to publish PostDeleted: post=%d err=%v", postID, err)
	}
	return nil
}

func (s *PostService) linkHashtags(ctx context.Context, postID int64, content string) {
	for _, tag := range ExtractHashtags(content) {
		tagID, err := s.hashtagRepo.Upsert(ctx, tag)
		if err != nil {
			log.Printf("[PostService] Failed to upsert hashtag %q: %v", tag, err)
			continue
		}
		if err := s.hashtagRepo.LinkPost(ctx, postID, tagID); err != nil {
			log.Printf("[PostService] Failed to link hashtag %q to post=%d: %v", tag, postID, err)
		}
	}
}

// linkMentions resolves @handles to users. Handles that match no account are
// silently skipped.
func (s *PostService) linkMentions(ctx context.Context, postID, actorID int64, content string) {
	for _, name := range ExtractMentions(content) {
		mentionedID, err := s.profileRepo.GetIDByUsername(ctx, name)
		if err != nil {
			if !errors.Is(err, model.ErrProfileNotFound) {
				log.Printf("[PostService] Failed to resolve mention @%s: %v", name, err)
			}
			continue
		}
		if err := s.hashtagRepo.LinkMention(ctx, postID, mentionedID); err != nil {
			log.Printf("[PostService] Failed to link mention @%s to post=%d: %v", name, postID, err)
			continue
		}

		event := queue.NewUserMentionedEvent(postID, actorID, mentionedID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[PostService] Failed to publish UserMentioned: post=%d err=%v", postID, err)
		}
	}
}

func isValidMediaType(mt string) bool {
	switch mt {
	case model.MediaTypeImage, model.MediaTypeVideo, model.MediaTypeGIF:
		return true
	}
	return false
}
