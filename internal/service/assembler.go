package service

import (
	"context"
	"fmt"
	"log"

	"desiiseb/internal/model"
	"desiiseb/internal/repository"
)

// AssemblerService turns a page of feed entries into render-ready post
// views: it hydrates posts in bulk, attaches interaction state, unwraps
// simple reposts and inlines quote targets. Entries whose post has vanished
// are dropped, never rendered as placeholders.
type AssemblerService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	resolver    *ResolverService
}

func NewAssemblerService(
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	resolver *ResolverService,
) *AssemblerService {
	return &AssemblerService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		resolver:    resolver,
	}
}

// Assemble builds views for the entries in their given order.
func (s *AssemblerService) Assemble(ctx context.Context, entries []model.FeedEntry, viewerID *int64) ([]model.PostView, error) {
	if len(entries) == 0 {
		return []model.PostView{}, nil
	}

	postIDs := uniquePostIDs(entries)

	posts, counts, err := s.fetchPosts(ctx, postIDs, viewerID)
	if err != nil {
		return nil, err
	}
	postMap := make(map[int64]model.Post, len(posts))
	for _, p := range posts {
		postMap[p.ID] = p
	}

	// Quote targets not already on the page need a second hydration pass.
	var quotedIDs []int64
	for _, p := range posts {
		if p.RepostOf != nil {
			if _, ok := postMap[*p.RepostOf]; !ok {
				quotedIDs = append(quotedIDs, *p.RepostOf)
			}
		}
	}
	if len(quotedIDs) > 0 {
		quoted, quotedCounts, err := s.fetchPosts(ctx, quotedIDs, viewerID)
		if err != nil {
			return nil, err
		}
		for _, p := range quoted {
			postMap[p.ID] = p
		}
		mergeCounts(counts, quotedCounts)
	}

	// Reposting actors for the unwrapped entries.
	var actorIDs []int64
	for _, e := range entries {
		if e.Kind == model.FeedEntryRepost {
			actorIDs = append(actorIDs, e.ActorID)
		}
	}
	actors := map[int64]model.ProfileSummary{}
	if len(actorIDs) > 0 {
		actors, err = s.profileRepo.GetSummaries(ctx, actorIDs)
		if err != nil {
			return nil, fmt.Errorf("get repost actors: %w", err)
		}
	}

	views := make([]model.PostView, 0, len(entries))
	for _, e := range entries {
		post, ok := postMap[e.PostID]
		if !ok {
			// Target deleted since the entry was written (dangling repost,
			// or a post removed mid-pagination). Drop it.
			continue
		}

		view := buildView(post, counts)
		if post.RepostOf != nil {
			if target, ok := postMap[*post.RepostOf]; ok {
				quoted := buildView(target, counts)
				view.Quoted = &quoted
			}
		}

		if e.Kind == model.FeedEntryRepost {
			actor, ok := actors[e.ActorID]
			if !ok {
				continue
			}
			// Unwrap: the view shows the original post's content under the
			// reposting actor's banner, ordered by the repost timestamp.
			view.RepostedBy = &actor
			view.CreatedAt = e.CreatedAt
		}

		views = append(views, view)
	}
	return views, nil
}

// AssembleOne builds the view for a single post.
func (s *AssemblerService) AssembleOne(ctx context.Context, postID int64, viewerID *int64) (*model.PostView, error) {
	views, err := s.Assemble(ctx, []model.FeedEntry{{Kind: model.FeedEntryPost, PostID: postID}}, viewerID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, model.ErrPostNotFound
	}
	return &views[0], nil
}

// fetchPosts hydrates posts with interaction state. The combined SQL read is
// the fast path; on failure it falls back to the plain read plus the bulk
// resolver so one broken aggregate never blanks the feed.
func (s *AssemblerService) fetchPosts(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
	posts, counts, err := s.postRepo.GetByIDsWithCounts(ctx, postIDs, viewerID)
	if err == nil {
		return posts, counts, nil
	}
	log.Printf("[Assembler] fast path failed, falling back: %v", err)

	posts, err = s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("get posts: %w", err)
	}
	counts, err = s.resolver.Resolve(ctx, postIDs, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return posts, counts, nil
}

func buildView(p model.Post, counts *model.InteractionCounts) model.PostView {
	return model.PostView{
		ID:        p.ID,
		Author:    p.Author(),
		Content:   p.Content,
		ReplyTo:   p.ReplyTo,
		RepostOf:  p.RepostOf,
		MediaURLs: []string(p.MediaURLs),
		MediaType: p.MediaType,
		CreatedAt: p.CreatedAt,

		LikeCount:   counts.LikeCount[p.ID],
		RepostCount: counts.RepostCount[p.ID],
		ReplyCount:  counts.ReplyCount[p.ID],

		ViewerHasLiked:    counts.ViewerLiked[p.ID],
		ViewerHasReposted: counts.ViewerReposted[p.ID],
	}
}

func uniquePostIDs(entries []model.FeedEntry) []int64 {
	seen := make(map[int64]struct{}, len(entries))
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.PostID]; ok {
			continue
		}
		seen[e.PostID] = struct{}{}
		ids = append(ids, e.PostID)
	}
	return ids
}

func mergeCounts(dst, src *model.InteractionCounts) {
	for id, n := range src.LikeCount {
		dst.LikeCount[id] = n
	}
	for id, n := range src.RepostCount {
		dst.RepostCount[id] = n
	}
	for id, n := range src.ReplyCount {
		dst.ReplyCount[id] = n
	}
	for id, b := range src.ViewerLiked {
		dst.ViewerLiked[id] = b
	}
	for id, b := range src.ViewerReposted {
		dst.ViewerReposted[id] = b
	}
}
