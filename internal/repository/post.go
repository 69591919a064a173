package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"desiiseb/internal/cache"
	"desiiseb/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postColumns is the shared select list: post row + author profile columns,
// so no scope read ever needs a follow-up author lookup.
const postColumns = `
	p.id, p.user_id, p.content, p.reply_to, p.repost_of, p.media_urls, p.media_type,
	p.created_at, p.updated_at,
	u.username AS author_username,
	u.display_name AS author_display_name,
	u.avatar_url AS author_avatar_url,
	u.is_verified AS author_is_verified`

// Create inserts a new post (or reply, or quote repost).
func (r *postRepository) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, content, reply_to, repost_of, media_urls, media_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, content, reply_to, repost_of, media_urls, media_type, created_at, updated_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query,
		userID, req.Content, req.ReplyTo, req.RepostOf, pq.Array(req.MediaURLs), req.MediaType)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &post, nil
}

// GetByID retrieves a single post with its author.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN profiles u ON u.id = p.user_id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`, postColumns)

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// GetByIDs retrieves multiple posts with authors, preserving input order.
// Missing or soft-deleted posts are dropped, which is what lets the
// assembler detect dangling repost references.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN profiles u ON u.id = p.user_id
		WHERE p.id = ANY($1) AND p.deleted_at IS NULL
	`, postColumns)

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	return reorderPosts(posts, postIDs), nil
}

// postWithCounts is the fast-path row: a post plus embedded aggregates.
type postWithCounts struct {
	model.Post
	LikeCount      int  `db:"like_count"`
	RepostCount    int  `db:"repost_count"`
	ReplyCount     int  `db:"reply_count"`
	ViewerLiked    bool `db:"viewer_liked"`
	ViewerReposted bool `db:"viewer_reposted"`
}

// GetByIDsWithCounts is the single-round-trip fast path: posts joined with
// authors plus interaction counts and viewer flags computed in SQL. The
// multi-query resolver path is the fallback when this fails.
func (r *postRepository) GetByIDsWithCounts(ctx context.Context, postIDs []int64, viewerID *int64) ([]model.Post, *model.InteractionCounts, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, model.NewInteractionCounts(), nil
	}

	viewerClause := `FALSE AS viewer_liked, FALSE AS viewer_reposted`
	args := []interface{}{pq.Array(postIDs)}
	if viewerID != nil {
		viewerClause = `
			EXISTS(SELECT 1 FROM likes vl WHERE vl.post_id = p.id AND vl.user_id = $2) AS viewer_liked,
			EXISTS(SELECT 1 FROM reposts vr WHERE vr.post_id = p.id AND vr.user_id = $2) AS viewer_reposted`
		args = append(args, *viewerID)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
			(SELECT COUNT(*) FROM reposts rp WHERE rp.post_id = p.id) AS repost_count,
			(SELECT COUNT(*) FROM posts c WHERE c.reply_to = p.id AND c.deleted_at IS NULL) AS reply_count,
			%s
		FROM posts p
		JOIN profiles u ON u.id = p.user_id
		WHERE p.id = ANY($1) AND p.deleted_at IS NULL
	`, postColumns, viewerClause)

	var rows []postWithCounts
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, nil, fmt.Errorf("get posts with counts: %w", err)
	}

	counts := model.NewInteractionCounts()
	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.Post
		counts.LikeCount[row.ID] = row.LikeCount
		counts.RepostCount[row.ID] = row.RepostCount
		counts.ReplyCount[row.ID] = row.ReplyCount
		counts.ViewerLiked[row.ID] = row.ViewerLiked
		counts.ViewerReposted[row.ID] = row.ViewerReposted
	}

	return reorderPosts(posts, postIDs), counts, nil
}

// Delete performs a soft delete on a post, verifying ownership.
func (r *postRepository) Delete(ctx context.Context, postID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID)
		if exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}
	return nil
}

// Exists checks if a post exists and is not deleted.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// GetAuthorID returns the author of a post (for event publishing).
func (r *postRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// ListGlobal returns the merged post/repost stream, newest first. When a
// viewer is present, authors the viewer has blocked are excluded.
func (r *postRepository) ListGlobal(ctx context.Context, viewerID *int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	var sb strings.Builder
	args := []interface{}{}

	blockFilter := ""
	if viewerID != nil {
		args = append(args, *viewerID)
		blockFilter = fmt.Sprintf(`AND x.actor_id NOT IN (SELECT blocked_id FROM blocks WHERE blocker_id = $%d)`, len(args))
	}

	sb.WriteString(`
		SELECT kind, post_id, actor_id, created_at FROM (
			SELECT 'post' AS kind, p.id AS post_id, p.user_id AS actor_id, p.created_at
			FROM posts p
			WHERE p.deleted_at IS NULL
			UNION ALL
			SELECT 'repost' AS kind, r.post_id, r.user_id AS actor_id, r.created_at
			FROM reposts r
		) x
		WHERE TRUE ` + blockFilter)

	return r.finishEntryQuery(ctx, sb.String(), args, cursor, limit)
}

// ListByAuthor returns one profile's posts, replies and simple reposts.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	query := `
		SELECT kind, post_id, actor_id, created_at FROM (
			SELECT 'post' AS kind, p.id AS post_id, p.user_id AS actor_id, p.created_at
			FROM posts p
			WHERE p.user_id = $1 AND p.deleted_at IS NULL
			UNION ALL
			SELECT 'repost' AS kind, r.post_id, r.user_id AS actor_id, r.created_at
			FROM reposts r
			WHERE r.user_id = $1
		) x
		WHERE TRUE`
	return r.finishEntryQuery(ctx, query, []interface{}{authorID}, cursor, limit)
}

// ListReplies returns direct replies to one post, newest first.
func (r *postRepository) ListReplies(ctx context.Context, parentID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	query := `
		SELECT 'post' AS kind, p.id AS post_id, p.user_id AS actor_id, p.created_at
		FROM posts p
		WHERE p.reply_to = $1 AND p.deleted_at IS NULL`
	return r.finishEntryQuery(ctx, wrapEntryQuery(query), []interface{}{parentID}, cursor, limit)
}

// ListByHashtag returns posts linked to a tag name, newest first.
func (r *postRepository) ListByHashtag(ctx context.Context, tag string, cursor *string, limit int) ([]model.FeedEntry, error) {
	query := `
		SELECT 'post' AS kind, p.id AS post_id, p.user_id AS actor_id, p.created_at
		FROM posts p
		JOIN post_hashtags ph ON ph.post_id = p.id
		JOIN hashtags h ON h.id = ph.hashtag_id
		WHERE h.name = $1 AND p.deleted_at IS NULL`
	return r.finishEntryQuery(ctx, wrapEntryQuery(query), []interface{}{tag}, cursor, limit)
}

// wrapEntryQuery gives single-arm queries the same outer shape as the
// UNION ALL scopes so cursor/limit handling is shared.
func wrapEntryQuery(inner string) string {
	return `SELECT kind, post_id, actor_id, created_at FROM (` + inner + `) x WHERE TRUE`
}

// finishEntryQuery appends the cursor filter, ordering and limit shared by
// every scope: (created_at, post_id) strictly descending, limit+1 fetch so
// the caller can detect a further page.
func (r *postRepository) finishEntryQuery(ctx context.Context, query string, args []interface{}, cursor *string, limit int) ([]model.FeedEntry, error) {
	if cursor != nil {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		args = append(args, ts, id)
		query += fmt.Sprintf(` AND (x.created_at, x.post_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY x.created_at DESC, x.post_id DESC LIMIT $%d`, len(args))

	var entries []model.FeedEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list feed entries: %w", err)
	}
	return entries, nil
}

// GetRecentEntriesByUser returns a user's recent posts and reposts for
// follow backfill.
func (r *postRepository) GetRecentEntriesByUser(ctx context.Context, userID int64, limit int) ([]cache.EntryScore, error) {
	query := `
		SELECT kind, post_id, actor_id, ts FROM (
			SELECT 'post' AS kind, p.id AS post_id, p.user_id AS actor_id,
				EXTRACT(EPOCH FROM p.created_at)::bigint AS ts
			FROM posts p
			WHERE p.user_id = $1 AND p.deleted_at IS NULL
			UNION ALL
			SELECT 'repost', r.post_id, r.user_id,
				EXTRACT(EPOCH FROM r.created_at)::bigint
			FROM reposts r
			JOIN posts p ON p.id = r.post_id AND p.deleted_at IS NULL
			WHERE r.user_id = $1
		) x
		ORDER BY ts DESC
		LIMIT $2
	`
	return r.selectEntryScores(ctx, query, userID, limit)
}

// GetWarmupEntries returns the newest entries across all followees for
// rebuilding a cold home feed cache.
func (r *postRepository) GetWarmupEntries(ctx context.Context, followeeIDs []int64, limit int) ([]cache.EntryScore, error) {
	if len(followeeIDs) == 0 {
		return []cache.EntryScore{}, nil
	}

	query := `
		SELECT kind, post_id, actor_id, ts FROM (
			SELECT 'post' AS kind, p.id AS post_id, p.user_id AS actor_id,
				EXTRACT(EPOCH FROM p.created_at)::bigint AS ts
			FROM posts p
			WHERE p.user_id = ANY($1) AND p.deleted_at IS NULL
			UNION ALL
			SELECT 'repost', r.post_id, r.user_id,
				EXTRACT(EPOCH FROM r.created_at)::bigint
			FROM reposts r
			JOIN posts p ON p.id = r.post_id AND p.deleted_at IS NULL
			WHERE r.user_id = ANY($1)
		) x
		ORDER BY ts DESC
		LIMIT $2
	`
	return r.selectEntryScores(ctx, query, pq.Array(followeeIDs), limit)
}

func (r *postRepository) selectEntryScores(ctx context.Context, query string, args ...interface{}) ([]cache.EntryScore, error) {
	type row struct {
		Kind    string `db:"kind"`
		PostID  int64  `db:"post_id"`
		ActorID int64  `db:"actor_id"`
		TS      int64  `db:"ts"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get entry scores: %w", err)
	}

	entries := make([]cache.EntryScore, len(rows))
	for i, rw := range rows {
		entries[i] = cache.EntryScore{
			Kind:      rw.Kind,
			PostID:    rw.PostID,
			ActorID:   rw.ActorID,
			Timestamp: rw.TS,
		}
	}
	return entries, nil
}

// reorderPosts rearranges posts to match the requested id order.
func reorderPosts(posts []model.Post, postIDs []int64) []model.Post {
	byID := make(map[int64]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// parseCursor parses the compound "id:timestamp" cursor format.
func parseCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	var id, ts int64
	if _, err := fmt.Sscanf(parts[0], "%d", &id); err != nil {
		return time.Time{}, 0, err
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &ts); err != nil {
		return time.Time{}, 0, err
	}
	return time.Unix(ts, 0), id, nil
}

// formatCursor builds the compound "id:timestamp" cursor format.
func formatCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.Unix())
}
