package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"desiiseb/internal/model"
)

type interactionRepository struct {
	db *sqlx.DB
}

func NewInteractionRepository(db *sqlx.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// countRow is shared by the bulk GROUP BY reads.
type countRow struct {
	PostID int64 `db:"post_id"`
	Count  int   `db:"count"`
}

// CountLikes returns like counts for a set of posts in one round trip.
func (r *interactionRepository) CountLikes(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	return r.countByPost(ctx, `
		SELECT post_id, COUNT(*) AS count
		FROM likes
		WHERE post_id = ANY($1)
		GROUP BY post_id
	`, postIDs)
}

// CountReposts returns simple-repost counts for a set of posts.
func (r *interactionRepository) CountReposts(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	return r.countByPost(ctx, `
		SELECT post_id, COUNT(*) AS count
		FROM reposts
		WHERE post_id = ANY($1)
		GROUP BY post_id
	`, postIDs)
}

// CountReplies returns direct-reply counts for a set of posts.
func (r *interactionRepository) CountReplies(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	return r.countByPost(ctx, `
		SELECT reply_to AS post_id, COUNT(*) AS count
		FROM posts
		WHERE reply_to = ANY($1) AND deleted_at IS NULL
		GROUP BY reply_to
	`, postIDs)
}

func (r *interactionRepository) countByPost(ctx context.Context, query string, postIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []countRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}
	for _, row := range rows {
		result[row.PostID] = row.Count
	}
	return result, nil
}

// ViewerLiked returns which of the posts the viewer has liked.
func (r *interactionRepository) ViewerLiked(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error) {
	return r.viewerFlag(ctx, `SELECT post_id FROM likes WHERE user_id = $1 AND post_id = ANY($2)`, viewerID, postIDs)
}

// ViewerReposted returns which of the posts the viewer has reposted.
func (r *interactionRepository) ViewerReposted(ctx context.Context, viewerID int64, postIDs []int64) (map[int64]bool, error) {
	return r.viewerFlag(ctx, `SELECT post_id FROM reposts WHERE user_id = $1 AND post_id = ANY($2)`, viewerID, postIDs)
}

func (r *interactionRepository) viewerFlag(ctx context.Context, query string, viewerID int64, postIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		result[id] = false
	}
	if len(postIDs) == 0 {
		return result, nil
	}

	var flagged []int64
	if err := r.db.SelectContext(ctx, &flagged, query, viewerID, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("check viewer flags: %w", err)
	}
	for _, id := range flagged {
		result[id] = true
	}
	return result, nil
}

// Like inserts a like row. Returns false when the like already existed: the
// desired end state holds, so the duplicate is not an error.
func (r *interactionRepository) Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return insertPair(ctx, tx, `
		INSERT INTO likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, postID, userID)
}

// Unlike deletes a like row. Returns false when there was nothing to delete.
func (r *interactionRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return deletePair(ctx, tx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
}

// Repost inserts a simple-repost row, duplicate-safe like Like.
func (r *interactionRepository) Repost(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return insertPair(ctx, tx, `
		INSERT INTO reposts (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, postID, userID)
}

// Unrepost deletes a simple-repost row.
func (r *interactionRepository) Unrepost(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return deletePair(ctx, tx, `DELETE FROM reposts WHERE post_id = $1 AND user_id = $2`, postID, userID)
}

// Bookmark inserts a bookmark row, duplicate-safe.
func (r *interactionRepository) Bookmark(ctx context.Context, postID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO bookmarks (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert bookmark: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Unbookmark deletes a bookmark row.
func (r *interactionRepository) Unbookmark(ctx context.Context, postID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete bookmark: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// GetPostLikers returns paginated users who liked a post, newest first.
func (r *interactionRepository) GetPostLikers(ctx context.Context, postID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT u.id, u.username, u.display_name, u.avatar_url, u.is_verified, l.created_at
			FROM likes l
			JOIN profiles u ON u.id = l.user_id
			WHERE l.post_id = $1
			ORDER BY l.created_at DESC
			LIMIT $2
		`
		args = []interface{}{postID, limit + 1}
	} else {
		query = `
			SELECT u.id, u.username, u.display_name, u.avatar_url, u.is_verified, l.created_at
			FROM likes l
			JOIN profiles u ON u.id = l.user_id
			WHERE l.post_id = $1 AND l.created_at < $2
			ORDER BY l.created_at DESC
			LIMIT $3
		`
		args = []interface{}{postID, cursor, limit + 1}
	}

	type likerRow struct {
		model.ProfileSummary
		CreatedAt time.Time `db:"created_at"`
	}
	var rows []likerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, nil, fmt.Errorf("get post likers: %w", err)
	}

	var nextCursor *time.Time
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &rows[len(rows)-1].CreatedAt
	}

	users := make([]model.ProfileSummary, len(rows))
	for i, row := range rows {
		users[i] = row.ProfileSummary
	}
	return users, nextCursor, nil
}

// ListBookmarkedPostIDs returns the viewer's bookmarked posts as feed
// entries ordered by bookmark time, so the aggregator can hydrate them
// through the same assembly path as any other scope.
func (r *interactionRepository) ListBookmarkedPostIDs(ctx context.Context, userID int64, cursor *string, limit int) ([]model.FeedEntry, error) {
	query := `
		SELECT 'post' AS kind, b.post_id, p.user_id AS actor_id, b.created_at
		FROM bookmarks b
		JOIN posts p ON p.id = b.post_id
		WHERE b.user_id = $1 AND p.deleted_at IS NULL`
	args := []interface{}{userID}

	if cursor != nil {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		args = append(args, ts, id)
		query += fmt.Sprintf(` AND (b.created_at, b.post_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY b.created_at DESC, b.post_id DESC LIMIT $%d`, len(args))

	var entries []model.FeedEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return entries, nil
}

func insertPair(ctx context.Context, tx *sqlx.Tx, query string, postID, userID int64) (bool, error) {
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert interaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func deletePair(ctx context.Context, tx *sqlx.Tx, query string, postID, userID int64) (bool, error) {
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete interaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}
