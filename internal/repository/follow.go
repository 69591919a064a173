package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"desiiseb/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts a follow edge. ON CONFLICT DO NOTHING makes the duplicate
// follow a reported no-op instead of a constraint error.
func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("create follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followingID int64) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("check follow exists: %w", err)
	}
	return exists, nil
}

// GetFollowers returns users following the given user, newest edge first,
// with created_at cursor pagination (fetch limit+1 to detect more pages).
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	return r.followPage(ctx, `f.following_id`, `f.follower_id`, userID, cursor, limit)
}

// GetFollowing returns users the given user follows, newest edge first.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	return r.followPage(ctx, `f.follower_id`, `f.following_id`, userID, cursor, limit)
}

func (r *followRepository) followPage(ctx context.Context, whereCol, joinCol string, userID int64, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	query := fmt.Sprintf(`
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.is_verified, f.created_at
		FROM follows f
		JOIN profiles u ON u.id = %s
		WHERE %s = $1`, joinCol, whereCol)
	args := []interface{}{userID}

	if cursor != nil {
		args = append(args, *cursor)
		query += fmt.Sprintf(` AND f.created_at < $%d`, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY f.created_at DESC LIMIT $%d`, len(args))

	type edgeRow struct {
		model.ProfileSummary
		CreatedAt time.Time `db:"created_at"`
	}
	var rows []edgeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, nil, fmt.Errorf("get follow page: %w", err)
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

// CheckFollows checks which of the given users the follower follows.
func (r *followRepository) CheckFollows(ctx context.Context, followerID int64, followingIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(followingIDs))
	for _, id := range followingIDs {
		result[id] = false
	}
	if len(followingIDs) == 0 {
		return result, nil
	}

	var followed []int64
	err := r.db.SelectContext(ctx, &followed,
		`SELECT following_id FROM follows WHERE follower_id = $1 AND following_id = ANY($2)`,
		followerID, pq.Array(followingIDs))
	if err != nil {
		return nil, fmt.Errorf("check follows: %w", err)
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}

func (r *followRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT follower_id FROM follows WHERE following_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return ids, nil
}

func (r *followRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT following_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get followee ids: %w", err)
	}
	return ids, nil
}
