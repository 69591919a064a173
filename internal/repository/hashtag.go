package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"desiiseb/internal/model"
)

type hashtagRepository struct {
	db *sqlx.DB
}

func NewHashtagRepository(db *sqlx.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

// Upsert inserts the tag if new and returns its id either way. The dummy
// DO UPDATE makes RETURNING work on the conflict path.
func (r *hashtagRepository) Upsert(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO hashtags (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name)
	if err != nil {
		return 0, fmt.Errorf("upsert hashtag: %w", err)
	}
	return id, nil
}

// LinkPost attaches a hashtag to a post, duplicate-safe.
func (r *hashtagRepository) LinkPost(ctx context.Context, postID, hashtagID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO post_hashtags (post_id, hashtag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, hashtagID)
	if err != nil {
		return fmt.Errorf("link post hashtag: %w", err)
	}
	return nil
}

// LinkMention records a resolved @mention, duplicate-safe.
func (r *hashtagRepository) LinkMention(ctx context.Context, postID, mentionedUserID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mentions (post_id, mentioned_user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, mentionedUserID)
	if err != nil {
		return fmt.Errorf("link mention: %w", err)
	}
	return nil
}

// Trending returns the most-used tags since the given time.
func (r *hashtagRepository) Trending(ctx context.Context, since time.Time, limit int) ([]model.TrendingHashtag, error) {
	var tags []model.TrendingHashtag
	err := r.db.SelectContext(ctx, &tags, `
		SELECT h.name, COUNT(*) AS post_count
		FROM post_hashtags ph
		JOIN hashtags h ON h.id = ph.hashtag_id
		JOIN posts p ON p.id = ph.post_id
		WHERE p.created_at >= $1 AND p.deleted_at IS NULL
		GROUP BY h.name
		ORDER BY post_count DESC, h.name
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("get trending hashtags: %w", err)
	}
	return tags, nil
}
