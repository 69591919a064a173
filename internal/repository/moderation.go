package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"desiiseb/internal/model"
)

type moderationRepository struct {
	db *sqlx.DB
}

func NewModerationRepository(db *sqlx.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

// Block inserts a block edge. Returns false when already blocked.
func (r *moderationRepository) Block(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`, blockerID, blockedID)
	if err != nil {
		return false, fmt.Errorf("create block: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *moderationRepository) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`, blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotBlocked
	}
	return nil
}

func (r *moderationRepository) GetBlockedIDs(ctx context.Context, blockerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT blocked_id FROM blocks WHERE blocker_id = $1`, blockerID)
	if err != nil {
		return nil, fmt.Errorf("get blocked ids: %w", err)
	}
	return ids, nil
}

func (r *moderationRepository) CreateReport(ctx context.Context, report *model.Report) error {
	query := `
		INSERT INTO reports (reporter_id, post_id, user_id, reason, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		report.ReporterID, report.PostID, report.UserID, report.Reason, report.Detail,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}
