package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"desiiseb/internal/model"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `
	id, username, password_hashed, display_name, bio, avatar_url, avatar_key,
	cover_url, cover_key, website, location, is_verified, created_at, updated_at`

// Create inserts a new profile. A unique violation on username maps to
// ErrUsernameExists.
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (username, password_hashed, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		profile.Username, profile.PasswordHashed, profile.DisplayName, profile.AvatarURL,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE username = $1`, profileColumns)

	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, query, username)
	if err == sql.ErrNoRows {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by username: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

// GetIDByUsername resolves a handle to a profile id. Used for best-effort
// mention linking at post creation.
func (r *profileRepository) GetIDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM profiles WHERE username = $1`, username)
	if err == sql.ErrNoRows {
		return 0, model.ErrProfileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get profile id: %w", err)
	}
	return id, nil
}

// Search finds profiles by username or display name prefix/substring.
func (r *profileRepository) Search(ctx context.Context, query string, limit int) ([]model.ProfileSummary, error) {
	var users []model.ProfileSummary
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, username, display_name, avatar_url, is_verified
		FROM profiles
		WHERE username ILIKE $1 OR display_name ILIKE $1
		ORDER BY username
		LIMIT $2
	`, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return users, nil
}

// Update applies the editable profile fields; nil pointers leave the
// current value unchanged.
func (r *profileRepository) Update(ctx context.Context, id int64, req model.UpdateProfileRequest) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET
			display_name = COALESCE($2, display_name),
			bio          = COALESCE($3, bio),
			website      = COALESCE($4, website),
			location     = COALESCE($5, location),
			updated_at   = NOW()
		WHERE id = $1
	`, id, req.DisplayName, req.Bio, req.Website, req.Location)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) SetAvatar(ctx context.Context, id int64, url, key string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET avatar_url = $2, avatar_key = $3, updated_at = NOW() WHERE id = $1`,
		id, url, key)
	if err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	return nil
}

func (r *profileRepository) SetCover(ctx context.Context, id int64, url, key string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET cover_url = $2, cover_key = $3, updated_at = NOW() WHERE id = $1`,
		id, url, key)
	if err != nil {
		return fmt.Errorf("set cover: %w", err)
	}
	return nil
}

// GetSummaries fetches summaries for a set of profiles in one round trip.
func (r *profileRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.ProfileSummary, error) {
	result := make(map[int64]model.ProfileSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []model.ProfileSummary
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, username, display_name, avatar_url, is_verified
		FROM profiles
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get profile summaries: %w", err)
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

// Counts computes the profile header numbers from the source tables.
func (r *profileRepository) Counts(ctx context.Context, id int64) (int, int, int, error) {
	var counts struct {
		Followers int `db:"followers"`
		Following int `db:"following"`
		Posts     int `db:"posts"`
	}
	err := r.db.GetContext(ctx, &counts, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = $1) AS followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)  AS following,
			(SELECT COUNT(*) FROM posts WHERE user_id = $1 AND deleted_at IS NULL) AS posts
	`, id)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("get profile counts: %w", err)
	}
	return counts.Followers, counts.Following, counts.Posts, nil
}
