package database

import (
	"context"
	"database/sql"
	"time"
)

type Profile struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Avatar struct {
	Data        []byte
	ContentType string
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{db: GetDB()}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (Profile, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		SELECT user_id, display_name, updated_at
		FROM profiles
		WHERE user_id = $1;
	`

	var p Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.DisplayName, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Profile{}, false, nil
		}
		return Profile{}, false, err
	}

	return p, true, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, userID, displayName string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO profiles (user_id, display_name, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			display_name = EXCLUDED.display_name,
			updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, userID, displayName)
	return err
}

func (r *ProfileRepository) SetAvatar(ctx context.Context, userID string, avatar Avatar) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO profiles (user_id, avatar, avatar_type, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			avatar = EXCLUDED.avatar,
			avatar_type = EXCLUDED.avatar_type,
			updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, userID, avatar.Data, avatar.ContentType)
	return err
}

func (r *ProfileRepository) GetAvatar(ctx context.Context, userID string) (Avatar, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		SELECT avatar, avatar_type
		FROM profiles
		WHERE user_id = $1 AND avatar IS NOT NULL;
	`

	var a Avatar
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&a.Data, &a.ContentType)
	if err != nil {
		if err == sql.ErrNoRows {
			return Avatar{}, false, nil
		}
		return Avatar{}, false, err
	}

	return a, true, nil
}
