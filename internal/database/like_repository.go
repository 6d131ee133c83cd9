package database

import (
	"context"
	"database/sql"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

type LikeRepository struct {
	db *sql.DB
}

func NewLikeRepository() *LikeRepository {
	return &LikeRepository{db: GetDB()}
}

func (r *LikeRepository) Insert(ctx context.Context, userID, songID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO liked_songs (user_id, song_id, liked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, song_id) DO NOTHING;
	`

	_, err := r.db.ExecContext(ctx, query, userID, songID)
	return err
}

func (r *LikeRepository) Delete(ctx context.Context, userID, songID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		DELETE FROM liked_songs
		WHERE user_id = $1 AND song_id = $2;
	`

	_, err := r.db.ExecContext(ctx, query, userID, songID)
	return err
}

// All returns liked songs, most recently liked first.
func (r *LikeRepository) All(ctx context.Context, userID string) ([]player.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		SELECT s.id, s.user_id, s.title, s.artist, s.youtube_id, s.thumbnail, s.duration, s.created_at
		FROM liked_songs l
		JOIN songs s ON s.id = l.song_id
		WHERE l.user_id = $1
		ORDER BY l.liked_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSongs(rows)
}
