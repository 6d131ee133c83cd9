package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

const repoTimeout = 5 * time.Second

type SongRepository struct {
	db *sql.DB
}

func NewSongRepository() *SongRepository {
	return &SongRepository{db: GetDB()}
}

// Insert stores the song unless the user already has that youtube_id. The
// return value reports whether a row actually landed, so callers can tell a
// fresh insert from a lost race against a concurrent writer.
func (r *SongRepository) Insert(ctx context.Context, song player.Song) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO songs (id, user_id, title, artist, youtube_id, thumbnail, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id, youtube_id) DO NOTHING;
	`

	res, err := r.db.ExecContext(ctx, query,
		song.ID, song.UserID, song.Title, song.Artist, song.YouTubeID, song.Thumbnail, song.Duration)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *SongRepository) All(ctx context.Context, userID string) ([]player.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		SELECT id, user_id, title, artist, youtube_id, thumbnail, duration, created_at
		FROM songs
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSongs(rows)
}

// ByYouTubeID looks up the persisted record for an external video id. This
// backs the de-duplication rule: one row per (user, video).
func (r *SongRepository) ByYouTubeID(ctx context.Context, userID, youtubeID string) (player.Song, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		SELECT id, user_id, title, artist, youtube_id, thumbnail, duration, created_at
		FROM songs
		WHERE user_id = $1 AND youtube_id = $2;
	`

	var song player.Song
	err := r.db.QueryRowContext(ctx, query, userID, youtubeID).Scan(
		&song.ID, &song.UserID, &song.Title, &song.Artist,
		&song.YouTubeID, &song.Thumbnail, &song.Duration, &song.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return player.Song{}, false, nil
		}
		return player.Song{}, false, err
	}

	return song, true, nil
}

func (r *SongRepository) UpdateMetadata(ctx context.Context, songID, title, artist, thumbnail string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		UPDATE songs
		SET title = $2, artist = $3, thumbnail = $4
		WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, query, songID, title, artist, thumbnail)
	return err
}

func (r *SongRepository) Delete(ctx context.Context, songID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		DELETE FROM songs
		WHERE id = $1 AND user_id = $2;
	`

	_, err := r.db.ExecContext(ctx, query, songID, userID)
	return err
}

func scanSongs(rows *sql.Rows) ([]player.Song, error) {
	var songs []player.Song
	for rows.Next() {
		var song player.Song
		if err := rows.Scan(
			&song.ID, &song.UserID, &song.Title, &song.Artist,
			&song.YouTubeID, &song.Thumbnail, &song.Duration, &song.CreatedAt); err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}
