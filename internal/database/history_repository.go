package database

import (
	"context"
	"database/sql"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{db: GetDB()}
}

// Insert appends to the play log. The log is append-only; only the read side
// is bounded.
func (r *HistoryRepository) Insert(ctx context.Context, userID, songID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO play_history (user_id, song_id, played_at)
		VALUES ($1, $2, NOW());
	`

	_, err := r.db.ExecContext(ctx, query, userID, songID)
	return err
}

func (r *HistoryRepository) Recent(ctx context.Context, userID string, limit int) ([]player.PlayRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		SELECT h.played_at,
		       s.id, s.user_id, s.title, s.artist, s.youtube_id, s.thumbnail, s.duration, s.created_at
		FROM play_history h
		JOIN songs s ON s.id = h.song_id
		WHERE h.user_id = $1
		ORDER BY h.played_at DESC
		LIMIT $2;
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []player.PlayRecord
	for rows.Next() {
		var rec player.PlayRecord
		if err := rows.Scan(&rec.PlayedAt,
			&rec.Song.ID, &rec.Song.UserID, &rec.Song.Title, &rec.Song.Artist,
			&rec.Song.YouTubeID, &rec.Song.Thumbnail, &rec.Song.Duration, &rec.Song.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
