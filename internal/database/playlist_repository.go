package database

import (
	"context"
	"database/sql"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

type PlaylistRepository struct {
	db *sql.DB
}

func NewPlaylistRepository() *PlaylistRepository {
	return &PlaylistRepository{db: GetDB()}
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist player.Playlist) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO playlists (id, user_id, name, created_at)
		VALUES ($1, $2, $3, NOW());
	`

	_, err := r.db.ExecContext(ctx, query, playlist.ID, playlist.UserID, playlist.Name)
	return err
}

func (r *PlaylistRepository) Rename(ctx context.Context, playlistID, userID, name string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		UPDATE playlists
		SET name = $3
		WHERE id = $1 AND user_id = $2;
	`

	_, err := r.db.ExecContext(ctx, query, playlistID, userID, name)
	return err
}

func (r *PlaylistRepository) Delete(ctx context.Context, playlistID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		DELETE FROM playlists
		WHERE id = $1 AND user_id = $2;
	`

	_, err := r.db.ExecContext(ctx, query, playlistID, userID)
	return err
}

// AddSong appends a song at the next free position. Playlist membership is
// append-only: position = max(existing positions) + 1, never a mid-list
// insert.
func (r *PlaylistRepository) AddSong(ctx context.Context, playlistID, songID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO playlist_songs (playlist_id, song_id, position, added_at)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1, NOW()
		FROM playlist_songs
		WHERE playlist_id = $1
		ON CONFLICT (playlist_id, song_id) DO NOTHING;
	`

	_, err := r.db.ExecContext(ctx, query, playlistID, songID)
	return err
}

func (r *PlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const query = `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1 AND song_id = $2;
	`

	_, err := r.db.ExecContext(ctx, query, playlistID, songID)
	return err
}

// AllWithSongs hydrates every playlist with its songs in persisted position
// order.
func (r *PlaylistRepository) AllWithSongs(ctx context.Context, userID string) ([]player.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	const playlistQuery = `
		SELECT id, user_id, name, created_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.db.QueryContext(ctx, playlistQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []player.Playlist
	for rows.Next() {
		var p player.Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Songs = []player.Song{}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(playlists) == 0 {
		return playlists, nil
	}

	const songQuery = `
		SELECT ps.playlist_id,
		       s.id, s.user_id, s.title, s.artist, s.youtube_id, s.thumbnail, s.duration, s.created_at
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		JOIN playlists p ON p.id = ps.playlist_id
		WHERE p.user_id = $1
		ORDER BY ps.playlist_id, ps.position;
	`

	songRows, err := r.db.QueryContext(ctx, songQuery, userID)
	if err != nil {
		return nil, err
	}
	defer songRows.Close()

	byID := make(map[string]int, len(playlists))
	for i, p := range playlists {
		byID[p.ID] = i
	}

	for songRows.Next() {
		var playlistID string
		var song player.Song
		if err := songRows.Scan(&playlistID,
			&song.ID, &song.UserID, &song.Title, &song.Artist,
			&song.YouTubeID, &song.Thumbnail, &song.Duration, &song.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := byID[playlistID]; ok {
			playlists[i].Songs = append(playlists[i].Songs, song)
		}
	}

	return playlists, songRows.Err()
}
