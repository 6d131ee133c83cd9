package library

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Koziky/lucid-tune-hub/internal/cache"
	"github.com/Koziky/lucid-tune-hub/internal/player"
	"github.com/Koziky/lucid-tune-hub/internal/youtube"
)

// ImportResult reports how much of an external collection made it into the
// library. Matched can be lower than Total when tracks find no YouTube
// counterpart.
type ImportResult struct {
	Playlist player.Playlist `json:"playlist"`
	Matched  int             `json:"matched"`
	Total    int             `json:"total"`
}

// ImportFromSpotify resolves a Spotify track, album or playlist and matches
// every track against YouTube. Misses are dropped, not failed.
func (s *Service) ImportFromSpotify(ctx context.Context, userID, input string) (ImportResult, error) {
	name, tracks, err := s.spotify.Resolve(ctx, input)
	if err != nil {
		s.notifier.Error("Spotify import failed", "Could not read the Spotify link")
		return ImportResult{}, err
	}

	result := ImportResult{Total: len(tracks)}

	var songs []player.Song
	for _, track := range tracks {
		query := strings.TrimSpace(track.Name + " " + track.ArtistLine() + " official audio")
		matches, err := s.youtube.Search(ctx, query)
		if err != nil || len(matches) == 0 {
			log.Printf("library: no youtube match for %q: %v", query, err)
			continue
		}

		song := matches[0]
		song.UserID = userID

		persisted, err := s.UpsertSong(ctx, song)
		if err != nil {
			log.Printf("library: persist %q failed: %v", song.Title, err)
			continue
		}

		songs = append(songs, persisted)
		result.Matched++
	}

	playlist, err := s.createImportPlaylist(ctx, userID, name, songs)
	if err != nil {
		return ImportResult{}, err
	}
	result.Playlist = playlist

	s.notifier.Success("Spotify import",
		fmt.Sprintf("Imported %d of %d tracks into %q", result.Matched, result.Total, playlist.Name))
	return result, nil
}

// ImportYouTubePlaylist pulls every visible item of a YouTube playlist into
// the library and a new local playlist of the same name.
func (s *Service) ImportYouTubePlaylist(ctx context.Context, userID, rawURL string) (ImportResult, error) {
	playlistID, err := youtube.ExtractPlaylistID(rawURL)
	if err != nil {
		return ImportResult{}, err
	}

	details, err := s.youtube.FetchPlaylist(ctx, playlistID)
	if err != nil {
		s.notifier.Error("Playlist import failed", "Could not read the YouTube playlist")
		return ImportResult{}, err
	}

	result := ImportResult{Total: len(details.Songs)}

	var songs []player.Song
	for _, song := range details.Songs {
		song.UserID = userID

		persisted, err := s.UpsertSong(ctx, song)
		if err != nil {
			log.Printf("library: persist %q failed: %v", song.Title, err)
			continue
		}

		songs = append(songs, persisted)
		result.Matched++
	}

	playlist, err := s.createImportPlaylist(ctx, userID, details.Title, songs)
	if err != nil {
		return ImportResult{}, err
	}
	result.Playlist = playlist

	s.notifier.Success("Playlist import",
		fmt.Sprintf("Imported %d of %d videos into %q", result.Matched, result.Total, playlist.Name))
	return result, nil
}

func (s *Service) createImportPlaylist(ctx context.Context, userID, name string, songs []player.Song) (player.Playlist, error) {
	if strings.TrimSpace(name) == "" {
		name = "Imported playlist"
	}

	playlist, err := s.CreatePlaylist(ctx, userID, name)
	if err != nil {
		return player.Playlist{}, err
	}

	for _, song := range songs {
		if err := s.playlists.AddSong(ctx, playlist.ID, song.ID); err != nil {
			log.Printf("library: add %q to playlist %q failed: %v", song.Title, playlist.Name, err)
			continue
		}
		playlist.Songs = append(playlist.Songs, song)
	}

	s.cache.Invalidate(ctx, cache.PlaylistsKey(userID))
	return playlist, nil
}

// RefreshAllMetadata re-resolves every song's metadata sequentially and
// rewrites the ones whose title changed. Per-song failures are logged and
// skipped. Returns the number of songs updated.
func (s *Service) RefreshAllMetadata(ctx context.Context, userID string) (int, error) {
	songs, err := s.Songs(ctx, userID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, song := range songs {
		fresh, err := s.youtube.FetchMetadata(ctx, song.YouTubeID)
		if err != nil {
			log.Printf("library: metadata refresh skipped for %s: %v", song.YouTubeID, err)
			continue
		}
		if fresh.Title == song.Title {
			continue
		}

		if err := s.songs.UpdateMetadata(ctx, song.ID, fresh.Title, fresh.Artist, fresh.Thumbnail); err != nil {
			log.Printf("library: metadata update for %s failed: %v", song.ID, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		s.cache.Invalidate(ctx,
			cache.SongsKey(userID),
			cache.LikedKey(userID),
			cache.PlaylistsKey(userID),
			cache.HistoryKey(userID),
		)
	}

	s.notifier.Success("Metadata refresh", fmt.Sprintf("Updated %d of %d songs", updated, len(songs)))
	return updated, nil
}
