package library

import (
	"context"
	"testing"

	"github.com/Koziky/lucid-tune-hub/internal/player"
	"github.com/Koziky/lucid-tune-hub/internal/spotify"
	"github.com/Koziky/lucid-tune-hub/internal/youtube"
)

func TestImportFromSpotifyDropsMisses(t *testing.T) {
	f := newFixture()
	f.spotify.name = "Road Trip"
	f.spotify.tracks = []spotify.Track{
		{Name: "First", Artists: []string{"Alpha"}},
		{Name: "Second", Artists: []string{"Beta"}},
		{Name: "Third", Artists: []string{"Gamma"}},
	}
	f.youtube.searches["First Alpha official audio"] = []player.Song{
		{YouTubeID: "aaaaaaaaaaa", Title: "First", Artist: "Alpha"},
	}
	f.youtube.searches["Third Gamma official audio"] = []player.Song{
		{YouTubeID: "ccccccccccc", Title: "Third", Artist: "Gamma"},
	}

	result, err := f.service.ImportFromSpotify(context.Background(), "user-1", "spotify:playlist:abc")
	if err != nil {
		t.Fatalf("ImportFromSpotify: %v", err)
	}

	if result.Total != 3 || result.Matched != 2 {
		t.Fatalf("got matched %d of %d, want 2 of 3", result.Matched, result.Total)
	}
	if result.Playlist.Name != "Road Trip" {
		t.Fatalf("got playlist name %q", result.Playlist.Name)
	}
	if got := len(f.playlists.members[result.Playlist.ID]); got != 2 {
		t.Fatalf("expected 2 playlist members, got %d", got)
	}
	if len(f.songs.songs) != 2 {
		t.Fatalf("expected 2 persisted songs, got %d", len(f.songs.songs))
	}
}

func TestImportYouTubePlaylist(t *testing.T) {
	f := newFixture()
	f.youtube.playlist = youtube.PlaylistDetails{
		Title: "Lo-fi Mix",
		Songs: []player.Song{
			{YouTubeID: "aaaaaaaaaaa", Title: "One", Artist: "Someone"},
			{YouTubeID: "bbbbbbbbbbb", Title: "Two", Artist: "Someone"},
		},
	}

	result, err := f.service.ImportYouTubePlaylist(context.Background(), "user-1",
		"https://www.youtube.com/playlist?list=PLabc123")
	if err != nil {
		t.Fatalf("ImportYouTubePlaylist: %v", err)
	}

	if result.Total != 2 || result.Matched != 2 {
		t.Fatalf("got matched %d of %d, want 2 of 2", result.Matched, result.Total)
	}
	if result.Playlist.Name != "Lo-fi Mix" {
		t.Fatalf("got playlist name %q", result.Playlist.Name)
	}
	if len(result.Playlist.Songs) != 2 {
		t.Fatalf("expected 2 songs in playlist, got %d", len(result.Playlist.Songs))
	}
}

func TestImportYouTubePlaylistRejectsBadURL(t *testing.T) {
	f := newFixture()

	_, err := f.service.ImportYouTubePlaylist(context.Background(), "user-1", "https://example.com/nope")
	if err == nil {
		t.Fatal("expected an error for a non-playlist url")
	}
	if len(f.playlists.playlists) != 0 {
		t.Fatal("nothing should be created on a bad url")
	}
}

func TestRefreshAllMetadataUpdatesChangedTitles(t *testing.T) {
	f := newFixture(
		seedSong("song-1", "aaaaaaaaaaa", "Old Title"),
		seedSong("song-2", "bbbbbbbbbbb", "Same Title"),
		seedSong("song-3", "ccccccccccc", "Unreachable"),
	)
	f.youtube.metadata["aaaaaaaaaaa"] = player.Song{YouTubeID: "aaaaaaaaaaa", Title: "New Title", Artist: "Artist"}
	f.youtube.metadata["bbbbbbbbbbb"] = player.Song{YouTubeID: "bbbbbbbbbbb", Title: "Same Title", Artist: "Artist"}
	// song-3 has no stub metadata, so the fetch errors and the refresh must
	// skip it.

	updated, err := f.service.RefreshAllMetadata(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("RefreshAllMetadata: %v", err)
	}

	if updated != 1 {
		t.Fatalf("expected 1 update, got %d", updated)
	}
	if len(f.songs.updates) != 1 || f.songs.updates[0] != "song-1" {
		t.Fatalf("expected only song-1 rewritten, got %v", f.songs.updates)
	}
	if f.songs.songs[2].Title != "Unreachable" {
		t.Fatalf("song-3 title should be untouched, got %q", f.songs.songs[2].Title)
	}
}

func TestRefreshAllMetadataHandlesPlaceholderLookingTitles(t *testing.T) {
	// A video genuinely titled "YouTube Video" must still be refreshable:
	// failure is signalled by the fetch error, not by the title.
	f := newFixture(seedSong("song-1", "aaaaaaaaaaa", "YouTube Video"))
	f.youtube.metadata["aaaaaaaaaaa"] = player.Song{
		YouTubeID: "aaaaaaaaaaa",
		Title:     "Actual Title",
		Artist:    "Artist",
	}

	updated, err := f.service.RefreshAllMetadata(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("RefreshAllMetadata: %v", err)
	}

	if updated != 1 {
		t.Fatalf("expected 1 update, got %d", updated)
	}
	if f.songs.songs[0].Title != "Actual Title" {
		t.Fatalf("got title %q, want %q", f.songs.songs[0].Title, "Actual Title")
	}
}
