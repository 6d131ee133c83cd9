// Package library is the persistence side of the player: songs, playlists,
// likes, play history and profiles, backed by Postgres repositories with a
// Redis read-side cache in front of the hot collections.
package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Koziky/lucid-tune-hub/internal/cache"
	"github.com/Koziky/lucid-tune-hub/internal/database"
	"github.com/Koziky/lucid-tune-hub/internal/player"
	"github.com/Koziky/lucid-tune-hub/internal/spotify"
	"github.com/Koziky/lucid-tune-hub/internal/youtube"
)

var (
	ErrEmptyName = errors.New("name must not be empty")
	ErrNotFound  = errors.New("not found")
)

const defaultHistoryLimit = 20

type SongStore interface {
	Insert(ctx context.Context, song player.Song) (bool, error)
	All(ctx context.Context, userID string) ([]player.Song, error)
	ByYouTubeID(ctx context.Context, userID, youtubeID string) (player.Song, bool, error)
	UpdateMetadata(ctx context.Context, songID, title, artist, thumbnail string) error
	Delete(ctx context.Context, songID, userID string) error
}

type PlaylistStore interface {
	Create(ctx context.Context, playlist player.Playlist) error
	Rename(ctx context.Context, playlistID, userID, name string) error
	Delete(ctx context.Context, playlistID, userID string) error
	AddSong(ctx context.Context, playlistID, songID string) error
	RemoveSong(ctx context.Context, playlistID, songID string) error
	AllWithSongs(ctx context.Context, userID string) ([]player.Playlist, error)
}

type LikeStore interface {
	Insert(ctx context.Context, userID, songID string) error
	Delete(ctx context.Context, userID, songID string) error
	All(ctx context.Context, userID string) ([]player.Song, error)
}

type HistoryStore interface {
	Insert(ctx context.Context, userID, songID string) error
	Recent(ctx context.Context, userID string, limit int) ([]player.PlayRecord, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (database.Profile, bool, error)
	Upsert(ctx context.Context, userID, displayName string) error
	SetAvatar(ctx context.Context, userID string, avatar database.Avatar) error
	GetAvatar(ctx context.Context, userID string) (database.Avatar, bool, error)
}

// VideoSource is what the service needs from YouTube.
type VideoSource interface {
	FetchMetadata(ctx context.Context, videoID string) (player.Song, error)
	Search(ctx context.Context, query string) ([]player.Song, error)
	FetchPlaylist(ctx context.Context, playlistID string) (youtube.PlaylistDetails, error)
}

// TrackSource is what the service needs from Spotify.
type TrackSource interface {
	Resolve(ctx context.Context, input string) (string, []spotify.Track, error)
}

type Service struct {
	songs     SongStore
	playlists PlaylistStore
	likes     LikeStore
	history   HistoryStore
	profiles  ProfileStore

	cache    *cache.Store
	youtube  VideoSource
	spotify  TrackSource
	notifier player.Notifier

	historyLimit int
}

type Options struct {
	Songs     SongStore
	Playlists PlaylistStore
	Likes     LikeStore
	History   HistoryStore
	Profiles  ProfileStore

	Cache    *cache.Store
	YouTube  VideoSource
	Spotify  TrackSource
	Notifier player.Notifier

	HistoryLimit int
}

func NewService(opts Options) *Service {
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &Service{
		songs:        opts.Songs,
		playlists:    opts.Playlists,
		likes:        opts.Likes,
		history:      opts.History,
		profiles:     opts.Profiles,
		cache:        opts.Cache,
		youtube:      opts.YouTube,
		spotify:      opts.Spotify,
		notifier:     notifier,
		historyLimit: limit,
	}
}

// Songs returns the user's full library, newest first.
func (s *Service) Songs(ctx context.Context, userID string) ([]player.Song, error) {
	key := cache.SongsKey(userID)

	var songs []player.Song
	if s.cache.Get(ctx, key, &songs) {
		return songs, nil
	}

	songs, err := s.songs.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, songs)
	return songs, nil
}

// UpsertSong inserts the song unless the user already has one with the same
// youtubeId, in which case the persisted record wins and its id is reused.
func (s *Service) UpsertSong(ctx context.Context, song player.Song) (player.Song, error) {
	if song.YouTubeID == "" {
		return player.Song{}, fmt.Errorf("song has no youtube id")
	}

	existing, found, err := s.songs.ByYouTubeID(ctx, song.UserID, song.YouTubeID)
	if err != nil {
		return player.Song{}, err
	}
	if found {
		return existing, nil
	}

	if song.ID == "" {
		song.ID = uuid.NewString()
	}
	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now()
	}

	inserted, err := s.songs.Insert(ctx, song)
	if err != nil {
		return player.Song{}, err
	}

	if !inserted {
		// Lost a race with a concurrent add of the same video. The stored row
		// wins; returning our generated id would hand out a key that exists
		// nowhere.
		existing, found, err = s.songs.ByYouTubeID(ctx, song.UserID, song.YouTubeID)
		if err != nil {
			return player.Song{}, err
		}
		if !found {
			return player.Song{}, fmt.Errorf("song %s vanished during insert", song.YouTubeID)
		}
		return existing, nil
	}

	s.cache.Invalidate(ctx, cache.SongsKey(song.UserID))
	return song, nil
}

func (s *Service) DeleteSong(ctx context.Context, userID, songID string) error {
	if err := s.songs.Delete(ctx, songID, userID); err != nil {
		return err
	}

	// Likes, playlists and history reference the song, so all read sides go.
	s.cache.Invalidate(ctx,
		cache.SongsKey(userID),
		cache.LikedKey(userID),
		cache.PlaylistsKey(userID),
		cache.HistoryKey(userID),
	)
	return nil
}

// AddFromYouTubeURL parses the URL, resolves metadata (placeholders on
// failure) and persists the song dedup'd by video id.
func (s *Service) AddFromYouTubeURL(ctx context.Context, userID, rawURL string) (player.Song, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return player.Song{}, err
	}

	song, err := s.youtube.FetchMetadata(ctx, videoID)
	if err != nil {
		// The placeholder song is still returned; a metadata outage must not
		// block the add.
		log.Printf("library: metadata for %s unavailable, using placeholders: %v", videoID, err)
	}
	song.UserID = userID

	return s.UpsertSong(ctx, song)
}

// Search runs a YouTube search. Failures surface as a notification and an
// empty result so the UI degrades instead of erroring.
func (s *Service) Search(ctx context.Context, query string) []player.Song {
	results, err := s.youtube.Search(ctx, query)
	if err != nil {
		log.Printf("library: search %q failed: %v", query, err)
		s.notifier.Error("Search failed", "Could not reach YouTube, try again later")
		return nil
	}
	return results
}

func (s *Service) LikedSongs(ctx context.Context, userID string) ([]player.Song, error) {
	key := cache.LikedKey(userID)

	var songs []player.Song
	if s.cache.Get(ctx, key, &songs) {
		return songs, nil
	}

	songs, err := s.likes.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, songs)
	return songs, nil
}

// ToggleLike flips the like state and reports the new state.
func (s *Service) ToggleLike(ctx context.Context, userID, songID string) (bool, error) {
	liked, err := s.LikedSongs(ctx, userID)
	if err != nil {
		return false, err
	}

	isLiked := false
	for _, song := range liked {
		if song.ID == songID {
			isLiked = true
			break
		}
	}

	if isLiked {
		err = s.likes.Delete(ctx, userID, songID)
	} else {
		err = s.likes.Insert(ctx, userID, songID)
	}
	if err != nil {
		return false, err
	}

	s.cache.Invalidate(ctx, cache.LikedKey(userID))
	return !isLiked, nil
}

func (s *Service) Playlists(ctx context.Context, userID string) ([]player.Playlist, error) {
	key := cache.PlaylistsKey(userID)

	var playlists []player.Playlist
	if s.cache.Get(ctx, key, &playlists) {
		return playlists, nil
	}

	playlists, err := s.playlists.AllWithSongs(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, playlists)
	return playlists, nil
}

func (s *Service) CreatePlaylist(ctx context.Context, userID, name string) (player.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return player.Playlist{}, ErrEmptyName
	}

	playlist := player.Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.playlists.Create(ctx, playlist); err != nil {
		return player.Playlist{}, err
	}

	s.cache.Invalidate(ctx, cache.PlaylistsKey(userID))
	return playlist, nil
}

func (s *Service) RenamePlaylist(ctx context.Context, userID, playlistID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	if err := s.playlists.Rename(ctx, playlistID, userID, name); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.PlaylistsKey(userID))
	return nil
}

func (s *Service) DeletePlaylist(ctx context.Context, userID, playlistID string) error {
	if err := s.playlists.Delete(ctx, playlistID, userID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.PlaylistsKey(userID))
	return nil
}

// AddToPlaylist appends the song at the next free position. Duplicate
// membership is a no-op at the store level.
func (s *Service) AddToPlaylist(ctx context.Context, userID, playlistID, songID string) error {
	if err := s.playlists.AddSong(ctx, playlistID, songID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.PlaylistsKey(userID))
	return nil
}

func (s *Service) RemoveFromPlaylist(ctx context.Context, userID, playlistID, songID string) error {
	if err := s.playlists.RemoveSong(ctx, playlistID, songID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.PlaylistsKey(userID))
	return nil
}

// RecordPlay appends to the play log.
func (s *Service) RecordPlay(ctx context.Context, userID, songID string) error {
	if err := s.history.Insert(ctx, userID, songID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.HistoryKey(userID))
	return nil
}

// RecentlyPlayed is the bounded read side of the play log: most recent
// first, deduped by song keeping the most recent play.
func (s *Service) RecentlyPlayed(ctx context.Context, userID string) ([]player.PlayRecord, error) {
	key := cache.HistoryKey(userID)

	var records []player.PlayRecord
	if s.cache.Get(ctx, key, &records) {
		return records, nil
	}

	// Overfetch so deduplication can still fill the limit.
	raw, err := s.history.Recent(ctx, userID, s.historyLimit*5)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	records = make([]player.PlayRecord, 0, s.historyLimit)
	for _, rec := range raw {
		if seen[rec.Song.ID] {
			continue
		}
		seen[rec.Song.ID] = true
		records = append(records, rec)
		if len(records) >= s.historyLimit {
			break
		}
	}

	s.cache.Set(ctx, key, records)
	return records, nil
}

// ShareSong publishes a notification carrying the song's watch URL.
func (s *Service) ShareSong(ctx context.Context, userID, songID string) (string, error) {
	songs, err := s.Songs(ctx, userID)
	if err != nil {
		return "", err
	}

	for _, song := range songs {
		if song.ID == songID {
			link := "https://www.youtube.com/watch?v=" + song.YouTubeID
			s.notifier.Info("Share", fmt.Sprintf("%s - %s: %s", song.Title, song.Artist, link))
			return link, nil
		}
	}

	return "", ErrNotFound
}

func (s *Service) Profile(ctx context.Context, userID string) (database.Profile, bool, error) {
	return s.profiles.Get(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return ErrEmptyName
	}
	return s.profiles.Upsert(ctx, userID, displayName)
}

func (s *Service) SetAvatar(ctx context.Context, userID string, avatar database.Avatar) error {
	return s.profiles.SetAvatar(ctx, userID, avatar)
}

func (s *Service) Avatar(ctx context.Context, userID string) (database.Avatar, bool, error) {
	return s.profiles.GetAvatar(ctx, userID)
}

type noopNotifier struct{}

func (noopNotifier) Info(title, message string)    {}
func (noopNotifier) Success(title, message string) {}
func (noopNotifier) Error(title, message string)   {}
