package httpd

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Koziky/lucid-tune-hub/internal/database"
	"github.com/Koziky/lucid-tune-hub/internal/player"
)

const maxAvatarBytes = 2 << 20

func (s *Server) getSongs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		songs, err := s.Library.Songs(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if songs == nil {
			songs = []player.Song{}
		}
		writeJSON(w, http.StatusOK, songs)
	}
}

func (s *Server) addSongFromURL() http.HandlerFunc {
	type request struct {
		URL string `json:"url"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		song, err := s.Library.AddFromYouTubeURL(r.Context(), userID(r), req.URL)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, song)
	}
}

// playAllSongs replaces the queue with the whole library.
func (s *Server) playAllSongs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		songs, err := s.Library.Songs(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}

		if err := s.Engine.ReplaceQueue(songs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) refreshMetadata() http.HandlerFunc {
	type response struct {
		Updated int `json:"updated"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := s.Library.RefreshAllMetadata(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Updated: updated})
	}
}

func (s *Server) deleteSong() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Library.DeleteSong(r.Context(), userID(r), chi.URLParam(r, "songID")); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}

func (s *Server) toggleLike() http.HandlerFunc {
	type response struct {
		Liked bool `json:"liked"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		liked, err := s.Library.ToggleLike(r.Context(), userID(r), chi.URLParam(r, "songID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Liked: liked})
	}
}

func (s *Server) shareSong() http.HandlerFunc {
	type response struct {
		URL string `json:"url"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := s.Library.ShareSong(r.Context(), userID(r), chi.URLParam(r, "songID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{URL: link})
	}
}

func (s *Server) getLikedSongs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		songs, err := s.Library.LikedSongs(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if songs == nil {
			songs = []player.Song{}
		}
		writeJSON(w, http.StatusOK, songs)
	}
}

func (s *Server) playLikedSongs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		songs, err := s.Library.LikedSongs(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}

		if err := s.Engine.ReplaceQueue(songs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) getPlaylists() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playlists, err := s.Library.Playlists(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if playlists == nil {
			playlists = []player.Playlist{}
		}
		writeJSON(w, http.StatusOK, playlists)
	}
}

func (s *Server) createPlaylist() http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		playlist, err := s.Library.CreatePlaylist(r.Context(), userID(r), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, playlist)
	}
}

func (s *Server) renamePlaylist() http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		err := s.Library.RenamePlaylist(r.Context(), userID(r), chi.URLParam(r, "playlistID"), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}

func (s *Server) deletePlaylist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Library.DeletePlaylist(r.Context(), userID(r), chi.URLParam(r, "playlistID")); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}

func (s *Server) addToPlaylist() http.HandlerFunc {
	type request struct {
		SongID string `json:"songId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil || req.SongID == "" {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		err := s.Library.AddToPlaylist(r.Context(), userID(r), chi.URLParam(r, "playlistID"), req.SongID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}

func (s *Server) removeFromPlaylist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.Library.RemoveFromPlaylist(r.Context(), userID(r),
			chi.URLParam(r, "playlistID"), chi.URLParam(r, "songID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}

// playPlaylist replaces the queue with the playlist's songs in their
// persisted order.
func (s *Server) playPlaylist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playlistID := chi.URLParam(r, "playlistID")

		playlists, err := s.Library.Playlists(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}

		for _, playlist := range playlists {
			if playlist.ID != playlistID {
				continue
			}
			if err := s.Engine.ReplaceQueue(playlist.Songs); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, s.Engine.Snapshot())
			return
		}

		http.Error(w, "playlist not found", http.StatusNotFound)
	}
}

func (s *Server) search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, "missing query", http.StatusBadRequest)
			return
		}

		results := s.Library.Search(r.Context(), query)
		if results == nil {
			results = []player.Song{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func (s *Server) importSpotify() http.HandlerFunc {
	type request struct {
		URL string `json:"url"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		result, err := s.Library.ImportFromSpotify(r.Context(), userID(r), req.URL)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) importYouTubePlaylist() http.HandlerFunc {
	type request struct {
		URL string `json:"url"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		result, err := s.Library.ImportYouTubePlaylist(r.Context(), userID(r), req.URL)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) getHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.Library.RecentlyPlayed(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if records == nil {
			records = []player.PlayRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, found, err := s.Library.Profile(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			profile = database.Profile{UserID: userID(r)}
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) updateProfile() http.HandlerFunc {
	type request struct {
		DisplayName string `json:"displayName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		if err := s.Library.UpdateProfile(r.Context(), userID(r), req.DisplayName); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}

func (s *Server) getAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avatar, found, err := s.Library.Avatar(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			http.Error(w, "no avatar", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", avatar.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(avatar.Data)
	}
}

func (s *Server) setAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxAvatarBytes+1))
		if err != nil {
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}
		if len(data) == 0 || len(data) > maxAvatarBytes {
			http.Error(w, "avatar must be between 1 byte and 2 MiB", http.StatusBadRequest)
			return
		}

		contentType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			http.Error(w, "avatar must be an image", http.StatusBadRequest)
			return
		}

		err = s.Library.SetAvatar(r.Context(), userID(r), database.Avatar{
			Data:        data,
			ContentType: contentType,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}
