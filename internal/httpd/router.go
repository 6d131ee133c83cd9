// Package httpd is the HTTP surface: queue and playback control, library
// CRUD, search, imports and profiles, JSON in and out.
package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Koziky/lucid-tune-hub/internal/library"
	"github.com/Koziky/lucid-tune-hub/internal/player"
	"github.com/Koziky/lucid-tune-hub/internal/ws"
	"github.com/Koziky/lucid-tune-hub/internal/youtube"
)

// defaultUser backs requests that carry no identity header. The player is a
// single-user deployment by default; the header exists so a reverse proxy
// can inject real identities.
const defaultUser = "local"

type Server struct {
	Engine  *player.Engine
	Library *library.Service
	Hub     *ws.Hub
}

func NewRouter(srv *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ws", srv.Hub.ServeWidget)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", srv.getState())

		r.Route("/player", func(r chi.Router) {
			r.Post("/next", srv.playNext())
			r.Post("/previous", srv.playPrevious())
			r.Post("/play", srv.setPlaying(true))
			r.Post("/pause", srv.setPlaying(false))
			r.Post("/volume", srv.setVolume())
			r.Post("/seek", srv.seek())
			r.Post("/shuffle", srv.toggleShuffle())
			r.Post("/repeat", srv.toggleRepeat())
			r.Post("/sleep", srv.setSleepTimer())
			r.Delete("/sleep", srv.cancelSleepTimer())
		})

		r.Route("/queue", func(r chi.Router) {
			r.Post("/", srv.addToQueue())
			r.Post("/url", srv.addURLToQueue())
			r.Delete("/{index}", srv.removeFromQueue())
			r.Post("/reorder", srv.reorderQueue())
			r.Post("/play/{index}", srv.playAt())
		})

		r.Route("/songs", func(r chi.Router) {
			r.Get("/", srv.getSongs())
			r.Post("/url", srv.addSongFromURL())
			r.Post("/play-all", srv.playAllSongs())
			r.Post("/refresh", srv.refreshMetadata())
			r.Delete("/{songID}", srv.deleteSong())
			r.Post("/{songID}/like", srv.toggleLike())
			r.Post("/{songID}/share", srv.shareSong())
		})

		r.Route("/likes", func(r chi.Router) {
			r.Get("/", srv.getLikedSongs())
			r.Post("/play", srv.playLikedSongs())
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", srv.getPlaylists())
			r.Post("/", srv.createPlaylist())
			r.Patch("/{playlistID}", srv.renamePlaylist())
			r.Delete("/{playlistID}", srv.deletePlaylist())
			r.Post("/{playlistID}/songs", srv.addToPlaylist())
			r.Delete("/{playlistID}/songs/{songID}", srv.removeFromPlaylist())
			r.Post("/{playlistID}/play", srv.playPlaylist())
		})

		r.Get("/search", srv.search())
		r.Post("/import/spotify", srv.importSpotify())
		r.Post("/import/youtube", srv.importYouTubePlaylist())
		r.Get("/history", srv.getHistory())

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", srv.getProfile())
			r.Put("/", srv.updateProfile())
			r.Get("/avatar", srv.getAvatar())
			r.Put("/avatar", srv.setAvatar())
		})
	})

	return r
}

func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUser
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func decodeBody(r *http.Request, dest interface{}) error {
	return json.NewDecoder(r.Body).Decode(dest)
}

// writeError maps the error taxonomy onto status codes: bad input is the
// caller's fault, everything else is a failing collaborator.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway

	switch {
	case errors.Is(err, player.ErrInvalidIndex),
		errors.Is(err, player.ErrQueueEmpty),
		errors.Is(err, player.ErrQueueFull),
		errors.Is(err, player.ErrInvalidSleepDuration),
		errors.Is(err, library.ErrEmptyName),
		errors.Is(err, youtube.ErrInvalidURL):
		status = http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusResponse struct {
	OK bool `json:"ok"`
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, statusResponse{OK: true})
}
