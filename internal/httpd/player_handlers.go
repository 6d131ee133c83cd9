package httpd

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Koziky/lucid-tune-hub/internal/player"
)

func (s *Server) getState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) playNext() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.PlayNext()
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) playPrevious() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.PlayPrevious()
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) setPlaying(playing bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.SetPlaying(playing)
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) setVolume() http.HandlerFunc {
	type request struct {
		Volume int `json:"volume"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		s.Engine.SetVolume(req.Volume)
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) seek() http.HandlerFunc {
	type request struct {
		Seconds float64 `json:"seconds"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		s.Engine.SeekTo(req.Seconds)
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) toggleShuffle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.ToggleShuffle()
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) toggleRepeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.ToggleRepeat()
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) setSleepTimer() http.HandlerFunc {
	type request struct {
		Minutes    int  `json:"minutes"`
		EndOfTrack bool `json:"endOfTrack"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		if req.EndOfTrack {
			s.Engine.SetSleepTimerEndOfTrack()
			writeOK(w)
			return
		}

		if err := s.Engine.SetSleepTimer(req.Minutes); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)
	}
}

func (s *Server) cancelSleepTimer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.CancelSleepTimer()
		writeOK(w)
	}
}

func (s *Server) addToQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var song player.Song
		if err := decodeBody(r, &song); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		song.UserID = userID(r)

		if err := s.Engine.AddToQueue(song); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

// addURLToQueue persists the song behind the URL and queues it in one step.
func (s *Server) addURLToQueue() http.HandlerFunc {
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

		if err := s.Engine.AddToQueue(song); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) removeFromQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			http.Error(w, "invalid index", http.StatusBadRequest)
			return
		}

		if err := s.Engine.RemoveFromQueue(index); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) reorderQueue() http.HandlerFunc {
	type request struct {
		OldIndex int `json:"oldIndex"`
		NewIndex int `json:"newIndex"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		if err := s.Engine.ReorderQueue(req.OldIndex, req.NewIndex); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}

func (s *Server) playAt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			http.Error(w, "invalid index", http.StatusBadRequest)
			return
		}

		if err := s.Engine.PlayAt(index); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Engine.Snapshot())
	}
}
