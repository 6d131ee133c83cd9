// Package youtube resolves YouTube URLs, metadata, search results and
// playlists into library songs.
package youtube

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidURL = errors.New("not a recognized youtube url")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video id out of the URL shapes
// YouTube hands out: watch links, youtu.be short links, embed, legacy /v/
// and /u/<char>/ paths. Extra query parameters like list= are ignored.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))

	var id string
	switch {
	case host == "youtu.be":
		id = firstPathSegment(u.Path)
	case strings.HasSuffix(host, "youtube.com"):
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = firstPathSegment(strings.TrimPrefix(u.Path, "/embed"))
		case strings.HasPrefix(u.Path, "/v/"):
			id = firstPathSegment(strings.TrimPrefix(u.Path, "/v"))
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = firstPathSegment(strings.TrimPrefix(u.Path, "/shorts"))
		case strings.HasPrefix(u.Path, "/u/"):
			// Legacy user-page embed: /u/<char>/<id>.
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) >= 3 {
				id = parts[2]
			}
		}
	default:
		return "", ErrInvalidURL
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidURL
	}

	return id, nil
}

// ExtractPlaylistID pulls the list parameter from a playlist URL, or accepts
// a bare playlist id.
func ExtractPlaylistID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
		if host != "youtu.be" && !strings.HasSuffix(host, "youtube.com") {
			return "", ErrInvalidURL
		}
		if list := u.Query().Get("list"); list != "" {
			return list, nil
		}
		return "", ErrInvalidURL
	}

	if strings.HasPrefix(raw, "PL") || strings.HasPrefix(raw, "UU") || strings.HasPrefix(raw, "OL") {
		return raw, nil
	}

	return "", ErrInvalidURL
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

// ThumbnailURL is the medium-quality thumbnail for a video id.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/mqdefault.jpg"
}
