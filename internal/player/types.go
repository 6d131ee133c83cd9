package player

import "time"

type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Song identity for de-duplication is YouTubeID, not ID: two records with
// different IDs but the same YouTubeID are the same underlying track.
type Song struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	YouTubeID string    `json:"youtubeId"`
	Thumbnail string    `json:"thumbnail"`
	Duration  int       `json:"duration,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Playlist song order is a persisted ordering (position column), distinct
// from any in-memory queue order.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Songs     []Song    `json:"songs"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type PlayRecord struct {
	Song     Song      `json:"song"`
	PlayedAt time.Time `json:"playedAt"`
}

type SleepMode string

const (
	SleepModeOff        SleepMode = "off"
	SleepModeCountdown  SleepMode = "countdown"
	SleepModeEndOfTrack SleepMode = "end_of_track"
)

// State is a point-in-time snapshot of the engine, safe to hand to the UI.
type State struct {
	Queue        []Song     `json:"queue"`
	CurrentIndex int        `json:"currentIndex"`
	CurrentSong  *Song      `json:"currentSong,omitempty"`
	IsPlaying    bool       `json:"isPlaying"`
	Volume       int        `json:"volume"`
	IsShuffle    bool       `json:"isShuffle"`
	RepeatMode   RepeatMode `json:"repeatMode"`
	CurrentTime  float64    `json:"currentTime"`
	Duration     float64    `json:"duration"`
	SleepMode    SleepMode  `json:"sleepMode"`
	SleepSeconds int        `json:"sleepSeconds,omitempty"`
}
