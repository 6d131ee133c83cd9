package spotify

import "testing"

func TestExtractResource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind ResourceKind
		wantID   string
		wantOK   bool
	}{
		{
			name:     "track url",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantKind: KindTrack,
			wantID:   "4uLU6hMCjMI75M1A2tKUQC",
			wantOK:   true,
		},
		{
			name:     "track url with query",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc123",
			wantKind: KindTrack,
			wantID:   "4uLU6hMCjMI75M1A2tKUQC",
			wantOK:   true,
		},
		{
			name:     "album url",
			input:    "https://open.spotify.com/album/2noRn2Aes5aoNVsU6iWThc",
			wantKind: KindAlbum,
			wantID:   "2noRn2Aes5aoNVsU6iWThc",
			wantOK:   true,
		},
		{
			name:     "playlist url",
			input:    "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			wantKind: KindPlaylist,
			wantID:   "37i9dQZF1DXcBWIGoYBM5M",
			wantOK:   true,
		},
		{
			name:     "localized url",
			input:    "https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC",
			wantKind: KindTrack,
			wantID:   "4uLU6hMCjMI75M1A2tKUQC",
			wantOK:   true,
		},
		{
			name:     "track uri",
			input:    "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
			wantKind: KindTrack,
			wantID:   "4uLU6hMCjMI75M1A2tKUQC",
			wantOK:   true,
		},
		{
			name:     "playlist uri",
			input:    "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
			wantKind: KindPlaylist,
			wantID:   "37i9dQZF1DXcBWIGoYBM5M",
			wantOK:   true,
		},
		{
			name:   "wrong host",
			input:  "https://example.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantOK: false,
		},
		{
			name:   "artist url",
			input:  "https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractResource(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractResource(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Kind != tt.wantKind || got.ID != tt.wantID {
				t.Fatalf("ExtractResource(%q) = %+v, want kind %s id %s", tt.input, got, tt.wantKind, tt.wantID)
			}
		})
	}
}

func TestTrackArtistLine(t *testing.T) {
	track := Track{Name: "Song", Artists: []string{"First", "Second"}}
	if got := track.ArtistLine(); got != "First Second" {
		t.Fatalf("ArtistLine = %q, want %q", got, "First Second")
	}
}
