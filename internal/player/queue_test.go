package player

import (
	"math/rand"
	"testing"
)

func makeSongs(ids ...string) []Song {
	songs := make([]Song, 0, len(ids))
	for _, id := range ids {
		songs = append(songs, Song{
			ID:        id,
			Title:     "Title " + id,
			Artist:    "Artist " + id,
			YouTubeID: "yt-" + id,
		})
	}
	return songs
}

func queueOf(current int, ids ...string) *Queue {
	q := NewQueue()
	for _, s := range makeSongs(ids...) {
		q.Append(s)
	}
	q.JumpTo(current)
	return q
}

func songIDs(songs []Song) []string {
	ids := make([]string, 0, len(songs))
	for _, s := range songs {
		ids = append(ids, s.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRemoveAtKeepsCurrentSong(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		remove      int
		wantIndex   int
		wantCurrent string
	}{
		{"remove before current", 2, 0, 1, "c"},
		{"remove after current", 1, 3, 1, "b"},
		{"remove current keeps slot", 1, 1, 1, "c"},
		{"remove current at tail clamps", 3, 3, 2, "c"},
		{"remove only preceding neighbour", 1, 0, 0, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queueOf(tt.current, "a", "b", "c", "d")
			if !q.RemoveAt(tt.remove) {
				t.Fatalf("RemoveAt(%d) = false", tt.remove)
			}
			if q.CurrentIndex() != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.wantIndex)
			}
			song, ok := q.Current()
			if !ok {
				t.Fatal("Current() reported empty queue")
			}
			if song.ID != tt.wantCurrent {
				t.Errorf("Current() = %s, want %s", song.ID, tt.wantCurrent)
			}
		})
	}
}

func TestRemoveAtBounds(t *testing.T) {
	q := queueOf(0, "a", "b")
	if q.RemoveAt(-1) {
		t.Error("RemoveAt(-1) accepted")
	}
	if q.RemoveAt(2) {
		t.Error("RemoveAt(2) accepted on length-2 queue")
	}
}

func TestRemoveAtEmptiesQueue(t *testing.T) {
	q := queueOf(0, "a")
	q.RemoveAt(0)
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
	if _, ok := q.Current(); ok {
		t.Error("Current() returned a song from an empty queue")
	}
}

func TestMoveCurrentIndexRules(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		current   int
		oldIndex  int
		newIndex  int
		wantOrder []string
		wantIndex int
	}{
		{"moved item was current", []string{"a", "b", "c", "d"}, 1, 1, 3, []string{"a", "c", "d", "b"}, 3},
		{"move crosses current from below", []string{"a", "b", "c", "d"}, 2, 0, 3, []string{"b", "c", "d", "a"}, 1},
		{"move crosses current from above", []string{"a", "b", "c", "d"}, 1, 3, 0, []string{"d", "a", "b", "c"}, 2},
		{"move entirely after current", []string{"a", "b", "c", "d"}, 0, 2, 3, []string{"a", "b", "d", "c"}, 0},
		{"move entirely before current", []string{"a", "b", "c", "d"}, 3, 0, 1, []string{"b", "a", "c", "d"}, 3},
		{"move to same slot", []string{"a", "b", "c", "d"}, 2, 1, 1, []string{"a", "b", "c", "d"}, 2},
		{"move A to end while B plays", []string{"a", "b", "c"}, 1, 0, 2, []string{"b", "c", "a"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queueOf(tt.current, tt.ids...)
			before, _ := q.Current()

			if !q.Move(tt.oldIndex, tt.newIndex) {
				t.Fatalf("Move(%d, %d) = false", tt.oldIndex, tt.newIndex)
			}
			if got := songIDs(q.Songs()); !equalIDs(got, tt.wantOrder) {
				t.Errorf("order = %v, want %v", got, tt.wantOrder)
			}
			if q.CurrentIndex() != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.wantIndex)
			}
			after, _ := q.Current()
			if after.ID != before.ID {
				t.Errorf("current song changed: %s -> %s", before.ID, after.ID)
			}
		})
	}
}

func TestMovePreservesMultiset(t *testing.T) {
	for oldIndex := 0; oldIndex < 4; oldIndex++ {
		for newIndex := 0; newIndex < 4; newIndex++ {
			q := queueOf(2, "a", "b", "c", "d")
			if !q.Move(oldIndex, newIndex) {
				t.Fatalf("Move(%d, %d) = false", oldIndex, newIndex)
			}

			counts := map[string]int{}
			for _, id := range songIDs(q.Songs()) {
				counts[id]++
			}
			for _, id := range []string{"a", "b", "c", "d"} {
				if counts[id] != 1 {
					t.Fatalf("Move(%d, %d): song %s appears %d times", oldIndex, newIndex, id, counts[id])
				}
			}
			if _, ok := q.Current(); !ok {
				t.Fatalf("Move(%d, %d): no current song", oldIndex, newIndex)
			}
		}
	}
}

func TestMoveBounds(t *testing.T) {
	q := queueOf(0, "a", "b")
	if q.Move(0, 5) {
		t.Error("Move(0, 5) accepted")
	}
	if q.Move(-1, 0) {
		t.Error("Move(-1, 0) accepted")
	}
}

func TestShuffleRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, current := range []int{0, 2, 4} {
		q := queueOf(current, "a", "b", "c", "d", "e")
		wantOrder := songIDs(q.Songs())
		before, _ := q.Current()

		q.Shuffle(rng)
		if !q.IsShuffled() {
			t.Fatal("IsShuffled() = false after Shuffle")
		}
		if q.CurrentIndex() != 0 {
			t.Errorf("CurrentIndex() = %d after shuffle, want 0", q.CurrentIndex())
		}
		shuffledCurrent, _ := q.Current()
		if shuffledCurrent.ID != before.ID {
			t.Errorf("shuffle changed current song: %s -> %s", before.ID, shuffledCurrent.ID)
		}

		q.Unshuffle()
		if q.IsShuffled() {
			t.Fatal("IsShuffled() = true after Unshuffle")
		}
		if got := songIDs(q.Songs()); !equalIDs(got, wantOrder) {
			t.Errorf("unshuffle order = %v, want %v", got, wantOrder)
		}
		after, _ := q.Current()
		if after.ID != before.ID {
			t.Errorf("round trip changed current song: %s -> %s", before.ID, after.ID)
		}
		if q.CurrentIndex() != current {
			t.Errorf("CurrentIndex() = %d after round trip, want %d", q.CurrentIndex(), current)
		}
	}
}

func TestShufflePreservesMultiset(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	q := queueOf(1, "a", "b", "c", "d")
	q.Shuffle(rng)

	counts := map[string]int{}
	for _, id := range songIDs(q.Songs()) {
		counts[id]++
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if counts[id] != 1 {
			t.Errorf("song %s appears %d times after shuffle", id, counts[id])
		}
	}
}

func TestAppendWhileShuffledSurvivesUnshuffle(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	q := queueOf(0, "a", "b", "c")
	q.Shuffle(rng)

	q.Append(makeSongs("d")[0])
	if q.Len() != 4 {
		t.Fatalf("Len() = %d after append, want 4", q.Len())
	}

	q.Unshuffle()
	found := false
	for _, id := range songIDs(q.Songs()) {
		if id == "d" {
			found = true
		}
	}
	if !found {
		t.Error("song appended while shuffled vanished on unshuffle")
	}
}

func TestRemoveWhileShuffledUpdatesShadow(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	q := queueOf(0, "a", "b", "c", "d")
	q.Shuffle(rng)

	// Remove a non-current track and make sure unshuffle does not bring it
	// back from the shadow order.
	q.RemoveAt(2)
	removedLen := q.Len()

	q.Unshuffle()
	if q.Len() != removedLen {
		t.Errorf("Len() = %d after unshuffle, want %d", q.Len(), removedLen)
	}
}

func TestUnshuffleMissingCurrentFallsBackToZero(t *testing.T) {
	// The current track is absent from the snapshot; the restore falls back
	// to index 0 rather than corrupting the pointer.
	q := &Queue{
		songs:    makeSongs("x", "y"),
		current:  1,
		original: makeSongs("a", "b", "c"),
	}

	q.Unshuffle()
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
}

func TestShuffleEmptyQueue(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	q := NewQueue()
	q.Shuffle(rng)
	if !q.IsShuffled() {
		t.Error("IsShuffled() = false after shuffling empty queue")
	}
	q.Unshuffle()
	if q.IsShuffled() {
		t.Error("IsShuffled() = true after unshuffle")
	}
}

func TestReplaceResetsShuffle(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	q := queueOf(1, "a", "b", "c")
	q.Shuffle(rng)

	q.Replace(makeSongs("x", "y"))
	if q.IsShuffled() {
		t.Error("IsShuffled() = true after Replace")
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d after Replace, want 0", q.CurrentIndex())
	}
	if got := songIDs(q.Songs()); !equalIDs(got, []string{"x", "y"}) {
		t.Errorf("order = %v, want [x y]", got)
	}
}

func TestAppendDuplicatesAllowed(t *testing.T) {
	q := NewQueue()
	song := makeSongs("a")[0]
	q.Append(song)
	q.Append(song)
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (duplicates are allowed in the queue)", q.Len())
	}
}
