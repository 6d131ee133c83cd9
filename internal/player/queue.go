package player

import "math/rand"

// Queue is the ordered playback queue plus the current-track pointer and the
// shuffle shadow order. It is a plain value container: no locking, no I/O.
// The Engine is responsible for serializing access.
//
// Invariant: whenever the queue is non-empty, 0 <= current < len(songs).
// Every mutation re-clamps rather than letting the pointer go out of bounds.
type Queue struct {
	songs   []Song
	current int

	// original holds the pre-shuffle order, captured when shuffle turns on
	// and dropped when it turns off. nil whenever shuffle is inactive.
	original []Song
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Len() int {
	return len(q.songs)
}

func (q *Queue) Songs() []Song {
	out := make([]Song, len(q.songs))
	copy(out, q.songs)
	return out
}

func (q *Queue) CurrentIndex() int {
	return q.current
}

// Current returns the playing track. It is always derived from the index,
// never stored separately.
func (q *Queue) Current() (Song, bool) {
	if len(q.songs) == 0 {
		return Song{}, false
	}
	q.clamp()
	return q.songs[q.current], true
}

func (q *Queue) IsShuffled() bool {
	return q.original != nil
}

// Append adds a song to the end of the queue without moving the current
// pointer. Duplicates are allowed: a song may appear in the queue any number
// of times. While shuffled, the shadow order grows too, so the track is still
// present after an unshuffle.
func (q *Queue) Append(song Song) {
	q.songs = append(q.songs, song)
	if q.original != nil {
		q.original = append(q.original, song)
	}
}

// RemoveAt removes the song at index. If the removed slot precedes the
// current one, the pointer shifts down so the same logical track stays
// current. Removing the current slot leaves the pointer in place: whatever
// now occupies it becomes current (clamped at the tail).
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.songs) {
		return false
	}

	removed := q.songs[index]
	q.songs = append(q.songs[:index], q.songs[index+1:]...)

	if index < q.current {
		q.current--
	}
	q.clamp()

	// Keep the shuffle shadow consistent: drop one occurrence of the same
	// identity so a later unshuffle does not resurrect the track.
	if q.original != nil {
		for i, s := range q.original {
			if s.ID == removed.ID {
				q.original = append(q.original[:i], q.original[i+1:]...)
				break
			}
		}
	}

	return true
}

// Move removes the song at oldIndex and reinserts it at newIndex (array-move
// semantics, not a swap). The current pointer follows the moved song if it
// was the one moved, and shifts by one when the move crosses it.
func (q *Queue) Move(oldIndex, newIndex int) bool {
	n := len(q.songs)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return false
	}
	if oldIndex == newIndex {
		return true
	}

	q.songs = moveSong(q.songs, oldIndex, newIndex)

	switch {
	case oldIndex == q.current:
		q.current = newIndex
	case oldIndex < q.current && q.current <= newIndex:
		q.current--
	case newIndex <= q.current && q.current < oldIndex:
		q.current++
	}
	q.clamp()

	return true
}

// Replace swaps in a whole new queue (loading a playlist, "play all") and
// resets the pointer to the start. Any shuffle shadow is discarded.
func (q *Queue) Replace(songs []Song) {
	q.songs = make([]Song, len(songs))
	copy(q.songs, songs)
	q.current = 0
	q.original = nil
}

// JumpTo moves the current pointer to index.
func (q *Queue) JumpTo(index int) bool {
	if index < 0 || index >= len(q.songs) {
		return false
	}
	q.current = index
	return true
}

// Shuffle snapshots the current order, then rebuilds the queue as the
// current song followed by a uniformly-random permutation of the rest.
func (q *Queue) Shuffle(rng *rand.Rand) {
	if len(q.songs) == 0 {
		q.original = []Song{}
		return
	}
	q.clamp()

	q.original = make([]Song, len(q.songs))
	copy(q.original, q.songs)

	current := q.songs[q.current]
	rest := make([]Song, 0, len(q.songs)-1)
	rest = append(rest, q.songs[:q.current]...)
	rest = append(rest, q.songs[q.current+1:]...)

	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	q.songs = append([]Song{current}, rest...)
	q.current = 0
}

// Unshuffle restores the snapshot taken by Shuffle and relocates the current
// song in it by identity. A track that vanished from the snapshot (removed
// while shuffled) falls back to index 0.
func (q *Queue) Unshuffle() {
	if q.original == nil {
		return
	}

	current, ok := q.Current()

	q.songs = q.original
	q.original = nil
	q.current = 0

	if !ok {
		return
	}
	for i, s := range q.songs {
		if s.ID == current.ID {
			q.current = i
			break
		}
	}
	q.clamp()
}

func (q *Queue) clamp() {
	if len(q.songs) == 0 {
		q.current = 0
		return
	}
	if q.current < 0 {
		q.current = 0
	}
	if q.current >= len(q.songs) {
		q.current = len(q.songs) - 1
	}
}

func moveSong(songs []Song, oldIndex, newIndex int) []Song {
	moved := songs[oldIndex]
	out := append(songs[:oldIndex], songs[oldIndex+1:]...)
	out = append(out, Song{})
	copy(out[newIndex+1:], out[newIndex:])
	out[newIndex] = moved
	return out
}
