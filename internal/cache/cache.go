// Package cache is the read-side collection cache for the library: hydrated
// song/playlist/like/history collections keyed per user, invalidated key by
// key when a mutation touches them. Every lookup falls back to the store on
// a miss, and a nil Redis client disables caching entirely.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

func SongsKey(userID string) string     { return "library:songs:" + userID }
func LikedKey(userID string) string     { return "library:liked:" + userID }
func PlaylistsKey(userID string) string { return "library:playlists:" + userID }
func HistoryKey(userID string) string   { return "library:history:" + userID }

type Store struct {
	client *redislib.Client
	ttl    time.Duration
}

func New(client *redislib.Client) *Store {
	return &Store{client: client, ttl: defaultTTL}
}

// Get unmarshals the cached collection into dest. Any failure is a miss.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if s == nil || s.client == nil {
		return false
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("cache: bad payload for %s, dropping: %v", key, err)
		s.Invalidate(ctx, key)
		return false
	}
	return true
}

func (s *Store) Set(ctx context.Context, key string, value interface{}) {
	if s == nil || s.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %s failed: %v", key, err)
		return
	}

	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}

// Invalidate drops exactly the named keys. Mutations call this with the
// collections they touched; nothing else is evicted.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: invalidate %v failed: %v", keys, err)
	}
}
