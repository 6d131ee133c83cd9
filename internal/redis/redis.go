package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const (
	defaultAttempts = 5
	initialBackoff  = 200 * time.Millisecond
	pingTimeout     = 3 * time.Second
)

var (
	client *redislib.Client
	once   sync.Once
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	// Attempts overrides the connect retry count; zero means the default.
	Attempts int
}

// Init connects with exponential backoff. Redis only backs the read-side
// collection cache, so callers may treat a failed Init as a degraded start
// rather than a fatal one.
func Init(cfg Config) (*redislib.Client, error) {
	var initErr error

	once.Do(func() {
		candidate := redislib.NewClient(&redislib.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		attempts := cfg.Attempts
		if attempts <= 0 {
			attempts = defaultAttempts
		}

		if initErr = ping(candidate, attempts); initErr != nil {
			_ = candidate.Close()
			return
		}
		client = candidate
	})

	if client == nil && initErr == nil {
		initErr = fmt.Errorf("redis client not initialized")
	}

	return client, initErr
}

func ping(c *redislib.Client, attempts int) error {
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		lastErr = c.Ping(ctx).Err()
		cancel()

		if lastErr == nil {
			return nil
		}
		if attempt < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	return fmt.Errorf("redis unreachable after %d attempts: %w", attempts, lastErr)
}

func Client() *redislib.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
