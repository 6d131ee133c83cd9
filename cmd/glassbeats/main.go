package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Koziky/lucid-tune-hub/config"
	"github.com/Koziky/lucid-tune-hub/internal/cache"
	"github.com/Koziky/lucid-tune-hub/internal/database"
	"github.com/Koziky/lucid-tune-hub/internal/httpd"
	"github.com/Koziky/lucid-tune-hub/internal/library"
	"github.com/Koziky/lucid-tune-hub/internal/notify"
	"github.com/Koziky/lucid-tune-hub/internal/player"
	"github.com/Koziky/lucid-tune-hub/internal/redis"
	"github.com/Koziky/lucid-tune-hub/internal/spotify"
	"github.com/Koziky/lucid-tune-hub/internal/ws"
	"github.com/Koziky/lucid-tune-hub/internal/youtube"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("GlassBeats - Music Player")
	log.Println("=========================")

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Error: Failed to load configuration: %v", err)
		log.Println("")
		log.Println("Database configuration:")
		log.Println("  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE")
		log.Println("")
		log.Println("Redis configuration (optional, enables the read cache):")
		log.Println("  REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB")
		log.Println("")
		log.Println("Optional environment variables:")
		log.Println("  HTTP_ADDR              - Listen address (default: :8080)")
		log.Println("  DEFAULT_VOLUME         - Default volume level (0-100, default: 50)")
		log.Println("  MAX_QUEUE_SIZE         - Maximum queue size (default: 500)")
		log.Println("  HISTORY_LIMIT          - Recently-played entries (default: 20)")
		log.Println("  YOUTUBE_API_KEY        - Enables search and playlist import")
		log.Println("  SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET - Enables Spotify import")
		os.Exit(1)
	}

	log.Println("")
	log.Println("Configuration loaded successfully")
	log.Println("---------------------------------")
	log.Printf("HTTP: %s", cfg.HTTPAddr)
	log.Printf("Default Volume: %d%%", cfg.DefaultVolume)
	log.Printf("Max Queue Size: %d", cfg.MaxQueueSize)

	log.Println("")
	log.Println("Database:")
	log.Printf("  Host: %s:%d", cfg.DBHost, cfg.DBPort)
	log.Printf("  Database: %s", cfg.DBName)

	dbCfg := cfg.GetDBConfig()
	if err := database.Initialize(&database.Config{
		Host:     dbCfg.Host,
		Port:     dbCfg.Port,
		User:     dbCfg.User,
		Password: dbCfg.Password,
		DBName:   dbCfg.Name,
		SSLMode:  dbCfg.SSLMode,
	}); err != nil {
		log.Fatalf("Error: Failed to initialize database: %v", err)
	}
	defer database.Close()

	log.Println("")
	log.Println("Redis:")
	redisCfg := cfg.GetRedisConfig()
	redisClient, err := redis.Init(redis.Config{
		Host:     redisCfg.Host,
		Port:     redisCfg.Port,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	if err != nil {
		log.Printf("  Status: unavailable, read cache disabled: %v", err)
		redisClient = nil
	} else {
		log.Printf("  Host: %s:%d", redisCfg.Host, redisCfg.Port)
		defer redis.Close()
	}

	log.Println("")
	log.Println("YouTube:")
	if cfg.YouTubeAPIKey != "" {
		log.Printf("  Status: configured")
	} else {
		log.Printf("  Status: no API key (search and playlist import disabled)")
	}

	log.Println("Spotify:")
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		log.Printf("  Status: configured")
	} else {
		log.Printf("  Status: not configured (Spotify import will not work)")
	}

	log.Println("")
	log.Println("---------------------------------")

	notifier := notify.New()

	lib := library.NewService(library.Options{
		Songs:        database.NewSongRepository(),
		Playlists:    database.NewPlaylistRepository(),
		Likes:        database.NewLikeRepository(),
		History:      database.NewHistoryRepository(),
		Profiles:     database.NewProfileRepository(),
		Cache:        cache.New(redisClient),
		YouTube:      youtube.NewClient(cfg.YouTubeAPIKey),
		Spotify:      spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret),
		Notifier:     notifier,
		HistoryLimit: cfg.HistoryLimit,
	})

	engine := player.NewEngine(player.Options{
		Library:      lib,
		Notifier:     notifier,
		Volume:       cfg.DefaultVolume,
		MaxQueueSize: cfg.MaxQueueSize,
	})

	hub := ws.NewHub(notifier)
	bridge := player.NewBridge(engine, hub, hub.Events(), player.BridgeOptions{
		MediaSession: hub,
		KeepAlive:    hub,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go bridge.Run(ctx)
	go hub.Run(ctx)

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpd.NewRouter(&httpd.Server{
			Engine:  engine,
			Library: lib,
			Hub:     hub,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error: HTTP server failed: %v", err)
		}
	}()

	log.Println("Player is running. Press CTRL+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error: HTTP shutdown failed: %v", err)
	}
}
