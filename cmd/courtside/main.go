package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/courtside/internal/api/rest"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/ingest/espn"
	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/scheduler"
	"github.com/fortuna/courtside/internal/season"
	"github.com/fortuna/courtside/internal/service"
)

const (
	serviceName    = "courtside"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Fantasy Basketball Aggregation Service", serviceName, serviceVersion)

	// Load configuration from environment
	config := loadConfig()

	window := season.Current()
	log.Printf("✓ Resolved season: %s (%s)", window.StatsSeason, window.Description)

	// Pick the snapshot store backing the durable cache families: Redis
	// when configured, local JSON files otherwise.
	var store cache.SnapshotStore
	if config.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(config.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, falling back to file snapshots: %v", err)
			store = cache.NewFileStore(config.CacheDir)
		} else {
			defer redisStore.Close()
			store = redisStore
			log.Println("✓ Connected to Redis for cache snapshots")
		}
	} else {
		store = cache.NewFileStore(config.CacheDir)
		log.Printf("✓ File cache snapshots in %s", config.CacheDir)
	}

	// Wire the three upstream sources into the aggregator
	espnClient := espn.New(config.ESPNAPIBase)
	statsClient := nba.New(config.NBAStatsBase)
	players := service.NewPlayerService(statsClient, espnClient, espnClient, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background cache refresher
	var refresher *scheduler.Refresher
	if config.EnableRefresher {
		refresher = scheduler.NewRefresher(players, nil)
		go refresher.Start(ctx)
		log.Println("✓ Background refresher started")
	}

	// Initialize REST API server
	restServer := rest.NewServer(config.Port, players)
	go func() {
		log.Printf("Starting REST API server on port %s", config.Port)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ REST API server listening on :%s", config.Port)
	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Printf("Shutting down %s gracefully...", serviceName)

	// Graceful shutdown
	cancel()
	if refresher != nil {
		refresher.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

type Config struct {
	Port            string
	NBAStatsBase    string
	ESPNAPIBase     string
	CacheDir        string
	RedisURL        string
	EnableRefresher bool
}

func loadConfig() Config {
	return Config{
		Port:            getEnv("PORT", "5000"),
		NBAStatsBase:    getEnv("NBA_STATS_BASE", ""),
		ESPNAPIBase:     getEnv("ESPN_API_BASE", ""),
		CacheDir:        getEnv("CACHE_DIR", "cache"),
		RedisURL:        getEnv("REDIS_URL", ""),
		EnableRefresher: getEnv("ENABLE_REFRESHER", "true") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
