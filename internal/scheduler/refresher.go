package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/fortuna/courtside/internal/service"
)

// Refresher keeps the player cache warm in the background so the first
// request after a TTL expiry does not pay the full multi-source fetch.
// Refresh calls go through the normal tiered-cache path, so a tick inside
// the TTL window is a no-op.
type Refresher struct {
	players *service.PlayerService
	config  *Config
	cancel  context.CancelFunc
}

// Config holds refresher configuration
type Config struct {
	WarmOnStart     bool          // Prefetch the player set at startup
	RefreshInterval time.Duration // Default: 15m
	MaxRetries      int           // Default: 3
	RetryDelay      time.Duration // Default: 5s
}

// DefaultConfig returns default refresher configuration
func DefaultConfig() *Config {
	return &Config{
		WarmOnStart:     true,
		RefreshInterval: 15 * time.Minute,
		MaxRetries:      3,
		RetryDelay:      5 * time.Second,
	}
}

// NewRefresher creates a background cache refresher
func NewRefresher(players *service.PlayerService, config *Config) *Refresher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Refresher{
		players: players,
		config:  config,
	}
}

// Start runs the refresh loop until the context is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	log.Printf("[refresher] started (interval: %v, warm on start: %v)",
		r.config.RefreshInterval, r.config.WarmOnStart)

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if r.config.WarmOnStart {
		r.refreshWithRetry(ctx)
	}

	ticker := time.NewTicker(r.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[refresher] stopped")
			return
		case <-ticker.C:
			r.refreshWithRetry(ctx)
		}
	}
}

// Stop cancels the refresh loop.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

// refreshWithRetry warms the current-season player cache, retrying on
// primary-source failures.
func (r *Refresher) refreshWithRetry(ctx context.Context) {
	var err error
	for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
		if _, err = r.players.FetchPlayers(ctx, ""); err == nil {
			return
		}

		log.Printf("[refresher] refresh attempt %d/%d failed: %v", attempt, r.config.MaxRetries, err)

		if attempt < r.config.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.config.RetryDelay):
			}
		}
	}

	log.Printf("[refresher] all %d refresh attempts failed, waiting for next tick", r.config.MaxRetries)
}
