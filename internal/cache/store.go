package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Family names one independently cached dataset. Each family has its own
// TTL and, for the durable families, its own snapshot.
type Family string

const (
	FamilyPlayers      Family = "players"
	FamilyPlayersPrior Family = "players_prior"
	FamilyInjuries     Family = "injury"
	FamilyBios         Family = "bio"
)

// Snapshot is the durable mirror of a cache entry: the serialized dataset
// plus the unix timestamp of the fetch that produced it.
type Snapshot struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt int64           `json:"fetched_at"`
}

// SnapshotStore persists snapshots across restarts. Load returns (nil, nil)
// when no snapshot exists; corruption surfaces as an error and callers treat
// it as a miss. Implementations are not safe for concurrent writer processes.
type SnapshotStore interface {
	Load(ctx context.Context, family Family) (*Snapshot, error)
	Save(ctx context.Context, family Family, snap *Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, family Family) error
}
