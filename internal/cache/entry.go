package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// FetchFunc produces a complete dataset for a family on a cache miss.
// Fetchers for supplementary sources degrade to an empty dataset instead of
// returning an error; only the primary stats source propagates failure.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Entry is the tiered cache for one dataset family: an in-memory copy
// checked first, then the snapshot store, then the fetcher. A nil store
// makes the entry memory-only.
type Entry[T any] struct {
	family Family
	ttl    time.Duration
	store  SnapshotStore
	now    func() time.Time

	mu        sync.RWMutex
	data      T
	populated bool
	fetchedAt time.Time
}

// NewEntry creates an empty entry for a family. Entries live for the
// process lifetime and are replaced wholesale on refresh.
func NewEntry[T any](family Family, ttl time.Duration, store SnapshotStore) *Entry[T] {
	return &Entry[T]{
		family: family,
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

// GetOrFetch returns the family's dataset, trying memory, then the snapshot
// store, then the fetcher. A successful fetch is written to both tiers; a
// persistence failure is logged and does not fail the request.
//
// No lock is held across the fetch: two near-simultaneous miss callers may
// both fetch and redundantly overwrite the same logical snapshot.
func (e *Entry[T]) GetOrFetch(ctx context.Context, fetch FetchFunc[T]) (T, error) {
	if data, ok := e.Fresh(); ok {
		return data, nil
	}
	if data, ok := e.restore(ctx); ok {
		return data, nil
	}

	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	e.Put(ctx, data)
	return data, nil
}

// Fresh returns the in-memory dataset if it is populated and within its TTL
// window. No I/O happens on this path.
func (e *Entry[T]) Fresh() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.populated || e.now().Sub(e.fetchedAt) >= e.ttl {
		var zero T
		return zero, false
	}
	return e.data, true
}

// Put replaces the in-memory dataset and persists a snapshot best-effort.
func (e *Entry[T]) Put(ctx context.Context, data T) {
	fetchedAt := e.now()

	e.mu.Lock()
	e.data = data
	e.populated = true
	e.fetchedAt = fetchedAt
	e.mu.Unlock()

	if e.store == nil {
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("[cache] %s: snapshot encode failed: %v", e.family, err)
		return
	}
	if err := e.store.Save(ctx, e.family, &Snapshot{Data: raw, FetchedAt: fetchedAt.Unix()}, e.ttl); err != nil {
		log.Printf("[cache] %s: snapshot save failed: %v", e.family, err)
	}
}

// Expire drops the in-memory copy and deletes the snapshot so the next
// lookup refetches. Used by manual refresh triggers.
func (e *Entry[T]) Expire(ctx context.Context) {
	e.mu.Lock()
	var zero T
	e.data = zero
	e.populated = false
	e.fetchedAt = time.Time{}
	e.mu.Unlock()

	if e.store == nil {
		return
	}
	if err := e.store.Delete(ctx, e.family); err != nil {
		log.Printf("[cache] %s: snapshot delete failed: %v", e.family, err)
	}
}

// restore adopts a still-valid snapshot into the in-memory entry. A snapshot
// is trusted only while now - fetched_at stays under the family TTL;
// anything older, missing, or unreadable is a miss.
func (e *Entry[T]) restore(ctx context.Context) (T, bool) {
	var zero T
	if e.store == nil {
		return zero, false
	}

	snap, err := e.store.Load(ctx, e.family)
	if err != nil {
		log.Printf("[cache] %s: snapshot load failed, treating as miss: %v", e.family, err)
		return zero, false
	}
	if snap == nil {
		return zero, false
	}

	fetchedAt := time.Unix(snap.FetchedAt, 0)
	if e.now().Sub(fetchedAt) >= e.ttl {
		return zero, false
	}

	var data T
	if err := json.Unmarshal(snap.Data, &data); err != nil {
		log.Printf("[cache] %s: snapshot decode failed, treating as miss: %v", e.family, err)
		return zero, false
	}

	e.mu.Lock()
	e.data = data
	e.populated = true
	e.fetchedAt = fetchedAt
	e.mu.Unlock()

	log.Printf("[cache] %s: restored snapshot from %s", e.family, fetchedAt.Format(time.RFC3339))
	return data, true
}

// Info describes an entry's freshness for status endpoints.
type Info struct {
	Family     Family `json:"family"`
	Populated  bool   `json:"populated"`
	FetchedAt  string `json:"fetched_at,omitempty"`
	AgeSeconds int64  `json:"age_seconds"`
	TTLSeconds int64  `json:"ttl_seconds"`
	Stale      bool   `json:"stale"`
}

// Info reports the entry's current freshness.
func (e *Entry[T]) Info() Info {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info := Info{
		Family:     e.family,
		Populated:  e.populated,
		TTLSeconds: int64(e.ttl / time.Second),
		Stale:      true,
	}
	if e.populated {
		age := e.now().Sub(e.fetchedAt)
		info.FetchedAt = e.fetchedAt.Format(time.RFC3339)
		info.AgeSeconds = int64(age / time.Second)
		info.Stale = age >= e.ttl
	}
	return info
}
