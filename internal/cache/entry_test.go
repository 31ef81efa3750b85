package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls int
	data  map[string]string
	err   error
}

func (f *countingFetcher) fetch(ctx context.Context) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

// fakeClock lets tests move an entry's notion of now.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEntry(t *testing.T, ttl time.Duration, store SnapshotStore) (*Entry[map[string]string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)}
	entry := NewEntry[map[string]string](FamilyInjuries, ttl, store)
	entry.now = clock.now
	return entry, clock
}

func TestGetOrFetchWithinTTLSkipsFetcher(t *testing.T) {
	entry, clock := newTestEntry(t, time.Hour, nil)
	fetcher := &countingFetcher{data: map[string]string{"a": "1"}}

	ctx := context.Background()
	data, err := entry.GetOrFetch(ctx, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, data)
	assert.Equal(t, 1, fetcher.calls)

	// Still inside the TTL window: no refetch.
	clock.advance(59 * time.Minute)
	_, err = entry.GetOrFetch(ctx, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestGetOrFetchPastTTLRefetchesOnce(t *testing.T) {
	store := NewFileStore(t.TempDir())
	entry, clock := newTestEntry(t, time.Hour, store)
	fetcher := &countingFetcher{data: map[string]string{"a": "1"}}

	ctx := context.Background()
	_, err := entry.GetOrFetch(ctx, fetcher.fetch)
	require.NoError(t, err)

	firstSnap, err := store.Load(ctx, FamilyInjuries)
	require.NoError(t, err)
	require.NotNil(t, firstSnap)

	clock.advance(61 * time.Minute)
	fetcher.data = map[string]string{"a": "2"}

	data, err := entry.GetOrFetch(ctx, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2"}, data)
	assert.Equal(t, 2, fetcher.calls)

	// Both tiers carry the refetch timestamp.
	secondSnap, err := store.Load(ctx, FamilyInjuries)
	require.NoError(t, err)
	require.NotNil(t, secondSnap)
	assert.Equal(t, clock.t.Unix(), secondSnap.FetchedAt)
	assert.Greater(t, secondSnap.FetchedAt, firstSnap.FetchedAt)

	fresh, ok := entry.Fresh()
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"a": "2"}, fresh)
}

func TestGetOrFetchRestoresValidSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	// A first entry persists a snapshot, then the "process restarts".
	first, clock := newTestEntry(t, time.Hour, store)
	fetcher := &countingFetcher{data: map[string]string{"a": "1"}}
	_, err := first.GetOrFetch(context.Background(), fetcher.fetch)
	require.NoError(t, err)

	second := NewEntry[map[string]string](FamilyInjuries, time.Hour, store)
	second.now = clock.now
	clock.advance(30 * time.Minute)

	data, err := second.GetOrFetch(context.Background(), fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, data)
	assert.Equal(t, 1, fetcher.calls, "snapshot hit must not refetch")
}

func TestGetOrFetchIgnoresExpiredSnapshot(t *testing.T) {
	store := NewFileStore(t.TempDir())

	first, clock := newTestEntry(t, time.Hour, store)
	fetcher := &countingFetcher{data: map[string]string{"a": "1"}}
	_, err := first.GetOrFetch(context.Background(), fetcher.fetch)
	require.NoError(t, err)

	second := NewEntry[map[string]string](FamilyInjuries, time.Hour, store)
	second.now = clock.now
	clock.advance(2 * time.Hour)

	fetcher.data = map[string]string{"a": "fresh"}
	data, err := second.GetOrFetch(context.Background(), fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "fresh"}, data)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCorruptSnapshotIsAMiss(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "injury_cache.json"), []byte("{not json"), 0o644))

	entry, _ := newTestEntry(t, time.Hour, store)
	fetcher := &countingFetcher{data: map[string]string{"a": "1"}}

	data, err := entry.GetOrFetch(context.Background(), fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, data)
	assert.Equal(t, 1, fetcher.calls)
}

func TestFetchErrorLeavesEntryEmpty(t *testing.T) {
	entry, _ := newTestEntry(t, time.Hour, nil)
	fetcher := &countingFetcher{err: assert.AnError}

	_, err := entry.GetOrFetch(context.Background(), fetcher.fetch)
	assert.Error(t, err)

	_, ok := entry.Fresh()
	assert.False(t, ok)
}

func TestExpireForcesRefetchAndDeletesSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	entry, _ := newTestEntry(t, time.Hour, store)
	fetcher := &countingFetcher{data: map[string]string{"a": "1"}}

	ctx := context.Background()
	_, err := entry.GetOrFetch(ctx, fetcher.fetch)
	require.NoError(t, err)

	entry.Expire(ctx)

	_, statErr := os.Stat(filepath.Join(dir, "injury_cache.json"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = entry.GetOrFetch(ctx, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestInfoReportsFreshness(t *testing.T) {
	entry, clock := newTestEntry(t, time.Hour, nil)

	info := entry.Info()
	assert.False(t, info.Populated)
	assert.True(t, info.Stale)

	entry.Put(context.Background(), map[string]string{"a": "1"})
	clock.advance(10 * time.Minute)

	info = entry.Info()
	assert.True(t, info.Populated)
	assert.False(t, info.Stale)
	assert.Equal(t, int64(600), info.AgeSeconds)
	assert.Equal(t, int64(3600), info.TTLSeconds)
}
