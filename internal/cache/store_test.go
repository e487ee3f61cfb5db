package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"walrus-backend/internal/database"
	"walrus-backend/internal/models"
)

var baseTime = time.Date(2025, 2, 11, 12, 0, 0, 0, time.UTC)

func setupCachedStore(t *testing.T) (*miniredis.Miniredis, *database.MemoryStore, *Store, *time.Time) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := baseTime
	inner := database.NewMemoryStore(database.WithMemoryClock(func() time.Time { return now }))
	store := NewStore(inner, NewRedisKVStore(client), time.Minute, zap.NewNop())

	return mr, inner, store, &now
}

func latestFilter(deviceID string) database.QueryFilter {
	return database.QueryFilter{DeviceID: deviceID, Order: database.Descending, Limit: 1}
}

// cachedReading decodes the raw Redis entry for a device
func cachedReading(t *testing.T, mr *miniredis.Miniredis, deviceID string) *models.Reading {
	t.Helper()

	raw, err := mr.Get(latestKeyPrefix + deviceID)
	require.NoError(t, err)
	_, data, ok := strings.Cut(raw, versionSep)
	require.True(t, ok, "cache entry has no version: %q", raw)

	var cached models.Reading
	require.NoError(t, json.Unmarshal([]byte(data), &cached))
	return &cached
}

func TestStore_AppendPopulatesCache(t *testing.T) {
	mr, _, store, _ := setupCachedStore(t)
	ctx := context.Background()

	stored, err := store.Append(ctx, &models.Reading{DeviceID: "WALRUS_001", TDSPPM: models.Int(245)})
	require.NoError(t, err)

	cached := cachedReading(t, mr, "WALRUS_001")
	assert.Equal(t, stored.ID, cached.ID)
	assert.Equal(t, 245, *cached.TDSPPM)
	assert.True(t, mr.TTL(latestKeyPrefix+"WALRUS_001") > 0)
}

func TestStore_LatestServedFromCache(t *testing.T) {
	mr, _, store, _ := setupCachedStore(t)

	// A cache entry the inner store has never seen proves the lookup hit Redis
	r := &models.Reading{ID: "cached", DeviceID: "WALRUS_001", CreatedAt: baseTime}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.NoError(t, mr.Set(latestKeyPrefix+"WALRUS_001", version(r)+versionSep+string(data)))

	got, err := store.Query(context.Background(), latestFilter("WALRUS_001"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cached", got[0].ID)
}

func TestStore_MissFallsBackAndFills(t *testing.T) {
	mr, inner, store, _ := setupCachedStore(t)
	ctx := context.Background()

	stored, err := inner.Append(ctx, &models.Reading{DeviceID: "WALRUS_001"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(latestKeyPrefix+"WALRUS_001"))

	got, err := store.Query(ctx, latestFilter("WALRUS_001"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stored.ID, got[0].ID)
	assert.True(t, mr.Exists(latestKeyPrefix+"WALRUS_001"))
}

func TestStore_RedisDownFallsBackToInner(t *testing.T) {
	mr, _, store, _ := setupCachedStore(t)
	ctx := context.Background()

	mr.Close()

	stored, err := store.Append(ctx, &models.Reading{DeviceID: "WALRUS_001"})
	require.NoError(t, err)

	got, err := store.Query(ctx, latestFilter("WALRUS_001"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stored.ID, got[0].ID)
}

func TestStore_OlderReadingDoesNotReplaceNewer(t *testing.T) {
	mr, _, store, _ := setupCachedStore(t)
	ctx := context.Background()

	newer := &models.Reading{ID: "b", DeviceID: "WALRUS_001", CreatedAt: baseTime.Add(time.Minute)}
	older := &models.Reading{ID: "a", DeviceID: "WALRUS_001", CreatedAt: baseTime}

	store.put(ctx, newer)
	store.put(ctx, older)

	assert.Equal(t, "b", cachedReading(t, mr, "WALRUS_001").ID)
}

func TestStore_SameInstantOrdersByID(t *testing.T) {
	mr, _, store, _ := setupCachedStore(t)
	ctx := context.Background()

	store.put(ctx, &models.Reading{ID: "b", DeviceID: "WALRUS_001", CreatedAt: baseTime})
	store.put(ctx, &models.Reading{ID: "a", DeviceID: "WALRUS_001", CreatedAt: baseTime})

	assert.Equal(t, "b", cachedReading(t, mr, "WALRUS_001").ID)
}

func TestStore_ConcurrentPutsKeepNewest(t *testing.T) {
	mr, _, store, _ := setupCachedStore(t)
	ctx := context.Background()

	const writers = 50
	readings := make([]*models.Reading, writers)
	for i := range readings {
		readings[i] = &models.Reading{
			ID:        fmt.Sprintf("r%02d", i),
			DeviceID:  "WALRUS_001",
			CreatedAt: baseTime.Add(time.Duration(i) * time.Millisecond),
		}
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	// Oldest writers are released last so they race the newest entry
	for i := writers - 1; i >= 0; i-- {
		wg.Add(1)
		go func(r *models.Reading) {
			defer wg.Done()
			<-start
			store.put(ctx, r)
		}(readings[i])
	}
	close(start)
	wg.Wait()

	assert.Equal(t, "r49", cachedReading(t, mr, "WALRUS_001").ID)
}

func TestRedisKVStore_SetIfNewer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	kv := NewRedisKVStore(client)
	ctx := context.Background()

	written, err := kv.SetIfNewer(ctx, "k", "002", "second", time.Minute)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = kv.SetIfNewer(ctx, "k", "001", "first", time.Minute)
	require.NoError(t, err)
	assert.False(t, written)

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	written, err = kv.SetIfNewer(ctx, "k", "003", "third", 0)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, time.Duration(0), mr.TTL("k"))

	_, err = kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisKVStore_UnversionedEntryIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	kv := NewRedisKVStore(client)

	require.NoError(t, mr.Set("k", `{"id":"legacy"}`))

	_, err := kv.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	written, err := kv.SetIfNewer(context.Background(), "k", "001", "fresh", time.Minute)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestStore_WindowQueriesBypassCache(t *testing.T) {
	_, _, store, now := setupCachedStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, &models.Reading{DeviceID: "WALRUS_001"})
		require.NoError(t, err)
		*now = now.Add(time.Second)
	}

	since := baseTime
	got, err := store.Query(ctx, database.QueryFilter{DeviceID: "WALRUS_001", Since: &since})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	all, err := store.Query(ctx, database.QueryFilter{Order: database.Descending, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
