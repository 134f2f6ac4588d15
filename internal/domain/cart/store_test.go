package cart

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements redisCommands over a plain map
type fakeRedis struct {
	values map[string]string
	dels   []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	val, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.values, key)
		f.dels = append(f.dels, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisStore_SaveLoadRoundTrip(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStore(client, time.Hour, time.Hour, nil)
	ctx := context.Background()

	snap := &Snapshot{
		SessionID: "s1",
		Items: []CartItem{
			{ProductID: 1, Name: "A", Quantity: 2, BasePrice: 500, Stock: 10},
		},
		SavedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "s1", loaded.SessionID)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
}

func TestRedisStore_LoadAbsentSnapshot(t *testing.T) {
	store := NewRedisStore(newFakeRedis(), time.Hour, time.Hour, nil)

	loaded, err := store.Load(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_CorruptSnapshotDiscarded(t *testing.T) {
	client := newFakeRedis()
	client.values[snapshotKey("s1")] = "{not json"
	store := NewRedisStore(client, time.Hour, time.Hour, nil)

	// Corruption is reported as absence, never as an error
	loaded, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// The broken record is removed so it is never parsed again
	assert.Contains(t, client.dels, snapshotKey("s1"))
	assert.NotContains(t, client.values, snapshotKey("s1"))
}

func TestRedisStore_StaleSnapshotDiscarded(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStore(client, time.Hour, 7*24*time.Hour, nil)
	ctx := context.Background()

	snap := &Snapshot{
		SessionID: "s1",
		SavedAt:   time.Now().UTC().Add(-8 * 24 * time.Hour),
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.Contains(t, client.dels, snapshotKey("s1"))
}

func TestRedisStore_Delete(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStore(client, time.Hour, time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Snapshot{SessionID: "s1", SavedAt: time.Now().UTC()}))
	require.NoError(t, store.Delete(ctx, "s1"))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSnapshotStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	weekAgo := 7 * 24 * time.Hour

	// Fresh snapshot is trusted
	assert.False(t, snapshotStale(now.Add(-time.Hour), weekAgo, now))

	// Exactly at the ceiling is still trusted
	assert.False(t, snapshotStale(now.Add(-weekAgo), weekAgo, now))

	// Past the ceiling is discarded
	assert.True(t, snapshotStale(now.Add(-weekAgo-time.Second), weekAgo, now))

	// A zero timestamp is never trusted
	assert.True(t, snapshotStale(time.Time{}, weekAgo, now))

	// No ceiling configured means age is never checked
	assert.False(t, snapshotStale(now.Add(-1000*time.Hour), 0, now))
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "cart:snapshot:abc-123", snapshotKey("abc-123"))
}
