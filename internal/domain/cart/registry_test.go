package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	stubStore
}

func (s *failingStore) Load(_ context.Context, _ string) (*Snapshot, error) {
	return nil, errors.New("redis unavailable")
}

func newTestRegistry(store SnapshotStore) *Registry {
	return NewRegistry(store, func() MutationQueue { return &stubQueue{} }, func() bool { return true }, nil)
}

func TestRegistry_SameEngineForSameSession(t *testing.T) {
	registry := newTestRegistry(&stubStore{})
	ctx := context.Background()

	first, err := registry.Get(ctx, "s1")
	require.NoError(t, err)
	second, err := registry.Get(ctx, "s1")
	require.NoError(t, err)
	other, err := registry.Get(ctx, "s2")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestRegistry_RestoresPersistedSnapshot(t *testing.T) {
	store := &stubStore{}
	store.last = &Snapshot{
		SessionID: "s1",
		Items: []CartItem{
			{ProductID: 1, Name: "A", Quantity: 2, BasePrice: 500, Stock: 10},
		},
	}

	registry := newTestRegistry(store)
	engine, err := registry.Get(context.Background(), "s1")
	require.NoError(t, err)

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(1000), engine.Totals().Total)
}

func TestRegistry_LoadFailureStartsEmpty(t *testing.T) {
	registry := newTestRegistry(&failingStore{})

	engine, err := registry.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, engine.Items())
}

func TestRegistry_RangeVisitsResidentEngines(t *testing.T) {
	registry := newTestRegistry(&stubStore{})
	ctx := context.Background()

	_, err := registry.Get(ctx, "s1")
	require.NoError(t, err)
	_, err = registry.Get(ctx, "s2")
	require.NoError(t, err)

	visited := make(map[string]bool)
	registry.Range(func(sessionID string, _ *Engine) bool {
		visited[sessionID] = true
		return true
	})
	assert.Len(t, visited, 2)

	// Returning false stops the walk
	count := 0
	registry.Range(func(string, *Engine) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}
