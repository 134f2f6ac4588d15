package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/cart-engine/internal/domain/cart"
)

func mustMutation(t *testing.T, mutationType cart.MutationType, productID uint, quantity int) cart.Mutation {
	t.Helper()
	m, err := cart.NewMutation(mutationType, productID, quantity)
	require.NoError(t, err)
	return m
}

func TestQueue_FIFOOrder(t *testing.T) {
	queue := NewQueue()

	first := queue.Enqueue(mustMutation(t, cart.MutationAdd, 1, 1))
	second := queue.Enqueue(mustMutation(t, cart.MutationAdd, 2, 1))
	third := queue.Enqueue(mustMutation(t, cart.MutationRemove, 1, 0))

	entries := queue.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, third.ID, entries[2].ID)

	// IDs are strictly increasing
	assert.Less(t, first.ID, second.ID)
	assert.Less(t, second.ID, third.ID)
}

func TestQueue_Remove(t *testing.T) {
	queue := NewQueue()
	first := queue.Enqueue(mustMutation(t, cart.MutationAdd, 1, 1))
	second := queue.Enqueue(mustMutation(t, cart.MutationAdd, 2, 1))

	queue.Remove(first.ID)

	entries := queue.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)

	// Removing an unknown id is a no-op
	queue.Remove(999)
	assert.Equal(t, 1, queue.Len())
}

func TestQueue_Bump(t *testing.T) {
	queue := NewQueue()
	entry := queue.Enqueue(mustMutation(t, cart.MutationAdd, 1, 1))

	assert.Equal(t, 1, queue.Bump(entry.ID))
	assert.Equal(t, 2, queue.Bump(entry.ID))
	assert.Equal(t, 2, queue.Entries()[0].RetryCount)

	// Bumping an unknown id reports zero
	assert.Equal(t, 0, queue.Bump(999))
}

func TestQueue_RestoreRecoversIDSequence(t *testing.T) {
	queue := NewQueue()
	queue.Enqueue(mustMutation(t, cart.MutationAdd, 1, 1))
	persisted := queue.Entries()

	restored := NewQueue()
	restored.Restore(persisted)
	assert.Equal(t, 1, restored.Len())

	// New entries keep ids above the restored ones
	next := restored.Enqueue(mustMutation(t, cart.MutationAdd, 2, 1))
	assert.Greater(t, next.ID, persisted[0].ID)
}

func TestQueue_RestoreReplacesContents(t *testing.T) {
	queue := NewQueue()
	queue.Enqueue(mustMutation(t, cart.MutationAdd, 1, 1))
	queue.Enqueue(mustMutation(t, cart.MutationAdd, 2, 1))

	queue.Restore(nil)
	assert.Equal(t, 0, queue.Len())
}

func TestQueue_EntriesReturnsCopy(t *testing.T) {
	queue := NewQueue()
	queue.Enqueue(mustMutation(t, cart.MutationAdd, 1, 1))

	entries := queue.Entries()
	entries[0].RetryCount = 99

	assert.Equal(t, 0, queue.Entries()[0].RetryCount)
}
