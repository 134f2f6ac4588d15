package offline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	testWait = 2 * time.Second
	testTick = 10 * time.Millisecond
)

func TestConnectivity_InitialState(t *testing.T) {
	assert.True(t, NewConnectivity(true).Online())
	assert.False(t, NewConnectivity(false).Online())
}

func TestConnectivity_NotifiesOnTransitionOnly(t *testing.T) {
	connectivity := NewConnectivity(false)

	var mu sync.Mutex
	var seen []bool
	connectivity.Subscribe(func(online bool) {
		mu.Lock()
		seen = append(seen, online)
		mu.Unlock()
	})

	connectivity.Set(false) // no transition
	connectivity.Set(true)
	connectivity.Set(true) // no transition
	connectivity.Set(false)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, seen)
}

func TestConnectivity_MultipleSubscribers(t *testing.T) {
	connectivity := NewConnectivity(false)

	calls := 0
	connectivity.Subscribe(func(bool) { calls++ })
	connectivity.Subscribe(func(bool) { calls++ })

	connectivity.Set(true)
	assert.Equal(t, 2, calls)
}
