// internal/domain/offline/connectivity.go
package offline

import "sync"

// Connectivity is the online/offline observable the sync manager and the
// cart engines consult. The false→true transition is the sole trigger
// for an automatic drain pass.
type Connectivity struct {
	mu          sync.Mutex
	online      bool
	subscribers []func(online bool)
}

// NewConnectivity creates a connectivity signal with an initial state
func NewConnectivity(online bool) *Connectivity {
	return &Connectivity{online: online}
}

// Online reports the current state
func (c *Connectivity) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Subscribe registers a callback invoked on every state transition
func (c *Connectivity) Subscribe(fn func(online bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Set updates the state, notifying subscribers only on actual transitions
func (c *Connectivity) Set(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	subscribers := append([]func(bool){}, c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(online)
	}
}
