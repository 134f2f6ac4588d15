// internal/domain/cart/registry.go
package cart

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry materializes one engine per cart session, restoring the
// persisted snapshot on first use. Engines stay resident so the sync
// manager can drain their queues when connectivity returns.
type Registry struct {
	store    SnapshotStore
	newQueue func() MutationQueue
	online   func() bool
	logger   *logrus.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewRegistry creates an engine registry
func NewRegistry(store SnapshotStore, newQueue func() MutationQueue, online func() bool, logger *logrus.Logger) *Registry {
	return &Registry{
		store:    store,
		newQueue: newQueue,
		online:   online,
		logger:   logger,
		engines:  make(map[string]*Engine),
	}
}

// Get returns the engine for a session, creating and restoring it if
// needed. A snapshot that cannot be loaded is treated as absent: the
// engine starts empty rather than failing.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok := r.engines[sessionID]; ok {
		return engine, nil
	}

	engine := NewEngine(sessionID, r.store, r.newQueue(), r.online, r.logger)

	snap, err := r.store.Load(ctx, sessionID)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Could not load cart snapshot, starting empty")
		}
	} else if snap != nil {
		engine.Restore(snap)
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{
				"session_id": sessionID,
				"items":      len(snap.Items),
				"queued":     len(snap.SyncQueue),
			}).Info("Restored cart snapshot")
		}
	}

	r.engines[sessionID] = engine
	return engine, nil
}

// Range calls fn for every resident engine until fn returns false
func (r *Registry) Range(fn func(sessionID string, engine *Engine) bool) {
	r.mu.Lock()
	engines := make(map[string]*Engine, len(r.engines))
	for id, engine := range r.engines {
		engines[id] = engine
	}
	r.mu.Unlock()

	for id, engine := range engines {
		if !fn(id, engine) {
			return
		}
	}
}
