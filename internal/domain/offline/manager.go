// internal/domain/offline/manager.go
package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-engine/internal/domain/cart"
	"github.com/your-org/cart-engine/internal/domain/product"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
)

// DrainReport summarizes one drain pass over a session's queue
type DrainReport struct {
	SessionID   string        `json:"session_id"`
	Replayed    int           `json:"replayed"`
	Dropped     int           `json:"dropped"`
	Remaining   int           `json:"remaining"`
	Interrupted bool          `json:"interrupted"`
	Notices     []cart.Notice `json:"notices,omitempty"`
}

// Manager replays queued offline mutations against the product source
// when connectivity returns. Entries replay strictly FIFO, one at a
// time; a replay never blindly repeats the original effect but
// re-validates the item against current product truth.
type Manager struct {
	registry      *cart.Registry
	source        product.Source
	classifier    *syncerr.Classifier
	connectivity  *Connectivity
	maxRetries    int
	lookupTimeout time.Duration
	logger        *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewManager creates a sync manager. maxRetries bounds how many times a
// transiently failing entry stays pending before it is dropped;
// lookupTimeout bounds each Product Source call during replay (zero
// means no per-lookup deadline).
func NewManager(registry *cart.Registry, source product.Source, classifier *syncerr.Classifier, connectivity *Connectivity, maxRetries int, lookupTimeout time.Duration, logger *logrus.Logger) *Manager {
	return &Manager{
		registry:      registry,
		source:        source,
		classifier:    classifier,
		connectivity:  connectivity,
		maxRetries:    maxRetries,
		lookupTimeout: lookupTimeout,
		logger:        logger,
	}
}

// Start subscribes to the connectivity signal. The false→true transition
// triggers an automatic drain pass; the true→false transition interrupts
// a running one.
func (m *Manager) Start() {
	m.connectivity.Subscribe(func(online bool) {
		if online {
			go m.DrainAll(context.Background())
		} else {
			m.interrupt()
		}
	})
}

func (m *Manager) interrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

// DrainAll runs one drain pass over every resident engine with pending
// entries. Only one pass runs at a time.
func (m *Manager) DrainAll(ctx context.Context) []DrainReport {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return nil // a pass is already running
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	defer func() {
		cancel()
		m.mu.Lock()
		m.cancel = nil
		m.mu.Unlock()
	}()

	var reports []DrainReport
	m.registry.Range(func(sessionID string, engine *cart.Engine) bool {
		if engine.Queue().Len() == 0 {
			return true
		}
		report := m.Drain(ctx, engine)
		reports = append(reports, *report)
		return !report.Interrupted
	})

	return reports
}

// Drain replays one engine's queue in FIFO order. A connectivity drop or
// context cancellation stops the pass cleanly, leaving unprocessed
// entries untouched. Entries that fail transiently are skipped (retried
// on a later pass, up to the retry cap); permanent failures are dropped
// with a user-facing notice.
func (m *Manager) Drain(ctx context.Context, engine *cart.Engine) *DrainReport {
	report := &DrainReport{SessionID: engine.SessionID()}

	if err := engine.MarkSyncAttempt(ctx, time.Now()); err != nil && m.logger != nil {
		m.logger.WithField("error", err.Error()).Warn("Could not record sync attempt")
	}

	queue := engine.Queue()
	for _, entry := range queue.Entries() {
		if ctx.Err() != nil || !m.connectivity.Online() {
			report.Interrupted = true
			break
		}

		notices, err := m.replay(ctx, engine, entry)
		switch {
		case err == nil:
			queue.Remove(entry.ID)
			report.Replayed++
			report.Notices = append(report.Notices, notices...)

		case m.classifier.Retryable(err):
			if retries := queue.Bump(entry.ID); retries > m.maxRetries {
				queue.Remove(entry.ID)
				report.Dropped++
				report.Notices = append(report.Notices, dropNotice(entry, "retries exhausted"))
				m.logDrop(engine, entry, err, "retries exhausted")
			}
			// Otherwise the entry stays pending for a later pass; the
			// rest of the queue still gets its attempt.

		default:
			queue.Remove(entry.ID)
			report.Dropped++
			report.Notices = append(report.Notices, dropNotice(entry, err.Error()))
			m.logDrop(engine, entry, err, "permanent failure")
		}

		if err := engine.Persist(ctx); err != nil && m.logger != nil {
			m.logger.WithField("error", err.Error()).Warn("Could not persist queue state")
		}
	}

	if queue.Len() == 0 {
		if err := engine.ClearOfflineChanges(ctx); err != nil && m.logger != nil {
			m.logger.WithField("error", err.Error()).Warn("Could not clear offline flag")
		}
	}
	report.Remaining = queue.Len()

	if m.logger != nil {
		m.logger.WithFields(logrus.Fields{
			"session_id":  engine.SessionID(),
			"replayed":    report.Replayed,
			"dropped":     report.Dropped,
			"remaining":   report.Remaining,
			"interrupted": report.Interrupted,
		}).Info("Drain pass finished")
	}
	return report
}

// replay re-validates one queued mutation against current product truth.
// Quantity-bearing entries are re-clamped through the live engine rather
// than honored as originally queued. Remove and clear entries need no
// product source round-trip: their local effect is already the desired
// end state.
func (m *Manager) replay(ctx context.Context, engine *cart.Engine, entry cart.QueueEntry) ([]cart.Notice, error) {
	switch entry.Mutation.Type {
	case cart.MutationAdd, cart.MutationUpdateQuantity:
		lookupCtx, cancel := m.lookupContext(ctx)
		prod, err := m.source.GetByID(lookupCtx, entry.Mutation.ProductID)
		cancel()
		if err != nil {
			if m.classifier.Classify(err) == syncerr.CategoryNotFound {
				// Product vanished: resolved by removal, not retry
				_, notices, rerr := engine.ReconcileItem(ctx, cart.Refresh{ProductID: entry.Mutation.ProductID})
				if rerr != nil {
					return nil, rerr
				}
				return notices, nil
			}
			return nil, err
		}

		_, notices, err := engine.ReconcileItem(ctx, cart.Refresh{ProductID: prod.ID, Product: prod})
		return notices, err

	case cart.MutationRemove, cart.MutationClear:
		return nil, nil
	}

	return nil, syncerr.NewPermanent(syncerr.CategoryValidation,
		fmt.Errorf("unknown queued mutation type %q", entry.Mutation.Type))
}

func (m *Manager) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.lookupTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.lookupTimeout)
}

func (m *Manager) logDrop(engine *cart.Engine, entry cart.QueueEntry, err error, reason string) {
	if m.logger == nil {
		return
	}
	m.logger.WithFields(logrus.Fields{
		"session_id": engine.SessionID(),
		"entry_id":   entry.ID,
		"type":       entry.Mutation.Type,
		"product_id": entry.Mutation.ProductID,
		"retries":    entry.RetryCount,
		"reason":     reason,
		"error":      err.Error(),
	}).Warn("Dropped offline mutation")
}

func dropNotice(entry cart.QueueEntry, reason string) cart.Notice {
	return cart.Notice{
		Kind:      cart.NoticeMutationDropped,
		ProductID: entry.Mutation.ProductID,
		Message:   fmt.Sprintf("An offline %s change could not be synced (%s)", entry.Mutation.Type, reason),
	}
}
