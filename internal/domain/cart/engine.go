// internal/domain/cart/engine.go
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-engine/internal/domain/product"
)

// Engine is the cart aggregate for one session. It exclusively owns the
// item collection and the derived totals: every mutation recomputes the
// totals under the same lock before the new state becomes visible, so no
// partially-updated cart is ever observable. Mutations issued while the
// connectivity signal reports offline are additionally captured on the
// mutation queue for later replay.
type Engine struct {
	mu              sync.Mutex
	sessionID       string
	items           []CartItem // insertion order preserved for display
	totals          Totals
	offlineChanges  bool
	lastSyncAttempt *time.Time

	store  SnapshotStore
	queue  MutationQueue
	online func() bool
	logger *logrus.Logger

	subscribers []func(Snapshot)
}

// Refresh carries fresh product truth into the aggregate during
// reconciliation or queue replay. A nil Product means the catalog no
// longer recognizes the id.
type Refresh struct {
	ProductID uint
	Product   *product.Product
}

// ValidationResult reports what reconciliation found for one item. It is
// transient: consumed by the caller to inform the user, never persisted.
type ValidationResult struct {
	ProductID    uint  `json:"product_id"`
	OldPrice     int64 `json:"old_price"`
	NewPrice     int64 `json:"new_price"`
	OldStock     int   `json:"old_stock"`
	NewStock     int   `json:"new_stock"`
	PriceChanged bool  `json:"price_changed"`
	StockChanged bool  `json:"stock_changed"`
	Unavailable  bool  `json:"unavailable"`
}

// NewEngine creates a cart engine. The online callback is consulted on
// every mutation to decide whether to queue it for replay.
func NewEngine(sessionID string, store SnapshotStore, queue MutationQueue, online func() bool, logger *logrus.Logger) *Engine {
	return &Engine{
		sessionID: sessionID,
		store:     store,
		queue:     queue,
		online:    online,
		logger:    logger,
	}
}

// SessionID returns the session this engine is bound to
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Queue exposes the offline mutation queue for the sync manager
func (e *Engine) Queue() MutationQueue {
	return e.queue
}

// Subscribe registers a callback invoked with the new snapshot after
// every state change
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// Restore loads a previously persisted snapshot into the engine. Totals
// are recomputed rather than trusted from storage.
func (e *Engine) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = append([]CartItem(nil), snap.Items...)
	e.offlineChanges = snap.OfflineChanges
	e.lastSyncAttempt = snap.LastSyncAttempt
	e.queue.Restore(snap.SyncQueue)
	e.recomputeLocked()
}

// AddItem adds one unit of the given product. If the item already exists
// its quantity grows by 1, capped at the current stock (a no-op with a
// notice when already at the cap), and its pricing fields are refreshed
// from the incoming product snapshot.
func (e *Engine) AddItem(ctx context.Context, prod *product.Product) (Snapshot, []Notice, error) {
	mutation, err := NewMutation(MutationAdd, prod.ID, 1)
	if err != nil {
		return e.CurrentSnapshot(), nil, err
	}

	e.mu.Lock()
	var notices []Notice
	changed := false
	now := time.Now().UTC()

	if idx := e.indexOfLocked(prod.ID); idx >= 0 {
		item := &e.items[idx]
		refreshPricing(item, prod)

		want := item.Quantity + 1
		got := clampQuantity(want, prod.Stock)
		if got < 1 {
			notices = append(notices, Notice{
				Kind:      NoticeItemUnavailable,
				ProductID: prod.ID,
				Message:   fmt.Sprintf("%s is out of stock and was removed from the cart", item.Name),
			})
			e.removeAtLocked(idx)
		} else {
			if got != want {
				notices = append(notices, Notice{
					Kind:      NoticeQuantityClamped,
					ProductID: prod.ID,
					Message:   fmt.Sprintf("Only %d of %s in stock", prod.Stock, item.Name),
					OldValue:  int64(want),
					NewValue:  int64(got),
				})
			}
			item.Quantity = got
			item.UpdatedAt = now
		}
		changed = true
	} else {
		if prod.Stock < 1 {
			notices = append(notices, Notice{
				Kind:      NoticeItemUnavailable,
				ProductID: prod.ID,
				Message:   fmt.Sprintf("%s is out of stock", prod.Name),
			})
		} else {
			item := CartItem{
				ProductID: prod.ID,
				Name:      prod.Name,
				Quantity:  1,
				Unit:      prod.Unit,
				AddedAt:   now,
				UpdatedAt: now,
			}
			refreshPricing(&item, prod)
			e.items = append(e.items, item)
			changed = true
		}
	}

	snap, err := e.commitLocked(ctx, mutation, changed)
	e.mu.Unlock()

	if changed {
		e.notify(snap)
	}
	return snap, notices, err
}

// RemoveItem deletes the item unconditionally. Removing an absent id is
// a no-op, not an error.
func (e *Engine) RemoveItem(ctx context.Context, productID uint) (Snapshot, []Notice, error) {
	mutation, err := NewMutation(MutationRemove, productID, 0)
	if err != nil {
		return e.CurrentSnapshot(), nil, err
	}

	e.mu.Lock()
	changed := false
	if idx := e.indexOfLocked(productID); idx >= 0 {
		e.removeAtLocked(idx)
		changed = true
	}

	snap, err := e.commitLocked(ctx, mutation, changed)
	e.mu.Unlock()

	if changed {
		e.notify(snap)
	}
	return snap, nil, err
}

// UpdateQuantity sets the item's quantity to min(n, stock). A quantity
// of zero or less behaves exactly like RemoveItem.
func (e *Engine) UpdateQuantity(ctx context.Context, productID uint, quantity int) (Snapshot, []Notice, error) {
	mutation, err := NewMutation(MutationUpdateQuantity, productID, quantity)
	if err != nil {
		return e.CurrentSnapshot(), nil, err
	}

	e.mu.Lock()
	var notices []Notice
	changed := false

	if idx := e.indexOfLocked(productID); idx >= 0 {
		if quantity <= 0 {
			e.removeAtLocked(idx)
			changed = true
		} else {
			item := &e.items[idx]
			got := clampQuantity(quantity, item.Stock)
			if got != quantity {
				notices = append(notices, Notice{
					Kind:      NoticeQuantityClamped,
					ProductID: productID,
					Message:   fmt.Sprintf("Only %d of %s in stock", item.Stock, item.Name),
					OldValue:  int64(quantity),
					NewValue:  int64(got),
				})
			}
			if got != item.Quantity {
				item.Quantity = got
				item.UpdatedAt = time.Now().UTC()
				changed = true
			}
		}
	}

	snap, err := e.commitLocked(ctx, mutation, changed)
	e.mu.Unlock()

	if changed {
		e.notify(snap)
	}
	return snap, notices, err
}

// Clear empties the item collection
func (e *Engine) Clear(ctx context.Context) (Snapshot, []Notice, error) {
	mutation, err := NewMutation(MutationClear, 0, 0)
	if err != nil {
		return e.CurrentSnapshot(), nil, err
	}

	e.mu.Lock()
	changed := len(e.items) > 0
	e.items = nil

	snap, err := e.commitLocked(ctx, mutation, changed)
	e.mu.Unlock()

	if changed {
		e.notify(snap)
	}
	return snap, nil, err
}

// ApplyValidation pushes fresh product truth into the aggregate. Items
// whose product vanished are removed; price and stock fields are
// refreshed; quantities above the new stock are clamped. Totals are
// recomputed once after all refreshes, not per item.
func (e *Engine) ApplyValidation(ctx context.Context, refreshes []Refresh) (Snapshot, []ValidationResult, []Notice, error) {
	e.mu.Lock()
	var results []ValidationResult
	var notices []Notice
	changed := false

	for _, refresh := range refreshes {
		idx := e.indexOfLocked(refresh.ProductID)
		if idx < 0 {
			continue
		}
		item := &e.items[idx]

		// Vanished or out of stock: resolved by removal, not retry
		if refresh.Product == nil || refresh.Product.Stock < 1 {
			results = append(results, ValidationResult{
				ProductID:   refresh.ProductID,
				OldPrice:    item.UnitPrice(),
				OldStock:    item.Stock,
				Unavailable: true,
			})
			notices = append(notices, Notice{
				Kind:      NoticeItemUnavailable,
				ProductID: refresh.ProductID,
				Message:   fmt.Sprintf("%s is no longer available and was removed from the cart", item.Name),
			})
			e.removeAtLocked(idx)
			changed = true
			continue
		}

		prod := refresh.Product
		result := ValidationResult{
			ProductID: prod.ID,
			OldPrice:  item.UnitPrice(),
			OldStock:  item.Stock,
			NewPrice:  prod.EffectiveUnitPrice(),
			NewStock:  prod.Stock,
		}
		result.PriceChanged = result.NewPrice != result.OldPrice
		result.StockChanged = result.NewStock != result.OldStock

		refreshPricing(item, prod)

		if result.PriceChanged {
			notices = append(notices, Notice{
				Kind:      NoticePriceChanged,
				ProductID: prod.ID,
				Message:   fmt.Sprintf("Price of %s changed", item.Name),
				OldValue:  result.OldPrice,
				NewValue:  result.NewPrice,
			})
			changed = true
		}
		if result.StockChanged {
			notices = append(notices, Notice{
				Kind:      NoticeStockChanged,
				ProductID: prod.ID,
				Message:   fmt.Sprintf("Stock of %s changed", item.Name),
				OldValue:  int64(result.OldStock),
				NewValue:  int64(result.NewStock),
			})
			changed = true
		}

		if item.Quantity > prod.Stock {
			clamped := clampQuantity(item.Quantity, prod.Stock)
			notices = append(notices, Notice{
				Kind:      NoticeQuantityClamped,
				ProductID: prod.ID,
				Message:   fmt.Sprintf("Only %d of %s in stock", prod.Stock, item.Name),
				OldValue:  int64(item.Quantity),
				NewValue:  int64(clamped),
			})
			item.Quantity = clamped
			item.UpdatedAt = time.Now().UTC()
			changed = true
		}

		results = append(results, result)
	}

	// Reconciliation is not a caller mutation: nothing is queued, but the
	// refreshed state is persisted like any other change.
	snap, err := e.commitLocked(ctx, Mutation{}, false)
	e.mu.Unlock()

	if changed {
		e.notify(snap)
	}
	return snap, results, notices, err
}

// ReconcileItem refreshes a single item from fresh product truth. Used
// by queue replay to re-validate instead of blindly replaying the
// original effect.
func (e *Engine) ReconcileItem(ctx context.Context, refresh Refresh) (Snapshot, []Notice, error) {
	snap, _, notices, err := e.ApplyValidation(ctx, []Refresh{refresh})
	return snap, notices, err
}

// MarkSyncAttempt records when a drain pass last ran and persists the
// bookkeeping
func (e *Engine) MarkSyncAttempt(ctx context.Context, at time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	at = at.UTC()
	e.lastSyncAttempt = &at
	return e.persistLocked(ctx)
}

// ClearOfflineChanges resets the offline flag once the queue has fully
// drained
func (e *Engine) ClearOfflineChanges(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.offlineChanges = false
	return e.persistLocked(ctx)
}

// Persist writes the current snapshot. The sync manager calls this after
// queue bookkeeping changes.
func (e *Engine) Persist(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistLocked(ctx)
}

// Items returns a copy of the item collection in insertion order
func (e *Engine) Items() []CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]CartItem(nil), e.items...)
}

// Totals returns the current derived totals
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totals
}

// OfflineChanges reports whether unreplayed offline mutations exist
func (e *Engine) OfflineChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offlineChanges
}

// CurrentSnapshot returns a copy of the full engine state
func (e *Engine) CurrentSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Internal helpers. All assume the engine lock is held.

func (e *Engine) indexOfLocked(productID uint) int {
	for i := range e.items {
		if e.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) removeAtLocked(idx int) {
	e.items = append(e.items[:idx], e.items[idx+1:]...)
}

func (e *Engine) recomputeLocked() {
	totals := Totals{}
	for i := range e.items {
		item := &e.items[i]
		savings := item.Savings()

		totals.Total += item.LineTotal() - savings
		totals.ItemCount += item.Quantity

		if savings > 0 {
			totals.Deals.TotalSavings += savings
			totals.Deals.Applied = append(totals.Deals.Applied, AppliedDeal{
				ProductID: item.ProductID,
				Name:      item.Name,
				DealType:  item.DealType,
				Savings:   savings,
			})
		}
	}
	e.totals = totals
}

// commitLocked recomputes totals, queues the mutation when offline, and
// persists the snapshot. The zero Mutation (reconciliation) is never
// queued.
func (e *Engine) commitLocked(ctx context.Context, mutation Mutation, changed bool) (Snapshot, error) {
	e.recomputeLocked()

	if changed && mutation.Type != "" && !e.isOnline() {
		entry := e.queue.Enqueue(mutation)
		e.offlineChanges = true
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"session_id": e.sessionID,
				"entry_id":   entry.ID,
				"type":       mutation.Type,
				"product_id": mutation.ProductID,
			}).Info("Queued offline mutation")
		}
	}

	err := e.persistLocked(ctx)
	return e.snapshotLocked(), err
}

func (e *Engine) isOnline() bool {
	return e.online == nil || e.online()
}

func (e *Engine) persistLocked(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	snap := e.snapshotLocked()
	if err := e.store.Save(ctx, &snap); err != nil {
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"session_id": e.sessionID,
				"error":      err.Error(),
			}).Error("Failed to persist cart snapshot")
		}
		return fmt.Errorf("failed to persist cart snapshot: %w", err)
	}
	return nil
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:       e.sessionID,
		Items:           append([]CartItem(nil), e.items...),
		Totals:          e.totals,
		SyncQueue:       e.queue.Entries(),
		OfflineChanges:  e.offlineChanges,
		LastSyncAttempt: e.lastSyncAttempt,
		SavedAt:         time.Now().UTC(),
	}
}

func (e *Engine) notify(snap Snapshot) {
	e.mu.Lock()
	subscribers := append([]func(Snapshot){}, e.subscribers...)
	e.mu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

func refreshPricing(item *CartItem, prod *product.Product) {
	item.Name = prod.Name
	item.BasePrice = prod.BasePrice
	item.VariationPrice = prod.VariationPrice
	item.SeasonalDiscount = prod.SeasonalDiscount
	item.SeasonalDiscountType = prod.SeasonalDiscountType
	item.SeasonalDiscountActive = prod.SeasonalDiscountActive
	item.DealType = prod.DealType
	item.DealValue = prod.DealValue
	item.Stock = prod.Stock
	item.Unit = prod.Unit
}

func clampQuantity(quantity, stock int) int {
	if quantity > stock {
		quantity = stock
	}
	if quantity < 1 {
		return 0
	}
	return quantity
}
