// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"

	"github.com/your-org/cart-engine/internal/domain/pricing"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
)

// CartItem is one line in the cart, keyed by product id. It carries a
// snapshot of the product's pricing hierarchy so the effective price can
// be resolved without a catalog round-trip. Quantity is always in
// [1, Stock]; an item whose quantity would drop to zero is removed
// instead.
type CartItem struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`

	BasePrice              int64  `json:"base_price"`
	VariationPrice         int64  `json:"variation_price"`
	SeasonalDiscount       int64  `json:"seasonal_discount"`
	SeasonalDiscountType   string `json:"seasonal_discount_type"`
	SeasonalDiscountActive bool   `json:"seasonal_discount_active"`

	DealType  string `json:"deal_type,omitempty"`
	DealValue string `json:"deal_value,omitempty"`

	Stock int    `json:"stock"` // Last known authoritative stock
	Unit  string `json:"unit"`

	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnitPrice resolves the effective unit price through the pricing hierarchy
func (i *CartItem) UnitPrice() int64 {
	return pricing.ResolveUnitPrice(i.BasePrice, i.VariationPrice, pricing.Discount{
		Value:  i.SeasonalDiscount,
		Type:   pricing.DiscountType(i.SeasonalDiscountType),
		Active: i.SeasonalDiscountActive,
	})
}

// LineTotal returns the effective price for the full quantity, before
// deal savings
func (i *CartItem) LineTotal() int64 {
	return pricing.LineTotal(i.UnitPrice(), i.Quantity)
}

// Savings returns the promotional savings for this line
func (i *CartItem) Savings() int64 {
	deal := pricing.Deal{Type: pricing.DealType(i.DealType), Value: i.DealValue}
	return deal.Savings(i.UnitPrice(), i.Quantity)
}

// AppliedDeal describes one deal contributing to the cart's savings
type AppliedDeal struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	DealType  string `json:"deal_type"`
	Savings   int64  `json:"savings"`
}

// DealsSummary aggregates promotional savings across the cart
type DealsSummary struct {
	TotalSavings int64         `json:"total_savings"`
	Applied      []AppliedDeal `json:"applied"`
}

// Totals holds the cart's derived aggregates. They are recomputed on
// every mutation and never mutated independently.
type Totals struct {
	Total     int64        `json:"total"`      // Σ(line price − line savings)
	ItemCount int          `json:"item_count"` // Σ quantity
	Deals     DealsSummary `json:"deals"`
}

// NoticeKind classifies a user-facing cart notice
type NoticeKind string

const (
	NoticeQuantityClamped  NoticeKind = "quantity_clamped"
	NoticePriceChanged     NoticeKind = "price_changed"
	NoticeStockChanged     NoticeKind = "stock_changed"
	NoticeItemRemoved      NoticeKind = "item_removed"
	NoticeItemUnavailable  NoticeKind = "item_unavailable"
	NoticeMutationDropped  NoticeKind = "mutation_dropped"
	NoticeValidationFailed NoticeKind = "validation_failed"
)

// Notice is a structured, user-facing record of a change the engine made
// on its own authority (clamp, removal, price refresh, dropped replay).
// The engine never applies such a change silently.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	ProductID uint       `json:"product_id,omitempty"`
	Message   string     `json:"message"`
	OldValue  int64      `json:"old_value,omitempty"`
	NewValue  int64      `json:"new_value,omitempty"`
}

// MutationType tags the cart mutation variants
type MutationType string

const (
	MutationAdd            MutationType = "ADD"
	MutationRemove         MutationType = "REMOVE"
	MutationUpdateQuantity MutationType = "UPDATE_QUANTITY"
	MutationClear          MutationType = "CLEAR"
)

// Mutation is a tagged-variant cart mutation, validated at construction.
// Offline queue entries hold mutations by value so replay cannot be
// corrupted by later cart edits.
type Mutation struct {
	Type      MutationType `json:"type"`
	ProductID uint         `json:"product_id,omitempty"`
	Quantity  int          `json:"quantity,omitempty"`
}

// NewMutation constructs a validated mutation
func NewMutation(mutationType MutationType, productID uint, quantity int) (Mutation, error) {
	switch mutationType {
	case MutationAdd, MutationRemove, MutationUpdateQuantity:
		if productID == 0 {
			return Mutation{}, syncerr.New(syncerr.CategoryValidation,
				fmt.Errorf("%s mutation requires a product id", mutationType))
		}
	case MutationClear:
		// No payload
	default:
		return Mutation{}, syncerr.New(syncerr.CategoryValidation,
			fmt.Errorf("unknown mutation type %q", mutationType))
	}

	return Mutation{
		Type:      mutationType,
		ProductID: productID,
		Quantity:  quantity,
	}, nil
}

// QueueEntry is one offline mutation awaiting replay. IDs are monotonic
// within a queue; ordering is strictly FIFO.
type QueueEntry struct {
	ID         int64     `json:"id"`
	Mutation   Mutation  `json:"mutation"`
	Timestamp  time.Time `json:"timestamp"`
	RetryCount int       `json:"retry_count"`
}

// MutationQueue is the offline mutation queue as seen by the cart engine
// and the sync manager
type MutationQueue interface {
	Enqueue(m Mutation) QueueEntry
	Entries() []QueueEntry
	Restore(entries []QueueEntry)
	Remove(id int64)
	Bump(id int64) int
	Len() int
}

// Snapshot is the full persisted cart state: items, derived totals, the
// offline queue, and sync bookkeeping. Snapshots are written whole on
// every mutating operation, last writer wins.
type Snapshot struct {
	SessionID       string       `json:"session_id"`
	Items           []CartItem   `json:"items"`
	Totals          Totals       `json:"totals"`
	SyncQueue       []QueueEntry `json:"sync_queue"`
	OfflineChanges  bool         `json:"offline_changes"`
	LastSyncAttempt *time.Time   `json:"last_sync_attempt,omitempty"`
	SavedAt         time.Time    `json:"saved_at"`
}
