// internal/domain/pricing/deal.go
package pricing

import (
	"strconv"
	"strings"
)

// DealType identifies a promotional deal attached to a product.
// An item carries at most one deal; deals compound with the resolved
// unit price, never with each other.
type DealType string

const (
	DealBOGO   DealType = "bogo"
	DealBundle DealType = "bundle"
)

// Deal describes a promotional deal. Value is only meaningful for
// bundle deals and holds the ratio descriptor, e.g. "3 for 2".
type Deal struct {
	Type  DealType `json:"type"`
	Value string   `json:"value,omitempty"`
}

// Savings returns the promotional savings for quantity units at the
// resolved unit price. The result is always in [0, unitPrice*quantity].
// Unknown deal types and malformed bundle descriptors yield zero savings.
func (d Deal) Savings(unitPrice int64, quantity int) int64 {
	if unitPrice <= 0 || quantity <= 0 {
		return 0
	}

	switch d.Type {
	case DealBOGO:
		// Every second unit is free
		if quantity < 2 {
			return 0
		}
		freeUnits := quantity / 2
		return int64(freeUnits) * unitPrice

	case DealBundle:
		buy, pay, ok := parseBundle(d.Value)
		if !ok || quantity < buy {
			return 0
		}
		sets := quantity / buy
		freePerSet := buy - pay
		return int64(sets*freePerSet) * unitPrice
	}

	return 0
}

// Active reports whether the deal applies at the given quantity
func (d Deal) Active(quantity int) bool {
	switch d.Type {
	case DealBOGO:
		return quantity >= 2
	case DealBundle:
		buy, _, ok := parseBundle(d.Value)
		return ok && quantity >= buy
	}
	return false
}

// parseBundle parses an "X for Y" descriptor. It requires X > Y > 0.
func parseBundle(value string) (buy, pay int, ok bool) {
	parts := strings.Split(strings.ToLower(value), "for")
	if len(parts) != 2 {
		return 0, 0, false
	}

	buy, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	pay, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}

	if pay <= 0 || buy <= pay {
		return 0, 0, false
	}
	return buy, pay, true
}
