// internal/domain/pricing/resolver.go
package pricing

// All monetary values are int64 minor units (cents). Percentage discounts
// round half-up at the minor unit; this is the single rounding rule used
// across the engine.

// DiscountType distinguishes percentage from fixed-amount seasonal discounts
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount describes an optional seasonal discount on top of the
// resolved base/variation price
type Discount struct {
	Value  int64        `json:"value"`
	Type   DiscountType `json:"type"`
	Active bool         `json:"active"`
}

// ResolveUnitPrice computes the effective unit price for an item through
// the three-tier hierarchy: base price, then variation override, then
// seasonal discount. The result is never negative. Malformed inputs
// (negative prices, negative discount values, unknown discount types)
// are coerced to "no effect" rather than failing; a broken price must
// never corrupt the whole cart.
func ResolveUnitPrice(basePrice, variationPrice int64, discount Discount) int64 {
	price := basePrice
	if price < 0 {
		price = 0
	}

	// Tier 2: a positive variation price replaces the base price
	if variationPrice > 0 {
		price = variationPrice
	}

	// Tier 3: seasonal discount on top of the tier-2 result
	if discount.Active && discount.Value > 0 {
		switch discount.Type {
		case DiscountPercentage:
			price -= (price*discount.Value + 50) / 100
		case DiscountFixed:
			price -= discount.Value
		}
	}

	if price < 0 {
		price = 0
	}
	return price
}

// LineTotal returns the effective price for quantity units
func LineTotal(unitPrice int64, quantity int) int64 {
	if unitPrice < 0 || quantity <= 0 {
		return 0
	}
	return unitPrice * int64(quantity)
}
