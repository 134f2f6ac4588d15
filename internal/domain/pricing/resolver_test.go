package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUnitPrice_BasePriceOnly(t *testing.T) {
	price := ResolveUnitPrice(10000, 0, Discount{})
	assert.Equal(t, int64(10000), price)
}

func TestResolveUnitPrice_VariationOverridesBase(t *testing.T) {
	price := ResolveUnitPrice(10000, 8000, Discount{})
	assert.Equal(t, int64(8000), price)
}

func TestResolveUnitPrice_ZeroVariationKeepsBase(t *testing.T) {
	price := ResolveUnitPrice(10000, 0, Discount{})
	assert.Equal(t, int64(10000), price)

	price = ResolveUnitPrice(10000, -500, Discount{})
	assert.Equal(t, int64(10000), price)
}

func TestResolveUnitPrice_PercentageDiscountOnVariation(t *testing.T) {
	// 10% off the variation price, not the base price
	price := ResolveUnitPrice(10000, 8000, Discount{
		Value:  10,
		Type:   DiscountPercentage,
		Active: true,
	})
	assert.Equal(t, int64(7200), price)
}

func TestResolveUnitPrice_PercentageRoundsHalfUp(t *testing.T) {
	// 15% of 999 = 149.85, rounds to 150
	price := ResolveUnitPrice(999, 0, Discount{
		Value:  15,
		Type:   DiscountPercentage,
		Active: true,
	})
	assert.Equal(t, int64(849), price)

	// 10% of 5 = 0.5, rounds to 1
	price = ResolveUnitPrice(5, 0, Discount{
		Value:  10,
		Type:   DiscountPercentage,
		Active: true,
	})
	assert.Equal(t, int64(4), price)
}

func TestResolveUnitPrice_FixedDiscount(t *testing.T) {
	price := ResolveUnitPrice(10000, 0, Discount{
		Value:  2500,
		Type:   DiscountFixed,
		Active: true,
	})
	assert.Equal(t, int64(7500), price)
}

func TestResolveUnitPrice_FixedDiscountFloorsAtZero(t *testing.T) {
	price := ResolveUnitPrice(1000, 0, Discount{
		Value:  5000,
		Type:   DiscountFixed,
		Active: true,
	})
	assert.Equal(t, int64(0), price)
}

func TestResolveUnitPrice_InactiveDiscountIgnored(t *testing.T) {
	price := ResolveUnitPrice(10000, 0, Discount{
		Value:  50,
		Type:   DiscountPercentage,
		Active: false,
	})
	assert.Equal(t, int64(10000), price)
}

func TestResolveUnitPrice_MalformedInputsCoerced(t *testing.T) {
	// Negative base price treated as zero
	assert.Equal(t, int64(0), ResolveUnitPrice(-100, 0, Discount{}))

	// Negative discount value has no effect
	assert.Equal(t, int64(1000), ResolveUnitPrice(1000, 0, Discount{
		Value:  -10,
		Type:   DiscountPercentage,
		Active: true,
	}))

	// Unknown discount type has no effect
	assert.Equal(t, int64(1000), ResolveUnitPrice(1000, 0, Discount{
		Value:  10,
		Type:   "half-off",
		Active: true,
	}))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, int64(21600), LineTotal(7200, 3))
	assert.Equal(t, int64(0), LineTotal(7200, 0))
	assert.Equal(t, int64(0), LineTotal(7200, -1))
	assert.Equal(t, int64(0), LineTotal(-100, 3))
}
