package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDealSavings_BOGO(t *testing.T) {
	deal := Deal{Type: DealBOGO}

	// Below the threshold nothing is free
	assert.Equal(t, int64(0), deal.Savings(500, 1))

	// Every second unit is free
	assert.Equal(t, int64(500), deal.Savings(500, 2))
	assert.Equal(t, int64(500), deal.Savings(500, 3))
	assert.Equal(t, int64(1000), deal.Savings(500, 4))
	assert.Equal(t, int64(1000), deal.Savings(500, 5))
}

func TestDealSavings_Bundle(t *testing.T) {
	deal := Deal{Type: DealBundle, Value: "3 for 2"}

	// Below one full set nothing is free
	assert.Equal(t, int64(0), deal.Savings(1000, 2))

	// One free unit per complete set of 3
	assert.Equal(t, int64(1000), deal.Savings(1000, 3))
	assert.Equal(t, int64(1000), deal.Savings(1000, 5))
	assert.Equal(t, int64(2000), deal.Savings(1000, 6))
	assert.Equal(t, int64(2000), deal.Savings(1000, 7))
}

func TestDealSavings_BundleCaseInsensitive(t *testing.T) {
	deal := Deal{Type: DealBundle, Value: "5 FOR 3"}
	assert.Equal(t, int64(400), deal.Savings(200, 5))
}

func TestDealSavings_MalformedBundleDescriptors(t *testing.T) {
	for _, value := range []string{
		"",
		"3",
		"3 for",
		"for 2",
		"three for two",
		"2 for 3", // must buy more than you pay for
		"3 for 3",
		"3 for 0",
		"3 for -1",
	} {
		deal := Deal{Type: DealBundle, Value: value}
		assert.Equal(t, int64(0), deal.Savings(1000, 10), "descriptor %q", value)
	}
}

func TestDealSavings_UnknownTypeAndDegenerateInputs(t *testing.T) {
	assert.Equal(t, int64(0), Deal{Type: "mystery"}.Savings(1000, 10))
	assert.Equal(t, int64(0), Deal{}.Savings(1000, 10))
	assert.Equal(t, int64(0), Deal{Type: DealBOGO}.Savings(0, 10))
	assert.Equal(t, int64(0), Deal{Type: DealBOGO}.Savings(1000, 0))
}

func TestDealSavings_NeverExceedsLineTotal(t *testing.T) {
	cases := []struct {
		deal     Deal
		price    int64
		quantity int
	}{
		{Deal{Type: DealBOGO}, 750, 9},
		{Deal{Type: DealBundle, Value: "3 for 2"}, 1234, 11},
		{Deal{Type: DealBundle, Value: "10 for 1"}, 99, 25},
	}

	for _, tc := range cases {
		savings := tc.deal.Savings(tc.price, tc.quantity)
		line := LineTotal(tc.price, tc.quantity)
		assert.GreaterOrEqual(t, savings, int64(0))
		assert.LessOrEqual(t, savings, line)
	}
}

func TestDealActive(t *testing.T) {
	assert.False(t, Deal{Type: DealBOGO}.Active(1))
	assert.True(t, Deal{Type: DealBOGO}.Active(2))

	bundle := Deal{Type: DealBundle, Value: "3 for 2"}
	assert.False(t, bundle.Active(2))
	assert.True(t, bundle.Active(3))

	assert.False(t, Deal{Type: DealBundle, Value: "junk"}.Active(10))
	assert.False(t, Deal{}.Active(10))
}
