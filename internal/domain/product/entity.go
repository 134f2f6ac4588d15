// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/your-org/cart-engine/internal/domain/pricing"
	"gorm.io/gorm"
)

// Product is the authoritative catalog record the cart engine reconciles
// against. Prices are int64 cents. The pricing hierarchy lives directly
// on the product: base price, optional variation override, optional
// seasonal discount, optional promotional deal.
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SKU         string `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	BasePrice              int64  `gorm:"not null" json:"base_price"`
	VariationPrice         int64  `json:"variation_price"` // Overrides base price if > 0
	SeasonalDiscount       int64  `json:"seasonal_discount"`
	SeasonalDiscountType   string `gorm:"size:20" json:"seasonal_discount_type"` // "percentage" or "fixed"
	SeasonalDiscountActive bool   `gorm:"default:false" json:"seasonal_discount_active"`

	DealType  string `gorm:"size:20" json:"deal_type,omitempty"` // "bogo" or "bundle"
	DealValue string `gorm:"size:20" json:"deal_value,omitempty"`

	Stock    int    `gorm:"default:0" json:"stock"`
	Unit     string `gorm:"size:50" json:"unit"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// Discount returns the seasonal discount descriptor for price resolution
func (p *Product) Discount() pricing.Discount {
	return pricing.Discount{
		Value:  p.SeasonalDiscount,
		Type:   pricing.DiscountType(p.SeasonalDiscountType),
		Active: p.SeasonalDiscountActive,
	}
}

// Deal returns the promotional deal descriptor, if any
func (p *Product) Deal() pricing.Deal {
	return pricing.Deal{
		Type:  pricing.DealType(p.DealType),
		Value: p.DealValue,
	}
}

// EffectiveUnitPrice resolves the current effective unit price through
// the pricing hierarchy
func (p *Product) EffectiveUnitPrice() int64 {
	return pricing.ResolveUnitPrice(p.BasePrice, p.VariationPrice, p.Discount())
}
