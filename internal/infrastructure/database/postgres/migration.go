// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/cart-engine/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	models := []interface{}{
		&product.Product{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku_active ON products(sku, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_deal_type ON products(deal_type) WHERE deal_type <> ''",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData seeds sample catalog data in development
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	log.Println("🔄 Seeding initial catalog data...")

	products := []product.Product{
		{
			SKU:       "RICE-5KG",
			Name:      "Jasmine Rice 5kg",
			BasePrice: 12500,
			Stock:     40,
			Unit:      "bag",
			IsActive:  true,
		},
		{
			SKU:            "OIL-1L",
			Name:           "Sunflower Oil 1L",
			BasePrice:      10000,
			VariationPrice: 8000,
			Stock:          25,
			Unit:           "bottle",
			IsActive:       true,
		},
		{
			SKU:                    "TEA-250G",
			Name:                   "Green Tea 250g",
			BasePrice:              6000,
			SeasonalDiscount:       10,
			SeasonalDiscountType:   "percentage",
			SeasonalDiscountActive: true,
			Stock:                  60,
			Unit:                   "box",
			IsActive:               true,
		},
		{
			SKU:       "SOAP-BAR",
			Name:      "Lavender Soap Bar",
			BasePrice: 1500,
			DealType:  "bogo",
			Stock:     100,
			Unit:      "piece",
			IsActive:  true,
		},
		{
			SKU:       "NOODLES-PK",
			Name:      "Instant Noodles",
			BasePrice: 800,
			DealType:  "bundle",
			DealValue: "3 for 2",
			Stock:     200,
			Unit:      "pack",
			IsActive:  true,
		},
	}

	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].SKU, err)
		}
	}

	log.Printf("✅ Seeded %d catalog products", len(products))
	return nil
}
