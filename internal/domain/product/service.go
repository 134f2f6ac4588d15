// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a product id is not known to the catalog
var ErrNotFound = errors.New("product not found")

// Source is the authoritative product source the cart engine validates
// and reconciles against. Lookups can fail; callers wrap them in the
// shared retry policy.
type Source interface {
	GetByID(ctx context.Context, id uint) (*Product, error)
}

// Service is the catalog-backed product source
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// GetByID performs the point lookup used for cart validation and queue
// replay. Inactive and deleted products are reported as not found.
func (s *Service) GetByID(ctx context.Context, id uint) (*Product, error) {
	var prod Product

	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&prod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncerr.New(syncerr.CategoryNotFound, fmt.Errorf("%w: id %d", ErrNotFound, id))
		}
		return nil, syncerr.New(syncerr.CategoryServer, fmt.Errorf("product lookup failed: %w", err))
	}

	return &prod, nil
}

// List returns active catalog products for browsing
func (s *Service) List(ctx context.Context, limit, offset int) ([]Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var products []Product
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, syncerr.New(syncerr.CategoryServer, fmt.Errorf("product list failed: %w", err))
	}

	return products, nil
}
