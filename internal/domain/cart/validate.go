// internal/domain/cart/validate.go
package cart

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-engine/internal/domain/product"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
)

// Validator reconciles a cart against the authoritative product source.
// Lookups run item by item through the shared retry policy; the engine
// is updated once, with totals recomputed after all items are processed.
type Validator struct {
	source        product.Source
	policy        *syncerr.RetryPolicy
	classifier    *syncerr.Classifier
	lookupTimeout time.Duration
	logger        *logrus.Logger
}

// NewValidator creates a cart validator. lookupTimeout bounds each
// Product Source call; zero means no per-lookup deadline.
func NewValidator(source product.Source, policy *syncerr.RetryPolicy, classifier *syncerr.Classifier, lookupTimeout time.Duration, logger *logrus.Logger) *Validator {
	return &Validator{
		source:        source,
		policy:        policy,
		classifier:    classifier,
		lookupTimeout: lookupTimeout,
		logger:        logger,
	}
}

// Validate refreshes price and stock truth for every cart item and
// pushes the deltas into the engine. Every change the engine makes
// (removal, price change, quantity clamp) comes back as a notice; cart
// value is never silently dropped. Items whose lookup keeps failing
// transiently are left untouched and reported with a validation notice.
func (v *Validator) Validate(ctx context.Context, engine *Engine) ([]ValidationResult, []Notice, error) {
	items := engine.Items()
	if len(items) == 0 {
		return nil, nil, nil
	}

	refreshes := make([]Refresh, 0, len(items))
	var lookupNotices []Notice

	for _, item := range items {
		var prod *product.Product
		err := v.policy.Do(ctx, "validate_cart_item", func() error {
			lookupCtx, cancel := withLookupTimeout(ctx, v.lookupTimeout)
			defer cancel()

			found, lookupErr := v.source.GetByID(lookupCtx, item.ProductID)
			if lookupErr != nil {
				return lookupErr
			}
			prod = found
			return nil
		})

		if err != nil {
			if v.classifier.Classify(err) == syncerr.CategoryNotFound {
				refreshes = append(refreshes, Refresh{ProductID: item.ProductID})
				continue
			}
			// Transient failure even after retries: leave the item alone
			// this pass, tell the caller.
			lookupNotices = append(lookupNotices, Notice{
				Kind:      NoticeValidationFailed,
				ProductID: item.ProductID,
				Message:   "Could not verify " + item.Name + ", will retry later",
			})
			if v.logger != nil {
				v.logger.WithFields(logrus.Fields{
					"product_id": item.ProductID,
					"error":      err.Error(),
				}).Warn("Cart item validation failed")
			}
			continue
		}

		refreshes = append(refreshes, Refresh{ProductID: item.ProductID, Product: prod})
	}

	_, results, notices, err := engine.ApplyValidation(ctx, refreshes)
	return results, append(notices, lookupNotices...), err
}

// withLookupTimeout derives a per-lookup deadline when one is configured
func withLookupTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Run validates every resident cart on a fixed interval until ctx is
// cancelled. Passes are skipped while offline; the Product Source is not
// reachable then anyway.
func (v *Validator) Run(ctx context.Context, registry *Registry, interval time.Duration, online func() bool) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if online != nil && !online() {
				continue
			}
			registry.Range(func(sessionID string, engine *Engine) bool {
				if _, _, err := v.Validate(ctx, engine); err != nil && v.logger != nil {
					v.logger.WithFields(logrus.Fields{
						"session_id": sessionID,
						"error":      err.Error(),
					}).Warn("Periodic cart validation failed")
				}
				return ctx.Err() == nil
			})
		}
	}
}
