package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/catalog-service/internal/core/domain"
	"github.com/rl1809/catalog-service/internal/port"
)

// Cache keys. The grammar is fixed: changing it would orphan any
// previously cached state.
const (
	KeyLatestProducts = "latest-products"
	KeyCategories     = "categories"
	KeyAdminProducts  = "admin-products"

	productKeyPrefix          = "product-"
	categoryProductsKeyPrefix = "category-products-"
)

// ProductKey is the cache key for a single item's detail entry.
func ProductKey(id string) string {
	return productKeyPrefix + id
}

// CategoryProductsKey is the cache key for a category listing. The
// category goes in as the caller spelled it, not normalized.
func CategoryProductsKey(category string) string {
	return categoryProductsKeyPrefix + category
}

// Invalidator purges the cache entries a mutation rendered stale.
// Purging is coarse by surface: any product mutation drops the whole
// latest listing and every category listing rather than tracking
// fine-grained dependencies, so over-invalidation is possible but a
// stale hit is not.
type Invalidator struct {
	cache  port.CacheStore
	logger *zap.Logger
}

func NewInvalidator(cache port.CacheStore, logger *zap.Logger) *Invalidator {
	return &Invalidator{cache: cache, logger: logger}
}

// Invalidate deletes every key or key pattern the event maps to and
// returns the number of entries removed. Deleting already-absent keys
// is a no-op, so repeating an event is harmless.
func (iv *Invalidator) Invalidate(ctx context.Context, ev domain.InvalidationEvent) (int, error) {
	var patterns []string

	if ev.Product {
		patterns = append(patterns,
			KeyLatestProducts,
			KeyCategories,
			categoryProductsKeyPrefix+"*",
		)
	}
	if ev.Admin {
		patterns = append(patterns, KeyAdminProducts)
	}
	if ev.ProductID != "" {
		patterns = append(patterns, ProductKey(ev.ProductID))
	}

	removed := 0
	var errs []error
	for _, p := range patterns {
		n, err := iv.cache.DeleteMatching(ctx, p)
		removed += n
		if err != nil {
			iv.logger.Error("cache purge failed",
				zap.String("pattern", p),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("purge %s: %w", p, err))
		}
	}
	return removed, errors.Join(errs...)
}
