package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rl1809/catalog-service/internal/core/domain"
	"github.com/rl1809/catalog-service/internal/port"
)

var ErrItemNotFound = errors.New("item not found")

// ValidationError marks a write that was rejected before touching the
// item store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CatalogService orchestrates read-through caching for catalog queries
// and write-through invalidation for mutations. It is the only
// component that touches both the cache store and the item store.
type CatalogService struct {
	items       port.ItemRepository
	cache       port.CacheStore
	images      port.ImageStore
	invalidator *Invalidator
	validate    *validator.Validate
	logger      *zap.Logger
	pageSize    int
	latestLimit int
}

func NewCatalogService(
	items port.ItemRepository,
	cache port.CacheStore,
	images port.ImageStore,
	logger *zap.Logger,
	pageSize, latestLimit int,
) *CatalogService {
	return &CatalogService{
		items:       items,
		cache:       cache,
		images:      images,
		invalidator: NewInvalidator(cache, logger),
		validate:    validator.New(),
		logger:      logger,
		pageSize:    pageSize,
		latestLimit: latestLimit,
	}
}

// readThrough returns the cached snapshot under key, or loads a fresh
// result, caches it and returns it. Load errors are never cached.
// Concurrent misses may both load and both set; the last set wins,
// which is harmless since the same query yields the same answer.
func readThrough[T any](ctx context.Context, s *CatalogService, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if ok, err := s.cache.Has(ctx, key); err == nil && ok {
		raw, err := s.cache.Get(ctx, key)
		if err == nil {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
			s.logger.Warn("discarding undecodable cache entry",
				zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// LatestItems returns the newest items, at most the configured latest
// limit, cached under "latest-products".
func (s *CatalogService) LatestItems(ctx context.Context) ([]domain.Item, error) {
	return readThrough(ctx, s, KeyLatestProducts, func(ctx context.Context) ([]domain.Item, error) {
		items, err := s.items.FindAll(ctx, domain.ItemFilter{NewestFirst: true, Limit: s.latestLimit})
		if err != nil {
			return nil, fmt.Errorf("find latest items: %w", err)
		}
		return items, nil
	})
}

// Categories returns every distinct category, cached under "categories".
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return readThrough(ctx, s, KeyCategories, func(ctx context.Context) ([]string, error) {
		categories, err := s.items.DistinctCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("find categories: %w", err)
		}
		return categories, nil
	})
}

// AdminItems returns every item newest-first, cached under
// "admin-products".
func (s *CatalogService) AdminItems(ctx context.Context) ([]domain.Item, error) {
	return readThrough(ctx, s, KeyAdminProducts, func(ctx context.Context) ([]domain.Item, error) {
		items, err := s.items.FindAll(ctx, domain.ItemFilter{NewestFirst: true})
		if err != nil {
			return nil, fmt.Errorf("find admin items: %w", err)
		}
		return items, nil
	})
}

// ItemByID returns a single item, cached under "product-<id>". A miss
// in the item store yields ErrItemNotFound and is not cached.
func (s *CatalogService) ItemByID(ctx context.Context, id string) (*domain.Item, error) {
	return readThrough(ctx, s, ProductKey(id), func(ctx context.Context) (*domain.Item, error) {
		item, err := s.items.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find item: %w", err)
		}
		if item == nil {
			return nil, ErrItemNotFound
		}
		return item, nil
	})
}

// ItemsByCategory returns the items in a category, cached under
// "category-products-<category>" with the category as the caller
// spelled it. The store query itself lowercases, matching how
// categories are stored.
func (s *CatalogService) ItemsByCategory(ctx context.Context, category string) ([]domain.Item, error) {
	if category == "" {
		return nil, &ValidationError{Message: "category is required"}
	}
	return readThrough(ctx, s, CategoryProductsKey(category), func(ctx context.Context) ([]domain.Item, error) {
		items, err := s.items.FindAll(ctx, domain.ItemFilter{Category: strings.ToLower(category)})
		if err != nil {
			return nil, fmt.Errorf("find items by category: %w", err)
		}
		return items, nil
	})
}

// SearchResult is one page of a filtered search plus the page count of
// the full filtered set.
type SearchResult struct {
	Items     []domain.Item
	Page      int
	TotalPage int
}

// SearchItems runs a filtered, sorted, paginated search. The input
// space is arbitrary filter combinations, so results are never cached;
// every call hits the item store.
func (s *CatalogService) SearchItems(ctx context.Context, raw RawSearchQuery) (SearchResult, error) {
	q := BuildSearchQuery(raw, s.pageSize)
	filter := q.Filter()

	items, err := s.items.FindAll(ctx, filter)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search items: %w", err)
	}

	total, err := s.items.Count(ctx, filter)
	if err != nil {
		return SearchResult{}, fmt.Errorf("count search items: %w", err)
	}

	totalPage := (total + q.Limit - 1) / q.Limit
	return SearchResult{Items: items, Page: q.Page, TotalPage: totalPage}, nil
}

// CreateItemInput holds the fields for a new item. ImageRef must
// already point at stored content; Size is optional and defaults to
// regular.
type CreateItemInput struct {
	Name        string  `validate:"required"`
	Category    string  `validate:"required"`
	Price       float64 `validate:"required,gte=0"`
	Stock       int     `validate:"required,gte=0"`
	Description string  `validate:"required"`
	Size        string
	Color       string `validate:"required"`
	ImageRef    string `validate:"required"`
}

// CreateItem validates and persists a new item, then invalidates the
// listing surfaces. The new item is deliberately not cached here; the
// next read misses and repopulates. On validation failure the already
// stored image is released so rejected uploads do not leak files.
func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (*domain.Item, error) {
	if err := s.validate.Struct(in); err != nil {
		s.releaseImage(ctx, in.ImageRef)
		return nil, &ValidationError{Message: "please enter all fields"}
	}

	item := &domain.Item{
		Name:        in.Name,
		Category:    strings.ToLower(in.Category),
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Size:        domain.ParseSize(in.Size),
		Color:       in.Color,
		ImageRef:    in.ImageRef,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.invalidate(ctx, domain.InvalidationEvent{Product: true, Admin: true})
	return item, nil
}

// UpdateItemInput carries a partial update: nil fields are left
// unchanged.
type UpdateItemInput struct {
	Name        *string
	Category    *string
	Price       *float64
	Stock       *int
	Description *string
	Size        *string
	Color       *string
	ImageRef    *string
}

// UpdateItem applies a partial update to an existing item and
// invalidates its detail entry along with the listing surfaces. A
// replacement image releases the previously stored one best-effort.
func (s *CatalogService) UpdateItem(ctx context.Context, id string, in UpdateItemInput) (*domain.Item, error) {
	if in.Price != nil && *in.Price < 0 {
		return nil, &ValidationError{Message: "price must not be negative"}
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, &ValidationError{Message: "stock must not be negative"}
	}

	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	if in.ImageRef != nil && *in.ImageRef != "" && *in.ImageRef != item.ImageRef {
		s.releaseImage(ctx, item.ImageRef)
		item.ImageRef = *in.ImageRef
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Category != nil {
		item.Category = strings.ToLower(*in.Category)
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Stock != nil {
		item.Stock = *in.Stock
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Size != nil {
		item.Size = domain.ParseSize(*in.Size)
	}
	if in.Color != nil {
		item.Color = *in.Color
	}

	if err := s.items.Save(ctx, *item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	s.invalidate(ctx, domain.InvalidationEvent{Product: true, Admin: true, ProductID: id})
	return item, nil
}

// DeleteItem removes an item, releases its image best-effort and
// invalidates its detail entry along with the listing surfaces.
func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find item: %w", err)
	}
	if item == nil {
		return ErrItemNotFound
	}

	s.releaseImage(ctx, item.ImageRef)

	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.invalidate(ctx, domain.InvalidationEvent{Product: true, Admin: true, ProductID: id})
	return nil
}

// invalidate runs the coordinator for a committed mutation. Failures
// are logged and swallowed: the write stands, stale entries persist
// until a later invalidation succeeds or the process restarts.
func (s *CatalogService) invalidate(ctx context.Context, ev domain.InvalidationEvent) {
	if _, err := s.invalidator.Invalidate(ctx, ev); err != nil {
		s.logger.Error("cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) releaseImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Release(ctx, ref); err != nil {
		s.logger.Warn("image release failed", zap.String("ref", ref), zap.Error(err))
	}
}
