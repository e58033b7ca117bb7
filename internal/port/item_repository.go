package port

import (
	"context"

	"github.com/rl1809/catalog-service/internal/core/domain"
)

type ItemRepository interface {
	// FindAll returns the items matching the filter, ordered and paginated
	// according to it.
	FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)

	// Count returns the size of the full filtered set, ignoring the
	// filter's pagination and ordering.
	Count(ctx context.Context, filter domain.ItemFilter) (int, error)

	// FindByID retrieves an item by ID, returning nil when absent.
	FindByID(ctx context.Context, id string) (*domain.Item, error)

	// DistinctCategories lists every category present in the store.
	DistinctCategories(ctx context.Context) ([]string, error)

	// Create persists a new item, filling in its ID and timestamps.
	Create(ctx context.Context, item *domain.Item) error

	// Save overwrites an existing item.
	Save(ctx context.Context, item domain.Item) error

	// Delete removes an item by ID.
	Delete(ctx context.Context, id string) error
}
