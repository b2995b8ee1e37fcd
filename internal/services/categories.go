package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

const (
	categoriesKey = "all"
	categoriesTTL = 5 * time.Minute
)

// CategoryCatalog exposes the fixed category list. Reads are served from a
// short-lived cache since the catalog only changes when it is seeded.
type CategoryCatalog struct {
	store CategoryStore
	cache *cache.LRU[[]core.Category]
}

func NewCategoryCatalog(store CategoryStore) *CategoryCatalog {
	return &CategoryCatalog{
		store: store,
		cache: cache.NewLRU[[]core.Category](1, categoriesTTL),
	}
}

// ListAll returns every category sorted by name.
func (c *CategoryCatalog) ListAll(ctx context.Context) ([]core.Category, error) {
	if cats, ok := c.cache.Get(categoriesKey); ok {
		return append([]core.Category(nil), cats...), nil
	}
	cats, err := c.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	c.cache.Set(categoriesKey, cats)
	return append([]core.Category(nil), cats...), nil
}

// SeedDefaults inserts core.DefaultCategories when the catalog is empty.
// Calling it again is a no-op.
func (c *CategoryCatalog) SeedDefaults(ctx context.Context) error {
	n, err := c.store.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if n > 0 {
		slog.DebugContext(ctx, "Category catalog already seeded", "count", n)
		return nil
	}
	if err := c.store.InsertCategories(ctx, core.DefaultCategories); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	c.cache.Delete(categoriesKey)
	return nil
}

// CategoryExists checks id against the cached catalog.
func (c *CategoryCatalog) CategoryExists(ctx context.Context, id int64) (bool, error) {
	cats, err := c.ListAll(ctx)
	if err != nil {
		return false, err
	}
	for _, cat := range cats {
		if cat.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// CacheStats reports catalog cache hits and misses.
func (c *CategoryCatalog) CacheStats() cache.Stats {
	return c.cache.Stats()
}
