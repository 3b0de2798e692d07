package catalog

import (
	"context"
	"fmt"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
	"github.com/rs/zerolog/log"
)

// Files names the catalog inputs. Promotions is optional.
type Files struct {
	Items      string
	Stock      string
	Promotions string
}

// Catalog is everything needed to run the reorder engine without a database.
type Catalog struct {
	Items      []*domain.Item
	Levels     []domain.StockLevel
	Promotions []domain.Promotion
}

// Load reads all catalog files.
func Load(files Files, defaultWarehouse domain.Warehouse) (*Catalog, error) {
	if files.Items == "" || files.Stock == "" {
		return nil, fmt.Errorf("catalog and stock files are required")
	}

	items, err := LoadItems(files.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	levels, err := LoadStockLevels(files.Stock, defaultWarehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock levels: %w", err)
	}

	c := &Catalog{Items: items, Levels: levels}
	if files.Promotions != "" {
		if c.Promotions, err = LoadPromotions(files.Promotions); err != nil {
			return nil, fmt.Errorf("failed to load promotions: %w", err)
		}
	}

	log.Info().
		Int("items", len(c.Items)).
		Int("stock_levels", len(c.Levels)).
		Int("promotions", len(c.Promotions)).
		Msg("catalog loaded")
	return c, nil
}

// Import writes the catalog through a repository, items first so stock rows can reference
// them.
func (c *Catalog) Import(ctx context.Context, repo repository.CatalogRepository) error {
	if err := repo.UpsertItems(ctx, c.Items); err != nil {
		return fmt.Errorf("failed to import items: %w", err)
	}
	if err := repo.UpsertStockLevels(ctx, c.Levels); err != nil {
		return fmt.Errorf("failed to import stock levels: %w", err)
	}
	if len(c.Promotions) > 0 {
		if err := repo.UpsertPromotions(ctx, c.Promotions); err != nil {
			return fmt.Errorf("failed to import promotions: %w", err)
		}
	}
	return nil
}
