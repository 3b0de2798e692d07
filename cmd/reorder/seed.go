package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/andresuchdata/autopo-reorder/internal/cache"
	"github.com/andresuchdata/autopo-reorder/internal/catalog"
	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/repository/postgres"
	"github.com/andresuchdata/autopo-reorder/internal/storage"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
	"github.com/urfave/cli/v2"
)

func seedCatalog(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	files := catalog.Files{
		Items:      c.String("catalog"),
		Stock:      c.String("stock"),
		Promotions: c.String("promotions"),
	}

	if prefix := c.String("object-key"); prefix != "" {
		downloaded, cleanup, err := downloadCatalog(ctx, cfg.Storage, prefix, files)
		if err != nil {
			return err
		}
		defer cleanup()
		files = downloaded
	}

	loaded, err := catalog.Load(files, cfg.Reorder.DefaultWarehouse)
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	if dir := c.String("migrations-dir"); dir != "" {
		if err := db.RunMigrations(ctx, dir); err != nil {
			return err
		}
	}

	logger.Log.Info().Msg("Starting catalog seeding...")
	repo := postgres.NewInventoryRepository(db, cfg.Reorder.DefaultWarehouse)
	if err := loaded.Import(ctx, repo); err != nil {
		return err
	}

	// Cached promotion answers are stale once the calendar changes.
	if len(loaded.Promotions) > 0 && cfg.Cache.Enabled {
		promotionCache, err := cache.NewPromotionCache(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Could not reach promotion cache to invalidate it")
		} else if err := promotionCache.InvalidateAll(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to invalidate promotion cache")
		}
	}

	logger.Log.Info().
		Int("items", len(loaded.Items)).
		Int("stock_levels", len(loaded.Levels)).
		Int("promotions", len(loaded.Promotions)).
		Msg("Catalog seeding completed successfully!")
	return nil
}

// downloadCatalog fetches the named files from prefix into a temporary directory.
func downloadCatalog(ctx context.Context, cfg config.StorageConfig, prefix string, files catalog.Files) (catalog.Files, func(), error) {
	client, err := storage.NewMinioClient(ctx, cfg)
	if err != nil {
		return files, nil, err
	}

	dir, err := os.MkdirTemp("", "reorder-catalog-*")
	if err != nil {
		return files, nil, fmt.Errorf("failed to create download dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	fetch := func(name string) (string, error) {
		if name == "" {
			return "", nil
		}
		key := path.Join(prefix, name)
		dest := filepath.Join(dir, filepath.Base(name))
		logger.Log.Info().Str("key", key).Msg("Downloading catalog file")
		if err := client.DownloadObject(ctx, key, dest); err != nil {
			return "", err
		}
		return dest, nil
	}

	var out catalog.Files
	if out.Items, err = fetch(files.Items); err != nil {
		cleanup()
		return files, nil, err
	}
	if out.Stock, err = fetch(files.Stock); err != nil {
		cleanup()
		return files, nil, err
	}
	if out.Promotions, err = fetch(files.Promotions); err != nil {
		cleanup()
		return files, nil, err
	}
	return out, cleanup, nil
}

func migrate(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := postgres.Open(ctx, c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	return db.RunMigrations(ctx, c.String("migrations-dir"))
}
