package main

import (
	"os"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func catalogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "catalog",
			Usage:   "Item policy file (CSV or XLSX)",
			EnvVars: []string{"REORDER_CATALOG_FILE"},
		},
		&cli.StringFlag{
			Name:    "stock",
			Usage:   "Stock level file (CSV or XLSX)",
			EnvVars: []string{"REORDER_STOCK_FILE"},
		},
		&cli.StringFlag{
			Name:    "promotions",
			Usage:   "Promotion calendar file (CSV or XLSX, optional)",
			EnvVars: []string{"REORDER_PROMOTIONS_FILE"},
		},
	}
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	app := &cli.App{
		Name:  "reorder",
		Usage: "Compute replenishment orders per item and warehouse",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Evaluate the catalog for a date and print the orders",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "date",
						Usage:    "Run date (YYYY-MM-DD)",
						Required: true,
					},
					newDBURLFlag(false),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Plan only: do not escalate desired quantities, upload or publish",
					},
					&cli.StringFlag{
						Name:  "export-dir",
						Usage: "Directory for the CSV export",
						Value: cfg.App.ExportDir,
					},
				}, catalogFlags()...),
				Action: func(c *cli.Context) error {
					return runReorder(c, cfg)
				},
			},
			{
				Name:  "seed",
				Usage: "Load catalog, stock and promotion files into the database",
				Flags: append([]cli.Flag{
					newDBURLFlag(true),
					&cli.StringFlag{
						Name:  "object-key",
						Usage: "Download the files from this object storage prefix before loading",
					},
					&cli.StringFlag{
						Name:  "migrations-dir",
						Usage: "Directory containing SQL migrations to apply first (optional)",
					},
				}, catalogFlags()...),
				Action: func(c *cli.Context) error {
					return seedCatalog(c, cfg)
				},
			},
			{
				Name:  "migrate",
				Usage: "Apply SQL migrations",
				Flags: []cli.Flag{
					newDBURLFlag(true),
					&cli.StringFlag{
						Name:  "migrations-dir",
						Usage: "Directory containing SQL migrations",
						Value: "./scripts/migrations",
					},
				},
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("reorder command failed")
	}
}
