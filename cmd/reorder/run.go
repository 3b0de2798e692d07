package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresuchdata/autopo-reorder/internal/catalog"
	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/fulfillment"
	"github.com/andresuchdata/autopo-reorder/internal/marketing"
	"github.com/andresuchdata/autopo-reorder/internal/reorder"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
	"github.com/andresuchdata/autopo-reorder/internal/repository/memory"
	"github.com/andresuchdata/autopo-reorder/internal/repository/postgres"
	"github.com/andresuchdata/autopo-reorder/internal/service"
	"github.com/andresuchdata/autopo-reorder/internal/storage"
	"github.com/andresuchdata/autopo-reorder/pkg/kafka"
	"github.com/urfave/cli/v2"
)

// backend is the storage side of a run: either PostgreSQL or files loaded into memory.
type backend struct {
	store      reorder.InventoryStore
	promotions repository.PromotionRepository
	runs       repository.RunRepository
	close      func() error
}

func runReorder(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	date, err := domain.ParseDate(c.String("date"))
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	manager := reorder.NewManager(b.store, marketing.NewCalendar(b.promotions), reorder.Options{
		Warehouses:       cfg.Reorder.Warehouses,
		DefaultWarehouse: cfg.Reorder.DefaultWarehouse,
		Workers:          cfg.Reorder.Workers,
	})

	deps := service.Dependencies{
		Planner:         manager,
		Runs:            b.runs,
		ExportDir:       c.String("export-dir"),
		PublishRequired: cfg.Kafka.Required,
	}

	if !c.Bool("dry-run") {
		if cfg.Storage.Enabled {
			client, err := storage.NewMinioClient(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			deps.Storage = client
		}

		publisher, err := fulfillment.NewKafkaPublisher(kafka.NewClient(cfg.Kafka.Brokers), cfg.Kafka.OrdersTopic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		deps.Publisher = publisher
	}

	run, err := service.NewReorderService(deps).Run(ctx, date, c.Bool("dry-run"))
	if err != nil {
		return err
	}

	return printRun(os.Stdout, run)
}

func openBackend(ctx context.Context, c *cli.Context, cfg *config.Config) (*backend, error) {
	if url := c.String("db-url"); url != "" {
		db, err := postgres.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:      postgres.NewInventoryRepository(db, cfg.Reorder.DefaultWarehouse),
			promotions: postgres.NewPromotionRepository(db),
			runs:       postgres.NewRunRepository(db),
			close:      db.Close,
		}, nil
	}

	files := catalog.Files{
		Items:      c.String("catalog"),
		Stock:      c.String("stock"),
		Promotions: c.String("promotions"),
	}
	if files.Items == "" || files.Stock == "" {
		return nil, fmt.Errorf("either --db-url or both --catalog and --stock are required")
	}

	loaded, err := catalog.Load(files, cfg.Reorder.DefaultWarehouse)
	if err != nil {
		return nil, err
	}

	store := memory.NewInventoryStore(cfg.Reorder.DefaultWarehouse)
	store.AddItems(loaded.Items...)
	store.SetLevels(loaded.Levels...)

	return &backend{
		store:      store,
		promotions: marketing.NewPromotionList(loaded.Promotions),
		runs:       memory.NewRunStore(),
		close:      func() error { return nil },
	}, nil
}

func printRun(out io.Writer, run *domain.ReorderRun) error {
	fmt.Fprintf(out, "run %s  date %s  dry-run %t\n\n", run.ID, run.Date.Format(domain.DateLayout), run.DryRun)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tWAREHOUSE\tQUANTITY")
	for _, o := range run.Orders {
		fmt.Fprintf(w, "%s\t%s\t%d\n", o.SKU, o.Warehouse, o.Quantity)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d orders, %d units", len(run.Orders), run.TotalQuantity())
	if len(run.Escalations) > 0 {
		fmt.Fprintf(out, ", %d escalations", len(run.Escalations))
	}
	fmt.Fprintln(out)

	if len(run.Escalations) > 0 {
		if err := printEscalations(out, run.Escalations); err != nil {
			return err
		}
	}

	if run.ExportPath != "" {
		fmt.Fprintf(out, "export: %s\n", run.ExportPath)
	}
	if run.ExportKey != "" {
		fmt.Fprintf(out, "uploaded: %s\n", run.ExportKey)
	}
	return nil
}

// printEscalations lists the desired on-hand corrections so they can be carried back
// into a file catalog, whose in-memory store does not outlive the process.
func printEscalations(out io.Writer, escalations []domain.Escalation) error {
	fmt.Fprintln(out, "\ndesired on-hand escalations:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tWAREHOUSE\tDESIRED")
	for _, e := range escalations {
		fmt.Fprintf(w, "%s\t%s\t%d -> %d\n", e.SKU, e.Warehouse, e.From, e.To)
	}
	return w.Flush()
}
