package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/fulfillment"
	"github.com/andresuchdata/autopo-reorder/internal/reorder"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
	"github.com/andresuchdata/autopo-reorder/internal/storage"
	"github.com/andresuchdata/autopo-reorder/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = repository.ErrRunNotFound

const exportsPrefix = "exports/"

// Planner is the reorder engine as seen by the service.
type Planner interface {
	Plan(ctx context.Context, date time.Time) (*reorder.Plan, error)
	Apply(ctx context.Context, plan *reorder.Plan) error
}

// Dependencies wires the service. Storage, Publisher and Metrics are optional.
type Dependencies struct {
	Planner   Planner
	Runs      repository.RunRepository
	Storage   storage.ObjectStorage
	Publisher fulfillment.OrderPublisher
	Metrics   *metrics.ReorderMetrics

	// ExportDir receives the CSV export of every run.
	ExportDir string
	// PublishRequired turns publish failures into run failures.
	PublishRequired bool
}

type ReorderService struct {
	deps Dependencies
	now  func() time.Time
}

func NewReorderService(deps Dependencies) *ReorderService {
	if deps.Publisher == nil {
		deps.Publisher = fulfillment.NoopPublisher{}
	}
	return &ReorderService{deps: deps, now: time.Now}
}

// Run evaluates the catalog for a date. A dry run plans without escalating desired
// quantities and without uploading or publishing.
func (s *ReorderService) Run(ctx context.Context, date time.Time, dryRun bool) (run *domain.ReorderRun, err error) {
	start := s.now()
	defer func() {
		s.observeRun(run, dryRun, err, s.now().Sub(start))
	}()

	logger := log.With().Str("date", date.Format(domain.DateLayout)).Bool("dry_run", dryRun).Logger()

	// 1. Evaluate every stocked item and warehouse
	plan, err := s.deps.Planner.Plan(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to plan reorder: %w", err)
	}

	// 2. Persist escalations
	if !dryRun {
		if err := s.deps.Planner.Apply(ctx, plan); err != nil {
			return nil, fmt.Errorf("failed to apply escalations: %w", err)
		}
	}

	run = &domain.ReorderRun{
		ID:          uuid.NewString(),
		Date:        date,
		DryRun:      dryRun,
		Orders:      plan.Orders,
		Escalations: plan.Escalations,
		CreatedAt:   s.now().UTC(),
	}
	logger = logger.With().Str("run_id", run.ID).Logger()

	// 3. Export and upload
	if s.deps.ExportDir != "" {
		path, data, err := writeExport(s.deps.ExportDir, run)
		if err != nil {
			return nil, err
		}
		run.ExportPath = path

		if s.deps.Storage != nil && !dryRun {
			key := exportsPrefix + filepath.Base(path)
			if err := s.deps.Storage.UploadObject(ctx, key, data); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("reorder: export upload failed")
			} else {
				run.ExportKey = key
			}
		}
	}

	// 4. Record the run
	if err := s.deps.Runs.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	// 5. Announce orders
	if !dryRun {
		if err := s.deps.Publisher.PublishOrders(ctx, run); err != nil {
			if s.deps.Metrics != nil {
				s.deps.Metrics.PublishFailures.Inc()
			}
			if s.deps.PublishRequired {
				return run, fmt.Errorf("failed to publish orders for run %s: %w", run.ID, err)
			}
			logger.Warn().Err(err).Msg("reorder: publishing orders failed")
		}
	}

	logger.Info().
		Int("orders", len(run.Orders)).
		Int("units", run.TotalQuantity()).
		Int("escalations", len(run.Escalations)).
		Interface("skipped", plan.Skipped).
		Msg("reorder: run completed")
	return run, nil
}

func (s *ReorderService) observeRun(run *domain.ReorderRun, dryRun bool, err error, elapsed time.Duration) {
	m := s.deps.Metrics
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.Runs.WithLabelValues(status, strconv.FormatBool(dryRun)).Inc()
	m.RunDuration.Observe(elapsed.Seconds())

	if run == nil || dryRun {
		return
	}
	for _, o := range run.Orders {
		m.Orders.WithLabelValues(o.Warehouse.String()).Inc()
		m.Units.WithLabelValues(o.Warehouse.String()).Add(float64(o.Quantity))
	}
	for _, e := range run.Escalations {
		m.Escalations.WithLabelValues(e.Warehouse.String()).Inc()
	}
}

func (s *ReorderService) GetRun(ctx context.Context, id string) (*domain.ReorderRun, error) {
	run, err := s.deps.Runs.GetRun(ctx, id)
	if errors.Is(err, repository.ErrRunNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

func (s *ReorderService) ListRuns(ctx context.Context, limit int) ([]*domain.ReorderRun, error) {
	runs, err := s.deps.Runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListExports lists uploaded exports, or the local export directory when object storage is
// not configured. Newest first.
func (s *ReorderService) ListExports(ctx context.Context) ([]storage.ObjectInfo, error) {
	var (
		objects []storage.ObjectInfo
		err     error
	)
	if s.deps.Storage != nil {
		objects, err = s.deps.Storage.ListObjects(ctx, exportsPrefix)
	} else {
		objects, err = listLocalExports(s.deps.ExportDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

func listLocalExports(dir string) ([]storage.ObjectInfo, error) {
	if dir == "" {
		return []storage.ObjectInfo{}, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []storage.ObjectInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	objects := make([]storage.ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          entry.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}
	return objects, nil
}
