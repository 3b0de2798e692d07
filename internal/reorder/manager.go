package reorder

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options configures the batch run.
type Options struct {
	// Warehouses is the known warehouse set, evaluated in this order.
	Warehouses []domain.Warehouse
	// DefaultWarehouse receives the scalar desired quantity of items without per-warehouse
	// targets.
	DefaultWarehouse domain.Warehouse
	// Workers bounds how many warehouses are planned concurrently.
	Workers int
}

// Plan is the result of evaluating the catalog for a date before any write happens.
type Plan struct {
	Date        time.Time
	Orders      []domain.Order
	Escalations []domain.Escalation
	Skipped     map[SkipReason]int
}

// Manager runs the ordering policy over every stocked item and warehouse.
type Manager struct {
	store  InventoryStore
	promos PromotionContext
	opts   Options
}

// NewManager creates a new Manager.
func NewManager(store InventoryStore, promos PromotionContext, opts Options) *Manager {
	if opts.DefaultWarehouse == "" {
		opts.DefaultWarehouse = domain.DefaultWarehouse
	}
	if len(opts.Warehouses) == 0 {
		opts.Warehouses = []domain.Warehouse{opts.DefaultWarehouse}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Manager{store: store, promos: promos, opts: opts}
}

// Warehouses returns the warehouse set the manager evaluates.
func (m *Manager) Warehouses() []domain.Warehouse {
	return append([]domain.Warehouse(nil), m.opts.Warehouses...)
}

// GetOrders evaluates the catalog for the date, persists stock-out escalations and returns
// the orders to place.
func (m *Manager) GetOrders(ctx context.Context, date time.Time) ([]domain.Order, error) {
	plan, err := m.Plan(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(ctx, plan); err != nil {
		return nil, err
	}
	return plan.Orders, nil
}

// Plan evaluates the catalog without writing to the store.
func (m *Manager) Plan(ctx context.Context, date time.Time) (*Plan, error) {
	items, err := m.store.StockItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}

	season, err := m.promos.Season(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve season for %s: %w", date.Format(domain.DateLayout), err)
	}

	results := make([]*Plan, len(m.opts.Warehouses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, w := range m.opts.Warehouses {
		g.Go(func() error {
			p, err := m.planWarehouse(gctx, date, w, season, items)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{
		Date:        date,
		Orders:      make([]domain.Order, 0),
		Escalations: make([]domain.Escalation, 0),
		Skipped:     make(map[SkipReason]int),
	}
	for _, p := range results {
		plan.Orders = append(plan.Orders, p.Orders...)
		plan.Escalations = append(plan.Escalations, p.Escalations...)
		for reason, n := range p.Skipped {
			plan.Skipped[reason] += n
		}
	}

	log.Debug().
		Str("date", date.Format(domain.DateLayout)).
		Str("season", string(season)).
		Int("items", len(items)).
		Int("orders", len(plan.Orders)).
		Int("escalations", len(plan.Escalations)).
		Msg("reorder: plan built")

	return plan, nil
}

// Apply writes each escalation of the plan through the store, once per item and warehouse.
func (m *Manager) Apply(ctx context.Context, plan *Plan) error {
	seen := make(map[domain.Escalation]struct{}, len(plan.Escalations))
	for _, esc := range plan.Escalations {
		key := domain.Escalation{SKU: esc.SKU, Warehouse: esc.Warehouse}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if err := m.store.SetRequiredOnHand(ctx, esc.SKU, esc.Warehouse, esc.To); err != nil {
			return fmt.Errorf("failed to escalate %s at %s: %w", esc.SKU, esc.Warehouse, err)
		}
		log.Info().
			Str("sku", esc.SKU).
			Str("warehouse", esc.Warehouse.String()).
			Int("from", esc.From).
			Int("to", esc.To).
			Msg("reorder: desired on-hand escalated after stock-out")
	}
	return nil
}

func (m *Manager) planWarehouse(ctx context.Context, date time.Time, w domain.Warehouse, season domain.Season, items []*domain.Item) (*Plan, error) {
	plan := &Plan{Date: date, Skipped: make(map[SkipReason]int)}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decision, err := m.evaluate(ctx, date, w, season, item)
		if err != nil {
			return nil, err
		}

		if decision.Escalation != nil {
			plan.Escalations = append(plan.Escalations, *decision.Escalation)
		}
		if decision.Order != nil {
			plan.Orders = append(plan.Orders, *decision.Order)
		} else {
			plan.Skipped[decision.Reason]++
		}
	}

	return plan, nil
}

func (m *Manager) evaluate(ctx context.Context, date time.Time, w domain.Warehouse, season domain.Season, item *domain.Item) (Decision, error) {
	if !item.OrderingSchedule().CanOrderToday(date) {
		return Decision{Reason: ReasonSchedule}, nil
	}

	desired, configured := item.DesiredFor(w, m.opts.DefaultWarehouse)
	in := PolicyInput{
		Item:       item,
		Warehouse:  w,
		Desired:    desired,
		Configured: configured,
		InSeason:   item.InSeason(season),
	}
	if !configured || desired == 0 {
		return Evaluate(in), nil
	}

	var err error
	if in.OnHand, err = m.store.OnHand(ctx, item.SKU, w); err != nil {
		return Decision{}, fmt.Errorf("failed to read on-hand for %s at %s: %w", item.SKU, w, err)
	}
	if in.OnOrder, err = m.store.OnOrder(ctx, item.SKU, w); err != nil {
		return Decision{}, fmt.Errorf("failed to read on-order for %s at %s: %w", item.SKU, w, err)
	}
	if in.OnSale, err = m.promos.OnSale(ctx, item.SKU, w, date); err != nil {
		return Decision{}, fmt.Errorf("failed to check sale for %s at %s: %w", item.SKU, w, err)
	}

	return Evaluate(in), nil
}
