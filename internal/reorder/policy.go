package reorder

import (
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// promoBump is the flat extra stock kept while an item is on sale.
	promoBump = 20
	// headroomRatio suppresses orders once existing stock covers this share of the target.
	headroomRatio = 0.80
)

var escalationFactor = decimal.RequireFromString("1.10")

// PolicyInput is everything the ordering policy needs for one item at one warehouse.
type PolicyInput struct {
	Item       *domain.Item
	Warehouse  domain.Warehouse
	Desired    int
	Configured bool
	OnHand     int
	OnOrder    int
	InSeason   bool
	OnSale     bool
}

// Decision is the outcome of evaluating one item at one warehouse. Both fields are
// optional: an escalation can be produced even when no order is.
type Decision struct {
	Order      *domain.Order
	Escalation *domain.Escalation
	Reason     SkipReason
}

// SkipReason explains why no order was produced.
type SkipReason string

const (
	ReasonNone         SkipReason = ""
	ReasonNotStocked   SkipReason = "not_stocked"
	ReasonZeroDesired  SkipReason = "zero_desired"
	ReasonAtTarget     SkipReason = "at_target"
	ReasonHeadroom     SkipReason = "headroom"
	ReasonNothingToAdd SkipReason = "nothing_to_order"
	ReasonCaseLot      SkipReason = "case_lot_overshoot"
	ReasonSchedule     SkipReason = "schedule"
)

// Evaluate applies the ordering policy to one item at one warehouse.
func Evaluate(in PolicyInput) Decision {
	total := in.OnHand + in.OnOrder

	// 1. Eligibility gate
	switch {
	case !in.Configured:
		return Decision{Reason: ReasonNotStocked}
	case in.Desired == 0:
		return Decision{Reason: ReasonZeroDesired}
	case in.Desired == total:
		return Decision{Reason: ReasonAtTarget}
	}

	baseline := in.Desired
	desired := in.Desired
	var decision Decision

	// 2. Stock-out escalation, used for the rest of this evaluation
	if total == 0 {
		desired = Escalate(baseline)
		decision.Escalation = &domain.Escalation{
			SKU:       in.Item.SKU,
			Warehouse: in.Warehouse,
			From:      baseline,
			To:        desired,
		}
	}

	// 3. Target quantity from season and sale
	target := Target(desired, in.InSeason, in.OnSale)

	// 4. Headroom guard
	if float64(total)/float64(target) > headroomRatio {
		decision.Reason = ReasonHeadroom
		return decision
	}

	// 5. Raw quantity
	toOrder := target - total
	if toOrder < 1 {
		decision.Reason = ReasonNothingToAdd
		return decision
	}

	// 6. Case-lot rounding, checked against the pre-escalation baseline
	qty := RoundToCaseLot(toOrder, total, baseline, in.Item.BunchSize())

	// 7. Emit
	if qty < 1 {
		decision.Reason = ReasonCaseLot
		return decision
	}
	order, err := domain.NewOrder(in.Item.SKU, in.Warehouse, qty)
	if err != nil {
		decision.Reason = ReasonNothingToAdd
		return decision
	}
	decision.Order = &order
	return decision
}

// Escalate raises a desired quantity by ten percent, rounding up.
func Escalate(desired int) int {
	return int(decimal.NewFromInt(int64(desired)).Mul(escalationFactor).Ceil().IntPart())
}

// Target derives the stock level to order up to.
func Target(desired int, inSeason, onSale bool) int {
	switch {
	case inSeason && onSale && desired < promoBump:
		return desired + promoBump
	case inSeason:
		return desired * 2
	case onSale:
		return desired + promoBump
	default:
		return desired
	}
}

// RoundToCaseLot rounds toOrder up to whole case lots. When the rounded quantity would take
// total stock above the baseline, one lot is dropped. Zero means nothing can be ordered.
func RoundToCaseLot(toOrder, total, baseline, lot int) int {
	if lot <= 1 || toOrder%lot == 0 {
		return toOrder
	}

	bunches := (toOrder + lot - 1) / lot
	if total+bunches*lot > baseline {
		bunches--
	}
	if bunches <= 0 {
		return 0
	}
	return bunches * lot
}
