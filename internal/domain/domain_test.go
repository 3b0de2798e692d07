package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		in   string
		want Schedule
	}{
		{"", AnyDay{}},
		{"Any", AnyDay{}},
		{"any-day", AnyDay{}},
		{"first-of-month", FirstOfMonth{}},
		{"monthly", FirstOfMonth{}},
		{"weekly:friday", Weekly{Day: time.Friday}},
		{"Weekly:TUE", Weekly{Day: time.Tuesday}},
	}
	for _, tt := range tests {
		got, err := ParseSchedule(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"daily", "weekly:", "weekly:someday"} {
		_, err := ParseSchedule(bad)
		assert.ErrorIs(t, err, ErrUnknownSchedule, bad)
	}
}

func TestSchedules(t *testing.T) {
	assert.True(t, AnyDay{}.CanOrderToday(day(2017, 6, 2)))
	assert.True(t, FirstOfMonth{}.CanOrderToday(day(2017, 6, 1)))
	assert.False(t, FirstOfMonth{}.CanOrderToday(day(2017, 6, 2)))

	// 2017-06-02 was a Friday.
	assert.True(t, Weekly{Day: time.Friday}.CanOrderToday(day(2017, 6, 2)))
	assert.False(t, Weekly{Day: time.Friday}.CanOrderToday(day(2017, 6, 3)))
}

func TestScheduleNameRoundTrips(t *testing.T) {
	for _, s := range []Schedule{AnyDay{}, FirstOfMonth{}, Weekly{Day: time.Sunday}} {
		parsed, err := ParseSchedule(ScheduleName(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	assert.Equal(t, "any", ScheduleName(nil))
}

func TestSeasons(t *testing.T) {
	assert.Equal(t, Winter, SeasonOf(day(2017, 1, 15)))
	assert.Equal(t, Spring, SeasonOf(day(2017, 3, 1)))
	assert.Equal(t, Summer, SeasonOf(day(2017, 6, 1)))
	assert.Equal(t, Fall, SeasonOf(day(2017, 11, 30)))
	assert.Equal(t, Winter, SeasonOf(day(2017, 12, 1)))

	s, err := ParseSeason("Autumn")
	require.NoError(t, err)
	assert.Equal(t, Fall, s)

	_, err = ParseSeason("monsoon")
	assert.ErrorIs(t, err, ErrUnknownSeason)
}

func TestItem_DesiredFor(t *testing.T) {
	scalar := NewItem("A", 16)
	qty, ok := scalar.DesiredFor("home", "home")
	assert.True(t, ok)
	assert.Equal(t, 16, qty)

	_, ok = scalar.DesiredFor("ashford", "home")
	assert.False(t, ok, "scalar baseline applies to the default warehouse only")

	targeted := NewItem("B", 99)
	targeted.WarehouseTargets = map[Warehouse]int{"ashford": 15}
	qty, ok = targeted.DesiredFor("ashford", "home")
	assert.True(t, ok)
	assert.Equal(t, 15, qty)

	_, ok = targeted.DesiredFor("home", "home")
	assert.False(t, ok, "targets replace the scalar baseline")
}

func TestItem_Defaults(t *testing.T) {
	item := &Item{SKU: "A"}
	assert.Equal(t, 1, item.BunchSize())
	assert.Equal(t, AnyDay{}, item.OrderingSchedule())
	assert.False(t, item.InSeason(NoSeason), "an item without a season is never in season")

	item.Season = Summer
	assert.True(t, item.InSeason(Summer))
	assert.False(t, item.InSeason(Winter))
}

func TestItem_CloneIsDeep(t *testing.T) {
	item := NewItem("A", 1)
	item.WarehouseTargets = map[Warehouse]int{"home": 1}

	c := item.Clone()
	c.WarehouseTargets["home"] = 5
	assert.Equal(t, 1, item.WarehouseTargets["home"])
}

func TestNewOrder(t *testing.T) {
	o, err := NewOrder("A", "home", 6)
	require.NoError(t, err)
	assert.Equal(t, Order{SKU: "A", Warehouse: "home", Quantity: 6}, o)

	for _, q := range []int{0, -1} {
		_, err := NewOrder("A", "home", q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestPromotion_Covers(t *testing.T) {
	p := Promotion{SKU: "A", StartsOn: day(2017, 6, 1), EndsOn: day(2017, 6, 7)}

	assert.True(t, p.Covers("A", "home", day(2017, 6, 1)))
	assert.True(t, p.Covers("A", "ashford", time.Date(2017, 6, 7, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Covers("A", "home", day(2017, 6, 8)))
	assert.False(t, p.Covers("A", "home", day(2017, 5, 31)))
	assert.False(t, p.Covers("B", "home", day(2017, 6, 3)))

	p.Warehouse = "ashford"
	assert.True(t, p.Covers("A", "ashford", day(2017, 6, 3)))
	assert.False(t, p.Covers("A", "home", day(2017, 6, 3)))
}

func TestParseWarehouse(t *testing.T) {
	assert.Equal(t, Warehouse("ashford"), ParseWarehouse("  Ashford "))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2017-06-01")
	require.NoError(t, err)
	assert.Equal(t, day(2017, 6, 1), d)

	_, err = ParseDate("2017/06/01")
	assert.Error(t, err)
}
