package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeWorkbook(t *testing.T, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadItems_CSV(t *testing.T) {
	path := writeFile(t, "items.csv", `sku,name,desired_on_hand,warehouse_targets,season,case_lot,schedule
A-1,Widget,16,,,,
B-2,Umbrella,,ashford=15;home=10,summer,6,first-of-month

C-3,Scarf,8,,winter,,weekly:mon
`)

	items, err := LoadItems(path)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "A-1", items[0].SKU)
	assert.Equal(t, "Widget", items[0].Name)
	assert.Equal(t, 16, items[0].DesiredOnHand)
	assert.Equal(t, 1, items[0].CaseLot)
	assert.Equal(t, domain.AnyDay{}, items[0].Schedule)
	assert.Equal(t, domain.NoSeason, items[0].Season)

	assert.Equal(t, map[domain.Warehouse]int{"ashford": 15, "home": 10}, items[1].WarehouseTargets)
	assert.Equal(t, domain.Summer, items[1].Season)
	assert.Equal(t, 6, items[1].CaseLot)
	assert.Equal(t, domain.FirstOfMonth{}, items[1].Schedule)

	assert.Equal(t, domain.Weekly{Day: time.Monday}, items[2].Schedule)
}

func TestLoadItems_HeaderIsCaseInsensitive(t *testing.T) {
	path := writeFile(t, "items.csv", "SKU, Desired_On_Hand\nA-1,4\n")

	items, err := LoadItems(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].DesiredOnHand)
}

func TestLoadItems_XLSX(t *testing.T) {
	path := writeWorkbook(t, "items.xlsx", [][]any{
		{"sku", "desired_on_hand", "case_lot", "season"},
		{"A-1", 16, 1, ""},
		{"B-2", 15, 6, "fall"},
	})

	items, err := LoadItems(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 16, items[0].DesiredOnHand)
	assert.Equal(t, 6, items[1].CaseLot)
	assert.Equal(t, domain.Fall, items[1].Season)
}

func TestLoadItems_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		is   error
	}{
		{name: "missing sku column", body: "name,desired_on_hand\nWidget,3\n", is: ErrMissingColumn},
		{name: "unknown schedule", body: "sku,schedule\nA-1,fortnightly\n", is: domain.ErrUnknownSchedule},
		{name: "unknown season", body: "sku,season\nA-1,monsoon\n", is: domain.ErrUnknownSeason},
		{name: "negative desired", body: "sku,desired_on_hand\nA-1,-3\n"},
		{name: "not a number", body: "sku,desired_on_hand\nA-1,many\n"},
		{name: "bad target", body: "sku,warehouse_targets\nA-1,ashford:15\n"},
		{name: "empty sku", body: "sku,desired_on_hand\n,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadItems(writeFile(t, "items.csv", tt.body))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoadItems_EmptyFile(t *testing.T) {
	_, err := LoadItems(writeFile(t, "items.csv", ""))
	assert.Error(t, err)
}

func TestParseTargets(t *testing.T) {
	targets, err := ParseTargets(" Ashford = 15 | home=0 ")
	require.NoError(t, err)
	assert.Equal(t, map[domain.Warehouse]int{"ashford": 15, "home": 0}, targets)

	targets, err = ParseTargets("")
	require.NoError(t, err)
	assert.Nil(t, targets)

	_, err = ParseTargets("ashford=-1")
	assert.Error(t, err)

	_, err = ParseTargets("=4")
	assert.Error(t, err)
}

func TestLoadStockLevels(t *testing.T) {
	path := writeFile(t, "stock.csv", `sku,warehouse,on_hand,on_order
A-1,,5,5
A-1,Ashford,0,
`)

	levels, err := LoadStockLevels(path, "home")
	require.NoError(t, err)
	assert.Equal(t, []domain.StockLevel{
		{SKU: "A-1", Warehouse: "home", OnHand: 5, OnOrder: 5},
		{SKU: "A-1", Warehouse: "ashford", OnHand: 0, OnOrder: 0},
	}, levels)
}

func TestLoadStockLevels_MissingOnHand(t *testing.T) {
	_, err := LoadStockLevels(writeFile(t, "stock.csv", "sku,warehouse\nA-1,home\n"), "home")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadPromotions(t *testing.T) {
	path := writeFile(t, "promotions.csv", `sku,warehouse,starts_on,ends_on
A-1,,2017-06-01,2017-06-07
B-2,ashford,2017-06-03,
`)

	promotions, err := LoadPromotions(path)
	require.NoError(t, err)
	require.Len(t, promotions, 2)

	assert.Equal(t, domain.Warehouse(""), promotions[0].Warehouse)
	assert.Equal(t, "2017-06-07", promotions[0].EndsOn.Format(domain.DateLayout))
	assert.Equal(t, promotions[1].StartsOn, promotions[1].EndsOn)
}

func TestLoadPromotions_EndBeforeStart(t *testing.T) {
	path := writeFile(t, "promotions.csv", "sku,starts_on,ends_on\nA-1,2017-06-07,2017-06-01\n")
	_, err := LoadPromotions(path)
	assert.Error(t, err)
}

type recordingCatalogRepo struct {
	calls      []string
	items      []*domain.Item
	levels     []domain.StockLevel
	promotions []domain.Promotion
}

func (r *recordingCatalogRepo) UpsertItems(ctx context.Context, items []*domain.Item) error {
	r.calls = append(r.calls, "items")
	r.items = items
	return nil
}

func (r *recordingCatalogRepo) UpsertStockLevels(ctx context.Context, levels []domain.StockLevel) error {
	r.calls = append(r.calls, "levels")
	r.levels = levels
	return nil
}

func (r *recordingCatalogRepo) UpsertPromotions(ctx context.Context, promotions []domain.Promotion) error {
	r.calls = append(r.calls, "promotions")
	r.promotions = promotions
	return nil
}

func TestLoadAndImport(t *testing.T) {
	files := Files{
		Items:      writeFile(t, "items.csv", "sku,desired_on_hand\nA-1,16\n"),
		Stock:      writeFile(t, "stock.csv", "sku,on_hand,on_order\nA-1,5,5\n"),
		Promotions: writeFile(t, "promotions.csv", "sku,starts_on\nA-1,2017-06-01\n"),
	}

	c, err := Load(files, "home")
	require.NoError(t, err)

	repo := &recordingCatalogRepo{}
	require.NoError(t, c.Import(context.Background(), repo))

	assert.Equal(t, []string{"items", "levels", "promotions"}, repo.calls)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, domain.Warehouse("home"), repo.levels[0].Warehouse)
	assert.Len(t, repo.promotions, 1)
}

func TestLoad_RequiresItemsAndStock(t *testing.T) {
	_, err := Load(Files{Items: "items.csv"}, "home")
	assert.Error(t, err)
}
