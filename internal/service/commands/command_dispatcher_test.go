package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fakeInventory struct {
	imported  int
	exported  int
	lowStock  []models.Record
	filters   []models.LowStockFilter
	importErr error
}

func (f *fakeInventory) ImportFrom(context.Context, inventory.Source) (models.ImportResult, error) {
	if f.importErr != nil {
		return models.ImportResult{}, f.importErr
	}
	f.imported++
	return models.ImportResult{Records: 1, Upserted: 1}, nil
}

func (f *fakeInventory) LowStock(_ context.Context, filter models.LowStockFilter) ([]models.Record, error) {
	f.filters = append(f.filters, filter)
	return f.lowStock, nil
}

func (f *fakeInventory) Export(context.Context, inventory.Sink, int) (int, error) {
	f.exported++
	return len(f.lowStock), nil
}

type label string

func (l label) ReadRows(context.Context) ([][]string, error) { return nil, nil }
func (l label) WriteRows(context.Context, [][]interface{}) error { return nil }
func (l label) String() string { return string(l) }

func runMenu(t *testing.T, inv *fakeInventory, input string) string {
	t.Helper()
	var out bytes.Buffer
	menu := NewMenu(inv, Options{Source: label("inventory.xlsx"), Sink: label("low_stock.xlsx"), Threshold: models.DefaultThreshold}, strings.NewReader(input), &out, nil)
	require.NoError(t, menu.Run(context.Background()))
	return out.String()
}

func TestMenuExit(t *testing.T) {
	out := runMenu(t, &fakeInventory{}, "4\n")
	assert.Contains(t, out, "4. Exit")
	assert.True(t, strings.HasSuffix(out, "Exiting program.\n"))
}

func TestMenuInvalidChoiceReprompts(t *testing.T) {
	out := runMenu(t, &fakeInventory{}, "9\n4\n")
	assert.Contains(t, out, "Invalid option. Please try again.")
	assert.Equal(t, 2, strings.Count(out, "Choose an option: "))
}

func TestMenuImport(t *testing.T) {
	inv := &fakeInventory{}
	out := runMenu(t, inv, "1\n4\n")
	assert.Equal(t, 1, inv.imported)
	assert.Contains(t, out, "Reading from: inventory.xlsx")
	assert.Contains(t, out, "Data inserted/updated successfully.")
}

func TestMenuImportErrorKeepsLooping(t *testing.T) {
	inv := &fakeInventory{importErr: fmt.Errorf("%w: file not found: inventory.xlsx", models.ErrFileAccess)}
	out := runMenu(t, inv, "1\n4\n")
	assert.Contains(t, out, "Error: file access error: file not found: inventory.xlsx")
	assert.Contains(t, out, "Exiting program.")
}

func TestMenuQueryWithFilters(t *testing.T) {
	inv := &fakeInventory{lowStock: []models.Record{{
		{Key: "brand", Value: "A"},
		{Key: "type", Value: "Red"},
		{Key: "volume", Value: int64(750)},
		{Key: "category", Value: "wine"},
		{Key: "stock", Value: int64(3)},
	}}}

	out := runMenu(t, inv, "2\nred\n\nwine\n4\n")

	require.Len(t, inv.filters, 1)
	assert.Equal(t, models.LowStockFilter{Threshold: 10, Type: "red", Category: "wine"}, inv.filters[0])
	assert.Contains(t, out, "Low Stock Products:")
	assert.Contains(t, out, "- A (Red), Volume: 750, Stock: 3, Category: wine")
}

func TestMenuQueryNoMatches(t *testing.T) {
	out := runMenu(t, &fakeInventory{}, "2\n\n\n\n4\n")
	assert.Contains(t, out, "No matching low stock items.")
}

func TestMenuExport(t *testing.T) {
	out := runMenu(t, &fakeInventory{}, "3\n4\n")
	assert.Contains(t, out, "No low stock items to export.")

	inv := &fakeInventory{lowStock: []models.Record{{{Key: "brand", Value: "A"}}}}
	out = runMenu(t, inv, "3\n4\n")
	assert.Equal(t, 1, inv.exported)
	assert.Contains(t, out, "Exported low stock items to 'low_stock.xlsx'.")
}

func TestMenuEndsOnEOF(t *testing.T) {
	out := runMenu(t, &fakeInventory{}, "")
	assert.Contains(t, out, "Choose an option: ")
	assert.NotContains(t, out, "Exiting program.")
}

func TestMenuEOFDuringPrompts(t *testing.T) {
	inv := &fakeInventory{}
	runMenu(t, inv, "2\nred\n")
	assert.Empty(t, inv.filters)
}

func TestMenuLastLineWithoutNewline(t *testing.T) {
	out := runMenu(t, &fakeInventory{}, "4")
	assert.Contains(t, out, "Exiting program.")
}

func TestMenuStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	menu := NewMenu(&fakeInventory{}, Options{}, strings.NewReader("1\n"), &bytes.Buffer{}, nil)
	assert.ErrorIs(t, menu.Run(ctx), context.Canceled)
}
