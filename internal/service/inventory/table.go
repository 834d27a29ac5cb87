package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

// textColumns are never coerced to numbers, so a brand like "007" survives.
var textColumns = map[string]bool{
	models.FieldBrand:    true,
	models.FieldType:     true,
	models.FieldCategory: true,
}

// RecordsFromRows maps a header row plus data rows into inventory records.
// Fully blank rows are skipped. Row numbers in errors are 1-based sheet rows.
func RecordsFromRows(rows [][]string) ([]models.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty, expected a header row", models.ErrFormat)
	}

	header, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		record := make(models.Record, 0, len(header))
		for col, name := range header {
			cell := ""
			if col < len(row) {
				cell = strings.TrimSpace(row[col])
			}

			value, err := parseCell(name, cell)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", models.ErrFormat, i+2, err)
			}
			record.Set(name, value)
		}
		records = append(records, record)
	}

	return records, nil
}

// RowsFromRecords renders records as a header row plus one row per record.
// The header follows the column order of the first record; the internal
// identifier is dropped everywhere.
func RowsFromRecords(records []models.Record) [][]interface{} {
	if len(records) == 0 {
		return nil
	}

	header := records[0].Without(models.FieldID).Keys()
	rows := make([][]interface{}, 0, len(records)+1)

	head := make([]interface{}, len(header))
	for i, name := range header {
		head[i] = name
	}
	rows = append(rows, head)

	for _, record := range records {
		record = record.Without(models.FieldID)
		row := make([]interface{}, len(header))
		for i, name := range header {
			if value, ok := record.Get(name); ok {
				row[i] = value
			}
		}
		rows = append(rows, row)
	}

	return rows
}

func parseHeader(row []string) ([]string, error) {
	header := make([]string, len(row))
	seen := make(map[string]bool, len(row))

	// Trailing blank header cells are tolerated; interior ones are not.
	last := len(row) - 1
	for last >= 0 && strings.TrimSpace(row[last]) == "" {
		last--
	}
	header = header[:last+1]

	for i := range header {
		name := strings.TrimSpace(row[i])
		if name == "" {
			return nil, fmt.Errorf("%w: header column %d is blank", models.ErrFormat, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: header column %q appears twice", models.ErrFormat, name)
		}
		seen[name] = true
		header[i] = name
	}

	var missing []string
	for _, required := range models.RequiredColumns {
		if !seen[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", models.ErrFormat, strings.Join(missing, ", "))
	}

	return header, nil
}

func parseCell(column, cell string) (interface{}, error) {
	if column == models.FieldStock {
		return parseStock(cell)
	}
	if cell == "" {
		return nil, nil
	}
	if textColumns[column] {
		return cell, nil
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, nil
	}
	return cell, nil
}

func parseStock(cell string) (int64, error) {
	if cell == "" {
		return 0, fmt.Errorf("stock is empty")
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("stock %q is not a whole number", cell)
	}
	return int64(f), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
