package sheets

import (
	"context"
	"fmt"
	"strconv"
)

// Range adapts one sheet range to the table source/sink used by the inventory service.
type Range struct {
	Repo  Repository
	Range string
}

// ReadRows implements the table source. Cells are rendered to text so they
// go through the same parsing as workbook cells.
func (r Range) ReadRows(ctx context.Context) ([][]string, error) {
	values, err := r.Repo.ReadRange(ctx, r.Range)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellText(cell)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// WriteRows implements the table sink.
func (r Range) WriteRows(ctx context.Context, rows [][]interface{}) error {
	return r.Repo.ReplaceRange(ctx, r.Range, rows)
}

// String names the target in progress messages.
func (r Range) String() string {
	return "sheet range " + r.Range
}

func cellText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// The API returns every number as float64; keep integers integral.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
