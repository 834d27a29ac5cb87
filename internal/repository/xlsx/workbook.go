// Package xlsx reads and writes the inventory workbooks.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

// DefaultSheet is the worksheet name used for exports.
const DefaultSheet = "Sheet1"

// Read returns the rows of the first worksheet in the workbook at path,
// using raw cell values rather than display-formatted ones.
func Read(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: file not found: %s", models.ErrFileAccess, path)
		}
		return nil, fmt.Errorf("%w: could not open %s: %v", models.ErrFileAccess, path, err)
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s, is this a valid .xlsx file? %v", models.ErrFormat, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no worksheets", models.ErrFormat, path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: could not read sheet %q: %v", models.ErrFormat, sheets[0], err)
	}

	return rows, nil
}

// Write creates a new workbook holding rows on a single sheet and saves it at
// path, replacing any existing file.
func Write(path string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRows(f, DefaultSheet, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: could not save %s: %v", models.ErrFileAccess, path, err)
	}

	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("%w: invalid cell coordinates for row %d: %v", models.ErrFileAccess, i+1, err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%w: could not write row %d: %v", models.ErrFileAccess, i+1, err)
		}
	}
	return nil
}

// File adapts a workbook path to the table source/sink used by the inventory service.
type File struct {
	Path string
}

// ReadRows implements the table source.
func (f File) ReadRows(_ context.Context) ([][]string, error) {
	return Read(f.Path)
}

// WriteRows implements the table sink.
func (f File) WriteRows(_ context.Context, rows [][]interface{}) error {
	return Write(f.Path, rows)
}

// String names the target in progress messages.
func (f File) String() string {
	return f.Path
}
