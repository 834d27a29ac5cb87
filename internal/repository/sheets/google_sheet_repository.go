package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/stockkeeper/internal/config"
	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	ReplaceRange(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_ID must be provided", models.ErrConfig)
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize sheets client: %v", models.ErrFileAccess, err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("%w: sheetRange must not be empty", models.ErrConfig)
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read range %s: %v", models.ErrFileAccess, sheetRange, err)
	}

	return resp.Values, nil
}

// ReplaceRange clears the whole sheet named by sheetRange and writes rows
// starting at the range's top-left corner, so the sheet ends up holding
// exactly the supplied rows. A range without a sheet name is cleared as given.
func (r *GoogleSheetRepository) ReplaceRange(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("%w: sheetRange must not be empty", models.ErrConfig)
	}

	clearRange := sheetOf(sheetRange)
	_, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: clear range %s: %v", models.ErrFileAccess, clearRange, err)
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	_, err = r.service.Spreadsheets.Values.Update(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: update range %s: %v", models.ErrFileAccess, sheetRange, err)
	}

	r.logger.Debug("range replaced", zap.String("cleared", clearRange), zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// sheetOf returns the sheet part of an A1 range ("'Low Stock'!A1" yields
// "'Low Stock'"), or the range itself when it names no sheet.
func sheetOf(sheetRange string) string {
	if i := strings.LastIndex(sheetRange, "!"); i > 0 {
		return sheetRange[:i]
	}
	return sheetRange
}
