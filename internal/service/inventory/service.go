package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	repo "github.com/mamadbah2/stockkeeper/internal/repository/mongodb"
)

// Source yields spreadsheet rows, header first.
type Source interface {
	ReadRows(ctx context.Context) ([][]string, error)
}

// Sink receives spreadsheet rows and replaces whatever the target held before.
type Sink interface {
	WriteRows(ctx context.Context, rows [][]interface{}) error
}

// Service exposes the import, query and export operations over the inventory store.
type Service struct {
	store  repo.Repository
	logger *zap.Logger
}

// NewService wires a new inventory service instance.
func NewService(store repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// ReadRecords loads inventory records from a spreadsheet source.
func (s *Service) ReadRecords(ctx context.Context, src Source) ([]models.Record, error) {
	s.logger.Info("reading inventory", zap.String("source", fmt.Sprint(src)))

	rows, err := src.ReadRows(ctx)
	if err != nil {
		return nil, err
	}

	records, err := RecordsFromRows(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("inventory parsed", zap.Int("records", len(records)))
	return records, nil
}

// Import upserts every record by natural key. Records are applied in order, so
// when two share a key the later one wins. The first failure aborts the run.
func (s *Service) Import(ctx context.Context, records []models.Record) (models.ImportResult, error) {
	result := models.ImportResult{}
	if len(records) == 0 {
		s.logger.Info("no records to insert")
		return result, nil
	}

	for _, record := range records {
		outcome, err := s.store.UpsertByKey(ctx, record)
		if err != nil {
			return result, err
		}
		result.Records++
		if outcome.Matched {
			result.Matched++
		}
		if outcome.Inserted {
			result.Upserted++
		}
	}

	s.logger.Info("inventory upserted",
		zap.Int("records", result.Records),
		zap.Int("matched", result.Matched),
		zap.Int("inserted", result.Upserted))
	return result, nil
}

// ImportFrom reads a source and upserts its records.
func (s *Service) ImportFrom(ctx context.Context, src Source) (models.ImportResult, error) {
	records, err := s.ReadRecords(ctx, src)
	if err != nil {
		return models.ImportResult{}, err
	}
	return s.Import(ctx, records)
}

// LowStock returns the records whose stock is below the filter threshold.
func (s *Service) LowStock(ctx context.Context, filter models.LowStockFilter) ([]models.Record, error) {
	filter = filter.Normalize()

	records, err := s.store.FindLowStock(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("low stock query",
		zap.Int("threshold", filter.Threshold),
		zap.String("type", filter.Type),
		zap.String("brand", filter.Brand),
		zap.String("category", filter.Category),
		zap.Int("results", len(records)))
	return records, nil
}

// Export writes the unfiltered low stock records for threshold to sink and
// returns how many were written. Nothing is written when the result is empty.
func (s *Service) Export(ctx context.Context, sink Sink, threshold int) (int, error) {
	records, err := s.LowStock(ctx, models.LowStockFilter{Threshold: threshold})
	if err != nil {
		return 0, err
	}

	if len(records) == 0 {
		s.logger.Info("no low stock items to export")
		return 0, nil
	}

	if err := sink.WriteRows(ctx, RowsFromRecords(records)); err != nil {
		return 0, err
	}

	s.logger.Info("low stock exported", zap.String("target", fmt.Sprint(sink)), zap.Int("records", len(records)))
	return len(records), nil
}

// FormatItem renders one low stock line for console and message output.
func FormatItem(record models.Record) string {
	field := func(key string) interface{} {
		value, _ := record.Get(key)
		return value
	}
	return fmt.Sprintf("- %v (%v), Volume: %v, Stock: %v, Category: %v",
		field(models.FieldBrand), field(models.FieldType), field(models.FieldVolume),
		field(models.FieldStock), field(models.FieldCategory))
}
