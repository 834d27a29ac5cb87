package reporting

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
)

// Inventory is the subset of the inventory service the unattended run needs.
type Inventory interface {
	ImportFrom(ctx context.Context, src inventory.Source) (models.ImportResult, error)
	LowStock(ctx context.Context, filter models.LowStockFilter) ([]models.Record, error)
	Export(ctx context.Context, sink inventory.Sink, threshold int) (int, error)
}

// Notifier pushes the low stock summary to an external channel.
type Notifier interface {
	SendLowStockAlert(ctx context.Context, records []models.Record, threshold int) error
}

// Options configures one unattended run.
type Options struct {
	Source    inventory.Source
	Sink      inventory.Sink
	Threshold int
}

// Service runs import, low stock report and export back to back, printing
// progress for whoever watches the job output.
type Service struct {
	inventory Inventory
	notifier  Notifier
	out       io.Writer
	logger    *zap.Logger
}

// NewService wires a new reporting service instance. notifier may be nil.
func NewService(inv Inventory, notifier Notifier, out io.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Service{inventory: inv, notifier: notifier, out: out, logger: logger}
}

// Summary reports what a run did.
type Summary struct {
	Imported models.ImportResult
	LowStock []models.Record
	Exported int
}

// Run executes the three steps in order. A failing step stops the run and
// the remaining steps are skipped. Alert delivery failures are only logged.
func (s *Service) Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	threshold := opts.Threshold

	s.printf("Running automated tasks...\n")

	s.printf("1. Importing data from Excel...\n")
	imported, err := s.inventory.ImportFrom(ctx, opts.Source)
	if err != nil {
		return summary, fmt.Errorf("import step: %w", err)
	}
	summary.Imported = imported
	if imported.Records == 0 {
		s.printf("No records to insert.\n")
	} else {
		s.printf("Data inserted/updated successfully (%d records).\n", imported.Records)
	}

	s.printf("2. Checking low stock products...\n")
	items, err := s.inventory.LowStock(ctx, models.LowStockFilter{Threshold: threshold})
	if err != nil {
		return summary, fmt.Errorf("low stock step: %w", err)
	}
	summary.LowStock = items
	if len(items) == 0 {
		s.printf("No low stock items found.\n")
	} else {
		s.printf("\nFound %d low stock products:\n", len(items))
		for _, item := range items {
			s.printf("%s\n", inventory.FormatItem(item))
		}
		s.notify(ctx, items, threshold)
	}

	s.printf("3. Exporting low stock products to Excel...\n")
	exported, err := s.inventory.Export(ctx, opts.Sink, threshold)
	if err != nil {
		return summary, fmt.Errorf("export step: %w", err)
	}
	summary.Exported = exported
	if exported == 0 {
		s.printf("No low stock items to export.\n")
	} else {
		s.printf("Exported low stock items to '%v'.\n", opts.Sink)
	}

	s.printf("Automated tasks completed successfully!\n")
	s.logger.Info("automated run finished",
		zap.Int("imported", summary.Imported.Records),
		zap.Int("low_stock", len(summary.LowStock)),
		zap.Int("exported", summary.Exported))
	return summary, nil
}

func (s *Service) notify(ctx context.Context, items []models.Record, threshold int) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendLowStockAlert(ctx, items, threshold); err != nil {
		s.logger.Warn("low stock alert failed", zap.Error(err))
	}
}

func (s *Service) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
