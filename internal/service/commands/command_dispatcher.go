package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
)

// Menu choices as typed by the operator.
const (
	ChoiceImport = "1"
	ChoiceQuery  = "2"
	ChoiceExport = "3"
	ChoiceExit   = "4"
)

// Inventory is the subset of the inventory service the menu drives.
type Inventory interface {
	ImportFrom(ctx context.Context, src inventory.Source) (models.ImportResult, error)
	LowStock(ctx context.Context, filter models.LowStockFilter) ([]models.Record, error)
	Export(ctx context.Context, sink inventory.Sink, threshold int) (int, error)
}

// Options holds the fixed inputs of the menu actions.
type Options struct {
	Source    inventory.Source
	Sink      inventory.Sink
	Threshold int
}

// Menu is the interactive loop offering import, query, export and exit.
type Menu struct {
	inventory Inventory
	opts      Options
	in        *bufio.Reader
	out       io.Writer
	logger    *zap.Logger
}

// NewMenu constructs the interactive menu reading choices from in.
func NewMenu(inv Inventory, opts Options, in io.Reader, out io.Writer, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{
		inventory: inv,
		opts:      opts,
		in:        bufio.NewReader(in),
		out:       out,
		logger:    logger,
	}
}

// Run loops until the operator picks exit, input ends or ctx is cancelled.
// Operation errors are printed and the menu is shown again.
func (m *Menu) Run(ctx context.Context) error {
	heading := color.New(color.Bold, color.FgCyan)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		heading.Fprintln(m.out, "1. Import data from excel to db")
		heading.Fprintln(m.out, "2. Show low stock products (with optional type/brand/category filters)")
		heading.Fprintln(m.out, "3. Export low stock products to Excel")
		heading.Fprintln(m.out, "4. Exit")

		choice, err := m.prompt("Choose an option: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if choice == ChoiceExit {
			fmt.Fprintln(m.out, "Exiting program.")
			return nil
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			m.logger.Debug("menu action failed", zap.String("choice", choice), zap.Error(err))
			color.New(color.FgRed).Fprintf(m.out, "Error: %v\n", err)
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case ChoiceImport:
		return m.importInventory(ctx)
	case ChoiceQuery:
		return m.showLowStock(ctx)
	case ChoiceExport:
		return m.exportLowStock(ctx)
	default:
		fmt.Fprintln(m.out, "Invalid option. Please try again.")
		return nil
	}
}

func (m *Menu) importInventory(ctx context.Context) error {
	fmt.Fprintf(m.out, "Reading from: %v\n", m.opts.Source)
	res, err := m.inventory.ImportFrom(ctx, m.opts.Source)
	if err != nil {
		return err
	}
	if res.Records == 0 {
		fmt.Fprintln(m.out, "No records to insert.")
		return nil
	}
	fmt.Fprintln(m.out, "Data inserted/updated successfully.")
	return nil
}

func (m *Menu) showLowStock(ctx context.Context) error {
	var filter models.LowStockFilter
	var err error

	if filter.Type, err = m.prompt("Enter product type (or press Enter to skip): "); err != nil {
		return err
	}
	if filter.Brand, err = m.prompt("Enter brand (or press Enter to skip): "); err != nil {
		return err
	}
	if filter.Category, err = m.prompt("Enter category (or press Enter to skip): "); err != nil {
		return err
	}
	filter.Threshold = m.opts.Threshold

	items, err := m.inventory.LowStock(ctx, filter)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintln(m.out, "No matching low stock items.")
		return nil
	}

	fmt.Fprintln(m.out, "\nLow Stock Products:")
	for _, item := range items {
		fmt.Fprintln(m.out, inventory.FormatItem(item))
	}
	return nil
}

func (m *Menu) exportLowStock(ctx context.Context) error {
	n, err := m.inventory.Export(ctx, m.opts.Sink, m.opts.Threshold)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(m.out, "No low stock items to export.")
		return nil
	}
	fmt.Fprintf(m.out, "Exported low stock items to '%v'.\n", m.opts.Sink)
	return nil
}

// prompt prints label and returns the trimmed line typed in response. A last
// line without a trailing newline is still returned; io.EOF only comes back
// when nothing at all was typed.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
