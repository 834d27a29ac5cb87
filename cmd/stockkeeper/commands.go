package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/repository/xlsx"
	"github.com/mamadbah2/stockkeeper/internal/scheduler"
	"github.com/mamadbah2/stockkeeper/internal/server/handlers"
	"github.com/mamadbah2/stockkeeper/internal/server/router"
	"github.com/mamadbah2/stockkeeper/internal/service/commands"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
)

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// newRootCommand builds the command tree. The returned cleanup closes the
// MongoDB connection and flushes the logger; it runs even when a command fails.
func newRootCommand() (*cobra.Command, func()) {
	var envFile string
	var a *app

	rootCmd := &cobra.Command{
		Use:   "stockkeeper",
		Short: "Import inventory spreadsheets into MongoDB and report low stock",
		Long: `stockkeeper keeps the inventory collection in sync with a spreadsheet,
lists products whose stock is below a threshold and exports them back to Excel.

Without a subcommand it runs the automated import/report/export sequence when
GITHUB_ACTIONS=true (or STOCKKEEPER_AUTOMATED=true) and the interactive menu otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(envFile)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Automated {
				return runAutomated(cmd, a)
			}
			return runMenu(cmd, a)
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this .env file (default: ./.env when present)")

	current := func() *app { return a }
	rootCmd.AddCommand(
		newImportCommand(current),
		newLowStockCommand(current),
		newExportCommand(current),
		newRunCommand(current),
		newMenuCommand(current),
		newServeCommand(current),
		newScheduleCommand(current),
	)

	cleanup := func() {
		if a != nil {
			a.close()
		}
	}
	return rootCmd, cleanup
}

func newImportCommand(current func() *app) *cobra.Command {
	var sheetRange string

	cmd := &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Upsert spreadsheet rows into the inventory collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			src, err := a.source(cmd.Context(), firstArg(args), sheetRange)
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Reading from: %v\n", src)
			res, err := a.inventory.ImportFrom(cmd.Context(), src)
			if err != nil {
				return err
			}
			if res.Records == 0 {
				fmt.Fprintln(stdout, "No records to insert.")
				return nil
			}
			fmt.Fprintf(stdout, "Data inserted/updated successfully: %d records (%d updated, %d new).\n",
				res.Records, res.Matched, res.Upserted)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetRange, "sheet", "", "Read from this Google Sheet range (e.g. 'Inventory!A:Z') instead of a file")
	return cmd
}

func newLowStockCommand(current func() *app) *cobra.Command {
	var filter models.LowStockFilter

	cmd := &cobra.Command{
		Use:   "low-stock",
		Short: "List products whose stock is below the threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				filter.Threshold = a.cfg.Reporting.Threshold
			}

			items, err := a.inventory.LowStock(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(stdout, "No matching low stock items.")
				return nil
			}
			fmt.Fprintln(stdout, "Low Stock Products:")
			for _, item := range items {
				fmt.Fprintln(stdout, inventory.FormatItem(item))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&filter.Threshold, "threshold", models.DefaultThreshold, "Exclusive stock upper bound")
	cmd.Flags().StringVar(&filter.Type, "type", "", "Only this product type (case-insensitive exact match)")
	cmd.Flags().StringVar(&filter.Brand, "brand", "", "Only this brand (case-insensitive exact match)")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Only this category (case-insensitive exact match)")
	return cmd
}

func newExportCommand(current func() *app) *cobra.Command {
	var sheetRange string
	var threshold int

	cmd := &cobra.Command{
		Use:   "export [file.xlsx]",
		Short: "Write low stock products to a spreadsheet, replacing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Reporting.Threshold
			}
			sink, err := a.sink(cmd.Context(), firstArg(args), sheetRange)
			if err != nil {
				return err
			}

			n, err := a.inventory.Export(cmd.Context(), sink, threshold)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(stdout, "No low stock items to export.")
				return nil
			}
			fmt.Fprintf(stdout, "Exported %d low stock items to '%v'.\n", n, sink)
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", models.DefaultThreshold, "Exclusive stock upper bound")
	cmd.Flags().StringVar(&sheetRange, "sheet", "", "Write to this Google Sheet range (e.g. 'LowStock!A1') instead of a file")
	return cmd
}

func newRunCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run import, low stock report and export once, unattended",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutomated(cmd, current())
		},
	}
}

func newMenuCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, current())
		},
	}
}

func newServeCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the low stock, import and export operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}

			handler := handlers.NewInventoryHandler(a.inventory,
				xlsx.File{Path: a.cfg.Files.Input},
				xlsx.File{Path: a.cfg.Files.Output},
				a.cfg.Reporting.Threshold,
				a.logger.Named("handlers.inventory"))
			engine := router.New(handler, a.logger.Named("router"))

			srv := &http.Server{
				Addr:         ":" + a.cfg.Server.Port,
				Handler:      engine,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server starting", zap.String("port", a.cfg.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server crashed: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}
			a.logger.Info("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("graceful shutdown failed", zap.Error(err))
			}
			return nil
		},
	}
}

func newScheduleCommand(current func() *app) *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Repeat the unattended run on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			if spec == "" {
				spec = a.cfg.Reporting.CronSchedule
			}

			sched, err := scheduler.NewScheduler(spec, a.runner(), a.reportingOptions(), a.logger.Named("scheduler"))
			if err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			a.logger.Info("waiting for next run", zap.Time("next", sched.Next()))
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression overriding STOCKKEEPER_CRON")
	return cmd
}

func runAutomated(cmd *cobra.Command, a *app) error {
	if err := a.openStore(cmd.Context()); err != nil {
		return err
	}
	_, err := a.runner().Run(cmd.Context(), a.reportingOptions())
	return err
}

func runMenu(cmd *cobra.Command, a *app) error {
	if err := a.openStore(cmd.Context()); err != nil {
		return err
	}
	menu := commands.NewMenu(a.inventory, commands.Options{
		Source:    xlsx.File{Path: a.cfg.Files.Input},
		Sink:      xlsx.File{Path: a.cfg.Files.Output},
		Threshold: a.cfg.Reporting.Threshold,
	}, stdin, stdout, a.logger.Named("menu"))
	return menu.Run(cmd.Context())
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
