package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/config"
	"github.com/mamadbah2/stockkeeper/internal/repository/mongodb"
	"github.com/mamadbah2/stockkeeper/internal/repository/sheets"
	"github.com/mamadbah2/stockkeeper/internal/repository/xlsx"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
	"github.com/mamadbah2/stockkeeper/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/stockkeeper/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/stockkeeper/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockkeeper/pkg/logger"
)

// app holds the process-wide dependencies. The store is opened once and
// closed when the command returns.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *mongodb.MongoDBRepository
	inventory *inventory.Service
}

func newApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	baseLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(baseLogger)

	return &app{cfg: cfg, logger: baseLogger}, nil
}

// openStore connects to MongoDB and builds the inventory service on top of it.
func (a *app) openStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, err := mongodb.NewMongoDBRepository(connectCtx, a.cfg.MongoDB.URI, a.cfg.MongoDB.DBName, a.cfg.MongoDB.Collection)
	if err != nil {
		return err
	}
	a.logger.Info("connected to mongodb",
		zap.String("database", a.cfg.MongoDB.DBName),
		zap.String("collection", a.cfg.MongoDB.Collection))

	a.store = store
	a.inventory = inventory.NewService(store, a.logger.Named("svc.inventory"))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.store.Close(ctx); err != nil {
			a.logger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// source returns the import source: the named sheet range when given,
// otherwise the workbook at path (or the configured default).
func (a *app) source(ctx context.Context, path, sheetRange string) (inventory.Source, error) {
	if sheetRange != "" {
		return a.sheetRange(ctx, sheetRange)
	}
	if path == "" {
		path = a.cfg.Files.Input
	}
	return xlsx.File{Path: path}, nil
}

// sink mirrors source for export targets.
func (a *app) sink(ctx context.Context, path, sheetRange string) (inventory.Sink, error) {
	if sheetRange != "" {
		return a.sheetRange(ctx, sheetRange)
	}
	if path == "" {
		path = a.cfg.Files.Output
	}
	return xlsx.File{Path: path}, nil
}

func (a *app) sheetRange(ctx context.Context, sheetRange string) (sheets.Range, error) {
	repo, err := sheets.NewGoogleSheetRepository(ctx, a.cfg.Sheets, a.logger.Named("repo.sheets"))
	if err != nil {
		return sheets.Range{}, err
	}
	return sheets.Range{Repo: repo, Range: sheetRange}, nil
}

// notifier returns the WhatsApp alert service, or nil when alerts are not configured.
func (a *app) notifier() reporting.Notifier {
	if !a.cfg.WhatsApp.Enabled() {
		return nil
	}
	client := whatsappclient.NewClient(a.cfg.WhatsApp)
	return whatsappsvc.NewAlertService(a.cfg.WhatsApp, client, a.logger.Named("svc.whatsapp"))
}

func (a *app) runner() *reporting.Service {
	return reporting.NewService(a.inventory, a.notifier(), stdout, a.logger.Named("svc.reporting"))
}

func (a *app) reportingOptions() reporting.Options {
	return reporting.Options{
		Source:    xlsx.File{Path: a.cfg.Files.Input},
		Sink:      xlsx.File{Path: a.cfg.Files.Output},
		Threshold: a.cfg.Reporting.Threshold,
	}
}
