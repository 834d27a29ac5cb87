package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/service/reporting"
)

// Runner executes one unattended inventory run.
type Runner interface {
	Run(ctx context.Context, opts reporting.Options) (reporting.Summary, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	opts    reporting.Options
	spec    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance. spec is a standard 5-field
// cron expression.
func NewScheduler(spec string, runner Runner, opts reporting.Options, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%w: invalid cron schedule %q: %v", models.ErrConfig, spec, err)
	}

	// SkipIfStillRunning keeps runs strictly sequential against the store.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	return &Scheduler{
		cron:    c,
		runner:  runner,
		opts:    opts,
		spec:    spec,
		timeout: 10 * time.Minute,
		logger:  logger,
	}, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("%w: schedule automated run: %v", models.ErrConfig, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns the next activation time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	s.logger.Info("automated run triggered")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	summary, err := s.runner.Run(ctx, s.opts)
	if err != nil {
		s.logger.Error("automated run failed", zap.Error(err))
		return
	}

	s.logger.Info("automated run completed",
		zap.Int("imported", summary.Imported.Records),
		zap.Int("low_stock", len(summary.LowStock)),
		zap.Int("exported", summary.Exported))
}
