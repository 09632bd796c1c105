package refresher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/dashboard"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Refresher runs the background import and balance jobs on cron schedules.
type Refresher struct {
	logger *zap.Logger
	cron   *cron.Cron
}

// New creates a Refresher with seconds-resolution schedules.
func New(logger *zap.Logger) *Refresher {
	return &Refresher{
		logger: logger.Named("refresher"),
		cron:   cron.New(cron.WithSeconds()),
	}
}

// Add schedules job under spec. Each run gets its own run id in the log.
func (r *Refresher) Add(ctx context.Context, name, spec string, job Job) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		r.run(ctx, name, job)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	r.logger.Info("Scheduled job", zap.String("job", name), zap.String("spec", spec))
	return id, nil
}

func (r *Refresher) run(ctx context.Context, name string, job Job) {
	if ctx.Err() != nil {
		return
	}
	l := r.logger.With(zap.String("job", name), zap.String("run_id", uuid.NewString()))
	start := time.Now()
	l.Info("Job started")
	if err := job(ctx); err != nil {
		l.Error("Job failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}
	l.Info("Job finished", zap.Duration("elapsed", time.Since(start)))
}

// Register schedules the dashboard refresh jobs. An empty spec disables a job.
func (r *Refresher) Register(ctx context.Context, cfg *config.Refresh, svc *dashboard.Service) error {
	if cfg.ImportSpec != "" {
		if _, err := r.Add(ctx, "import", cfg.ImportSpec, func(ctx context.Context) error {
			_, err := svc.Import(ctx)
			return err
		}); err != nil {
			return err
		}
	}
	if cfg.BalanceSpec != "" {
		if _, err := r.Add(ctx, "balance", cfg.BalanceSpec, func(ctx context.Context) error {
			update, err := svc.UpdateBalance(ctx, dashboard.AllPlatforms)
			if err != nil {
				return err
			}
			r.logger.Info("Balances refreshed",
				zap.String("total_balance", update.Total.String()),
				zap.Any("update_status", update.UpdateStatus),
			)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of scheduled jobs.
func (r *Refresher) Len() int {
	return len(r.cron.Entries())
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for running jobs.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("Starting refresher", zap.Int("jobs", r.Len()))
	r.cron.Start()
	<-ctx.Done()
	r.logger.Info("Stopping refresher...")
	<-r.cron.Stop().Done()
	r.logger.Info("Refresher stopped")
}
