// File: internal/jobs/orphan_sweep.go
package jobs

import (
	"context"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sweepRunTimeout  = 5 * time.Minute
	schedulerTimeout = 10 * time.Second
)

// OrphanSweeper deletes tasks whose owner has been removed.
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context) (int64, error)
}

// OrphanSweepJob periodically removes tasks left behind by deleted users.
type OrphanSweepJob struct {
	sweeper       OrphanSweeper
	logger        *zap.Logger
	schedule      string
	cronScheduler *cron.Cron
}

// NewOrphanSweepJob creates an OrphanSweepJob on ORPHAN_SWEEP_JOB_SCHEDULE.
func NewOrphanSweepJob(sweeper OrphanSweeper, logger *zap.Logger, cfg *config.Config) *OrphanSweepJob {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron"))),
	), cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &OrphanSweepJob{
		sweeper:       sweeper,
		logger:        logger.Named("OrphanSweepJob"),
		schedule:      cfg.OrphanSweepJobSchedule,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job. An empty schedule disables it.
func (j *OrphanSweepJob) SetupAndStart() error {
	if j.schedule == "" {
		j.logger.Warn("Orphan sweep job schedule not defined (ORPHAN_SWEEP_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule orphan sweep job", zap.String("spec", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Orphan sweep job scheduled", zap.String("spec", j.schedule), zap.Int("jobID", int(jobID)))
	j.cronScheduler.Start()
	return nil
}

// RunOnce performs a single sweep.
func (j *OrphanSweepJob) RunOnce(ctx context.Context) (int64, error) {
	return j.sweeper.SweepOrphans(ctx)
}

func (j *OrphanSweepJob) runJob() {
	j.logger.Info("Starting orphan sweep job run...")
	ctx, cancel := context.WithTimeout(context.Background(), sweepRunTimeout)
	defer cancel()

	removed, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Orphan sweep job run failed", zap.Error(err))
		return
	}
	j.logger.Info("Orphan sweep job run completed", zap.Int64("tasks_removed", removed))
}

// Stop gracefully stops the cron scheduler.
func (j *OrphanSweepJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping orphan sweep job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Orphan sweep job scheduler stopped gracefully.")
	case <-time.After(schedulerTimeout):
		j.logger.Warn("Orphan sweep job scheduler stop timed out.")
	}
}
