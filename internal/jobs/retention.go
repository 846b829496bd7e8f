package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner removes history older than a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionConfig controls how long interview history is kept.
type RetentionConfig struct {
	Schedule  string        // cron schedule, e.g. "0 3 * * *"
	Retention time.Duration // zero keeps everything
}

// RetentionJob prunes interview history on a schedule.
type RetentionJob struct {
	pruner Pruner
	config RetentionConfig
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time
}

func NewRetentionJob(pruner Pruner, config RetentionConfig, logger *zap.Logger) *RetentionJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionJob{
		pruner: pruner,
		config: config,
		cron:   cron.New(),
		logger: logger,
		now:    time.Now,
	}
}

// Start schedules the prune run. A zero retention disables the job.
func (j *RetentionJob) Start() error {
	if j.config.Retention <= 0 {
		j.logger.Info("History retention disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if _, err := j.RunPrune(context.Background()); err != nil {
			j.logger.Error("History prune failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("History retention job started",
		zap.String("schedule", j.config.Schedule),
		zap.Duration("retention", j.config.Retention))
	return nil
}

// Stop waits for a running prune to finish.
func (j *RetentionJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// RunPrune removes everything completed before now minus the retention.
func (j *RetentionJob) RunPrune(ctx context.Context) (int64, error) {
	if j.config.Retention <= 0 {
		return 0, nil
	}
	cutoff := j.now().Add(-j.config.Retention)
	removed, err := j.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	j.logger.Info("History prune finished", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}
