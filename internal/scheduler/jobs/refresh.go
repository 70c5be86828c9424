package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/ndxcap/internal/pipeline"
	"github.com/wonny/ndxcap/pkg/logger"
)

// RefreshJob runs the dataset refresh pipeline on schedule
// ⭐ SSOT: 데이터셋 갱신 스케줄은 이 Job에서만
type RefreshJob struct {
	runner *pipeline.Runner
	logger *logger.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(runner *pipeline.Runner, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		runner: runner,
		logger: log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "dataset_refresh"
}

// Schedule returns the cron schedule: weekday evenings after US market
// close (with seconds)
func (j *RefreshJob) Schedule() string {
	return "0 30 17 * * 1-5"
}

// Run executes one dataset refresh
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled dataset refresh")

	report, err := j.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("dataset refresh: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"state":         string(report.State),
		"new_records":   report.NewRecords,
		"total_records": report.TotalRecords,
		"saved":         report.Saved,
	}).Info("Scheduled dataset refresh finished")

	return nil
}
