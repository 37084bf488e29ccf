package scheduler

import (
	"context"
	"fmt"

	"github.com/wonny/foresight/internal/pipeline"
)

// RetrainJob periodically re-runs the training pipeline so saved
// models track the latest dataset snapshot
type RetrainJob struct {
	coordinator *pipeline.Coordinator
	opts        pipeline.Options
	schedule    string
}

// NewRetrainJob creates a retrain job with a cron schedule
func NewRetrainJob(coordinator *pipeline.Coordinator, opts pipeline.Options, schedule string) *RetrainJob {
	return &RetrainJob{coordinator: coordinator, opts: opts, schedule: schedule}
}

func (j *RetrainJob) Name() string     { return "retrain" }
func (j *RetrainJob) Schedule() string { return j.schedule }

// Run executes one pipeline pass; per-model failures are already
// isolated inside the coordinator, so only run-level errors surface
func (j *RetrainJob) Run(ctx context.Context) error {
	summary, err := j.coordinator.Run(ctx, j.opts)
	if err != nil {
		return fmt.Errorf("retrain pipeline: %w", err)
	}

	failed := 0
	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	if failed == len(summary.Outcomes) && failed > 0 {
		return fmt.Errorf("retrain pipeline: all %d models failed", failed)
	}

	return nil
}
