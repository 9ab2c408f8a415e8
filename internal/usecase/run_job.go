package usecase

import (
	"context"

	"FinFold/internal/domain/models"
	applogger "FinFold/pkg/logger"
	"FinFold/pkg/queue"
)

// RunJobType is the queue message type for background evaluations.
const RunJobType = "run.execute"

// RunJob executes queued evaluation runs. Async API requests enqueue a
// RunSpec; the queue worker pool drains them here.
type RunJob struct {
	runner *Runner
	log    *applogger.Logger
}

// NewRunJob builds the queue job.
func NewRunJob(runner *Runner, log *applogger.Logger) *RunJob {
	return &RunJob{runner: runner, log: log}
}

func (j *RunJob) Name() string { return "evaluation-run" }

func (j *RunJob) Type() string { return RunJobType }

func (j *RunJob) Handle(ctx context.Context, payload interface{}) error {
	spec, err := queue.ParsePayload[models.RunSpec](payload)
	if err != nil {
		j.log.Error("run job payload", applogger.Error(err))
		return err
	}

	if _, err := j.runner.Execute(ctx, *spec); err != nil {
		// The runner already tracked the failure; returning the error
		// lets the queue retry transient ones.
		return err
	}
	return nil
}

var _ queue.Job = (*RunJob)(nil)
