package waitstep

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/engine"
	"github.com/provisr/provisr/internal/model"
	"github.com/provisr/provisr/internal/n8n"
	provisrerrors "github.com/provisr/provisr/pkg/errors"
)

const (
	defaultPollPath     = "/healthz"
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 30
)

// Runner pauses the run. The fixed-delay mode sleeps unconditionally without
// verifying the service; the poll mode probes the target's health endpoint
// with bounded attempts.
type Runner struct {
	httpClient *http.Client
}

// New creates a wait step runner.
func New() *Runner {
	return &Runner{httpClient: &http.Client{Timeout: 5 * time.Second}}
}

var _ engine.StepRunner = (*Runner)(nil)

// Run blocks until the wait condition is met or the context is done.
func (r *Runner) Run(ctx context.Context, rc *engine.RunContext, step *config.Step) (*model.StepResult, error) {
	cfg := step.Wait
	if cfg == nil {
		return nil, provisrerrors.NewValidationError(step.ID, "wait configuration missing", nil)
	}

	if rc.DryRun {
		return &model.StepResult{
			StepID:   step.ID,
			Status:   model.StatusSkipped,
			Message:  "dry-run: wait not performed",
			ExitCode: -1,
		}, nil
	}

	if cfg.Poll {
		return r.poll(ctx, rc, step.ID, cfg)
	}

	delay := time.Duration(cfg.Seconds) * time.Second
	rc.Logger.Debug(fmt.Sprintf("waiting %s for %s", delay, rc.TargetURL))

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return failedResult(step.ID, ctx.Err()), provisrerrors.NewStepError(step.ID, -1, ctx.Err())
	}

	return &model.StepResult{
		StepID:   step.ID,
		Status:   model.StatusSuccess,
		Message:  fmt.Sprintf("waited %s", delay),
		ExitCode: -1,
	}, nil
}

func (r *Runner) poll(ctx context.Context, rc *engine.RunContext, stepID string, cfg *config.WaitStep) (*model.StepResult, error) {
	path := cfg.Path
	if path == "" {
		path = defaultPollPath
	}
	interval := defaultPollInterval
	if cfg.Interval > 0 {
		interval = time.Duration(cfg.Interval) * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}

	client := n8n.NewClient(rc.TargetURL, "", r.httpClient)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return failedResult(stepID, err), provisrerrors.NewStepError(stepID, -1, err)
		}

		lastErr = client.ReadyAt(ctx, path)
		if lastErr == nil {
			return &model.StepResult{
				StepID:   stepID,
				Status:   model.StatusSuccess,
				Message:  fmt.Sprintf("service ready after %d attempt(s)", attempt),
				ExitCode: -1,
			}, nil
		}

		rc.Logger.Debug(fmt.Sprintf("readiness probe %d/%d failed: %v", attempt, maxAttempts, lastErr))

		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return failedResult(stepID, ctx.Err()), provisrerrors.NewStepError(stepID, -1, ctx.Err())
		}
	}

	err := fmt.Errorf("service at %s%s not ready after %d attempt(s): %w", rc.TargetURL, path, maxAttempts, lastErr)
	return failedResult(stepID, err), provisrerrors.NewStepError(stepID, -1, err)
}

func failedResult(stepID string, err error) *model.StepResult {
	return &model.StepResult{
		StepID:   stepID,
		Status:   model.StatusFailed,
		Message:  err.Error(),
		Error:    err,
		ExitCode: -1,
	}
}
