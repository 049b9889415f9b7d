package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/model"
	provisrerrors "github.com/provisr/provisr/pkg/errors"
)

// Execute runs the sequence strictly in order, stopping at the first failing
// step. Results for every attempted step are returned in sequence order; steps
// after a failure are never started.
func Execute(ctx context.Context, rc *RunContext, registry *Registry, cfg *config.Config) ([]model.StepResult, error) {
	if rc == nil {
		return nil, provisrerrors.NewStepError("", -1, fmt.Errorf("run context is nil"))
	}
	if cfg == nil {
		return nil, provisrerrors.NewStepError("", -1, fmt.Errorf("configuration is nil"))
	}

	timeout := time.Duration(cfg.Settings.Timeout) * time.Second

	log := rc.Logger.WithFields(map[string]any{"run_id": rc.RunID})
	log.WithFields(map[string]any{
		"sequence": cfg.Name,
		"target":   rc.TargetURL,
		"steps":    len(cfg.Steps),
	}).Info("starting provisioning run")

	var results []model.StepResult

	for i := range cfg.Steps {
		step := &cfg.Steps[i]

		if !step.Enabled {
			results = append(results, model.StepResult{
				StepID:    step.ID,
				Status:    model.StatusSkipped,
				Message:   "step disabled",
				ExitCode:  -1,
				Timestamp: time.Now(),
			})
			log.WithFields(map[string]any{"step": step.ID}).Debug("step disabled, skipping")
			continue
		}

		result, err := executeStep(ctx, rc, registry, step, timeout)
		if result != nil {
			results = append(results, *result)
		}

		if err != nil {
			log.Error(err, fmt.Sprintf("step %s failed, aborting run", step.ID))
			return results, err
		}

		log.WithFields(map[string]any{
			"step":     step.ID,
			"status":   result.Status,
			"duration": result.Duration.Round(time.Millisecond).String(),
		}).Info("step finished")
	}

	log.Info("provisioning run completed successfully")
	return results, nil
}

func executeStep(ctx context.Context, rc *RunContext, registry *Registry, step *config.Step, timeout time.Duration) (*model.StepResult, error) {
	if ctx.Err() != nil {
		return nil, provisrerrors.NewStepError(step.ID, -1, ctx.Err())
	}

	stepCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	runner, err := registry.Get(step.Type)
	if err != nil {
		return nil, provisrerrors.NewStepError(step.ID, -1, err)
	}

	start := time.Now()
	result, err := runner.Run(stepCtx, rc, step)
	duration := time.Since(start)

	if result == nil {
		result = &model.StepResult{StepID: step.ID, ExitCode: -1}
	}
	if result.StepID == "" {
		result.StepID = step.ID
	}
	result.Duration = duration
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}

	if err != nil {
		return finalizeFailure(result, stepCtx, step.ID, err)
	}

	if result.Status == "" {
		result.Status = model.StatusSuccess
		if result.Message == "" {
			result.Message = "completed"
		}
	}

	return result, nil
}

func finalizeFailure(result *model.StepResult, stepCtx context.Context, stepID string, err error) (*model.StepResult, error) {
	if result.Status == "" {
		result.Status = model.StatusFailed
	}
	if result.Error == nil {
		result.Error = err
	}
	if result.Message == "" {
		result.Message = err.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		result.Message = "timeout exceeded"
	}

	var stepErr *provisrerrors.StepError
	if errors.As(err, &stepErr) {
		return result, err
	}

	return result, provisrerrors.NewStepError(stepID, result.ExitCode, err)
}
