package workflowstep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/engine"
	"github.com/provisr/provisr/internal/model"
	"github.com/provisr/provisr/internal/n8n"
	"github.com/provisr/provisr/internal/workflows"
	provisrerrors "github.com/provisr/provisr/pkg/errors"
)

// APIKeyEnv names the environment variable carrying the n8n API key.
const APIKeyEnv = "N8N_API_KEY"

// Runner imports workflow definitions through the built-in API client, so a
// sequence does not need a sibling workflow-creation script.
type Runner struct{}

// New creates a workflows step runner.
func New() *Runner {
	return &Runner{}
}

var _ engine.StepRunner = (*Runner)(nil)

// Run deploys every workflow file in the configured directory and optionally
// activates the created workflows.
func (r *Runner) Run(ctx context.Context, rc *engine.RunContext, step *config.Step) (*model.StepResult, error) {
	cfg := step.Workflows
	if cfg == nil {
		return nil, provisrerrors.NewValidationError(step.ID, "workflows configuration missing", nil)
	}

	if rc.DryRun {
		return &model.StepResult{
			StepID:   step.ID,
			Status:   model.StatusSkipped,
			Message:  "dry-run: workflows not imported",
			ExitCode: -1,
		}, nil
	}

	apiKey := strings.TrimSpace(os.Getenv(APIKeyEnv))
	if apiKey == "" {
		err := provisrerrors.NewMissingConfigError(APIKeyEnv)
		return failedResult(step.ID, err), provisrerrors.NewStepError(step.ID, -1, err)
	}

	dir := rc.ResolvePath(cfg.Dir)
	output := cfg.Output
	if output == "" {
		output = filepath.Join(dir, workflows.DefaultIDsFile)
	} else {
		output = rc.ResolvePath(output)
	}

	client := n8n.NewClient(rc.TargetURL, apiKey, nil)
	importer := workflows.NewImporter(client, rc.Logger)

	summary, err := importer.ImportDir(ctx, dir, output)
	if err != nil {
		return failedResult(step.ID, err), provisrerrors.NewStepError(step.ID, -1, err)
	}

	message := fmt.Sprintf("%d workflow(s) created", summary.Done)

	if cfg.Activate {
		activated, err := importer.ActivateFromFile(ctx, output)
		if err != nil {
			return failedResult(step.ID, err), provisrerrors.NewStepError(step.ID, -1, err)
		}
		message = fmt.Sprintf("%s, %d activated", message, activated.Done)
	}

	return &model.StepResult{
		StepID:   step.ID,
		Status:   model.StatusSuccess,
		Message:  message,
		ExitCode: -1,
	}, nil
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
