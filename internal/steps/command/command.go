package commandstep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/engine"
	"github.com/provisr/provisr/internal/model"
	provisrerrors "github.com/provisr/provisr/pkg/errors"
)

// Runner invokes external executables. Commands containing a path separator
// are resolved against the run's base directory so sibling scripts are found
// regardless of the caller's working directory; bare names go through PATH.
type Runner struct{}

// New creates a command step runner.
func New() *Runner {
	return &Runner{}
}

var _ engine.StepRunner = (*Runner)(nil)

// Run executes the configured command synchronously, streaming its output to
// the run's output writer. Success is exit code zero.
func (r *Runner) Run(ctx context.Context, rc *engine.RunContext, step *config.Step) (*model.StepResult, error) {
	cfg := step.Command
	if cfg == nil {
		return nil, provisrerrors.NewValidationError(step.ID, "command configuration missing", nil)
	}

	if rc.DryRun {
		return &model.StepResult{
			StepID:   step.ID,
			Status:   model.StatusSkipped,
			Message:  "dry-run: command not executed",
			ExitCode: -1,
		}, nil
	}

	command := cfg.Command
	if strings.ContainsRune(command, '/') {
		command = rc.ResolvePath(command)
	}

	args := make([]string, len(cfg.Args))
	for i, arg := range cfg.Args {
		args[i] = rc.ExpandPlaceholders(arg)
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = buildEnv(rc, cfg.Env)
	cmd.Dir = rc.BaseDir
	if cfg.WorkDir != "" {
		cmd.Dir = rc.ResolvePath(cfg.WorkDir)
	}

	output, err := runStreaming(cmd, rc.Out)
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if output != "" {
			err = fmt.Errorf("%w: %s", err, output)
		}

		result := &model.StepResult{
			StepID:   step.ID,
			Status:   model.StatusFailed,
			Message:  err.Error(),
			Error:    err,
			ExitCode: exitCode,
		}
		return result, provisrerrors.NewStepError(step.ID, exitCode, err)
	}

	return &model.StepResult{
		StepID:  step.ID,
		Status:  model.StatusSuccess,
		Message: "command executed",
	}, nil
}

// runStreaming wires the command's stdout/stderr through to the sink while
// collecting output for diagnostics.
func runStreaming(cmd *exec.Cmd, sink io.Writer) (string, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = io.MultiWriter(sink, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(sink, &stderrBuf)

	err := cmd.Run()

	stderr := strings.TrimSpace(stderrBuf.String())
	if stderr != "" {
		return stderr, err
	}
	return strings.TrimSpace(stdoutBuf.String()), err
}

func buildEnv(rc *engine.RunContext, custom map[string]string) []string {
	env := os.Environ()
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, rc.ExpandPlaceholders(v)))
	}
	return env
}
