package engine_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/engine"
	"github.com/provisr/provisr/internal/logger"
	"github.com/provisr/provisr/internal/model"
	commandstep "github.com/provisr/provisr/internal/steps/command"
	provisrerrors "github.com/provisr/provisr/pkg/errors"
)

type fakeRunner struct {
	calls  []string
	failOn map[string]int
}

func (f *fakeRunner) Run(ctx context.Context, rc *engine.RunContext, step *config.Step) (*model.StepResult, error) {
	f.calls = append(f.calls, step.ID)

	if code, ok := f.failOn[step.ID]; ok {
		err := fmt.Errorf("simulated failure")
		result := &model.StepResult{
			StepID:   step.ID,
			Status:   model.StatusFailed,
			Message:  err.Error(),
			Error:    err,
			ExitCode: code,
		}
		return result, provisrerrors.NewStepError(step.ID, code, err)
	}

	return &model.StepResult{StepID: step.ID, Status: model.StatusSuccess}, nil
}

func newTestContext(t *testing.T, baseDir string) *engine.RunContext {
	t.Helper()

	log, err := logger.New(logger.Options{Level: "debug", Writer: &bytes.Buffer{}})
	require.NoError(t, err)

	rc, err := engine.NewRunContext(config.Settings{}, engine.Options{
		BaseDir:   baseDir,
		Logger:    log,
		Out:       io.Discard,
		LookupEnv: func(key string) (string, bool) { return "10.0.0.5", key == "IP" },
	})
	require.NoError(t, err)
	return rc
}

func sequenceOf(steps ...config.Step) *config.Config {
	return &config.Config{Version: "1.0", Name: "test", Steps: steps}
}

func commandStep(id string) config.Step {
	return config.Step{ID: id, Type: "command", Enabled: true, Command: &config.CommandStep{Command: "noop"}}
}

func TestExecuteRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{}
	registry := engine.NewRegistry()
	require.NoError(t, registry.Register("command", fake))

	cfg := sequenceOf(commandStep("first"), commandStep("second"), commandStep("third"))
	rc := newTestContext(t, t.TempDir())

	results, err := engine.Execute(context.Background(), rc, registry, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, fake.calls)
	require.Len(t, results, 3)
	for _, res := range results {
		require.Equal(t, model.StatusSuccess, res.Status)
	}
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{failOn: map[string]int{"create_credentials": 1}}
	registry := engine.NewRegistry()
	require.NoError(t, registry.Register("command", fake))

	cfg := sequenceOf(
		commandStep("create_credentials"),
		commandStep("create_workflows"),
	)
	rc := newTestContext(t, t.TempDir())

	results, err := engine.Execute(context.Background(), rc, registry, cfg)
	require.Error(t, err)

	var stepErr *provisrerrors.StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "create_credentials", stepErr.StepID)
	require.Equal(t, 1, stepErr.ExitCode)

	// The workflow step is never started.
	require.Equal(t, []string{"create_credentials"}, fake.calls)
	require.Len(t, results, 1)
	require.True(t, results[0].Failed())
}

func TestExecuteSkipsDisabledSteps(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{}
	registry := engine.NewRegistry()
	require.NoError(t, registry.Register("command", fake))

	disabled := commandStep("skipped_step")
	disabled.Enabled = false

	cfg := sequenceOf(commandStep("first"), disabled, commandStep("last"))
	rc := newTestContext(t, t.TempDir())

	results, err := engine.Execute(context.Background(), rc, registry, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "last"}, fake.calls)
	require.Len(t, results, 3)
	require.Equal(t, model.StatusSkipped, results[1].Status)
}

func TestExecuteUnknownStepType(t *testing.T) {
	t.Parallel()

	cfg := sequenceOf(commandStep("only"))
	rc := newTestContext(t, t.TempDir())

	_, err := engine.Execute(context.Background(), rc, engine.NewRegistry(), cfg)
	var stepErr *provisrerrors.StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "only", stepErr.StepID)
}

func TestExecuteCancelledContext(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{}
	registry := engine.NewRegistry()
	require.NoError(t, registry.Register("command", fake))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := newTestContext(t, t.TempDir())
	_, err := engine.Execute(ctx, rc, registry, sequenceOf(commandStep("never")))
	require.Error(t, err)
	require.Empty(t, fake.calls)
}

func writeScript(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o755))
}

func TestExecuteSiblingScriptsReceiveHostArgument(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	baseDir := t.TempDir()
	writeScript(t, baseDir, "createCredentials.sh", `#!/bin/sh
touch creds_ran
exit 0
`)
	writeScript(t, baseDir, "createWorkflows.sh", `#!/bin/sh
printf '%s' "$1" > args.txt
exit 0
`)

	cfg := sequenceOf(
		config.Step{ID: "create_credentials", Type: "command", Enabled: true,
			Command: &config.CommandStep{Command: "./createCredentials.sh"}},
		config.Step{ID: "create_workflows", Type: "command", Enabled: true,
			Command: &config.CommandStep{Command: "./createWorkflows.sh", Args: []string{"--host={{target_url}}"}}},
	)

	registry := engine.NewRegistry()
	require.NoError(t, registry.Register("command", commandstep.New()))

	rc := newTestContext(t, baseDir)
	results, err := engine.Execute(context.Background(), rc, registry, cfg)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.FileExists(t, filepath.Join(baseDir, "creds_ran"))

	args, err := os.ReadFile(filepath.Join(baseDir, "args.txt"))
	require.NoError(t, err)
	require.Equal(t, "--host=http://10.0.0.5:5678", string(args))
}

func TestExecuteFailedCredentialStepSkipsWorkflowScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	baseDir := t.TempDir()
	writeScript(t, baseDir, "createCredentials.sh", `#!/bin/sh
echo "credential service unreachable" >&2
exit 3
`)
	writeScript(t, baseDir, "createWorkflows.sh", `#!/bin/sh
touch workflows_ran
exit 0
`)

	cfg := sequenceOf(
		config.Step{ID: "create_credentials", Type: "command", Enabled: true,
			Command: &config.CommandStep{Command: "./createCredentials.sh"}},
		config.Step{ID: "create_workflows", Type: "command", Enabled: true,
			Command: &config.CommandStep{Command: "./createWorkflows.sh"}},
	)

	registry := engine.NewRegistry()
	require.NoError(t, registry.Register("command", commandstep.New()))

	rc := newTestContext(t, baseDir)
	results, err := engine.Execute(context.Background(), rc, registry, cfg)
	require.Error(t, err)

	var stepErr *provisrerrors.StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "create_credentials", stepErr.StepID)
	require.Equal(t, 3, stepErr.ExitCode)

	require.NoFileExists(t, filepath.Join(baseDir, "workflows_ran"))
	require.Len(t, results, 1)
}

func TestRegistryRejectsDuplicateType(t *testing.T) {
	t.Parallel()

	registry := engine.NewRegistry()
	require.NoError(t, registry.Register("command", &fakeRunner{}))
	require.Error(t, registry.Register("command", &fakeRunner{}))
}
