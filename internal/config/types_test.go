package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStepUnmarshalDefaultsEnabled(t *testing.T) {
	t.Parallel()

	var step Step
	require.NoError(t, yaml.Unmarshal([]byte(`
id: create_credentials
type: command
command: ./createCredentials.sh
`), &step))

	require.True(t, step.Enabled)
	require.NotNil(t, step.Command)
	require.Nil(t, step.Wait)
	require.Nil(t, step.Workflows)

	var disabled Step
	require.NoError(t, yaml.Unmarshal([]byte(`
id: create_credentials
type: command
command: ./createCredentials.sh
enabled: false
`), &disabled))
	require.False(t, disabled.Enabled)
}

func TestStepUnmarshalDecodesArgsAndEnv(t *testing.T) {
	t.Parallel()

	var step Step
	require.NoError(t, yaml.Unmarshal([]byte(`
id: create_workflows
type: command
command: ./createWorkflows.sh
args: ["--host={{target_url}}"]
env:
  N8N_API_KEY: secret
`), &step))

	require.NotNil(t, step.Command)
	require.Equal(t, []string{"--host={{target_url}}"}, step.Command.Args)
	require.Equal(t, "secret", step.Command.Env["N8N_API_KEY"])
}

func TestSettingsDefaults(t *testing.T) {
	t.Parallel()

	var s Settings
	require.Equal(t, "IP", s.HostVariable())
	require.Equal(t, 5678, s.TargetPort())

	s.HostEnv = "URL"
	s.Port = 8080
	require.Equal(t, "URL", s.HostVariable())
	require.Equal(t, 8080, s.TargetPort())
}

func TestDefaultSequenceIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, ValidateConfig(cfg))

	require.Len(t, cfg.Steps, 3)
	require.Equal(t, "wait_for_n8n", cfg.Steps[0].ID)
	require.Equal(t, "create_credentials", cfg.Steps[1].ID)
	require.Equal(t, "create_workflows", cfg.Steps[2].ID)
	require.Equal(t, []string{"--host={{target_url}}"}, cfg.Steps[2].Command.Args)
	require.Equal(t, "IP", cfg.Settings.HostVariable())
	require.Equal(t, 5678, cfg.Settings.TargetPort())
}

func TestStepMap(t *testing.T) {
	t.Parallel()

	cfg := Default()
	lookup := StepMap(cfg.Steps)
	require.Len(t, lookup, 3)
	require.Equal(t, "command", lookup["create_credentials"].Type)
}
