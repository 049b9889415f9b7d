package config

import (
	"gopkg.in/yaml.v3"
)

// Config represents a full provisioning sequence document.
type Config struct {
	Version     string   `yaml:"version" validate:"required,semver"`
	Name        string   `yaml:"name" validate:"required,min=1,max=100"`
	Description string   `yaml:"description,omitempty"`
	Settings    Settings `yaml:"settings,omitempty"`
	Steps       []Step   `yaml:"steps" validate:"required,min=1,dive"`
}

// Settings holds global execution parameters.
type Settings struct {
	HostEnv string `yaml:"host_env,omitempty" validate:"omitempty,env_name"`
	Port    int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Timeout int    `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=86400"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// HostVariable returns the environment variable the target host is read from.
func (s Settings) HostVariable() string {
	if s.HostEnv == "" {
		return "IP"
	}
	return s.HostEnv
}

// TargetPort returns the port the dependent service listens on.
func (s Settings) TargetPort() int {
	if s.Port == 0 {
		return 5678
	}
	return s.Port
}

// Step describes an individual unit of work in the sequence.
type Step struct {
	ID      string `yaml:"id" validate:"required,step_id"`
	Name    string `yaml:"name,omitempty"`
	Type    string `yaml:"type" validate:"required,oneof=wait command workflows"`
	Enabled bool   `yaml:"enabled,omitempty"`

	Wait      *WaitStep      `yaml:",inline,omitempty"`
	Command   *CommandStep   `yaml:",inline,omitempty"`
	Workflows *WorkflowsStep `yaml:",inline,omitempty"`
}

// UnmarshalYAML customises step decoding to populate type-specific structures
// without conflicts.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type baseStep struct {
		ID      string `yaml:"id"`
		Name    string `yaml:"name"`
		Type    string `yaml:"type"`
		Enabled *bool  `yaml:"enabled"`
	}

	var base baseStep
	if err := value.Decode(&base); err != nil {
		return err
	}

	s.ID = base.ID
	s.Name = base.Name
	s.Type = base.Type
	if base.Enabled != nil {
		s.Enabled = *base.Enabled
	} else {
		s.Enabled = true
	}

	s.Wait = nil
	s.Command = nil
	s.Workflows = nil

	switch base.Type {
	case "wait":
		var wait WaitStep
		if err := value.Decode(&wait); err != nil {
			return err
		}
		s.Wait = &wait
	case "command":
		var cmd CommandStep
		if err := value.Decode(&cmd); err != nil {
			return err
		}
		s.Command = &cmd
	case "workflows":
		var wf WorkflowsStep
		if err := value.Decode(&wf); err != nil {
			return err
		}
		s.Workflows = &wf
	}

	return nil
}

// WaitStep pauses the run, either for a fixed number of seconds or by polling
// an HTTP readiness endpoint on the target service with bounded attempts.
type WaitStep struct {
	Seconds     int    `yaml:"seconds,omitempty" validate:"omitempty,min=1,max=3600"`
	Poll        bool   `yaml:"poll,omitempty"`
	Path        string `yaml:"path,omitempty" validate:"omitempty,startswith=/"`
	Interval    int    `yaml:"interval,omitempty" validate:"omitempty,min=1,max=300"`
	MaxAttempts int    `yaml:"max_attempts,omitempty" validate:"omitempty,min=1,max=1000"`
}

// CommandStep invokes an external executable. Paths containing a separator are
// resolved against the orchestrator's own directory, bare names against PATH.
// Args and Env values may reference {{target_url}} and {{host}}.
type CommandStep struct {
	Command string            `yaml:"command" validate:"required,min=1"`
	Args    []string          `yaml:"args,omitempty"`
	WorkDir string            `yaml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// WorkflowsStep imports workflow definitions into the target service using
// the built-in API client instead of a sibling script.
type WorkflowsStep struct {
	Dir      string `yaml:"dir" validate:"required"`
	Output   string `yaml:"output,omitempty"`
	Activate bool   `yaml:"activate,omitempty"`
}

// StepMap builds a lookup table for steps by ID.
func StepMap(steps []Step) map[string]Step {
	out := make(map[string]Step, len(steps))
	for _, step := range steps {
		out[step.ID] = step
	}
	return out
}
