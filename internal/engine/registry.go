package engine

import (
	"context"
	"fmt"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/model"
)

// StepRunner executes one step type.
type StepRunner interface {
	Run(ctx context.Context, rc *RunContext, step *config.Step) (*model.StepResult, error)
}

// Registry maps step types to their runners.
type Registry struct {
	runners map[string]StepRunner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runners: make(map[string]StepRunner)}
}

// Register binds a runner to a step type. Registering a type twice is a
// programming error and is rejected.
func (r *Registry) Register(stepType string, runner StepRunner) error {
	if _, exists := r.runners[stepType]; exists {
		return fmt.Errorf("step type %q already registered", stepType)
	}
	r.runners[stepType] = runner
	return nil
}

// Get returns the runner for a step type.
func (r *Registry) Get(stepType string) (StepRunner, error) {
	runner, ok := r.runners[stepType]
	if !ok {
		return nil, fmt.Errorf("no runner registered for step type %q", stepType)
	}
	return runner, nil
}
