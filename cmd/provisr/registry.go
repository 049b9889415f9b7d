package main

import (
	"github.com/provisr/provisr/internal/engine"
	commandstep "github.com/provisr/provisr/internal/steps/command"
	waitstep "github.com/provisr/provisr/internal/steps/wait"
	workflowstep "github.com/provisr/provisr/internal/steps/workflows"
)

func registerSteps(registry *engine.Registry) error {
	if err := registry.Register("wait", waitstep.New()); err != nil {
		return err
	}
	if err := registry.Register("command", commandstep.New()); err != nil {
		return err
	}
	return registry.Register("workflows", workflowstep.New())
}
