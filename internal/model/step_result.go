package model

import (
	"time"
)

const (
	// StatusPending indicates a step has not started yet.
	StatusPending = "pending"
	// StatusRunning indicates a step is actively executing.
	StatusRunning = "running"
	// StatusSuccess marks a successful step execution.
	StatusSuccess = "success"
	// StatusSkipped indicates the runner skipped the step.
	StatusSkipped = "skipped"
	// StatusFailed marks a failure during step execution.
	StatusFailed = "failed"
)

// StepResult captures the outcome of executing a single step. ExitCode is the
// process exit status for command steps and -1 where no process was involved.
type StepResult struct {
	StepID    string
	Status    string
	Message   string
	Error     error
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// Failed reports whether the result represents a failed step.
func (r StepResult) Failed() bool {
	return r.Status == StatusFailed
}
