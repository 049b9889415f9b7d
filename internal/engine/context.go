package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/logger"
	provisrerrors "github.com/provisr/provisr/pkg/errors"
)

// RunContext carries the immutable state of a single provisioning run. It is
// created once at startup and never mutated by steps.
type RunContext struct {
	RunID     string
	BaseDir   string
	Host      string
	TargetURL string
	DryRun    bool
	Logger    *logger.Logger
	Out       io.Writer
}

// Options controls RunContext construction. LookupEnv defaults to
// os.LookupEnv and exists so tests can inject environments.
type Options struct {
	BaseDir   string
	DryRun    bool
	Logger    *logger.Logger
	Out       io.Writer
	LookupEnv func(string) (string, bool)
}

// NewRunContext resolves the host input named by settings and builds the run
// context. A missing or empty host variable aborts before any step runs.
func NewRunContext(settings config.Settings, opts Options) (*RunContext, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	variable := settings.HostVariable()
	host, ok := lookup(variable)
	host = strings.TrimSpace(host)
	if !ok || host == "" {
		return nil, provisrerrors.NewMissingConfigError(variable)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &RunContext{
		RunID:     uuid.NewString(),
		BaseDir:   opts.BaseDir,
		Host:      host,
		TargetURL: fmt.Sprintf("http://%s:%d", host, settings.TargetPort()),
		DryRun:    opts.DryRun,
		Logger:    opts.Logger,
		Out:       out,
	}, nil
}

// ExpandPlaceholders substitutes {{target_url}} and {{host}} references in s
// with the run's resolved values.
func (rc *RunContext) ExpandPlaceholders(s string) string {
	s = strings.ReplaceAll(s, "{{target_url}}", rc.TargetURL)
	s = strings.ReplaceAll(s, "{{host}}", rc.Host)
	return s
}

// ResolvePath resolves a step-relative path against the run's base directory.
// Absolute paths pass through unchanged.
func (rc *RunContext) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rc.BaseDir, path)
}

// ExecutableDir returns the directory holding the running binary so sibling
// scripts resolve independently of the caller's working directory.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving own path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving own path: %w", err)
	}

	return filepath.Dir(resolved), nil
}
